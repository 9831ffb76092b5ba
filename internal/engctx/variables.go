package engctx

import "github.com/mongodb-labs/mwgrunner/pkg/value"

// dbNameVar and collectionNameVar are the two reserved names that route to
// ThreadContext's dedicated fields instead of either variable map (§3
// invariant (c)).
const (
	dbNameVar         = "DBName"
	collectionNameVar = "CollectionName"
)

// GetVariable resolves name against this thread's scope first, then falls
// through to the owning workload's shared scope (§3 invariant (a)).
// DBName/CollectionName are intercepted first and never touch either map.
func (c *ThreadContext) GetVariable(name string) (value.Value, bool) {
	switch name {
	case dbNameVar:
		return value.NewString(c.DBName), true
	case collectionNameVar:
		return value.NewString(c.CollectionName), true
	}
	if v, ok := c.tvariables[name]; ok {
		return v, true
	}
	return c.Workload.GetShared(name)
}

// SetVariable writes name into whichever scope already holds it — thread
// scope takes priority — creating it in thread scope if it exists
// nowhere yet (§3 invariant (b)). DBName/CollectionName are intercepted
// first and write the dedicated fields instead (§3 invariant (c)).
func (c *ThreadContext) SetVariable(name string, v value.Value) {
	switch name {
	case dbNameVar:
		c.DBName = v.AsString()
		return
	case collectionNameVar:
		c.CollectionName = v.AsString()
		return
	}
	if _, ok := c.tvariables[name]; ok {
		c.tvariables[name] = v
		return
	}
	if c.Workload.HasShared(name) {
		c.Workload.SetShared(name, v)
		return
	}
	c.tvariables[name] = v
}

// MutateVariable atomically reads-then-writes name in whatever scope
// already holds it (thread scope winning ties, same as SetVariable),
// creating it in thread scope if new. It is the primitive the increment
// generator (§4.1) needs: a thread-scoped counter mutates lock-free since
// only its owning thread ever touches tvariables; a workload-scoped
// counter mutates under WorkloadState's mutex so concurrent workers never
// race on the same incrementing variable.
func (c *ThreadContext) MutateVariable(name string, fn func(cur value.Value, existed bool) value.Value) value.Value {
	switch name {
	case dbNameVar, collectionNameVar:
		// Not meaningful to increment; treat as an ordinary unseen write.
		next := fn(value.NewNull(), false)
		c.SetVariable(name, next)
		return next
	}
	if cur, ok := c.tvariables[name]; ok {
		next := fn(cur, true)
		c.tvariables[name] = next
		return next
	}
	if c.Workload.HasShared(name) {
		return c.Workload.MutateShared(name, fn)
	}
	next := fn(value.NewNull(), false)
	c.tvariables[name] = next
	return next
}
