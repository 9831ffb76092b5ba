package dbops

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mongodb-labs/mwgrunner/internal/docgen"
	"github.com/mongodb-labs/mwgrunner/internal/engctx"
	"github.com/mongodb-labs/mwgrunner/internal/genvalue"
	"github.com/mongodb-labs/mwgrunner/pkg/value"
)

// InsertOne inserts Doc's rendered view (§10 domain operation insert_one).
type InsertOne struct {
	Doc docgen.Document
}

func (op *InsertOne) Execute(ctx *engctx.ThreadContext) error {
	v, err := op.Doc.View(ctx)
	if err != nil {
		return err
	}
	res, err := collectionOf(ctx).InsertOne(context.Background(), v.ToBSON())
	if err != nil {
		return wrapExec("insert_one", err)
	}
	ctx.LastResult = value.FromBSON(bson.D{{Key: "insertedId", Value: res.InsertedID}})
	return nil
}

// InsertMany inserts Times copies of Doc's rendered view in a single bulk
// call (§10 insert_many; §4.3's operation config IntOrValue "times" field
// mirrors the original's insert_many::times).
type InsertMany struct {
	Doc   docgen.Document
	Times genvalue.IntOrGenerator
}

func (op *InsertMany) Execute(ctx *engctx.ThreadContext) error {
	n, err := op.Times.Int(ctx)
	if err != nil {
		return err
	}
	if n <= 0 {
		n = 1
	}
	docs := make([]interface{}, 0, n)
	for i := int64(0); i < n; i++ {
		v, err := op.Doc.View(ctx)
		if err != nil {
			return err
		}
		docs = append(docs, v.ToBSON())
	}
	opts := options.InsertMany().SetOrdered(false)
	res, err := collectionOf(ctx).InsertMany(context.Background(), docs, opts)
	if err != nil {
		return wrapExec("insert_many", err)
	}
	ctx.LastResult = value.NewInt(int64(len(res.InsertedIDs)))
	return nil
}

// FindOne runs Filter and records the single matching document, or null
// if none matched (§10 find_one).
type FindOne struct {
	Filter docgen.Document
}

func (op *FindOne) Execute(ctx *engctx.ThreadContext) error {
	filter, err := op.Filter.View(ctx)
	if err != nil {
		return err
	}
	var raw bson.M
	err = collectionOf(ctx).FindOne(context.Background(), filter.ToBSON()).Decode(&raw)
	if err != nil {
		ctx.LastResult = value.NewNull()
		return wrapExec("find_one", err)
	}
	ctx.LastResult = value.FromBSON(raw)
	return nil
}

// Find runs Filter and records every matching document as an array
// (§10 find).
type Find struct {
	Filter docgen.Document
}

func (op *Find) Execute(ctx *engctx.ThreadContext) error {
	filter, err := op.Filter.View(ctx)
	if err != nil {
		return err
	}
	cur, err := collectionOf(ctx).Find(context.Background(), filter.ToBSON())
	if err != nil {
		return wrapExec("find", err)
	}
	defer cur.Close(context.Background())
	var items []value.Value
	for cur.Next(context.Background()) {
		var raw bson.M
		if err := cur.Decode(&raw); err != nil {
			return wrapExec("find", err)
		}
		items = append(items, value.FromBSON(raw))
	}
	ctx.LastResult = value.NewArray(items)
	return wrapExec("find", cur.Err())
}

// UpdateOne applies Update to the first document matching Filter (§10
// update_one).
type UpdateOne struct {
	Filter docgen.Document
	Update docgen.Document
}

func (op *UpdateOne) Execute(ctx *engctx.ThreadContext) error {
	filter, update, err := renderFilterAndUpdate(ctx, op.Filter, op.Update)
	if err != nil {
		return err
	}
	res, err := collectionOf(ctx).UpdateOne(context.Background(), filter.ToBSON(), update.ToBSON())
	if err != nil {
		return wrapExec("update_one", err)
	}
	ctx.LastResult = value.NewInt(res.ModifiedCount)
	return nil
}

// UpdateMany applies Update to every document matching Filter (§10
// update_many).
type UpdateMany struct {
	Filter docgen.Document
	Update docgen.Document
}

func (op *UpdateMany) Execute(ctx *engctx.ThreadContext) error {
	filter, update, err := renderFilterAndUpdate(ctx, op.Filter, op.Update)
	if err != nil {
		return err
	}
	res, err := collectionOf(ctx).UpdateMany(context.Background(), filter.ToBSON(), update.ToBSON())
	if err != nil {
		return wrapExec("update_many", err)
	}
	ctx.LastResult = value.NewInt(res.ModifiedCount)
	return nil
}

// DeleteOne removes the first document matching Filter (§10 delete_one).
type DeleteOne struct {
	Filter docgen.Document
}

func (op *DeleteOne) Execute(ctx *engctx.ThreadContext) error {
	filter, err := op.Filter.View(ctx)
	if err != nil {
		return err
	}
	res, err := collectionOf(ctx).DeleteOne(context.Background(), filter.ToBSON())
	if err != nil {
		return wrapExec("delete_one", err)
	}
	ctx.LastResult = value.NewInt(res.DeletedCount)
	return nil
}

// DeleteMany removes every document matching Filter (§10 delete_many).
type DeleteMany struct {
	Filter docgen.Document
}

func (op *DeleteMany) Execute(ctx *engctx.ThreadContext) error {
	filter, err := op.Filter.View(ctx)
	if err != nil {
		return err
	}
	res, err := collectionOf(ctx).DeleteMany(context.Background(), filter.ToBSON())
	if err != nil {
		return wrapExec("delete_many", err)
	}
	ctx.LastResult = value.NewInt(res.DeletedCount)
	return nil
}

// Count runs Filter through CountDocuments and records the count,
// optionally asserting it against AssertEquals (§10 count; original's
// count::assertEquals).
type Count struct {
	Filter       docgen.Document
	AssertEquals *int64
}

func (op *Count) Execute(ctx *engctx.ThreadContext) error {
	filter, err := op.Filter.View(ctx)
	if err != nil {
		return err
	}
	n, err := collectionOf(ctx).CountDocuments(context.Background(), filter.ToBSON())
	if err != nil {
		return wrapExec("count", err)
	}
	ctx.LastResult = value.NewInt(n)
	if op.AssertEquals != nil && n != *op.AssertEquals {
		return wrapExec("count", errCountAssertion{got: n, want: *op.AssertEquals})
	}
	return nil
}

type errCountAssertion struct{ got, want int64 }

func (e errCountAssertion) Error() string {
	return "count assertion failed"
}

// Distinct runs a distinct query for FieldName over Filter, recording the
// distinct values as an array (§10 distinct).
type Distinct struct {
	FieldName string
	Filter    docgen.Document
}

func (op *Distinct) Execute(ctx *engctx.ThreadContext) error {
	filter, err := op.Filter.View(ctx)
	if err != nil {
		return err
	}
	values, err := collectionOf(ctx).Distinct(context.Background(), op.FieldName, filter.ToBSON())
	if err != nil {
		return wrapExec("distinct", err)
	}
	out := make([]value.Value, len(values))
	for i, v := range values {
		out[i] = value.FromBSON(v)
	}
	ctx.LastResult = value.NewArray(out)
	return nil
}

func renderFilterAndUpdate(ctx *engctx.ThreadContext, filterDoc, updateDoc docgen.Document) (value.Value, value.Value, error) {
	filter, err := filterDoc.View(ctx)
	if err != nil {
		return value.Value{}, value.Value{}, err
	}
	update, err := updateDoc.View(ctx)
	if err != nil {
		return value.Value{}, value.Value{}, err
	}
	return filter, update, nil
}
