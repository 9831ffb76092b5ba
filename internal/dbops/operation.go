// Package dbops implements the Operation variants bound to MongoDB
// (spec.md §4.3 "Operation node", §10 DOMAIN STACK): each one runs a
// single database call against the collection named by the executing
// thread's DBName/CollectionName.
package dbops

import (
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"

	"github.com/mongodb-labs/mwgrunner/internal/engctx"
)

// Operation is the contract an operation node holds and runs (§4.3
// "Operation node. Holds one Operation; execute runs it.").
type Operation interface {
	Execute(ctx *engctx.ThreadContext) error
}

// clientOf recovers the live driver client from the opaque ThreadContext
// handle. A type assertion failure here means the workload was started
// without wiring a real client into the context — a programming error in
// the runner, not a workload-configuration error, so it panics rather
// than being folded into the operation's own error/exception accounting.
func clientOf(ctx *engctx.ThreadContext) *mongo.Client {
	client, ok := ctx.Client.(*mongo.Client)
	if !ok || client == nil {
		panic("dbops: ThreadContext.Client is not a connected *mongo.Client")
	}
	return client
}

// collectionOf resolves the collection currently named by the thread's
// DBName/CollectionName, applying any per-thread read-preference/write-
// concern override installed by a prior read_preference/write_concern
// operation (§13 SUPPLEMENTED FEATURES).
func collectionOf(ctx *engctx.ThreadContext) *mongo.Collection {
	coll := clientOf(ctx).Database(ctx.DBName).Collection(ctx.CollectionName)
	var opts []*options.CollectionOptions
	if rp, ok := ctx.ReadPref.(*readpref.ReadPref); ok && rp != nil {
		opts = append(opts, options.Collection().SetReadPreference(rp))
	}
	if wc, ok := ctx.WriteConcern.(*writeconcern.WriteConcern); ok && wc != nil {
		opts = append(opts, options.Collection().SetWriteConcern(wc))
	}
	if len(opts) > 0 {
		if cloned, err := coll.Clone(opts...); err == nil {
			coll = cloned
		}
	}
	return coll
}

// wrapExec turns a driver error into a wrapped error carrying the
// operation name, per §11.3's pkg/errors convention.
func wrapExec(opName string, err error) error {
	if err == nil {
		return nil
	}
	return errors.Wrapf(err, "dbops: %s failed", opName)
}
