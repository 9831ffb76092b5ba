package dbops

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mongodb-labs/mwgrunner/internal/docgen"
	"github.com/mongodb-labs/mwgrunner/internal/engctx"
	"github.com/mongodb-labs/mwgrunner/pkg/value"
)

// CreateIndex builds an index from Keys (§13 SUPPLEMENTED FEATURES,
// grounded on the original's create_index operation).
type CreateIndex struct {
	Keys docgen.Document
	Name string
}

func (op *CreateIndex) Execute(ctx *engctx.ThreadContext) error {
	keys, err := op.Keys.View(ctx)
	if err != nil {
		return err
	}
	model := mongo.IndexModel{Keys: keys.ToBSON()}
	if op.Name != "" {
		model.Options = options.Index().SetName(op.Name)
	}
	name, err := collectionOf(ctx).Indexes().CreateOne(context.Background(), model)
	if err != nil {
		return wrapExec("create_index", err)
	}
	ctx.LastResult = value.NewString(name)
	return nil
}

// ListIndexes records every index specification on the collection as an
// array (§13 SUPPLEMENTED FEATURES, grounded on the original's
// list_indexes operation).
type ListIndexes struct{}

func (op *ListIndexes) Execute(ctx *engctx.ThreadContext) error {
	cur, err := collectionOf(ctx).Indexes().List(context.Background())
	if err != nil {
		return wrapExec("list_indexes", err)
	}
	defer cur.Close(context.Background())
	var items []value.Value
	for cur.Next(context.Background()) {
		var raw bson.M
		if err := cur.Decode(&raw); err != nil {
			return wrapExec("list_indexes", err)
		}
		items = append(items, value.FromBSON(raw))
	}
	ctx.LastResult = value.NewArray(items)
	return wrapExec("list_indexes", cur.Err())
}

// DropCollection drops the thread's current collection (§10
// drop_collection).
type DropCollection struct{}

func (op *DropCollection) Execute(ctx *engctx.ThreadContext) error {
	if err := collectionOf(ctx).Drop(context.Background()); err != nil {
		return wrapExec("drop_collection", err)
	}
	return nil
}

// Command runs an arbitrary admin command document against the thread's
// current database (§10 command).
type Command struct {
	Doc docgen.Document
}

func (op *Command) Execute(ctx *engctx.ThreadContext) error {
	v, err := op.Doc.View(ctx)
	if err != nil {
		return err
	}
	var raw bson.M
	err = clientOf(ctx).Database(ctx.DBName).RunCommand(context.Background(), v.ToBSON()).Decode(&raw)
	if err != nil {
		return wrapExec("command", err)
	}
	ctx.LastResult = value.FromBSON(raw)
	return nil
}
