// Package store is the document store adapter. Callers describe queries with
// the typed Filter and Stage values in this package; the Mongo and in-memory
// implementations render or evaluate them.
package store

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/v2/bson"
)

var (
	ErrNotFound  = errors.New("document not found")
	ErrDuplicate = errors.New("duplicate key")
)

// Store executes queries against named collections. Result documents are
// decoded into out, which must be a pointer to a slice (or to a struct for
// FindOne).
type Store interface {
	Find(ctx context.Context, coll string, filter Filter, sort []SortKey, out any) error
	FindOne(ctx context.Context, coll string, filter Filter, out any) error
	Aggregate(ctx context.Context, coll string, p Pipeline, out any) error
	Count(ctx context.Context, coll string, filter Filter) (int64, error)
	Insert(ctx context.Context, coll string, doc any) (bson.ObjectID, error)
	UpdateOne(ctx context.Context, coll string, filter Filter, set bson.M) (int64, error)
	Delete(ctx context.Context, coll string, filter Filter) (int64, error)
}

// ByID matches the document with the given _id.
func ByID(id bson.ObjectID) Filter {
	return Eq{Field: "_id", Value: id}
}
