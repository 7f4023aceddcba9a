package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// MongoStore implements Store on a Mongo database.
type MongoStore struct {
	db *mongo.Database
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{db: db}
}

func (s *MongoStore) Find(ctx context.Context, coll string, filter Filter, sort []SortKey, out any) error {
	opts := options.Find()
	if len(sort) > 0 {
		opts.SetSort(sortDoc(sort))
	}
	cur, err := s.db.Collection(coll).Find(ctx, docOf(filter), opts)
	if err != nil {
		return fmt.Errorf("find %s: %w", coll, err)
	}
	if err := cur.All(ctx, out); err != nil {
		return fmt.Errorf("decode %s: %w", coll, err)
	}
	return nil
}

func (s *MongoStore) FindOne(ctx context.Context, coll string, filter Filter, out any) error {
	err := s.db.Collection(coll).FindOne(ctx, docOf(filter)).Decode(out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("find one %s: %w", coll, err)
	}
	return nil
}

func (s *MongoStore) Aggregate(ctx context.Context, coll string, p Pipeline, out any) error {
	if err := p.Validate(); err != nil {
		return err
	}
	cur, err := s.db.Collection(coll).Aggregate(ctx, mongo.Pipeline(p.Render()))
	if err != nil {
		return fmt.Errorf("aggregate %s: %w", coll, err)
	}
	if err := cur.All(ctx, out); err != nil {
		return fmt.Errorf("decode %s: %w", coll, err)
	}
	return nil
}

func (s *MongoStore) Count(ctx context.Context, coll string, filter Filter) (int64, error) {
	n, err := s.db.Collection(coll).CountDocuments(ctx, docOf(filter))
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", coll, err)
	}
	return n, nil
}

func (s *MongoStore) Insert(ctx context.Context, coll string, doc any) (bson.ObjectID, error) {
	res, err := s.db.Collection(coll).InsertOne(ctx, doc)
	if mongo.IsDuplicateKeyError(err) {
		return bson.NilObjectID, fmt.Errorf("%w: %v", ErrDuplicate, err)
	}
	if err != nil {
		return bson.NilObjectID, fmt.Errorf("insert %s: %w", coll, err)
	}
	id, ok := res.InsertedID.(bson.ObjectID)
	if !ok {
		return bson.NilObjectID, fmt.Errorf("insert %s: unexpected id type %T", coll, res.InsertedID)
	}
	return id, nil
}

func (s *MongoStore) UpdateOne(ctx context.Context, coll string, filter Filter, set bson.M) (int64, error) {
	res, err := s.db.Collection(coll).UpdateOne(ctx, docOf(filter), bson.D{{Key: "$set", Value: set}})
	if mongo.IsDuplicateKeyError(err) {
		return 0, fmt.Errorf("%w: %v", ErrDuplicate, err)
	}
	if err != nil {
		return 0, fmt.Errorf("update %s: %w", coll, err)
	}
	return res.MatchedCount, nil
}

func (s *MongoStore) Delete(ctx context.Context, coll string, filter Filter) (int64, error) {
	res, err := s.db.Collection(coll).DeleteMany(ctx, docOf(filter))
	if err != nil {
		return 0, fmt.Errorf("delete %s: %w", coll, err)
	}
	return res.DeletedCount, nil
}
