package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.uber.org/zap"
)

// UserSchema is the $jsonSchema validator applied to the users collection.
// password is optional: accounts created from the dashboard have none.
func UserSchema() bson.D {
	str := bson.D{{Key: "bsonType", Value: "string"}}
	return bson.D{{Key: "$jsonSchema", Value: bson.D{
		{Key: "bsonType", Value: "object"},
		{Key: "required", Value: bson.A{"user_id", "name", "email", "dob", "gender", "category", "date_of_creation"}},
		{Key: "properties", Value: bson.D{
			{Key: "user_id", Value: str},
			{Key: "name", Value: bson.D{
				{Key: "bsonType", Value: "object"},
				{Key: "required", Value: bson.A{"first", "last"}},
				{Key: "properties", Value: bson.D{
					{Key: "first", Value: str},
					{Key: "last", Value: str},
				}},
			}},
			{Key: "email", Value: bson.D{
				{Key: "bsonType", Value: "string"},
				{Key: "pattern", Value: "^.+@.+$"},
			}},
			{Key: "password", Value: str},
			{Key: "dob", Value: str},
			{Key: "gender", Value: bson.D{{Key: "enum", Value: bson.A{"Male", "Female", "Other"}}}},
			{Key: "category", Value: str},
			{Key: "date_of_creation", Value: bson.D{{Key: "bsonType", Value: "date"}}},
		}},
	}}}
}

var schemaCollections = []string{"users", "posts", "messages", "stories"}

// Indexes lists the indexes each collection needs. The unique email index
// backs ErrDuplicate; the reference indexes keep cascade deletes cheap.
func Indexes() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		"users": {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		"posts": {
			{Keys: bson.D{{Key: "user_id", Value: 1}}},
			{Keys: bson.D{{Key: "date_of_posting", Value: -1}}},
		},
		"messages": {
			{Keys: bson.D{{Key: "sender_id", Value: 1}}},
			{Keys: bson.D{{Key: "receiver_id", Value: 1}}},
		},
		"stories": {
			{Keys: bson.D{{Key: "user_id", Value: 1}}},
		},
	}
}

// schemaDB is the slice of *mongo.Database that schema setup needs.
type schemaDB interface {
	Name() string
	ListCollectionNames(ctx context.Context) ([]string, error)
	CreateCollection(ctx context.Context, name string) error
	RunCommand(ctx context.Context, cmd bson.D) error
	CreateIndexes(ctx context.Context, coll string, models []mongo.IndexModel) error
}

type mongoSchemaDB struct {
	db *mongo.Database
}

func (m mongoSchemaDB) Name() string { return m.db.Name() }

func (m mongoSchemaDB) ListCollectionNames(ctx context.Context) ([]string, error) {
	return m.db.ListCollectionNames(ctx, bson.D{})
}

func (m mongoSchemaDB) CreateCollection(ctx context.Context, name string) error {
	return m.db.CreateCollection(ctx, name)
}

func (m mongoSchemaDB) RunCommand(ctx context.Context, cmd bson.D) error {
	return m.db.RunCommand(ctx, cmd).Err()
}

func (m mongoSchemaDB) CreateIndexes(ctx context.Context, coll string, models []mongo.IndexModel) error {
	_, err := m.db.Collection(coll).Indexes().CreateMany(ctx, models)
	return err
}

// EnsureSchema creates missing collections, applies the users validator and
// builds the indexes.
func EnsureSchema(ctx context.Context, db *mongo.Database, log *zap.Logger) error {
	return ensureSchema(ctx, mongoSchemaDB{db: db}, log)
}

func ensureSchema(ctx context.Context, db schemaDB, log *zap.Logger) error {
	existing, err := db.ListCollectionNames(ctx)
	if err != nil {
		return fmt.Errorf("list collections: %w", err)
	}
	have := map[string]bool{}
	for _, name := range existing {
		have[name] = true
	}

	indexes := Indexes()
	for _, name := range schemaCollections {
		if have[name] {
			continue
		}
		if err := db.CreateCollection(ctx, name); err != nil {
			return fmt.Errorf("create collection %s: %w", name, err)
		}
	}

	err = db.RunCommand(ctx, bson.D{
		{Key: "collMod", Value: "users"},
		{Key: "validator", Value: UserSchema()},
		{Key: "validationLevel", Value: "strict"},
		{Key: "validationAction", Value: "error"},
	})
	if err != nil {
		return fmt.Errorf("apply users validator: %w", err)
	}

	for _, name := range schemaCollections {
		if err := db.CreateIndexes(ctx, name, indexes[name]); err != nil {
			return fmt.Errorf("create indexes for %s: %w", name, err)
		}
	}
	log.Info("mongo schema ready", zap.String("database", db.Name()))
	return nil
}
