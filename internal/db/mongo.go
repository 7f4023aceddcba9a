package db

import (
	"context"
	"fmt"
	"time"

	"github.com/Davis-J7/SocialMedia-Page/internal/config"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

var (
	connectMongoFn = func(opts *options.ClientOptions) (*mongo.Client, error) { return mongo.Connect(opts) }
	pingMongoFn    = func(ctx context.Context, client *mongo.Client) error { return client.Ping(ctx, nil) }
)

// ConnectMongo dials the document store and checks it answers.
func ConnectMongo(cfg config.Config) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	opts := options.Client().
		ApplyURI(cfg.MongoURI).
		SetServerSelectionTimeout(5 * time.Second)
	client, err := connectMongoFn(opts)
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := pingMongoFn(ctx, client); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return client, nil
}
