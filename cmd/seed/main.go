// Seed tool: loads the demo dataset into the document store.
//   - -wipe empties users, posts, messages and stories first
//   - -schema installs the users validator and indexes before seeding, -schema-only stops there
//   - -admin-email/-admin-password also create a dashboard admin in PostgreSQL
package main

import (
	"context"
	"flag"
	"time"

	"github.com/Davis-J7/SocialMedia-Page/internal/auth"
	"github.com/Davis-J7/SocialMedia-Page/internal/config"
	"github.com/Davis-J7/SocialMedia-Page/internal/db"
	"github.com/Davis-J7/SocialMedia-Page/internal/logging"
	"github.com/Davis-J7/SocialMedia-Page/internal/store"

	"go.uber.org/zap"
)

func main() {
	var wipe, schemaOnly, schema bool
	var adminEmail, adminPassword string
	flag.BoolVar(&wipe, "wipe", false, "delete existing documents before seeding")
	flag.BoolVar(&schema, "schema", false, "install validator and indexes before seeding")
	flag.BoolVar(&schemaOnly, "schema-only", false, "install validator and indexes, then exit")
	flag.StringVar(&adminEmail, "admin-email", "", "create a dashboard admin with this email")
	flag.StringVar(&adminPassword, "admin-password", "", "password for -admin-email")
	flag.Parse()

	cfg := config.Load()
	log, err := logging.New(cfg.LogLevel)
	if err != nil {
		log = zap.NewNop()
	}
	defer func() { _ = log.Sync() }()

	ctx := context.Background()
	client, err := db.ConnectMongo(cfg)
	if err != nil {
		log.Fatal("mongo connection failed", zap.Error(err))
	}
	defer func() { _ = client.Disconnect(context.Background()) }()
	database := client.Database(cfg.MongoDatabase)

	if schema || schemaOnly {
		if err := store.EnsureSchema(ctx, database, log); err != nil {
			log.Fatal("schema setup failed", zap.Error(err))
		}
		log.Info("schema ready", zap.String("database", cfg.MongoDatabase))
		if schemaOnly {
			return
		}
	}

	start := time.Now()
	sum, err := seed(ctx, store.NewMongoStore(database), time.Now().UTC(), wipe)
	if err != nil {
		log.Fatal("seed failed", zap.Error(err))
	}
	log.Info("seeded",
		zap.Any("wiped", sum.Wiped),
		zap.Int("users", sum.Users),
		zap.Int("posts", sum.Posts),
		zap.Int("messages", sum.Messages),
		zap.Int("stories", sum.Stories),
		zap.Duration("took", time.Since(start).Truncate(time.Millisecond)))

	if adminEmail == "" {
		return
	}
	pool, err := db.ConnectPostgres(cfg)
	if err != nil {
		log.Fatal("postgres connection failed", zap.Error(err))
	}
	defer pool.Close()
	if err := db.EnsurePostgresSchema(ctx, pool); err != nil {
		log.Fatal("postgres schema setup failed", zap.Error(err))
	}

	admin, err := auth.NewService(cfg.JWTSecret, pool).Register(ctx, auth.RegisterRequest{
		Email:    adminEmail,
		Password: adminPassword,
		Role:     auth.RoleAdmin,
	})
	if err != nil {
		log.Fatal("admin bootstrap failed", zap.Error(err))
	}
	log.Info("admin created", zap.String("email", admin.Email), zap.String("id", admin.ID))
}
