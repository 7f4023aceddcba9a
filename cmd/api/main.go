package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Davis-J7/SocialMedia-Page/internal/config"
	"github.com/Davis-J7/SocialMedia-Page/internal/db"
	"github.com/Davis-J7/SocialMedia-Page/internal/logging"
	"github.com/Davis-J7/SocialMedia-Page/internal/model"
	"github.com/Davis-J7/SocialMedia-Page/internal/server"
	"github.com/Davis-J7/SocialMedia-Page/internal/store"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.uber.org/zap"
)

var mainDepsProvider = defaultDeps
var mainRunner = realMain

func main() {
	mainRunner(mainDepsProvider())
}

type mainDeps struct {
	loadConfig      func() config.Config
	newLogger       func(level string) (*zap.Logger, error)
	openStore       func(context.Context, config.Config, *zap.Logger) (store.Store, func(), error)
	connectPostgres func(config.Config) (*pgxpool.Pool, error)
	connectRedis    func(config.Config) *redis.Client
	notify          func(chan<- os.Signal, ...os.Signal)
	run             func(context.Context, Backends, <-chan os.Signal, ListenFunc) error
}

// Backends are the connections the API runs on. Only Store is required.
type Backends struct {
	Config config.Config
	Store  store.Store
	PG     *pgxpool.Pool
	Redis  *redis.Client
	Log    *zap.Logger
}

func defaultDeps() mainDeps {
	return mainDeps{
		loadConfig:      config.Load,
		newLogger:       logging.New,
		openStore:       openStore,
		connectPostgres: db.ConnectPostgres,
		connectRedis:    db.ConnectRedis,
		notify:          signal.Notify,
		run:             Run,
	}
}

var connectMongoFn = db.ConnectMongo

var ensureSchemaFn = func(ctx context.Context, database *mongo.Database, log *zap.Logger) error {
	return store.EnsureSchema(ctx, database, log)
}

// openStore returns the configured document store and a function that
// releases it.
func openStore(ctx context.Context, cfg config.Config, log *zap.Logger) (store.Store, func(), error) {
	if cfg.StoreDriver == config.DriverMemory {
		m := store.NewMemoryStore()
		m.Unique(model.Users, "email")
		return m, func() {}, nil
	}

	client, err := connectMongoFn(cfg)
	if err != nil {
		return nil, nil, err
	}
	database := client.Database(cfg.MongoDatabase)
	if err := ensureSchemaFn(ctx, database, log); err != nil {
		log.Warn("schema setup failed", zap.Error(err))
	}
	closeFn := func() {
		_ = client.Disconnect(context.Background())
	}
	return store.NewMongoStore(database), closeFn, nil
}

func realMain(deps mainDeps) {
	cfg := deps.loadConfig()

	log, err := deps.newLogger(cfg.LogLevel)
	if err != nil {
		log = zap.NewNop()
	}
	defer func() { _ = log.Sync() }()

	docs, closeStore, err := deps.openStore(context.Background(), cfg, log)
	if err != nil {
		log.Error("document store unavailable", zap.String("driver", cfg.StoreDriver), zap.Error(err))
		return
	}
	defer closeStore()

	pg, err := deps.connectPostgres(cfg)
	if err != nil {
		log.Warn("postgres connection failed", zap.Error(err))
		pg = nil
	} else if err := db.EnsurePostgresSchema(context.Background(), pg); err != nil {
		log.Warn("postgres schema setup failed", zap.Error(err))
	}

	rdb := deps.connectRedis(cfg)

	signals := make(chan os.Signal, 1)
	deps.notify(signals, syscall.SIGINT, syscall.SIGTERM)

	backends := Backends{Config: cfg, Store: docs, PG: pg, Redis: rdb, Log: log}
	if err := deps.run(context.Background(), backends, signals, nil); err != nil {
		log.Error("server exited with error", zap.Error(err))
	}
}

type ListenFunc func(app *fiber.App, addr string) error

var defaultListen ListenFunc = func(app *fiber.App, addr string) error {
	return app.Listen(addr)
}

var shutdownFn = func(app *fiber.App, ctx context.Context) error {
	return app.ShutdownWithContext(ctx)
}

// Run starts the HTTP server and waits for termination signals.
func Run(ctx context.Context, b Backends, signals <-chan os.Signal, listen ListenFunc) error {
	if b.Log == nil {
		b.Log = zap.NewNop()
	}
	srv := server.NewServer(b.Config, b.Store, b.PG, b.Redis, b.Log)

	if listen == nil {
		listen = defaultListen
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- listen(srv.App, b.Config.ServerPort)
	}()

	select {
	case <-signals:
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := shutdownFn(srv.App, shutdownCtx); err != nil {
		return err
	}
	_ = srv.Close()
	if b.PG != nil {
		b.PG.Close()
	}
	if b.Redis != nil {
		_ = b.Redis.Close()
	}
	b.Log.Info("server stopped")
	return nil
}
