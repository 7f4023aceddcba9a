package server

import (
	"github.com/Davis-J7/SocialMedia-Page/internal/audit"
	"github.com/Davis-J7/SocialMedia-Page/internal/auth"
	"github.com/Davis-J7/SocialMedia-Page/internal/config"
	"github.com/Davis-J7/SocialMedia-Page/internal/db"
	"github.com/Davis-J7/SocialMedia-Page/internal/report"
	"github.com/Davis-J7/SocialMedia-Page/internal/social"
	"github.com/Davis-J7/SocialMedia-Page/internal/store"
	"github.com/Davis-J7/SocialMedia-Page/internal/stream"
	"github.com/Davis-J7/SocialMedia-Page/internal/users"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Server struct {
	App    *fiber.App
	Cfg    config.Config
	Store  store.Store
	DB     *pgxpool.Pool
	Redis  *redis.Client
	Stream *stream.Hub
	Log    *zap.Logger
}

// NewServer wires the dashboard API. docs is the document store; pg and
// redisClient may be nil, in which case admin auth, the audit table, report
// caching and cross-instance streaming are unavailable.
func NewServer(cfg config.Config, docs store.Store, pg *pgxpool.Pool, redisClient *redis.Client, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	app := fiber.New()
	app.Use(recover.New())
	app.Use(logger.New())

	s := &Server{
		App:    app,
		Cfg:    cfg,
		Store:  docs,
		DB:     pg,
		Redis:  redisClient,
		Stream: stream.NewHub(redisClient, log),
		Log:    log,
	}

	registerRoutes(s)
	return s
}

// Close releases background resources owned by the server.
func (s *Server) Close() error {
	return s.Stream.Close()
}

func (s *Server) querier() db.Querier {
	if s.DB == nil {
		return nil
	}
	return s.DB
}

func registerRoutes(s *Server) {
	s.App.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	jwtMiddleware := auth.JWTMiddleware(s.Cfg.JWTSecret)
	adminOnly := auth.RequireRole(auth.RoleAdmin)

	auditSvc := audit.NewService(s.querier(), s.Log)

	reportSvc := report.NewService(s.Store, s.Redis, s.Cfg.ReportCacheTTL, s.Log)

	auth.RegisterRoutes(s.App.Group("/auth"), auth.NewService(s.Cfg.JWTSecret, s.querier()), jwtMiddleware, adminOnly)
	users.RegisterRoutes(s.App.Group("/users"), users.NewService(s.Store, auditSvc, s.Stream, reportSvc), jwtMiddleware, adminOnly)
	social.RegisterRoutes(s.App, social.NewService(s.Store, auditSvc, s.Stream, reportSvc), jwtMiddleware, adminOnly)
	report.RegisterRoutes(s.App.Group("/reports"), reportSvc, jwtMiddleware)
	audit.RegisterRoutes(s.App.Group("/audit"), auditSvc, jwtMiddleware, adminOnly)
	stream.RegisterRoutes(s.App.Group("/stream"), s.Stream)
}
