package routes

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/identra/identra/internal/blob"
	"github.com/identra/identra/internal/config"
	"github.com/identra/identra/internal/identity"
	"github.com/identra/identra/internal/kyc"
	"github.com/identra/identra/internal/middleware"
	"github.com/identra/identra/internal/provider"
	"github.com/identra/identra/internal/session"
)

// Deps aggregates shared dependencies required to wire routes. Identities,
// Blobs and Providers may be pre-built (tests); otherwise they are derived
// from DB, the S3 config and the provider credentials.
type Deps struct {
	Cfg        config.Config
	DB         *pgxpool.Pool
	Cache      *redis.Client
	Blobs      blob.Store
	Identities identity.Repository
	Providers  *provider.Registry
	Logger     *slog.Logger
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	if d.Cache == nil {
		return fmt.Errorf("redis is required for sessions")
	}
	if !isDev(d.Cfg.AppEnv) {
		if d.DB == nil && d.Identities == nil {
			return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
		if d.Blobs == nil {
			return fmt.Errorf("blob storage is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}

	identityRepo := d.Identities
	if identityRepo == nil {
		if d.DB != nil {
			identityRepo = identity.NewPostgresRepository(d.DB)
		} else {
			identityRepo = identity.NewMemoryRepository()
		}
	}
	blobs := d.Blobs
	if blobs == nil {
		blobs = blob.NewMemoryStore()
	}
	registry := d.Providers
	if registry == nil {
		registry = ProviderRegistry(d.Cfg)
	}

	ids := identity.NewService(identityRepo)
	sessions := session.NewManager(d.Cache, d.Cfg.SessionTTL)
	intake := kyc.NewIntake(identityRepo, blobs)

	// Middlewares
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} -  ${latency} ${method} ${path}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
	}))
	app.Use(session.LoadPrincipal(sessions, identityRepo, d.Logger))

	RegisterHealthRoutes(app, d)

	// Unauthenticated landing page.
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"login":     "/login",
			"register":  "/register",
			"providers": registry.Names(),
		})
	})

	rateLimiter := middleware.LoginRateLimit(d.Cache, 5)
	RegisterAuthRoutes(app, ids, sessions, d.Cfg, rateLimiter, d.Logger)
	RegisterOAuthRoutes(app, registry, ids, sessions, d.Cfg, d.Logger)

	// The gate is attached per protected route rather than as a catch-all
	// group so unmatched paths still get a plain 404.
	gate := kyc.Gate()
	RegisterKYCRoutes(app, intake, gate, d.Logger)
	RegisterProfileRoutes(app, gate)
	RegisterLogoutRoute(app, sessions, gate, d.Logger)

	return nil
}

// ProviderRegistry wires an adapter for every provider with configured
// credentials.
func ProviderRegistry(cfg config.Config) *provider.Registry {
	var adapters []provider.Adapter
	if cfg.Google.ID != "" {
		adapters = append(adapters, provider.NewGoogle(
			cfg.Google.ID, cfg.Google.Secret, cfg.CallbackURL("google"), cfg.ProviderTimeout))
	}
	if cfg.Facebook.ID != "" {
		adapters = append(adapters, provider.NewFacebook(
			cfg.Facebook.ID, cfg.Facebook.Secret, cfg.CallbackURL("facebook"), cfg.ProviderTimeout))
	}
	if cfg.Line.ID != "" {
		adapters = append(adapters, provider.NewLine(
			cfg.Line.ID, cfg.Line.Secret, cfg.CallbackURL("line"), cfg.ProviderTimeout))
	}
	return provider.NewRegistry(adapters...)
}

func isDev(env string) bool {
	switch strings.ToLower(env) {
	case "dev", "development", "local":
		return true
	default:
		return false
	}
}
