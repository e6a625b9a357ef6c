package routes

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/swyft-bank/swyft/internal/account"
	"github.com/swyft-bank/swyft/internal/auth"
	"github.com/swyft-bank/swyft/internal/config"
	"github.com/swyft-bank/swyft/internal/identity"
	"github.com/swyft-bank/swyft/internal/ledger"
	"github.com/swyft-bank/swyft/internal/middleware"
	"github.com/swyft-bank/swyft/internal/notification"
	"github.com/swyft-bank/swyft/internal/transaction"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	// Enforce DB/Redis presence outside of dev, even though main also checks.
	if !d.Cfg.IsDev() {
		if d.DB == nil {
			return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
		if d.Cache == nil {
			return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
	}

	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.Audit(d.Logger))
	if d.Cache != nil {
		app.Use(middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger))
	}

	RegisterHealthRoutes(app, d)

	var store ledger.Store
	if d.DB != nil {
		store = ledger.NewPostgresStore(d.DB)
	} else {
		store = ledger.NewInMemory()
	}

	var users identity.Repository
	if d.DB != nil {
		users = identity.NewPostgresRepository(d.DB)
	} else {
		users = identity.NewMemoryRepository()
	}

	identitySvc := identity.NewService(users)
	authSvc := auth.NewService(d.Cfg, users)
	recorder := transaction.NewRecorder(store)
	notifier := notification.NewLoggerNotifier(d.Logger)
	accountSvc := account.NewService(store, recorder, authSvc, notifier)

	authHandler := auth.NewHandler(authSvc)
	accountHandler := account.NewHandler(accountSvc)
	txHandler := transaction.NewHandler(recorder, store)

	api := app.Group("/api/v1")
	api.Get("/ping", func(c *fiber.Ctx) error {
		reqID, _ := c.Locals("X-Request-ID").(string)
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": reqID,
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	// Public routes
	RegisterIdentityRoutes(api, identitySvc, d.Logger)
	RegisterAuthRoutes(api, authHandler)

	// Protected routes
	protected := api.Group("", middleware.JWTAuth(d.Cfg, users))
	RegisterAccountRoutes(protected, accountHandler, txHandler)

	return nil
}
