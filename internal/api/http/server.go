package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/staff-admin/internal/observability"
	"github.com/spec-kit/staff-admin/internal/web"
)

// ServerConfig holds what NewServer needs beyond the routes.
type ServerConfig struct {
	AppName        string
	RequestTimeout time.Duration
	Logger         *zap.Logger
	Metrics        *observability.Metrics
	Views          fiber.Views
	Routes         RouteConfig
}

// NewServer builds the Fiber app with views, middlewares and routes.
func NewServer(cfg ServerConfig) *fiber.App {
	views := cfg.Views
	if views == nil {
		views = web.NewViews()
	}
	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		Views:        views,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	})

	RegisterMiddlewares(app, cfg.Logger, cfg.Metrics, cfg.Routes.Sessions, cfg.RequestTimeout)
	if cfg.Routes.Metrics == nil {
		cfg.Routes.Metrics = cfg.Metrics
	}
	RegisterRoutes(app, cfg.Routes)
	return app
}
