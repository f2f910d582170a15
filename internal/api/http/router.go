package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/spec-kit/staff-admin/internal/api/http/handlers"
	"github.com/spec-kit/staff-admin/internal/auth"
	"github.com/spec-kit/staff-admin/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health      *handlers.HealthHandler
	SignIn      *handlers.SignInHandler
	Staff       *handlers.StaffHandler
	Sessions    *auth.SessionMiddleware
	Metrics     *observability.Metrics
	MetricsPath string
}

// RegisterRoutes wires HTTP routes. Session checks are attached per route so
// probes, metrics and the sign-in page stay public.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil && cfg.MetricsPath != "" {
		app.Get(cfg.MetricsPath, adaptor.HTTPHandler(cfg.Metrics.Handler()))
	}

	app.Get(auth.SignInPath, cfg.Sessions.RedirectIfAuthenticated, cfg.SignIn.Show)
	app.Post(auth.SignInPath, cfg.SignIn.Submit)
	app.Post("/sign-out", cfg.Sessions.Handle, cfg.SignIn.SignOut)

	app.Get(auth.HomePath, cfg.Sessions.Handle, cfg.Staff.List)
	app.Get("/staff/new", cfg.Sessions.Handle, cfg.Staff.New)
	app.Get("/staff/:id/edit", cfg.Sessions.Handle, cfg.Staff.Edit)
	app.Post("/staff", cfg.Sessions.Handle, cfg.Staff.Create)
	app.Post("/staff/:id", cfg.Sessions.Handle, cfg.Staff.Update)
}
