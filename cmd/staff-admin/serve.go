package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/staff-admin/internal/api/http"
	"github.com/spec-kit/staff-admin/internal/api/http/handlers"
	"github.com/spec-kit/staff-admin/internal/auth"
	"github.com/spec-kit/staff-admin/internal/backend"
	"github.com/spec-kit/staff-admin/internal/config"
	"github.com/spec-kit/staff-admin/internal/events"
	"github.com/spec-kit/staff-admin/internal/forms"
	"github.com/spec-kit/staff-admin/internal/observability"
	"github.com/spec-kit/staff-admin/internal/persistence"
	"github.com/spec-kit/staff-admin/internal/repository"
	"github.com/spec-kit/staff-admin/internal/service"
	"github.com/spec-kit/staff-admin/internal/session"
	"github.com/spec-kit/staff-admin/internal/web"
	"github.com/spec-kit/staff-admin/internal/worker"
	"github.com/spec-kit/staff-admin/migrations"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := bootstrap()
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, logger)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	var metrics *observability.Metrics
	if cfg.Metrics.Enabled {
		metrics = observability.NewMetrics("staff_admin")
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	checks := map[string]handlers.Pinger{}
	if redis != nil {
		checks["redis"] = redis
	}

	var store session.Store
	if cfg.Session.Store == config.StoreRedis {
		store = session.NewRedisStore(redis.ClientHandle())
	} else {
		store = session.NewMemoryStore()
	}
	checks["session_store"] = store

	api, closeBackend, err := buildBackend(ctx, cfg, metrics, logger)
	if err != nil {
		return err
	}
	defer closeBackend()
	checks["backend"] = api

	limiter, err := auth.NewSignInLimiter(cfg.RateLimit, redis.ClientHandle(), logger)
	if err != nil {
		return fmt.Errorf("init sign-in limiter: %w", err)
	}

	dispatcher := events.NewInMemoryDispatcher()
	notifications := service.NewNotificationService(dispatcher, logger)
	webhook := worker.StartNotificationWorker(ctx, notifications, cfg.Notification, logger)
	if webhook != nil {
		defer webhook.Stop()
	}

	validator := forms.NewValidator()
	signIn := forms.NewSignIn(forms.SignInDependencies{
		Auth:       api,
		Store:      store,
		Limiter:    limiter,
		Validator:  validator,
		Dispatcher: dispatcher,
		Metrics:    metrics,
		Logger:     logger,
		SessionTTL: cfg.Session.TTL,
	})
	staffForms := forms.NewStaffForms(forms.StaffFormDependencies{
		Units:      api,
		Staff:      api,
		Store:      store,
		Validator:  validator,
		Dispatcher: dispatcher,
		Metrics:    metrics,
		Logger:     logger,
		NonceTTL:   cfg.Session.NonceTTL,
	})

	cookies := auth.CookieConfig{Name: cfg.Session.CookieName, Secure: cfg.Session.CookieSecure}
	metricsPath := ""
	if cfg.Metrics.Enabled {
		metricsPath = cfg.Metrics.Path
	}

	app := httptransport.NewServer(httptransport.ServerConfig{
		AppName:        cfg.App.Name,
		RequestTimeout: cfg.App.RequestTimeout(),
		Logger:         logger,
		Metrics:        metrics,
		Views:          web.NewViews(),
		Routes: httptransport.RouteConfig{
			Health:      handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, checks),
			SignIn:      handlers.NewSignInHandler(signIn, cookies),
			Staff:       handlers.NewStaffHandler(staffForms, api, 0),
			Sessions:    auth.NewSessionMiddleware(store, cookies, logger),
			MetricsPath: metricsPath,
		},
	})

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening",
			zap.String("addr", cfg.App.Addr()),
			zap.String("backend_mode", cfg.Backend.Mode),
			zap.String("session_store", cfg.Session.Store))
		errCh <- app.Listen(cfg.App.Addr())
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("fiber listen: %w", err)
	case <-ctx.Done():
		logger.Info("shutting down")
	}
	return app.ShutdownWithTimeout(shutdownTimeout)
}

// buildBackend returns the staff API selected by BACKEND_MODE and a cleanup
// func releasing its resources.
func buildBackend(ctx context.Context, cfg *config.Config, metrics *observability.Metrics, logger *zap.Logger) (backend.Backend, func(), error) {
	if cfg.Backend.Mode != config.BackendPostgres {
		client, err := backend.NewClient(cfg.Backend, metrics, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("init backend client: %w", err)
		}
		return client, func() {}, nil
	}

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("connect postgres: %w", err)
	}
	if cfg.Postgres.RunMigrations {
		if _, err := persistence.RunMigrations(ctx, pg.Pool, migrations.FS, logger); err != nil {
			pg.Close()
			return nil, nil, fmt.Errorf("run migrations: %w", err)
		}
	}

	authService := service.NewAuthService(cfg.Auth, repository.NewAccountRepository(pg.Pool))
	staffService := service.NewStaffService(service.StaffDependencies{
		UnitRepo:  repository.NewUnitRepository(pg.Pool),
		StaffRepo: repository.NewStaffRepository(pg.Pool),
	})
	return service.NewLocalBackend(authService, staffService, pg.Ping), pg.Close, nil
}
