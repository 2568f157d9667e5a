package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/p-n-ai/pai-quest/internal/api"
	"github.com/p-n-ai/pai-quest/internal/curriculum"
	"github.com/p-n-ai/pai-quest/internal/notify"
	"github.com/p-n-ai/pai-quest/internal/platform/cache"
	"github.com/p-n-ai/pai-quest/internal/platform/config"
	"github.com/p-n-ai/pai-quest/internal/platform/database"
	"github.com/p-n-ai/pai-quest/internal/platform/logging"
	"github.com/p-n-ai/pai-quest/internal/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(logging.New(os.Stdout, cfg.Log.Level, cfg.Log.Format))

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	// Graceful shutdown on SIGTERM/SIGINT.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	app, err := newApp(ctx, cfg)
	if err != nil {
		slog.Error("failed to start", "error", err)
		os.Exit(1)
	}
	defer app.close()

	go app.sessions.Run(ctx, cfg.Session.SweepInterval)

	srv := &http.Server{
		Addr:        cfg.Server.Addr(),
		Handler:     app.handler,
		ReadTimeout: 10 * time.Second,
		// No WriteTimeout: notification streams stay open.
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
}

// app wires the service together.
type app struct {
	handler  http.Handler
	sessions *session.Manager
	db       *database.DB
	cache    *cache.Cache
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	a := &app{}
	checks := map[string]api.Checker{}
	var events session.EventLogger = session.NopEventLogger{}

	if cfg.Database.Enabled() {
		db, err := database.New(ctx, cfg.Database.URL, cfg.Database.MaxConns, cfg.Database.MinConns)
		if err != nil {
			return nil, err
		}
		a.db = db
		if err := db.Migrate(ctx); err != nil {
			a.close()
			return nil, err
		}
		checks["database"] = db.HealthCheck
		events = session.NewPostgresEventLogger(db.Pool)
	}

	if cfg.Cache.Enabled() {
		c, err := cache.New(ctx, cfg.Cache.URL)
		if err != nil {
			a.close()
			return nil, err
		}
		a.cache = c
		checks["cache"] = c.HealthCheck
	}

	yamlCatalog, err := loadCatalog(cfg.Catalog.Path)
	if err != nil {
		a.close()
		return nil, err
	}

	var repo curriculum.Repository = yamlCatalog
	if cfg.Catalog.Source == config.CatalogSourcePostgres {
		pg, err := curriculum.NewPostgresRepository(a.db.Pool)
		if err != nil {
			a.close()
			return nil, err
		}
		repo = pg
	}
	if a.cache != nil {
		repo = curriculum.NewCachedRepository(repo, a.cache, cfg.Cache.TTL)
	}

	hub := notify.NewHub()
	mgr, err := session.NewManager(session.ManagerConfig{
		Catalog:  repo,
		Events:   events,
		Notifier: hub,
		IdleTTL:  cfg.Session.IdleTTL,
	})
	if err != nil {
		a.close()
		return nil, err
	}
	a.sessions = mgr

	a.handler = api.New(api.Config{
		Sessions:       mgr,
		Hub:            hub,
		Skills:         yamlCatalog.Skills(),
		Checks:         checks,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
	})

	slog.Info("service wired",
		"catalog_source", cfg.Catalog.Source,
		"database", cfg.Database.Enabled(),
		"cache", cfg.Cache.Enabled(),
	)
	return a, nil
}

// loadCatalog reads the YAML catalog from dir, or the built-in one when dir
// is empty. Skill trees always come from YAML.
func loadCatalog(dir string) (*curriculum.Catalog, error) {
	if dir == "" {
		return curriculum.LoadBuiltin()
	}
	c, err := curriculum.LoadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", dir, err)
	}
	return c, nil
}

func (a *app) close() {
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			slog.Warn("closing cache", "error", err)
		}
	}
	if a.db != nil {
		a.db.Close()
	}
}
