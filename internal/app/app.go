package app

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/harryc904/Studio/internal/data/db"
	apphttp "github.com/harryc904/Studio/internal/http"
	"github.com/harryc904/Studio/internal/observability"
	"github.com/harryc904/Studio/internal/platform/logger"
)

type App struct {
	Log      *logger.Logger
	Cfg      Config
	Pools    *db.Pools
	Clients  Clients
	Metrics  *observability.Metrics
	Repos    Repos
	Services Services
	Server   *apphttp.Server

	shutdownTracing func(context.Context) error
}

// New opens every backing store and wires the HTTP server. Callers must Close the App.
func New(ctx context.Context, cfg Config, log *logger.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	pools, err := OpenStores(cfg, log)
	if err != nil {
		return nil, err
	}
	a := &App{Log: log, Cfg: cfg, Pools: pools}
	if cfg.DB.AutoMigrate {
		if err := db.AutoMigrateAll(pools, log); err != nil {
			a.Close(ctx)
			return nil, fmt.Errorf("automigrate: %w", err)
		}
	}

	a.Clients, err = wireClients(ctx, log, cfg)
	if err != nil {
		a.Close(ctx)
		return nil, err
	}
	a.shutdownTracing = observability.InitOTel(ctx, log, cfg.Otel)
	a.Metrics = observability.NewMetrics(cfg.Metrics)

	a.Repos = wireRepos(pools.Primary, pools.Business, log)
	aggs := wireAggregates(pools.Primary, log, cfg, a.Metrics, a.Repos)
	a.Services = wireServices(pools.Business, log, cfg, a.Metrics, a.Repos, a.Clients, aggs)

	handlers := wireHandlers(log, a.Services, a.readinessChecks())
	middleware := wireMiddleware(log, a.Services)
	a.Server = wireServer(log, cfg, a.Metrics, handlers, middleware)
	return a, nil
}

// OpenStores opens both database pools without wiring anything else.
func OpenStores(cfg Config, log *logger.Logger) (*db.Pools, error) {
	pools, err := db.OpenPools(cfg.DB.Primary, cfg.DB.Business, log)
	if err != nil {
		return nil, fmt.Errorf("init databases: %w", err)
	}
	return pools, nil
}

// Run serves HTTP and the metric collectors until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return errors.New("app not initialized")
	}
	g, ctx := errgroup.WithContext(ctx)

	a.Metrics.StartDBCollector(ctx, a.Log, "primary", a.Pools.Primary)
	if !a.Pools.Shared() {
		a.Metrics.StartDBCollector(ctx, a.Log, "business", a.Pools.Business)
	}
	if a.Clients.Redis != nil {
		a.Metrics.StartRedisCollector(ctx, a.Log, a.Clients.Redis)
	}

	g.Go(func() error {
		a.Log.Info("HTTP server listening", "addr", a.Cfg.Server.Addr)
		return a.Server.Run(ctx, a.Cfg.Server.ShutdownGrace)
	})
	return g.Wait()
}

func (a *App) Close(ctx context.Context) {
	if a == nil {
		return
	}
	if a.shutdownTracing != nil {
		if err := a.shutdownTracing(ctx); err != nil {
			a.Log.Warn("tracing shutdown failed", "error", err)
		}
	}
	if err := a.Clients.Close(); err != nil {
		a.Log.Warn("redis close failed", "error", err)
	}
	if err := a.Pools.Close(); err != nil {
		a.Log.Warn("database close failed", "error", err)
	}
	a.Log.Sync()
}
