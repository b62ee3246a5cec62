// Package app wires the stores, managers and the assistant orchestrator into
// one session object and manages their lifecycle.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/edgard/wonderfulgo/internal/assistant"
	"github.com/edgard/wonderfulgo/internal/chat"
	"github.com/edgard/wonderfulgo/internal/clock"
	"github.com/edgard/wonderfulgo/internal/config"
	"github.com/edgard/wonderfulgo/internal/database"
	"github.com/edgard/wonderfulgo/internal/favorites"
	"github.com/edgard/wonderfulgo/internal/metrics"
	"github.com/edgard/wonderfulgo/internal/plan"
	"github.com/edgard/wonderfulgo/internal/profile"
	"github.com/edgard/wonderfulgo/internal/scheduler"
)

// App holds every component of a session.
type App struct {
	logger *slog.Logger
	cfg    *config.Config
	db     *sqlx.DB
	store  database.Store

	Profiles  *profile.Repository
	Chats     *chat.History
	Plans     *plan.History
	Favorites *favorites.Registry
	Projector *favorites.Projector
	Assistant *assistant.Orchestrator
	Scheduler *scheduler.Scheduler

	registry *prometheus.Registry

	mu        sync.Mutex
	view      favorites.View
	listeners []func(favorites.View)
}

// Option customises component construction, mainly for tests.
type Option func(*options)

type options struct {
	transport assistant.Transport
	clock     clock.Clock
}

// WithTransport replaces the HTTP transport to the assistant service.
func WithTransport(t assistant.Transport) Option {
	return func(o *options) { o.transport = t }
}

// WithClock sets the clock used for every timestamp.
func WithClock(c clock.Clock) Option {
	return func(o *options) { o.clock = c }
}

// Open connects to the configured SQLite database and builds the session on top of it.
func Open(cfg *config.Config, logger *slog.Logger, opts ...Option) (*App, error) {
	db, err := database.Open(cfg.Database.Path, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	a, err := New(cfg, database.NewStore(db, logger), logger, opts...)
	if err != nil {
		database.Close(db, logger)
		return nil, err
	}
	a.db = db
	return a, nil
}

// New builds a session on an existing store.
func New(cfg *config.Config, store database.Store, logger *slog.Logger, opts ...Option) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	o := options{clock: clock.System}
	for _, opt := range opts {
		opt(&o)
	}

	if o.transport == nil {
		t, err := assistant.NewHTTPTransport(cfg.Assistant.BaseURL, cfg.Assistant.Timeout)
		if err != nil {
			return nil, err
		}
		o.transport = t
	}

	a := &App{
		logger:   logger.With("component", "app"),
		cfg:      cfg,
		store:    store,
		registry: prometheus.NewRegistry(),
	}

	a.Profiles = profile.NewRepository(store, logger, cfg.Profile.KnownBreeds)
	a.Chats = chat.NewHistory(store, logger, chat.WithClock(o.clock))
	a.Plans = plan.NewHistory(store, logger)
	a.Favorites = favorites.NewRegistry(store, o.clock, logger)
	a.Projector = favorites.NewProjector(a.Favorites)

	assistantOpts := []assistant.Option{
		assistant.WithLogger(logger),
		assistant.WithClock(o.clock),
		assistant.WithThrottledStatus(cfg.Assistant.ThrottledStatus),
		assistant.WithMessages(assistant.Messages(cfg.Messages)),
		assistant.WithMetrics(metrics.New(a.registry)),
	}
	if cfg.Assistant.SharedGuard {
		assistantOpts = append(assistantOpts, assistant.WithSharedGuard())
	}
	a.Assistant = assistant.New(a.Profiles, a.Chats, refreshingPlans{History: a.Plans, refresh: a.refresh}, o.transport, assistantOpts...)

	var maintainer database.Maintainer = noopMaintainer{}
	if m, ok := store.(database.Maintainer); ok {
		maintainer = m
	}
	sched, err := scheduler.New(logger, &cfg.Scheduler, scheduler.RegisterTasks(scheduler.TaskDeps{
		Logger: logger,
		Store:  maintainer,
	}))
	if err != nil {
		return nil, err
	}
	a.Scheduler = sched

	a.Favorites.OnChange(func() { a.refresh(context.Background()) })
	a.refresh(context.Background())
	return a, nil
}

// Close releases the database connection.
func (a *App) Close() {
	if a.db != nil {
		database.Close(a.db, a.logger)
	}
}

// Gatherer exposes the session's metrics.
func (a *App) Gatherer() prometheus.Gatherer {
	return a.registry
}

// Run starts the scheduler and, when metricsAddr is set, a /metrics
// endpoint, and blocks until ctx is cancelled or a component fails.
func (a *App) Run(ctx context.Context, metricsAddr string) error {
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := a.Scheduler.Start(gCtx); err != nil {
			return fmt.Errorf("failed to start scheduler: %w", err)
		}
		<-gCtx.Done()
		a.logger.Info("Shutdown signal received, stopping scheduler")
		if err := a.Scheduler.Stop(); err != nil {
			a.logger.Error("Error stopping scheduler", "error", err)
		}
		return nil
	})

	if metricsAddr != "" {
		srv := &http.Server{
			Addr:              metricsAddr,
			Handler:           a.MetricsHandler(),
			ReadHeaderTimeout: 5 * time.Second,
		}
		g.Go(func() error {
			a.logger.Info("Serving metrics", "addr", metricsAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server failed: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gCtx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	err := g.Wait()
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// MetricsHandler serves the session's metrics in the Prometheus format.
func (a *App) MetricsHandler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}))
	return mux
}

// Reset erases every persisted key and refreshes derived state.
func (a *App) Reset(ctx context.Context) error {
	if err := a.store.Clear(ctx); err != nil {
		return fmt.Errorf("failed to reset data: %w", err)
	}
	a.logger.InfoContext(ctx, "All data cleared")
	a.refresh(ctx)
	return nil
}

// refreshingPlans recomputes the projection after every stored plan.
type refreshingPlans struct {
	*plan.History
	refresh func(context.Context)
}

func (p refreshingPlans) Prepend(ctx context.Context, pl plan.Plan) error {
	if err := p.History.Prepend(ctx, pl); err != nil {
		return err
	}
	p.refresh(ctx)
	return nil
}

type noopMaintainer struct{}

func (noopMaintainer) RunSQLMaintenance(context.Context) error { return nil }
