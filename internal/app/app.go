package app

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/careerbridge-backend/internal/http"
	"github.com/yungbote/careerbridge-backend/internal/observability"
	"github.com/yungbote/careerbridge-backend/internal/platform/logger"
	"github.com/yungbote/careerbridge-backend/internal/realtime"
	"github.com/yungbote/careerbridge-backend/internal/services"
	"github.com/yungbote/careerbridge-backend/internal/temporalx"
	"github.com/yungbote/careerbridge-backend/internal/temporalx/temporalworker"
)

type App struct {
	Log      *logger.Logger
	Cfg      Config
	DB       *gorm.DB
	Clients  Clients
	Repos    Repos
	Services Services
	SSEHub   *realtime.SSEHub

	otelShutdown func(context.Context) error
}

type Options struct {
	// Temporal dials the Temporal frontend; only the worker needs it.
	Temporal bool
}

func New(ctx context.Context, opts Options) (*App, error) {
	cfg := LoadConfig()
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	shutdown := observability.InitOTel(ctx, log, observability.OtelConfig{
		ServiceName: cfg.ServiceName,
		Environment: cfg.Environment,
		Version:     cfg.Version,
	})
	metrics := observability.Init(log)

	clients, err := wireClients(log, clientOptions{temporal: opts.Temporal})
	if err != nil {
		log.Sync()
		return nil, err
	}
	theDB := clients.Postgres.DB()
	metrics.RegisterPostgresStats(log, theDB)

	hub := realtime.NewSSEHub(log)
	reposet := wireRepos(theDB, log)
	serviceset, err := wireServices(theDB, log, cfg, reposet, clients, hub)
	if err != nil {
		clients.Close()
		log.Sync()
		return nil, err
	}

	return &App{
		Log:          log,
		Cfg:          cfg,
		DB:           theDB,
		Clients:      clients,
		Repos:        reposet,
		Services:     serviceset,
		SSEHub:       hub,
		otelShutdown: shutdown,
	}, nil
}

// Migrate creates tables and the partial indexes gorm tags cannot express.
func (a *App) Migrate() error {
	return a.Clients.Postgres.AutoMigrateAll()
}

// Serve runs the HTTP API until ctx is canceled. With a Redis bus configured,
// messages published on any instance are fanned into this instance's hub.
func (a *App) Serve(ctx context.Context) error {
	if a.Clients.SSEBus != nil {
		if err := a.Clients.SSEBus.StartForwarder(ctx, a.SSEHub.Broadcast); err != nil {
			return fmt.Errorf("start SSE forwarder: %w", err)
		}
	}
	observability.Current().StartServer(ctx, a.Log, a.Cfg.MetricsAddr)

	srv := http.NewServer(wireRouterConfig(a.Log, a.Cfg, a.Services, a.SSEHub, pinger{a.DB}))
	a.Log.Info("Starting HTTP server", "addr", a.Cfg.Addr())
	return srv.RunContext(ctx, a.Cfg.Addr(), a.Cfg.ShutdownTimeout)
}

// RunWorker polls the Temporal task queue and keeps the weekly reminder
// schedule registered until ctx is canceled.
func (a *App) RunWorker(ctx context.Context) error {
	if a.Clients.Temporal == nil {
		return fmt.Errorf("worker requires TEMPORAL_ADDRESS")
	}
	observability.Current().StartServer(ctx, a.Log, a.Cfg.MetricsAddr)
	runner, err := temporalworker.NewRunner(a.Log, a.Clients.Temporal, temporalx.LoadConfig(), a.Services.Reminders)
	if err != nil {
		return err
	}
	if err := runner.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	a.Log.Info("Temporal worker stopping")
	return nil
}

// RemindOnce runs a single sweep in-process, bypassing Temporal.
func (a *App) RemindOnce(ctx context.Context) (services.ReminderSummary, error) {
	return a.Services.Reminders.Sweep(ctx)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	a.Clients.Close()
	if a.otelShutdown != nil {
		_ = a.otelShutdown(context.Background())
	}
	if m := observability.Current(); m != nil {
		_ = m.Shutdown(context.Background())
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
