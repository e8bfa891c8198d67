package control

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/vietddude/upgradewatch/internal/alert/slack"
	"github.com/vietddude/upgradewatch/internal/core/config"
	"github.com/vietddude/upgradewatch/internal/health"
	"github.com/vietddude/upgradewatch/internal/infra/chain/cosmos"
	redisclient "github.com/vietddude/upgradewatch/internal/infra/redis"
	"github.com/vietddude/upgradewatch/internal/infra/storage"
	"github.com/vietddude/upgradewatch/internal/infra/storage/memory"
	"github.com/vietddude/upgradewatch/internal/infra/storage/sqldb"
	"github.com/vietddude/upgradewatch/internal/monitor"
)

// App manages the lifecycle of every chain watcher plus the shared
// infrastructure: ledger storage, metrics registry, redis journal, health
// server, supervisor.
type App struct {
	cfg          *config.AppConfig
	watchers     map[string]*monitor.Watcher
	supervisor   *Supervisor
	healthServer *health.Server
	registry     *prometheus.Registry
	db           *sqldb.DB
	redisClient  *redisclient.Client
	log          *slog.Logger
}

// NewApp creates an App with all dependencies initialized.
func NewApp(cfg *config.AppConfig) (*App, error) {
	ctx := context.Background()

	// 1. Ledger storage: postgres > sqlite > memory.
	var ledger storage.LedgerRepository
	var db *sqldb.DB
	var err error
	switch {
	case cfg.Database.URL != "":
		db, err = sqldb.NewPostgres(ctx, cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to init db: %w", err)
		}
		ledger = sqldb.NewLedgerRepo(db)
		slog.Info("Using PostgreSQL ledger")
	case cfg.Storage.Path != "":
		db, err = sqldb.NewSQLite(ctx, cfg.Storage.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to init db: %w", err)
		}
		ledger = sqldb.NewLedgerRepo(db)
		slog.Info("Using sqlite ledger", "path", cfg.Storage.Path)
	default:
		ledger = memory.NewLedgerRepo()
		slog.Warn("No storage configured, ledger state will not survive restarts")
	}

	// 2. Shared metrics registry, injected into every watcher.
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := monitor.NewMetrics(registry)

	// 3. Optional failed-alert journal.
	var redisClient *redisclient.Client
	if cfg.Redis.URL != "" {
		redisClient, err = redisclient.NewClient(cfg.Redis)
		if err != nil {
			slog.Warn("Failed to connect to Redis, alert journal disabled", "error", err)
			redisClient = nil
		}
	}
	var journal monitor.AlertJournal
	var healthJournal health.Journal
	if redisClient != nil {
		journal = redisClient
		healthJournal = redisClient
	}

	// 4. One watcher per chain.
	watchers := make(map[string]*monitor.Watcher, len(cfg.Chains))
	statuses := make(map[string]health.WatcherStatus, len(cfg.Chains))
	intervals := make(map[string]time.Duration, len(cfg.Chains))
	for _, chainCfg := range cfg.Chains {
		client := cosmos.NewClient(chainCfg.Endpoint, chainCfg.RPC, chainCfg.RequestTimeout)
		sink := slack.NewWebhook(chainCfg.Webhook, chainCfg.RequestTimeout)

		w := monitor.NewWatcher(monitor.Config{
			ChainID:        chainCfg.ChainID,
			Client:         client,
			Ledger:         ledger,
			Sink:           sink,
			Metrics:        metrics,
			Journal:        journal,
			Interval:       chainCfg.Interval,
			ReminderBlocks: chainCfg.ReminderBlocks,
			OnQueryError:   chainCfg.OnQueryError,
		})
		watchers[chainCfg.ChainID] = w
		statuses[chainCfg.ChainID] = w
		intervals[chainCfg.ChainID] = chainCfg.Interval
	}

	// 5. Health + metrics exposition.
	healthMon := health.NewMonitor(statuses, intervals, healthJournal)
	healthServer := health.NewServer(healthMon, registry, cfg.Server.Port)

	return &App{
		cfg:          cfg,
		watchers:     watchers,
		supervisor:   NewSupervisor(slog.Default()),
		healthServer: healthServer,
		registry:     registry,
		db:           db,
		redisClient:  redisClient,
		log:          slog.Default(),
	}, nil
}

// Start starts the health server and all chain watchers.
func (a *App) Start(ctx context.Context) error {
	go func() {
		if err := a.healthServer.Start(); err != nil && ctx.Err() == nil {
			a.log.Error("Health server failed", "error", err)
		}
	}()

	for id, w := range a.watchers {
		a.log.Info("Starting watcher", "chain", id)
		a.supervisor.Go(ctx, id, a.restartBackoff(id), w.Start)
	}

	return nil
}

// Stop stops the watchers and shared infrastructure.
func (a *App) Stop(ctx context.Context) error {
	a.log.Info("Stopping watchers...")

	for _, w := range a.watchers {
		_ = w.Stop()
	}

	// Wait for supervised loops, bounded by the shutdown context.
	done := make(chan struct{})
	go func() {
		a.supervisor.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		a.log.Warn("Timed out waiting for watchers to stop")
	}

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.log.Warn("Failed to close Redis", "error", err)
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.log.Warn("Failed to close database", "error", err)
		}
	}

	return a.healthServer.Stop(ctx)
}

func (a *App) restartBackoff(chainID string) time.Duration {
	for _, c := range a.cfg.Chains {
		if c.ChainID == chainID {
			return c.RestartBackoff
		}
	}
	return 0
}
