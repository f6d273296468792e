package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/atlas-ai-architect/p2palertbot/internal/config"
	"github.com/atlas-ai-architect/p2palertbot/internal/delivery/httpapi"
	"github.com/atlas-ai-architect/p2palertbot/internal/delivery/telegram"
	"github.com/atlas-ai-architect/p2palertbot/internal/domain"
	"github.com/atlas-ai-architect/p2palertbot/internal/infra/db"
	"github.com/atlas-ai-architect/p2palertbot/internal/infra/log"
	"github.com/atlas-ai-architect/p2palertbot/internal/infra/nostr"
	"github.com/atlas-ai-architect/p2palertbot/internal/usecase"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

type App struct {
	cfg       config.Config
	relays    []*nostr.Relay
	pipeline  *usecase.Pipeline
	dedup     *usecase.Deduplicator
	orders    domain.OrderRepository
	counters  domain.CounterRepository
	health    *httpapi.HealthHandler
	cron      *cron.Cron
	logger    *zap.Logger
	cleanupFn func() error
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	logger, err := log.NewLogger(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return nil, err
	}

	location, err := time.LoadLocation(cfg.CounterTimezone)
	if err != nil {
		return nil, fmt.Errorf("invalid counter timezone %q: %w", cfg.CounterTimezone, err)
	}

	dbConn, err := db.Open(cfg, logger)
	if err != nil {
		return nil, err
	}

	userRepo := db.NewUserRepository(dbConn)
	alertRepo := db.NewAlertRepository(dbConn)
	orderRepo := db.NewOrderRepository(dbConn)
	counterRepo := db.NewCounterRepository(dbConn)

	api, err := telegram.NewAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, err
	}
	notifier := telegram.NewNotifier(api, logger)

	dedup := usecase.NewDeduplicator(cfg.OrderRetention, logger)
	throttle := usecase.NewThrottle(counterRepo, cfg.FreeDailyCap, location)
	pipeline := usecase.NewPipeline(
		cfg.IngestQueueSize,
		cfg.PipelineWorkers,
		dedup,
		throttle,
		userRepo,
		alertRepo,
		orderRepo,
		notifier,
		logger,
	)

	relays := make([]*nostr.Relay, 0, len(cfg.RelayURLs))
	for _, url := range cfg.RelayURLs {
		relays = append(relays, nostr.NewRelay(url, domain.OrderEventKind, cfg.RelayReadTimeout, pipeline, logger))
	}

	app := &App{
		cfg:      cfg,
		relays:   relays,
		pipeline: pipeline,
		dedup:    dedup,
		orders:   orderRepo,
		counters: counterRepo,
		health:   httpapi.NewHealthHandler(dbConn, relays, pipeline),
		cron:     cron.New(cron.WithSeconds()),
		logger:   logger,
		cleanupFn: func() error {
			sqlDB, err := dbConn.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	}

	if _, err := app.cron.AddFunc(cfg.MaintenanceCron, app.maintain); err != nil {
		return nil, fmt.Errorf("invalid maintenance schedule: %w", err)
	}

	return app, nil
}

func (a *App) Run(ctx context.Context) error {
	a.logger.Info("p2palertbot starting",
		zap.Int("relays", len(a.relays)),
		zap.Int("workers", a.cfg.PipelineWorkers),
	)

	for _, relay := range a.relays {
		relay.Connect(ctx)
	}
	a.cron.Start()

	var wg sync.WaitGroup
	if a.cfg.HealthListenAddr != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			httpapi.Serve(ctx, a.cfg.HealthListenAddr, a.health, a.logger)
		}()
	}

	a.logger.Info("p2palertbot started")
	a.pipeline.Run(ctx)
	wg.Wait()
	return nil
}

// maintain prunes the dedup cache, stale order rows and old counters.
// Collaborator failures are logged and retried on the next tick.
func (a *App) maintain() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	now := time.Now()
	evicted := a.dedup.Evict(now)
	if evicted > 0 {
		a.logger.Info("dedup cache evicted", zap.Int("orders", evicted))
	}

	pruned, err := a.orders.DeleteSeenBefore(ctx, now.Add(-a.cfg.OrderRetention))
	if err != nil {
		a.logger.Warn("failed to prune order rows", zap.Error(err))
	} else if pruned > 0 {
		a.logger.Info("order rows pruned", zap.Int64("rows", pruned))
	}

	cutoffDay := now.UTC().AddDate(0, 0, -a.cfg.CounterRetainDays).Format(domain.DayKey)
	removed, err := a.counters.DeleteBefore(ctx, cutoffDay)
	if err != nil {
		a.logger.Warn("failed to prune counters", zap.Error(err))
	} else if removed > 0 {
		a.logger.Info("counters pruned", zap.Int64("rows", removed))
	}
}

func (a *App) Shutdown() {
	a.logger.Info("p2palertbot shutting down")
	for _, relay := range a.relays {
		relay.Disconnect()
	}
	stopped := a.cron.Stop()
	<-stopped.Done()
	if a.cleanupFn != nil {
		if err := a.cleanupFn(); err != nil {
			a.logger.Warn("failed to close database", zap.Error(err))
		}
	}
	_ = a.logger.Sync()
}
