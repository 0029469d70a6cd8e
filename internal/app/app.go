// Package app wires the dashboard components together: backend client,
// trading service, snapshot pollers, notifier, and the refresh loop.
package app

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/arvindk1/dynamic-option-pilot-v2-sub001/internal/backend"
	"github.com/arvindk1/dynamic-option-pilot-v2-sub001/internal/config"
	"github.com/arvindk1/dynamic-option-pilot-v2-sub001/internal/notify"
	"github.com/arvindk1/dynamic-option-pilot-v2-sub001/internal/poller"
	"github.com/arvindk1/dynamic-option-pilot-v2-sub001/internal/throttle"
	"github.com/arvindk1/dynamic-option-pilot-v2-sub001/internal/trading"
)

type App struct {
	cfg     config.Config
	backend *backend.Client
	Trading *trading.Service

	// Snapshot pollers for the slower-moving dashboard data.
	Metrics       *poller.Metrics
	Opportunities *poller.Opportunities

	notifier *notify.Notifier

	mu      sync.RWMutex
	running bool
}

func New(cfg config.Config) *App {
	client := backend.NewClient(backend.Config{
		BaseURL:       cfg.BackendBaseURL,
		ReadTimeout:   cfg.ReadTimeout,
		MutateTimeout: cfg.MutateTimeout,
		Demo:          cfg.Demo(),
	})

	var notifier *notify.Notifier
	if cfg.Telegram.Enabled {
		notifier = notify.NewNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
	}

	var tradeNotifier trading.Notifier
	if notifier != nil {
		tradeNotifier = notifier
	}
	svc := trading.NewService(client, tradeNotifier, trading.Config{
		PerformanceDays: cfg.PerformanceDays,
		SyncMinInterval: cfg.SyncMinInterval,
	})

	cache := throttle.New(cfg.MetricsRefreshInterval)
	metrics := poller.NewMetrics(svc, cache, cfg.MetricsRefreshInterval)
	opportunities := poller.NewOpportunities(client, cache, cfg.OpportunitiesRefreshInterval)

	return &App{
		cfg:           cfg,
		backend:       client,
		Trading:       svc,
		Metrics:       metrics,
		Opportunities: opportunities,
		notifier:      notifier,
	}
}

// Run starts the snapshot pollers and the trade refresh loop, blocking
// until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	a.mu.Lock()
	a.running = true
	a.mu.Unlock()
	defer func() {
		a.mu.Lock()
		a.running = false
		a.mu.Unlock()
	}()

	// Initial load so the API has a snapshot as soon as possible. Failure
	// here is not fatal: the refresh ticker retries.
	if err := a.Trading.LoadTrades(ctx); err != nil {
		log.Printf("initial trade load: %v", err)
		if a.notifier != nil {
			_ = a.notifier.NotifyBackendUnreachable(ctx, err.Error())
		}
	}

	go func() {
		if err := a.Metrics.Run(ctx); err != nil && err != context.Canceled {
			log.Printf("metrics poller stopped: %v", err)
		}
	}()
	go func() {
		if err := a.Opportunities.Run(ctx); err != nil && err != context.Canceled {
			log.Printf("opportunities poller stopped: %v", err)
		}
	}()

	refreshInterval := a.cfg.TradesRefreshInterval
	if refreshInterval <= 0 {
		refreshInterval = 30 * time.Second
	}
	refreshTicker := time.NewTicker(refreshInterval)
	defer refreshTicker.Stop()

	hbInterval := a.cfg.HeartbeatInterval
	if hbInterval <= 0 {
		hbInterval = 30 * time.Second
	}
	heartbeatTicker := time.NewTicker(hbInterval)
	defer heartbeatTicker.Stop()

	// Daily summary at UTC midnight.
	summaryTimer := time.NewTimer(timeUntilMidnightUTC())
	defer summaryTimer.Stop()

	log.Printf("dashboard loop started (mode=%s, trades every %s)", a.cfg.Mode, refreshInterval)

	consecutiveFailures := 0
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-refreshTicker.C:
			if err := a.Trading.LoadTrades(ctx); err != nil {
				consecutiveFailures++
				log.Printf("trade refresh: %v (failures=%d)", err, consecutiveFailures)
				if consecutiveFailures == 3 && a.notifier != nil {
					_ = a.notifier.NotifyBackendUnreachable(ctx, err.Error())
				}
			} else {
				consecutiveFailures = 0
			}

		case <-heartbeatTicker.C:
			open := len(a.Trading.OpenTrades())
			log.Printf("heartbeat: open=%d last_load=%s", open, a.Trading.LastLoad().Format(time.RFC3339))

		case <-summaryTimer.C:
			if a.notifier != nil {
				if err := a.notifier.NotifyDailySummary(ctx, a.cfg.Mode, a.Metrics.Latest(), a.Trading.OpenTrades()); err != nil {
					log.Printf("daily summary: %v", err)
				}
			}
			summaryTimer.Reset(timeUntilMidnightUTC())
		}
	}
}

// timeUntilMidnightUTC returns the duration until the next UTC midnight.
func timeUntilMidnightUTC() time.Duration {
	now := time.Now().UTC()
	midnight := time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, time.UTC)
	return midnight.Sub(now)
}

// IsRunning reports whether the refresh loop is active.
func (a *App) IsRunning() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.running
}

// Mode returns the configured backend mode: live or demo.
func (a *App) Mode() string {
	return a.cfg.Mode
}
