// Package poller owns the periodic fetch-and-cache loops behind the
// dashboard's account panel and opportunity cards. Each poller refreshes at
// a fixed interval through the shared TTL cache and keeps its previous
// snapshot when a refresh fails.
package poller

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/arvindk1/dynamic-option-pilot-v2-sub001/internal/account"
	"github.com/arvindk1/dynamic-option-pilot-v2-sub001/internal/throttle"
)

const metricsCacheKey = "account-metrics"

// MetricsSource provides the account summary.
type MetricsSource interface {
	AccountMetrics(ctx context.Context) (account.Metrics, error)
}

// Metrics periodically refreshes the account summary.
type Metrics struct {
	source   MetricsSource
	cache    *throttle.Cache
	interval time.Duration

	mu          sync.RWMutex
	latest      account.Metrics
	lastRefresh time.Time
}

// NewMetrics creates a Metrics poller refreshing at the given interval.
func NewMetrics(source MetricsSource, cache *throttle.Cache, interval time.Duration) *Metrics {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &Metrics{source: source, cache: cache, interval: interval}
}

// Refresh fetches the account summary through the TTL cache and stores it.
func (p *Metrics) Refresh(ctx context.Context) error {
	v, err := p.cache.Do(ctx, metricsCacheKey, p.interval, func(ctx context.Context) (interface{}, error) {
		return p.source.AccountMetrics(ctx)
	})
	if err != nil {
		return err
	}
	p.mu.Lock()
	p.latest = v.(account.Metrics)
	p.lastRefresh = time.Now()
	p.mu.Unlock()
	return nil
}

// Reload bypasses the TTL and forces a fresh fetch.
func (p *Metrics) Reload(ctx context.Context) error {
	p.cache.Invalidate(metricsCacheKey)
	return p.Refresh(ctx)
}

// Latest returns the most recent account summary.
func (p *Metrics) Latest() account.Metrics {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.latest
}

// LastRefresh returns the time of the last successful refresh.
func (p *Metrics) LastRefresh() time.Time {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.lastRefresh
}

// Run starts the refresh loop. Blocks until ctx is cancelled.
func (p *Metrics) Run(ctx context.Context) error {
	if err := p.Refresh(ctx); err != nil {
		log.Printf("poller: initial metrics refresh: %v", err)
	}

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := p.Refresh(ctx); err != nil {
				log.Printf("poller: metrics refresh: %v", err)
			}
		}
	}
}
