package poller

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/arvindk1/dynamic-option-pilot-v2-sub001/internal/opportunity"
	"github.com/arvindk1/dynamic-option-pilot-v2-sub001/internal/throttle"
)

const opportunitiesCacheKey = "trading-opportunities"

// OpportunitySource provides the candidate-trade feed.
type OpportunitySource interface {
	Opportunities(ctx context.Context) ([]opportunity.Enhanced, error)
}

// Opportunities periodically refreshes the candidate-trade feed.
type Opportunities struct {
	source   OpportunitySource
	cache    *throttle.Cache
	interval time.Duration

	mu          sync.RWMutex
	latest      []opportunity.Enhanced
	lastRefresh time.Time
}

// NewOpportunities creates an Opportunities poller refreshing at the given
// interval.
func NewOpportunities(source OpportunitySource, cache *throttle.Cache, interval time.Duration) *Opportunities {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &Opportunities{source: source, cache: cache, interval: interval}
}

// Refresh fetches the feed through the TTL cache and stores it.
func (p *Opportunities) Refresh(ctx context.Context) error {
	v, err := p.cache.Do(ctx, opportunitiesCacheKey, p.interval, func(ctx context.Context) (interface{}, error) {
		return p.source.Opportunities(ctx)
	})
	if err != nil {
		return err
	}
	p.mu.Lock()
	p.latest = v.([]opportunity.Enhanced)
	p.lastRefresh = time.Now()
	p.mu.Unlock()
	return nil
}

// Reload bypasses the TTL and forces a fresh fetch.
func (p *Opportunities) Reload(ctx context.Context) error {
	p.cache.Invalidate(opportunitiesCacheKey)
	return p.Refresh(ctx)
}

// Latest returns a copy of the most recent feed.
func (p *Opportunities) Latest() []opportunity.Enhanced {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]opportunity.Enhanced, len(p.latest))
	copy(out, p.latest)
	return out
}

// LastRefresh returns the time of the last successful refresh.
func (p *Opportunities) LastRefresh() time.Time {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.lastRefresh
}

// Run starts the refresh loop. Blocks until ctx is cancelled.
func (p *Opportunities) Run(ctx context.Context) error {
	if err := p.Refresh(ctx); err != nil {
		log.Printf("poller: initial opportunities refresh: %v", err)
	}

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := p.Refresh(ctx); err != nil {
				log.Printf("poller: opportunities refresh: %v", err)
			}
		}
	}
}
