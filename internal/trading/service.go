// Package trading owns the client-side view of executed trades: an in-memory
// snapshot refreshed from the backend, mutation operations that delegate to
// it, and change notifications for anything rendering the trade list.
package trading

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/arvindk1/dynamic-option-pilot-v2-sub001/internal/account"
	"github.com/arvindk1/dynamic-option-pilot-v2-sub001/internal/backend"
	"github.com/arvindk1/dynamic-option-pilot-v2-sub001/internal/opportunity"
	"github.com/arvindk1/dynamic-option-pilot-v2-sub001/internal/trade"
)

// Backend is the slice of the REST client the service depends on.
type Backend interface {
	Positions(ctx context.Context, syncBroker bool) ([]trade.Position, error)
	Execute(ctx context.Context, opp opportunity.Spread, quantity float64) (trade.Position, error)
	Close(ctx context.Context, tradeID string, exitPrice float64) (backend.CloseResult, error)
	Sync(ctx context.Context) (backend.SyncResponse, error)
	Metrics(ctx context.Context) (account.Metrics, error)
	PerformanceHistory(ctx context.Context, days int) ([]account.PerformancePoint, error)
}

// Notifier defines the alert hooks the service fires best-effort.
type Notifier interface {
	NotifyTradeExecuted(ctx context.Context, t trade.Trade) error
	NotifyTradeClosed(ctx context.Context, tradeID string, exitPrice float64) error
}

// SyncResult reports the outcome of a broker resync. Rate limiting is an
// expected, recoverable condition and arrives here as a value so callers can
// distinguish "try again later" from "something is broken".
type SyncResult struct {
	Success          bool   `json:"success"`
	RateLimited      bool   `json:"rate_limited"`
	Message          string `json:"message,omitempty"`
	PositionsUpdated int    `json:"positions_updated"`
}

// Config carries the service's tunables.
type Config struct {
	// PerformanceDays is the window requested from the performance endpoint.
	PerformanceDays int
	// SyncMinInterval throttles broker resyncs client-side; zero disables
	// the local limiter and relies on the backend's own limiting.
	SyncMinInterval time.Duration
}

// Service is the trading data-access layer. It exclusively owns the trades
// snapshot; no other component mutates it.
type Service struct {
	backend         Backend
	notifier        Notifier // may be nil
	performanceDays int
	syncLimiter     *rate.Limiter

	mu             sync.RWMutex
	trades         []trade.Trade
	lastLoad       time.Time
	listeners      map[int]func([]trade.Trade)
	nextListenerID int

	// Reloads carry a monotonic sequence so a slow, stale response can never
	// overwrite the snapshot from a later one.
	loadSeq    uint64
	appliedSeq uint64
}

// NewService creates a Service. notifier may be nil.
func NewService(b Backend, notifier Notifier, cfg Config) *Service {
	days := cfg.PerformanceDays
	if days <= 0 {
		days = 30
	}
	var limiter *rate.Limiter
	if cfg.SyncMinInterval > 0 {
		limiter = rate.NewLimiter(rate.Every(cfg.SyncMinInterval), 1)
	}
	return &Service{
		backend:         b,
		notifier:        notifier,
		performanceDays: days,
		syncLimiter:     limiter,
		listeners:       make(map[int]func([]trade.Trade)),
	}
}

// LoadTrades fetches the full position list, replaces the snapshot wholesale,
// and notifies subscribers. On fetch failure the previous snapshot is
// retained: a stale-but-usable view beats a blank one.
func (s *Service) LoadTrades(ctx context.Context) error {
	s.mu.Lock()
	s.loadSeq++
	seq := s.loadSeq
	s.mu.Unlock()

	positions, err := s.backend.Positions(ctx, false)
	if err != nil {
		mtxLoads.WithLabelValues("error").Inc()
		log.Printf("trading: load trades: %v (keeping previous snapshot)", err)
		return err
	}

	trades := make([]trade.Trade, 0, len(positions))
	for _, p := range positions {
		trades = append(trades, trade.NormalizePosition(p))
	}

	s.mu.Lock()
	if seq < s.appliedSeq {
		s.mu.Unlock()
		mtxLoads.WithLabelValues("stale_discarded").Inc()
		log.Printf("trading: discarding stale reload (seq %d, newest applied %d)", seq, s.appliedSeq)
		return nil
	}
	s.appliedSeq = seq
	s.trades = trades
	s.lastLoad = time.Now()
	listeners := make([]func([]trade.Trade), 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	open := 0
	for _, t := range trades {
		if t.Open() {
			open++
		}
	}
	s.mu.Unlock()

	mtxLoads.WithLabelValues("ok").Inc()
	mtxOpenTrades.Set(float64(open))

	for _, fn := range listeners {
		notifyListener(fn, copyTrades(trades))
	}
	return nil
}

// notifyListener delivers one snapshot copy. A panicking listener is logged
// and must not break delivery to the others.
func notifyListener(fn func([]trade.Trade), snapshot []trade.Trade) {
	defer func() {
		if r := recover(); r != nil {
			mtxListenerPanics.Inc()
			log.Printf("trading: trade listener panicked: %v", r)
		}
	}()
	fn(snapshot)
}

// ExecuteTrade submits an opportunity for execution and returns the
// normalized result. The trade list is reloaded afterward to pick up
// server-side side effects such as partial fills; a reload failure is logged,
// not propagated.
func (s *Service) ExecuteTrade(ctx context.Context, opp opportunity.Spread, quantity float64) (trade.Trade, error) {
	if quantity <= 0 {
		return trade.Trade{}, fmt.Errorf("trading: quantity must be positive, got %v", quantity)
	}

	pos, err := s.backend.Execute(ctx, opp, quantity)
	if err != nil {
		mtxOps.WithLabelValues("execute", "error").Inc()
		return trade.Trade{}, err
	}
	t := trade.NormalizePosition(pos)
	mtxOps.WithLabelValues("execute", "ok").Inc()

	if err := s.LoadTrades(ctx); err != nil {
		log.Printf("trading: reload after execute: %v", err)
	}
	if s.notifier != nil {
		if err := s.notifier.NotifyTradeExecuted(ctx, t); err != nil {
			log.Printf("trading: execute alert: %v", err)
		}
	}
	return t, nil
}

// CloseTrade closes a position at the given exit price and returns the raw
// close-result passthrough.
func (s *Service) CloseTrade(ctx context.Context, tradeID string, exitPrice float64) (backend.CloseResult, error) {
	res, err := s.backend.Close(ctx, tradeID, exitPrice)
	if err != nil {
		mtxOps.WithLabelValues("close", "error").Inc()
		return backend.CloseResult{}, err
	}
	mtxOps.WithLabelValues("close", "ok").Inc()

	if err := s.LoadTrades(ctx); err != nil {
		log.Printf("trading: reload after close: %v", err)
	}
	if s.notifier != nil {
		if err := s.notifier.NotifyTradeClosed(ctx, tradeID, exitPrice); err != nil {
			log.Printf("trading: close alert: %v", err)
		}
	}
	return res, nil
}

// SyncPositions forces a broker resync. Both the local limiter and the
// backend's rate limiting surface as a RateLimited result, never an error.
func (s *Service) SyncPositions(ctx context.Context) (SyncResult, error) {
	if s.syncLimiter != nil && !s.syncLimiter.Allow() {
		mtxOps.WithLabelValues("sync", "throttled").Inc()
		return SyncResult{
			RateLimited: true,
			Message:     "sync throttled client-side, try again shortly",
		}, nil
	}

	resp, err := s.backend.Sync(ctx)
	if err != nil {
		mtxOps.WithLabelValues("sync", "error").Inc()
		return SyncResult{}, err
	}
	if strings.EqualFold(strings.TrimSpace(resp.Status), "rate_limited") {
		mtxOps.WithLabelValues("sync", "rate_limited").Inc()
		return SyncResult{RateLimited: true, Message: resp.Message}, nil
	}
	mtxOps.WithLabelValues("sync", "ok").Inc()

	if err := s.LoadTrades(ctx); err != nil {
		log.Printf("trading: reload after sync: %v", err)
	}
	return SyncResult{
		Success:          true,
		Message:          resp.Message,
		PositionsUpdated: resp.PositionsUpdated,
	}, nil
}

// AccountMetrics fetches the account summary. A primary-fetch failure yields
// an all-zero record rather than an error so the dashboard always has
// something to render; the performance history attach is best-effort.
func (s *Service) AccountMetrics(ctx context.Context) (account.Metrics, error) {
	m, err := s.backend.Metrics(ctx)
	if err != nil {
		log.Printf("trading: account metrics: %v (serving zero defaults)", err)
		return account.Metrics{}, nil
	}

	history, err := s.backend.PerformanceHistory(ctx, s.performanceDays)
	if err != nil {
		log.Printf("trading: performance history: %v (metrics served without it)", err)
		return m, nil
	}
	m.PerformanceHistory = history
	return m, nil
}

// Trades returns a copy of the current snapshot.
func (s *Service) Trades() []trade.Trade {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyTrades(s.trades)
}

// OpenTrades returns the open subset of the current snapshot.
func (s *Service) OpenTrades() []trade.Trade {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]trade.Trade, 0, len(s.trades))
	for _, t := range s.trades {
		if t.Open() {
			out = append(out, t)
		}
	}
	return out
}

// LastLoad returns the time of the last applied reload.
func (s *Service) LastLoad() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastLoad
}

// Subscribe registers a listener for trade snapshot changes and returns its
// unsubscribe function. Listeners receive a fresh copy on every applied
// reload, never the live internal slice.
func (s *Service) Subscribe(fn func([]trade.Trade)) func() {
	s.mu.Lock()
	id := s.nextListenerID
	s.nextListenerID++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

func copyTrades(in []trade.Trade) []trade.Trade {
	out := make([]trade.Trade, len(in))
	copy(out, in)
	return out
}
