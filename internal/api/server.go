// Package api is the HTTP surface the dashboard UI reads from. Read
// endpoints serve cached snapshots; mutating endpoints delegate to the
// trading service and answer with its results.
package api

import (
	"context"
	"encoding/json"
	"log"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/arvindk1/dynamic-option-pilot-v2-sub001/internal/account"
	"github.com/arvindk1/dynamic-option-pilot-v2-sub001/internal/backend"
	"github.com/arvindk1/dynamic-option-pilot-v2-sub001/internal/opportunity"
	"github.com/arvindk1/dynamic-option-pilot-v2-sub001/internal/trade"
	"github.com/arvindk1/dynamic-option-pilot-v2-sub001/internal/trading"
)

// TradingState exposes the trading service to the API layer.
type TradingState interface {
	Trades() []trade.Trade
	OpenTrades() []trade.Trade
	LastLoad() time.Time
	LoadTrades(ctx context.Context) error
	ExecuteTrade(ctx context.Context, opp opportunity.Spread, quantity float64) (trade.Trade, error)
	CloseTrade(ctx context.Context, tradeID string, exitPrice float64) (backend.CloseResult, error)
	SyncPositions(ctx context.Context) (trading.SyncResult, error)
}

// MetricsProvider exposes the account-metrics poller.
type MetricsProvider interface {
	Latest() account.Metrics
	LastRefresh() time.Time
	Reload(ctx context.Context) error
}

// OpportunityProvider exposes the opportunities poller.
type OpportunityProvider interface {
	Latest() []opportunity.Enhanced
	LastRefresh() time.Time
	Reload(ctx context.Context) error
}

// Server is the dashboard-facing HTTP API.
type Server struct {
	httpServer    *http.Server
	trading       TradingState
	metrics       MetricsProvider
	opportunities OpportunityProvider
	mode          string
	startedAt     time.Time
}

// NewServer creates a Server bound to addr.
func NewServer(addr string, state TradingState, metrics MetricsProvider, opportunities OpportunityProvider, mode string) *Server {
	s := &Server{
		trading:       state,
		metrics:       metrics,
		opportunities: opportunities,
		mode:          mode,
		startedAt:     time.Now(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/ready", s.handleReady)
	mux.HandleFunc("/api/status", s.handleStatus)
	mux.HandleFunc("/api/trades", s.handleTrades)
	mux.HandleFunc("/api/trades/open", s.handleOpenTrades)
	mux.HandleFunc("/api/account/metrics", s.handleAccountMetrics)
	mux.HandleFunc("/api/opportunities", s.handleOpportunities)
	mux.HandleFunc("/api/trading/execute", s.handleExecute)
	mux.HandleFunc("/api/positions/close/", s.handleClose)
	mux.HandleFunc("/api/positions/sync", s.handleSync)
	mux.Handle("/metrics", promhttp.Handler())

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Start begins serving HTTP requests.
func (s *Server) Start(_ context.Context) error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	log.Printf("api server listening on %s", s.httpServer.Addr)
	go func() {
		if err := s.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			log.Printf("api server: %v", err)
		}
	}()
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// GET /api/health — liveness probe.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, map[string]interface{}{
		"ok":       true,
		"uptime_s": time.Since(s.startedAt).Seconds(),
	})
}

// GET /api/ready — readiness probe; ready once a trade snapshot exists.
func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	ready := !s.trading.LastLoad().IsZero()
	resp := map[string]interface{}{
		"ready":    ready,
		"mode":     s.mode,
		"uptime_s": time.Since(s.startedAt).Seconds(),
	}
	if !ready {
		resp["reason"] = "no_trade_snapshot"
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	s.writeJSON(w, resp)
}

// GET /api/status — overall system status.
func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	trades := s.trading.Trades()
	open := 0
	for _, t := range trades {
		if t.Open() {
			open++
		}
	}
	resp := map[string]interface{}{
		"mode":        s.mode,
		"uptime_s":    time.Since(s.startedAt).Seconds(),
		"trades":      len(trades),
		"open_trades": open,
		"last_load":   s.trading.LastLoad(),
	}
	if s.metrics != nil {
		resp["metrics_refresh"] = s.metrics.LastRefresh()
	}
	if s.opportunities != nil {
		resp["opportunities_refresh"] = s.opportunities.LastRefresh()
	}
	s.writeJSON(w, resp)
}

// GET /api/trades — current trade snapshot. ?reload=true forces a refresh
// before answering.
func (s *Server) handleTrades(w http.ResponseWriter, r *http.Request) {
	if boolParam(r, "reload") {
		if err := s.trading.LoadTrades(r.Context()); err != nil {
			log.Printf("api: reload trades: %v (serving previous snapshot)", err)
		}
	}
	trades := s.trading.Trades()
	s.writeJSON(w, map[string]interface{}{"trades": trades, "count": len(trades)})
}

// GET /api/trades/open — open trades only.
func (s *Server) handleOpenTrades(w http.ResponseWriter, _ *http.Request) {
	trades := s.trading.OpenTrades()
	s.writeJSON(w, map[string]interface{}{"trades": trades, "count": len(trades)})
}

// GET /api/account/metrics — cached account summary.
func (s *Server) handleAccountMetrics(w http.ResponseWriter, r *http.Request) {
	if s.metrics == nil {
		http.Error(w, "account metrics unavailable", http.StatusServiceUnavailable)
		return
	}
	if boolParam(r, "reload") {
		if err := s.metrics.Reload(r.Context()); err != nil {
			log.Printf("api: reload metrics: %v (serving previous snapshot)", err)
		}
	}
	s.writeJSON(w, map[string]interface{}{
		"metrics":    s.metrics.Latest(),
		"fetched_at": s.metrics.LastRefresh(),
	})
}

// GET /api/opportunities — cached candidate-trade feed.
func (s *Server) handleOpportunities(w http.ResponseWriter, r *http.Request) {
	if s.opportunities == nil {
		http.Error(w, "opportunities unavailable", http.StatusServiceUnavailable)
		return
	}
	if boolParam(r, "reload") {
		if err := s.opportunities.Reload(r.Context()); err != nil {
			log.Printf("api: reload opportunities: %v (serving previous snapshot)", err)
		}
	}
	opps := s.opportunities.Latest()
	s.writeJSON(w, map[string]interface{}{
		"opportunities": opps,
		"count":         len(opps),
		"fetched_at":    s.opportunities.LastRefresh(),
	})
}

type executeRequest struct {
	opportunity.Spread
	Quantity float64 `json:"quantity"`
}

// POST /api/trading/execute — submit an opportunity for execution.
func (s *Server) handleExecute(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req executeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Quantity <= 0 {
		http.Error(w, "quantity must be positive", http.StatusBadRequest)
		return
	}
	executed, err := s.trading.ExecuteTrade(r.Context(), req.Spread, req.Quantity)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	s.writeJSON(w, executed)
}

// POST /api/positions/close/{id}?exit_price= — close a position.
func (s *Server) handleClose(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	tradeID := strings.TrimPrefix(r.URL.Path, "/api/positions/close/")
	if tradeID == "" || strings.Contains(tradeID, "/") {
		http.Error(w, "missing trade id", http.StatusBadRequest)
		return
	}
	exitPrice, err := strconv.ParseFloat(r.URL.Query().Get("exit_price"), 64)
	if err != nil {
		http.Error(w, "invalid exit_price", http.StatusBadRequest)
		return
	}
	res, err := s.trading.CloseTrade(r.Context(), tradeID, exitPrice)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	s.writeJSON(w, res)
}

// POST /api/positions/sync — force a broker resync. Rate limiting arrives in
// the body, not as an HTTP error, so the UI can show "try again later".
func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	res, err := s.trading.SyncPositions(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	s.writeJSON(w, res)
}

func boolParam(r *http.Request, name string) bool {
	v := r.URL.Query().Get(name)
	return strings.EqualFold(v, "true") || v == "1"
}
