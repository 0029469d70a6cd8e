// Package backend is the typed REST client for the trading backend. It is
// the only place that issues HTTP requests to it: every call runs with a
// bounded deadline and surfaces the best server-provided error detail, so
// callers get uniform error semantics without repeating timeout plumbing.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/arvindk1/dynamic-option-pilot-v2-sub001/internal/account"
	"github.com/arvindk1/dynamic-option-pilot-v2-sub001/internal/opportunity"
	"github.com/arvindk1/dynamic-option-pilot-v2-sub001/internal/trade"
)

const (
	DefaultBaseURL       = "http://localhost:8000/api"
	DefaultReadTimeout   = 15 * time.Second
	DefaultMutateTimeout = 20 * time.Second
)

// Config carries the client's connection settings.
type Config struct {
	BaseURL string
	// ReadTimeout bounds GET calls; MutateTimeout bounds execute/close/sync,
	// which may involve a broker round-trip and get a longer budget.
	ReadTimeout   time.Duration
	MutateTimeout time.Duration
	// Demo routes account metrics and opportunities to the simulated
	// endpoints instead of live ones.
	Demo bool
}

// Client talks to the trading backend.
type Client struct {
	base          string
	hc            *http.Client
	readTimeout   time.Duration
	mutateTimeout time.Duration
	demo          bool
}

// NewClient creates a Client, filling unset config fields with defaults.
func NewClient(cfg Config) *Client {
	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" {
		base = DefaultBaseURL
	}
	base = strings.TrimRight(base, "/")
	read := cfg.ReadTimeout
	if read <= 0 {
		read = DefaultReadTimeout
	}
	mutate := cfg.MutateTimeout
	if mutate <= 0 {
		mutate = DefaultMutateTimeout
	}
	return &Client{
		base: base,
		// The per-call context deadline is the operative limit; the client
		// timeout is a backstop above the largest budget.
		hc:            &http.Client{Timeout: mutate + 5*time.Second},
		readTimeout:   read,
		mutateTimeout: mutate,
		demo:          cfg.Demo,
	}
}

// Demo reports whether the client routes to simulated endpoints.
func (c *Client) Demo() bool { return c.demo }

// CloseResult is the raw close-endpoint passthrough.
type CloseResult struct {
	Message         string   `json:"message,omitempty"`
	CancelledOrders []string `json:"cancelled_orders,omitempty"`
	CancelledCount  int      `json:"cancelled_count,omitempty"`
}

// SyncResponse is the raw broker-resync payload. A "rate_limited" status is
// an expected, recoverable condition and is translated by the trading
// service, not raised as an error here.
type SyncResponse struct {
	Status           string `json:"status"`
	Message          string `json:"message"`
	PositionsUpdated int    `json:"positions_updated"`
}

// executeRequest is the execute endpoint's body: the opportunity fields plus
// the requested quantity.
type executeRequest struct {
	opportunity.Spread
	Quantity float64 `json:"quantity"`
}

// Positions lists current positions. syncBroker=false skips the forced
// broker resync, which is the normal dashboard refresh path.
func (c *Client) Positions(ctx context.Context, syncBroker bool) ([]trade.Position, error) {
	var out []trade.Position
	path := "/positions/?sync=" + strconv.FormatBool(syncBroker)
	if err := c.get(ctx, path, &out); err != nil {
		return nil, fmt.Errorf("backend: positions: %w", err)
	}
	return out, nil
}

// Execute submits an opportunity for execution and returns the raw position
// payload the backend answers with.
func (c *Client) Execute(ctx context.Context, opp opportunity.Spread, quantity float64) (trade.Position, error) {
	var out trade.Position
	body := executeRequest{Spread: opp, Quantity: quantity}
	if err := c.post(ctx, "/trading/execute", body, &out); err != nil {
		return trade.Position{}, fmt.Errorf("backend: execute: %w", err)
	}
	return out, nil
}

// Close closes a position at the given exit price.
func (c *Client) Close(ctx context.Context, tradeID string, exitPrice float64) (CloseResult, error) {
	var out CloseResult
	path := fmt.Sprintf("/positions/close/%s?exit_price=%s",
		url.PathEscape(tradeID), strconv.FormatFloat(exitPrice, 'f', -1, 64))
	if err := c.post(ctx, path, nil, &out); err != nil {
		return CloseResult{}, fmt.Errorf("backend: close %s: %w", tradeID, err)
	}
	return out, nil
}

// Sync forces a broker position resync.
func (c *Client) Sync(ctx context.Context) (SyncResponse, error) {
	var out SyncResponse
	if err := c.post(ctx, "/positions/sync", nil, &out); err != nil {
		return SyncResponse{}, fmt.Errorf("backend: sync: %w", err)
	}
	return out, nil
}

// Metrics fetches the account summary.
func (c *Client) Metrics(ctx context.Context) (account.Metrics, error) {
	path := "/dashboard/metrics"
	if c.demo {
		path = "/demo/account/metrics"
	}
	var out account.Metrics
	if err := c.get(ctx, path, &out); err != nil {
		return account.Metrics{}, fmt.Errorf("backend: metrics: %w", err)
	}
	return out, nil
}

// PerformanceHistory fetches the account equity time series.
func (c *Client) PerformanceHistory(ctx context.Context, days int) ([]account.PerformancePoint, error) {
	var out []account.PerformancePoint
	path := fmt.Sprintf("/dashboard/performance?days=%d", days)
	if err := c.get(ctx, path, &out); err != nil {
		return nil, fmt.Errorf("backend: performance: %w", err)
	}
	return out, nil
}

// Opportunities fetches the current candidate-trade feed.
func (c *Client) Opportunities(ctx context.Context) ([]opportunity.Enhanced, error) {
	path := "/trading/opportunities"
	if c.demo {
		path = "/demo/opportunities"
	}
	var out []opportunity.Enhanced
	if err := c.get(ctx, path, &out); err != nil {
		return nil, fmt.Errorf("backend: opportunities: %w", err)
	}
	return out, nil
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	return c.do(ctx, http.MethodGet, path, c.readTimeout, nil, out)
}

func (c *Client) post(ctx context.Context, path string, body, out interface{}) error {
	return c.do(ctx, http.MethodPost, path, c.mutateTimeout, body, out)
}

// do issues one request under a deadline. On non-2xx it always returns an
// error built from the best available server detail. A 2xx response with an
// empty or unparseable body resolves to the zero value: some close/sync
// endpoints legitimately answer with nothing.
func (c *Client) do(ctx context.Context, method, path string, timeout time.Duration, body, out interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var rdr io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		rdr = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, rdr)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("Timeout %dms", timeout.Milliseconds())
		}
		return err
	}
	defer resp.Body.Close()

	raw, readErr := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errorFromResponse(resp.StatusCode, raw)
	}
	if readErr != nil || out == nil {
		return nil
	}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil
	}
	if err := json.Unmarshal(trimmed, out); err != nil {
		// Unparseable body on success is treated as empty, not fatal.
		return nil
	}
	return nil
}

// errorFromResponse extracts the most useful error text from a non-2xx
// response: the JSON body's detail/message field, else the raw body appended
// to the status line, else the status line alone.
func errorFromResponse(status int, body []byte) error {
	base := fmt.Sprintf("%d %s", status, http.StatusText(status))
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return errors.New(base)
	}
	var payload map[string]interface{}
	if json.Unmarshal(trimmed, &payload) == nil {
		if d := detailString(payload, "detail"); d != "" {
			return errors.New(d)
		}
		if m := detailString(payload, "message"); m != "" {
			return errors.New(m)
		}
	}
	return fmt.Errorf("%s: %s", base, string(trimmed))
}

// detailString renders a detail field that may not be a plain string
// (FastAPI validation errors arrive as arrays).
func detailString(payload map[string]interface{}, key string) string {
	switch v := payload[key].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(encoded)
	}
}
