package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/arvindk1/dynamic-option-pilot-v2-sub001/internal/opportunity"
)

func testClient(url string) *Client {
	return NewClient(Config{BaseURL: url})
}

func TestNewClientDefaults(t *testing.T) {
	c := NewClient(Config{})
	if c.base != DefaultBaseURL {
		t.Errorf("expected default base url, got %s", c.base)
	}
	if c.readTimeout != DefaultReadTimeout {
		t.Errorf("expected default read timeout, got %v", c.readTimeout)
	}
	if c.mutateTimeout != DefaultMutateTimeout {
		t.Errorf("expected default mutate timeout, got %v", c.mutateTimeout)
	}
}

func TestNewClientTrimsBaseURL(t *testing.T) {
	c := NewClient(Config{BaseURL: "http://example.com/api/"})
	if c.base != "http://example.com/api" {
		t.Errorf("expected trimmed base url, got %s", c.base)
	}
}

func TestPositionsDecodes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/positions/" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("sync") != "false" {
			t.Errorf("expected sync=false, got %s", r.URL.Query().Get("sync"))
		}
		w.Header().Set("Content-Type", "application/json")
		if _, err := w.Write([]byte(`[{"id":"1","symbol":"SPY","entry_price":1.5,"quantity":1}]`)); err != nil {
			t.Errorf("write: %v", err)
		}
	}))
	defer server.Close()

	positions, err := testClient(server.URL).Positions(context.Background(), false)
	if err != nil {
		t.Fatalf("positions: %v", err)
	}
	if len(positions) != 1 || positions[0].Symbol != "SPY" {
		t.Fatalf("unexpected positions %+v", positions)
	}
}

func TestTimeoutMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	c := NewClient(Config{BaseURL: server.URL, ReadTimeout: 100 * time.Millisecond})
	start := time.Now()
	_, err := c.Positions(context.Background(), false)
	elapsed := time.Since(start)

	if err == nil {
		t.Fatal("expected timeout error")
	}
	if !strings.Contains(err.Error(), "Timeout 100ms") {
		t.Errorf("expected 'Timeout 100ms' in error, got %q", err.Error())
	}
	if elapsed > 500*time.Millisecond {
		t.Errorf("timeout took too long: %v", elapsed)
	}
}

func TestErrorDetailFromJSONBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		if err := json.NewEncoder(w).Encode(map[string]string{"detail": "insufficient buying power"}); err != nil {
			t.Errorf("encode: %v", err)
		}
	}))
	defer server.Close()

	_, err := testClient(server.URL).Positions(context.Background(), false)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "insufficient buying power") {
		t.Errorf("expected server detail in error, got %q", err.Error())
	}
}

func TestErrorMessageFieldFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusConflict)
		if err := json.NewEncoder(w).Encode(map[string]string{"message": "position already closed"}); err != nil {
			t.Errorf("encode: %v", err)
		}
	}))
	defer server.Close()

	_, err := testClient(server.URL).Sync(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "position already closed") {
		t.Errorf("expected message field in error, got %q", err.Error())
	}
}

func TestErrorPlainTextBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		if _, err := w.Write([]byte("upstream broker unavailable")); err != nil {
			t.Errorf("write: %v", err)
		}
	}))
	defer server.Close()

	_, err := testClient(server.URL).Positions(context.Background(), false)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "502 Bad Gateway") {
		t.Errorf("expected status line in error, got %q", err.Error())
	}
	if !strings.Contains(err.Error(), "upstream broker unavailable") {
		t.Errorf("expected body text in error, got %q", err.Error())
	}
}

func TestErrorEmptyBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := testClient(server.URL).Positions(context.Background(), false)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "500 Internal Server Error") {
		t.Errorf("expected status line alone, got %q", err.Error())
	}
}

func TestEmptySuccessBodyResolvesToZeroValue(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	res, err := testClient(server.URL).Close(context.Background(), "t1", 0.5)
	if err != nil {
		t.Fatalf("empty 200 body should succeed: %v", err)
	}
	if res.Message != "" || res.CancelledCount != 0 {
		t.Errorf("expected zero-value result, got %+v", res)
	}
}

func TestUnparseableSuccessBodyResolvesToZeroValue(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if _, err := w.Write([]byte("not json")); err != nil {
			t.Errorf("write: %v", err)
		}
	}))
	defer server.Close()

	res, err := testClient(server.URL).Sync(context.Background())
	if err != nil {
		t.Fatalf("unparseable 200 body should succeed: %v", err)
	}
	if res.Status != "" {
		t.Errorf("expected zero-value response, got %+v", res)
	}
}

func TestExecutePostsOpportunityWithQuantity(t *testing.T) {
	var received map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.URL.Path != "/trading/execute" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if _, err := w.Write([]byte(`{"id":"123","symbol":"SPY","type":"PUT","entry_price":1.5,"quantity":1,"entry_date":"2025-02-01T00:00:00Z","status":"open"}`)); err != nil {
			t.Errorf("write: %v", err)
		}
	}))
	defer server.Close()

	opp := opportunity.Spread{
		ID: "o1", Symbol: "SPY", StrategyType: "PUT_SPREAD",
		Strike: 440, ShortStrike: 440, LongStrike: 435,
		Expiration: "2025-02-21", DaysToExpiration: 30, Premium: 1.5,
	}
	pos, err := testClient(server.URL).Execute(context.Background(), opp, 1)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if received["symbol"] != "SPY" {
		t.Errorf("expected symbol in body, got %v", received["symbol"])
	}
	if received["quantity"].(float64) != 1 {
		t.Errorf("expected quantity=1 in body, got %v", received["quantity"])
	}
	if pos.Symbol != "SPY" || pos.Status != "open" {
		t.Errorf("unexpected response %+v", pos)
	}
}

func TestClosePathAndQuery(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/positions/close/t-42" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("exit_price") != "0.75" {
			t.Errorf("unexpected exit_price %s", r.URL.Query().Get("exit_price"))
		}
		if err := json.NewEncoder(w).Encode(CloseResult{Message: "closed", CancelledCount: 2}); err != nil {
			t.Errorf("encode: %v", err)
		}
	}))
	defer server.Close()

	res, err := testClient(server.URL).Close(context.Background(), "t-42", 0.75)
	if err != nil {
		t.Fatalf("close: %v", err)
	}
	if res.Message != "closed" || res.CancelledCount != 2 {
		t.Errorf("unexpected result %+v", res)
	}
}

func TestDemoModeRouting(t *testing.T) {
	var paths []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		if _, err := w.Write([]byte(`{}`)); err != nil {
			t.Errorf("write: %v", err)
		}
	}))
	defer server.Close()

	c := NewClient(Config{BaseURL: server.URL, Demo: true})
	if _, err := c.Metrics(context.Background()); err != nil {
		t.Fatalf("metrics: %v", err)
	}
	if _, err := c.Opportunities(context.Background()); err != nil {
		t.Fatalf("opportunities: %v", err)
	}
	if len(paths) != 2 || paths[0] != "/demo/account/metrics" || paths[1] != "/demo/opportunities" {
		t.Errorf("unexpected demo paths %v", paths)
	}
}

func TestPerformanceHistoryDays(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/dashboard/performance" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("days") != "30" {
			t.Errorf("expected days=30, got %s", r.URL.Query().Get("days"))
		}
		if _, err := w.Write([]byte(`[{"date":"2025-08-01","balance":10000,"pnl":125.5}]`)); err != nil {
			t.Errorf("write: %v", err)
		}
	}))
	defer server.Close()

	points, err := testClient(server.URL).PerformanceHistory(context.Background(), 30)
	if err != nil {
		t.Fatalf("performance: %v", err)
	}
	if len(points) != 1 || points[0].Balance != 10000 {
		t.Errorf("unexpected points %+v", points)
	}
}
