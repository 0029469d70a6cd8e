package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/arvindk1/dynamic-option-pilot-v2-sub001/internal/trade"
)

func TestNewNotifierDisabled(t *testing.T) {
	n := NewNotifier("", "")
	if n.Enabled() {
		t.Fatal("expected disabled notifier with empty credentials")
	}
}

func TestNewNotifierEnabled(t *testing.T) {
	n := NewNotifier("bot123", "chat456")
	if !n.Enabled() {
		t.Fatal("expected enabled notifier with credentials")
	}
}

func TestSendDisabled(t *testing.T) {
	n := NewNotifier("", "")
	if err := n.Send(context.Background(), "test"); err != nil {
		t.Fatalf("disabled send should succeed silently: %v", err)
	}
}

func TestSendSuccess(t *testing.T) {
	var receivedChatID, receivedText string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		receivedChatID = r.URL.Query().Get("chat_id")
		receivedText = r.URL.Query().Get("text")
		w.WriteHeader(http.StatusOK)
		if err := json.NewEncoder(w).Encode(map[string]bool{"ok": true}); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}))
	defer server.Close()

	n := &Notifier{
		botToken:   "test-token",
		chatID:     "test-chat",
		httpClient: server.Client(),
		enabled:    true,
		baseURL:    server.URL,
	}

	if err := n.Send(context.Background(), "hello world"); err != nil {
		t.Fatalf("send should succeed: %v", err)
	}
	if receivedChatID != "test-chat" {
		t.Errorf("expected chat_id=test-chat, got %s", receivedChatID)
	}
	if receivedText != "hello world" {
		t.Errorf("expected text=hello world, got %s", receivedText)
	}
}

func TestSendServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		if err := json.NewEncoder(w).Encode(map[string]string{"description": "bad request"}); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}))
	defer server.Close()

	n := &Notifier{
		botToken:   "test-token",
		chatID:     "test-chat",
		httpClient: server.Client(),
		enabled:    true,
		baseURL:    server.URL,
	}

	if err := n.Send(context.Background(), "test"); err == nil {
		t.Fatal("expected error for server error response")
	}
}

func TestNotifyTradeExecutedDisabled(t *testing.T) {
	n := NewNotifier("", "")
	if err := n.NotifyTradeExecuted(context.Background(), trade.Trade{Symbol: "SPY"}); err != nil {
		t.Fatalf("disabled notify should succeed: %v", err)
	}
}

func TestNotifyTradeExecutedMessage(t *testing.T) {
	var receivedText string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		receivedText = r.URL.Query().Get("text")
		w.WriteHeader(http.StatusOK)
		if err := json.NewEncoder(w).Encode(map[string]bool{"ok": true}); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}))
	defer server.Close()

	n := &Notifier{
		botToken:   "test-token",
		chatID:     "test-chat",
		httpClient: server.Client(),
		enabled:    true,
		baseURL:    server.URL,
	}

	tr := trade.Trade{Symbol: "SPY", Type: trade.TypePutSpread, Quantity: 2, EntryCredit: 300}
	if err := n.NotifyTradeExecuted(context.Background(), tr); err != nil {
		t.Fatalf("notify executed: %v", err)
	}
	if !strings.Contains(receivedText, "SPY") || !strings.Contains(receivedText, "PUT_SPREAD") {
		t.Errorf("expected trade details in message, got %q", receivedText)
	}
}

func TestNotifyTradeClosedDisabled(t *testing.T) {
	n := NewNotifier("", "")
	if err := n.NotifyTradeClosed(context.Background(), "t1", 0.5); err != nil {
		t.Fatalf("disabled notify should succeed: %v", err)
	}
}
