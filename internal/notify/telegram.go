// Package notify sends best-effort trade alerts to a Telegram chat via the
// Bot API. Failures are the caller's to log; nothing here blocks a trading
// operation.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/arvindk1/dynamic-option-pilot-v2-sub001/internal/account"
	"github.com/arvindk1/dynamic-option-pilot-v2-sub001/internal/telegramtmpl"
	"github.com/arvindk1/dynamic-option-pilot-v2-sub001/internal/trade"
)

// Notifier sends alerts to a Telegram chat.
type Notifier struct {
	botToken   string
	chatID     string
	httpClient *http.Client
	enabled    bool
	baseURL    string // overridable for testing; defaults to Telegram API
}

// NewNotifier creates a Notifier. Notifications are enabled only when both
// botToken and chatID are non-empty.
func NewNotifier(botToken, chatID string) *Notifier {
	return &Notifier{
		botToken:   botToken,
		chatID:     chatID,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		enabled:    botToken != "" && chatID != "",
	}
}

// Enabled reports whether the notifier is active.
func (n *Notifier) Enabled() bool { return n.enabled }

// Send posts a message to the configured Telegram chat.
func (n *Notifier) Send(ctx context.Context, msg string) error {
	if !n.enabled {
		return nil
	}

	endpoint := n.baseURL
	if endpoint == "" {
		endpoint = fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", n.botToken)
	}
	vals := url.Values{
		"chat_id":    {n.chatID},
		"text":       {msg},
		"parse_mode": {"HTML"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, nil)
	if err != nil {
		return fmt.Errorf("notify: build request: %w", err)
	}
	req.URL.RawQuery = vals.Encode()

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("notify: send: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var body struct {
			Description string `json:"description"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&body)
		return fmt.Errorf("notify: telegram %d: %s", resp.StatusCode, body.Description)
	}
	return nil
}

// NotifyTradeExecuted sends an execution alert.
func (n *Notifier) NotifyTradeExecuted(ctx context.Context, t trade.Trade) error {
	return n.Send(ctx, telegramtmpl.RenderTradeExecutedHTML(t))
}

// NotifyTradeClosed sends a close alert.
func (n *Notifier) NotifyTradeClosed(ctx context.Context, tradeID string, exitPrice float64) error {
	return n.Send(ctx, telegramtmpl.RenderTradeClosedHTML(tradeID, exitPrice))
}

// NotifyDailySummary sends the daily account summary.
func (n *Notifier) NotifyDailySummary(ctx context.Context, mode string, m account.Metrics, openTrades []trade.Trade) error {
	return n.Send(ctx, telegramtmpl.RenderSummaryHTML(telegramtmpl.BuildSummaryData(mode, m, openTrades)))
}

// NotifyBackendUnreachable sends a backend-connectivity alert.
func (n *Notifier) NotifyBackendUnreachable(ctx context.Context, detail string) error {
	msg := fmt.Sprintf("<b>Backend Unreachable</b>\n%s", detail)
	return n.Send(ctx, msg)
}
