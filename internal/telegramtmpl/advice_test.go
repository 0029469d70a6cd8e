package telegramtmpl

import (
	"strings"
	"testing"
	"time"

	"github.com/arvindk1/dynamic-option-pilot-v2-sub001/internal/account"
	"github.com/arvindk1/dynamic-option-pilot-v2-sub001/internal/trade"
)

func expiringAt(d time.Duration, from time.Time) *time.Time {
	exp := from.Add(d)
	return &exp
}

func TestBuildPositionHintsExpiringSoon(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	open := []trade.Trade{
		{ID: "t-1", Expiration: expiringAt(3*24*time.Hour, now)},
		{ID: "t-2", Expiration: expiringAt(30*24*time.Hour, now)},
	}

	hints := buildPositionHintsAt(open, account.Metrics{}, now)
	if len(hints) != 1 {
		t.Fatalf("hints = %v, want exactly one", hints)
	}
	if !strings.Contains(hints[0], "1 position(s) expire") {
		t.Errorf("hint = %q, want expiry warning", hints[0])
	}
}

func TestBuildPositionHintsPastExpirationIgnored(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	open := []trade.Trade{
		{ID: "t-1", Expiration: expiringAt(-24*time.Hour, now)},
	}
	hints := buildPositionHintsAt(open, account.Metrics{}, now)
	for _, h := range hints {
		if strings.Contains(h, "expire") {
			t.Errorf("past expiration should not produce expiry hint: %q", h)
		}
	}
}

func TestBuildPositionHintsLosers(t *testing.T) {
	now := time.Now().UTC()
	open := []trade.Trade{
		{ID: "t-1", PnL: -50},
		{ID: "t-2", PnL: 25},
	}
	hints := buildPositionHintsAt(open, account.Metrics{}, now)
	found := false
	for _, h := range hints {
		if strings.Contains(h, "1 open position(s) currently at a loss") {
			found = true
		}
	}
	if !found {
		t.Errorf("hints = %v, want loss warning", hints)
	}
}

func TestBuildPositionHintsDailyLoss(t *testing.T) {
	now := time.Now().UTC()
	m := account.Metrics{AccountBalance: 10000, DailyPnL: -300}
	hints := buildPositionHintsAt([]trade.Trade{{ID: "t-1"}}, m, now)
	found := false
	for _, h := range hints {
		if strings.Contains(h, "Daily loss at 3.0%") {
			found = true
		}
	}
	if !found {
		t.Errorf("hints = %v, want daily loss warning", hints)
	}
}

func TestBuildPositionHintsSmallDailyLossIgnored(t *testing.T) {
	now := time.Now().UTC()
	m := account.Metrics{AccountBalance: 10000, DailyPnL: -50}
	hints := buildPositionHintsAt([]trade.Trade{{ID: "t-1"}}, m, now)
	for _, h := range hints {
		if strings.Contains(h, "Daily loss") {
			t.Errorf("loss below threshold should not warn: %q", h)
		}
	}
}

func TestBuildPositionHintsEmpty(t *testing.T) {
	hints := buildPositionHintsAt(nil, account.Metrics{}, time.Now().UTC())
	if len(hints) != 1 || hints[0] != "No open positions." {
		t.Errorf("hints = %v, want no-open-positions note", hints)
	}
}

func TestBuildPositionHintsCapped(t *testing.T) {
	now := time.Now().UTC()
	open := []trade.Trade{
		{ID: "t-1", PnL: -10, Expiration: expiringAt(24*time.Hour, now)},
	}
	m := account.Metrics{AccountBalance: 1000, DailyPnL: -500}
	hints := buildPositionHintsAt(open, m, now)
	if len(hints) > 3 {
		t.Errorf("hints = %d entries, want at most 3", len(hints))
	}
}
