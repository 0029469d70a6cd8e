package telegramtmpl

import (
	"fmt"
	"time"

	"github.com/arvindk1/dynamic-option-pilot-v2-sub001/internal/account"
	"github.com/arvindk1/dynamic-option-pilot-v2-sub001/internal/trade"
)

const expiryWarningWindow = 7 * 24 * time.Hour

// BuildPositionHints generates the position hints shown in the daily summary.
func BuildPositionHints(openTrades []trade.Trade, m account.Metrics) []string {
	return buildPositionHintsAt(openTrades, m, time.Now().UTC())
}

func buildPositionHintsAt(openTrades []trade.Trade, m account.Metrics, now time.Time) []string {
	hints := make([]string, 0, 4)

	expiringSoon := 0
	losers := 0
	for _, t := range openTrades {
		if t.Expiration != nil {
			until := t.Expiration.Sub(now)
			if until >= 0 && until <= expiryWarningWindow {
				expiringSoon++
			}
		}
		if t.PnL < 0 {
			losers++
		}
	}

	if expiringSoon > 0 {
		hints = append(hints, fmt.Sprintf("%d position(s) expire within 7 days.", expiringSoon))
	}
	if losers > 0 {
		hints = append(hints, fmt.Sprintf("%d open position(s) currently at a loss.", losers))
	}
	if m.DailyPnL < 0 && m.AccountBalance > 0 {
		pct := -m.DailyPnL / m.AccountBalance * 100
		if pct >= 2 {
			hints = append(hints, fmt.Sprintf("Daily loss at %.1f%% of account balance.", pct))
		}
	}
	if len(openTrades) == 0 {
		hints = append(hints, "No open positions.")
	}

	if len(hints) > 3 {
		hints = hints[:3]
	}
	return hints
}
