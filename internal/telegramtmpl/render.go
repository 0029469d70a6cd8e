// Package telegramtmpl renders the dashboard's Telegram summary messages in
// HTML parse mode.
package telegramtmpl

import (
	"fmt"
	"strings"

	"github.com/arvindk1/dynamic-option-pilot-v2-sub001/internal/account"
	"github.com/arvindk1/dynamic-option-pilot-v2-sub001/internal/trade"
)

// SummaryData describes the data required to render a daily account summary.
type SummaryData struct {
	Mode           string
	AccountBalance float64
	BuyingPower    float64
	DailyPnL       float64
	TotalPnL       float64
	WinRate        float64
	OpenPositions  int
	Hints          []string
}

// BuildSummaryData normalizes summary inputs into a renderable payload.
func BuildSummaryData(mode string, m account.Metrics, openTrades []trade.Trade) SummaryData {
	return SummaryData{
		Mode:           strings.ToUpper(strings.TrimSpace(mode)),
		AccountBalance: m.AccountBalance,
		BuyingPower:    m.BuyingPower,
		DailyPnL:       m.DailyPnL,
		TotalPnL:       m.TotalPnL,
		WinRate:        m.WinRate,
		OpenPositions:  len(openTrades),
		Hints:          BuildPositionHints(openTrades, m),
	}
}

// RenderSummaryHTML renders the daily account summary.
func RenderSummaryHTML(d SummaryData) string {
	var b strings.Builder
	b.WriteString("<b>Daily Account Summary</b>\n")
	if d.Mode != "" {
		b.WriteString("Mode: " + d.Mode + "\n")
	}
	b.WriteString(fmt.Sprintf("Balance: $%.2f\nBuying Power: $%.2f\n", d.AccountBalance, d.BuyingPower))
	b.WriteString(fmt.Sprintf("Daily P&L: %+.2f\nTotal P&L: %+.2f\n", d.DailyPnL, d.TotalPnL))
	b.WriteString(fmt.Sprintf("Win Rate: %.1f%%\nOpen Positions: %d\n", d.WinRate, d.OpenPositions))
	if len(d.Hints) > 0 {
		b.WriteString("\n<b>Position Hints</b>\n")
		for _, h := range d.Hints {
			b.WriteString("- " + h + "\n")
		}
	}
	return strings.TrimSpace(b.String())
}

// RenderTradeExecutedHTML renders an execution alert.
func RenderTradeExecutedHTML(t trade.Trade) string {
	var b strings.Builder
	b.WriteString("<b>Trade Executed</b>\n")
	b.WriteString(fmt.Sprintf("Symbol: %s\nType: %s\n", t.Symbol, t.Type))
	b.WriteString(fmt.Sprintf("Quantity: %.0f\nCredit: $%.2f\n", t.Quantity, t.EntryCredit))
	if t.ShortStrike > 0 {
		b.WriteString(fmt.Sprintf("Short Strike: %.2f\n", t.ShortStrike))
	}
	if t.LongStrike > 0 {
		b.WriteString(fmt.Sprintf("Long Strike: %.2f\n", t.LongStrike))
	}
	return strings.TrimSpace(b.String())
}

// RenderTradeClosedHTML renders a close alert.
func RenderTradeClosedHTML(tradeID string, exitPrice float64) string {
	return fmt.Sprintf("<b>Trade Closed</b>\nID: %s\nExit Price: $%.2f", tradeID, exitPrice)
}
