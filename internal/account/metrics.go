// Package account holds the dashboard's account summary models.
package account

// Metrics is the flat account summary shown at the top of the dashboard.
// Every numeric field defaults to zero when the backend omits it, so the UI
// always has something to render.
type Metrics struct {
	AccountBalance float64 `json:"account_balance"`
	BuyingPower    float64 `json:"buying_power"`
	DailyPnL       float64 `json:"daily_pnl"`
	TotalPnL       float64 `json:"total_pnl"`
	OpenPositions  int     `json:"open_positions"`
	WinRate        float64 `json:"win_rate"`

	// PerformanceHistory is attached best-effort after the primary fetch;
	// it may be nil when the secondary endpoint fails.
	PerformanceHistory []PerformancePoint `json:"performance_history,omitempty"`
}

// PerformancePoint is one sample of the account equity time series.
type PerformancePoint struct {
	Date    string  `json:"date"`
	Balance float64 `json:"balance"`
	PnL     float64 `json:"pnl"`
}
