// Package opportunity holds read-only view models for candidate trades
// surfaced by the external scanning backend. They are displayed and, on user
// action, submitted back as the body of an execute call; never mutated here.
package opportunity

// Spread describes a candidate credit-spread trade.
type Spread struct {
	ID               string  `json:"id"`
	Symbol           string  `json:"symbol"`
	StrategyType     string  `json:"strategy_type"`
	Strike           float64 `json:"strike"`
	ShortStrike      float64 `json:"short_strike"`
	LongStrike       float64 `json:"long_strike"`
	Expiration       string  `json:"expiration"`
	DaysToExpiration int     `json:"days_to_expiration"`
	Premium          float64 `json:"premium"`
}

// Enhanced is a Spread enriched with the scanner's scoring context.
type Enhanced struct {
	Spread

	ProbabilityOfProfit float64 `json:"probability_of_profit,omitempty"`
	MaxProfit           float64 `json:"max_profit,omitempty"`
	MaxLoss             float64 `json:"max_loss,omitempty"`
	Score               float64 `json:"score,omitempty"`
	Rationale           string  `json:"rationale,omitempty"`
}
