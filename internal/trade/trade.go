package trade

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// ContractMultiplier is the standard option contract size in shares.
const ContractMultiplier = 100

// Type identifies the strategy of a position.
type Type string

const (
	TypePut        Type = "PUT"
	TypeCall       Type = "CALL"
	TypeStock      Type = "STOCK"
	TypePutSpread  Type = "PUT_SPREAD"
	TypeCallSpread Type = "CALL_SPREAD"
	TypeIronCondor Type = "IRON_CONDOR"
	TypeStrangle   Type = "STRANGLE"
	TypeStraddle   Type = "STRADDLE"
)

// Status is the lifecycle state of a trade.
type Status string

const (
	StatusOpen    Status = "OPEN"
	StatusClosed  Status = "CLOSED"
	StatusExpired Status = "EXPIRED"
)

// Trade is the canonical client-side view of an executed position. All
// backend payloads pass through NormalizePosition; nothing else in the
// repository builds a Trade by hand.
type Trade struct {
	ID          string     `json:"id"`
	Symbol      string     `json:"symbol"`
	Type        Type       `json:"type"`
	ShortStrike float64    `json:"short_strike"`
	LongStrike  float64    `json:"long_strike"`
	Quantity    float64    `json:"quantity"`
	EntryCredit float64    `json:"entry_credit"`
	EntryDate   time.Time  `json:"entry_date"`
	Expiration  *time.Time `json:"expiration,omitempty"`
	Status      Status     `json:"status"`
	ExitPrice   *float64   `json:"exit_price,omitempty"`
	ExitDate    *time.Time `json:"exit_date,omitempty"`
	PnL         float64    `json:"pnl"`

	// Execution passthrough fields.
	OrderID        string  `json:"order_id,omitempty"`
	ExecutionPrice float64 `json:"execution_price,omitempty"`
	Commission     float64 `json:"commission,omitempty"`
	Message        string  `json:"message,omitempty"`
}

// Open reports whether the trade is still open.
func (t Trade) Open() bool { return t.Status == StatusOpen }

// FlexString decodes a JSON value that may arrive as a string or a number.
// Backend position ids are not consistently typed.
type FlexString string

func (f *FlexString) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		*f = ""
		return nil
	}
	if len(s) > 0 && s[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*f = FlexString(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = FlexString(n.String())
	return nil
}

// FlexFloat decodes a JSON number that may arrive quoted.
type FlexFloat float64

func (f *FlexFloat) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" || s == `""` {
		*f = 0
		return nil
	}
	if len(s) > 0 && s[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return err
		}
		*f = FlexFloat(parsed)
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*f = FlexFloat(v)
	return nil
}

// Position is the loosely-typed position payload as the backend sends it.
// Field presence is meaningful: pointers distinguish "absent" from zero.
type Position struct {
	OrderID      FlexString `json:"order_id"`
	ID           FlexString `json:"id"`
	Symbol       string     `json:"symbol"`
	Type         string     `json:"type"`
	StrategyType string     `json:"strategy_type"`

	ShortStrike *FlexFloat `json:"short_strike"`
	LongStrike  *FlexFloat `json:"long_strike"`
	Quantity    FlexFloat  `json:"quantity"`

	EntryCredit *FlexFloat `json:"entry_credit"`
	EntryPrice  FlexFloat  `json:"entry_price"`

	EntryDate      string `json:"entry_date"`
	Expiration     string `json:"expiration"`
	ExpirationDate string `json:"expiration_date"`

	Status     string     `json:"status"`
	ExitPrice  *FlexFloat `json:"exit_price"`
	ExitDate   string     `json:"exit_date"`
	PnL        *FlexFloat `json:"pnl"`
	CurrentPnL *FlexFloat `json:"current_pnl"`

	ExecutionPrice FlexFloat `json:"execution_price"`
	Commission     FlexFloat `json:"commission"`
	Message        string    `json:"message"`
}
