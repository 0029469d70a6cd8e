package trade

import (
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
)

// dateLayouts are the formats the backend has been observed emitting.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseDate converts a backend date string into a time. Empty strings, the
// literal "null", and anything unparseable all mean "absent".
func ParseDate(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" || strings.EqualFold(s, "null") {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseDateOrNow is ParseDate with a now-fallback. Used only for entry dates,
// where the dashboard always needs a concrete value; callers must treat a
// fallback value as low-confidence.
func ParseDateOrNow(raw string, now time.Time) time.Time {
	if t, ok := ParseDate(raw); ok {
		return t
	}
	return now
}

// ParseType maps a backend strategy tag onto the canonical set. Unknown tags
// default to STOCK; the default is logged and counted so upstream data
// regressions stay visible.
func ParseType(raw string) Type {
	switch Type(strings.ToUpper(strings.TrimSpace(raw))) {
	case TypePut:
		return TypePut
	case TypeCall:
		return TypeCall
	case TypeStock:
		return TypeStock
	case TypePutSpread:
		return TypePutSpread
	case TypeCallSpread:
		return TypeCallSpread
	case TypeIronCondor:
		return TypeIronCondor
	case TypeStrangle:
		return TypeStrangle
	case TypeStraddle:
		return TypeStraddle
	}
	if strings.TrimSpace(raw) != "" {
		log.Printf("trade: unknown type %q, defaulting to STOCK", raw)
	}
	IncUnknownTag("type")
	return TypeStock
}

// ParseStatus maps a backend status onto OPEN/CLOSED/EXPIRED. Unknown values
// default to OPEN: a stale-but-visible position beats one dropped from view.
func ParseStatus(raw string) Status {
	switch Status(strings.ToUpper(strings.TrimSpace(raw))) {
	case StatusOpen:
		return StatusOpen
	case StatusClosed:
		return StatusClosed
	case StatusExpired:
		return StatusExpired
	}
	if strings.TrimSpace(raw) != "" {
		log.Printf("trade: unknown status %q, defaulting to OPEN", raw)
	}
	IncUnknownTag("status")
	return StatusOpen
}

// NormalizePosition converts a backend position payload into the canonical
// Trade. This is the single boundary where backend shape, per-contract
// pricing, and loose typing are resolved; every consumer downstream assumes
// its output.
func NormalizePosition(p Position) Trade {
	return normalizePositionAt(p, time.Now().UTC())
}

func normalizePositionAt(p Position, now time.Time) Trade {
	t := Trade{
		Symbol:   p.Symbol,
		Quantity: float64(p.Quantity),
		Status:   ParseStatus(p.Status),

		OrderID:        string(p.OrderID),
		ExecutionPrice: float64(p.ExecutionPrice),
		Commission:     float64(p.Commission),
		Message:        p.Message,
	}

	switch {
	case p.OrderID != "":
		t.ID = string(p.OrderID)
	case p.ID != "":
		t.ID = string(p.ID)
	default:
		t.ID = uuid.NewString()
		log.Printf("trade: position for %s has no order_id or id, assigned %s", p.Symbol, t.ID)
	}

	rawType := p.Type
	if rawType == "" {
		rawType = p.StrategyType
	}
	t.Type = ParseType(rawType)

	if p.ShortStrike != nil {
		t.ShortStrike = float64(*p.ShortStrike)
	}
	if p.LongStrike != nil {
		t.LongStrike = float64(*p.LongStrike)
	}

	// Entry credit is a position total in the client model. The backend's
	// entry_price is per contract, so absent an explicit total we convert
	// here and only here.
	if p.EntryCredit != nil {
		t.EntryCredit = float64(*p.EntryCredit)
	} else {
		t.EntryCredit = float64(p.EntryPrice) * float64(p.Quantity) * ContractMultiplier
	}

	t.EntryDate = ParseDateOrNow(p.EntryDate, now)

	expRaw := p.Expiration
	if expRaw == "" {
		expRaw = p.ExpirationDate
	}
	if exp, ok := ParseDate(expRaw); ok {
		t.Expiration = &exp
	}

	if p.ExitPrice != nil {
		v := float64(*p.ExitPrice)
		t.ExitPrice = &v
	}
	if exit, ok := ParseDate(p.ExitDate); ok {
		t.ExitDate = &exit
	}

	switch {
	case p.PnL != nil:
		t.PnL = float64(*p.PnL)
	case p.CurrentPnL != nil:
		t.PnL = float64(*p.CurrentPnL)
	}

	return t
}
