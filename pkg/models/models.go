package models

// Side is the normalized direction of a trade.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// KpiSnapshot is one poll's key performance indicators. A field is nil when
// the source payload omitted it or delivered something non-numeric. Snapshots
// are immutable once built; each poll replaces the previous one, which is
// retained only to compute percent deltas.
type KpiSnapshot struct {
	Trades       *float64 `json:"trades"`
	WinRate      *float64 `json:"win_rate"` // fraction in [0,1]
	ProfitFactor *float64 `json:"profit_factor"`
	NetPnL       *float64 `json:"net_pnl"`
}

// KpiDeltas holds percent changes against the previous snapshot, rounded to
// one decimal. A delta is nil when either value is missing or the previous
// value is exactly zero (undefined percent change).
type KpiDeltas struct {
	Trades       *float64 `json:"trades"`
	WinRate      *float64 `json:"win_rate"`
	ProfitFactor *float64 `json:"profit_factor"`
	NetPnL       *float64 `json:"net_pnl"`
}

// EquityCurve is the columnar equity series used by the charts: two aligned
// slices of equal length, chronological order as delivered by the source.
type EquityCurve struct {
	TS     []string  `json:"ts"`
	Equity []float64 `json:"equity"`
}

// Len returns the number of points in the curve.
func (c EquityCurve) Len() int { return len(c.Equity) }

// TradeRecord is one normalized trade row.
type TradeRecord struct {
	ID     string  `json:"id"`
	Time   string  `json:"time"`
	Symbol string  `json:"symbol"`
	Side   Side    `json:"side"`
	Qty    float64 `json:"qty"`
	Price  float64 `json:"price"`
	PnL    float64 `json:"pnl"`
}
