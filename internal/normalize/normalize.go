// Package normalize converts the metrics API's heterogeneous payload shapes
// into the canonical records the dashboard renders. Unrecognized shapes
// degrade to empty/null values instead of errors: the display must stay
// renderable with partial data, so shape problems are absorbed here.
package normalize

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/finactical/finactical-dash/pkg/models"
)

// placeholderSymbol is used when a trade row carries no symbol at all.
const placeholderSymbol = "BTCUSDT"

// Ordered fallback key lists per canonical trade field; first present wins.
var (
	tradeIDKeys    = []string{"id", "trade_id"}
	tradeTimeKeys  = []string{"time", "timestamp", "ts"}
	tradeSideKeys  = []string{"side", "action", "type"}
	tradeQtyKeys   = []string{"qty", "quantity", "size", "position"}
	tradePriceKeys = []string{"price", "fill_price", "avg_price", "entry_price", "trade_price"}
	tradePnLKeys   = []string{"pnl", "profit", "p_and_l"}
)

// KPI normalizes a KPI payload. Two shapes are recognized: the canonical one
// (trades, win_rate, profit_factor, net_pnl) and the alternate source naming
// (trades_count, win_rate_pct, profit_factor, avg_trade_pnl). The branch is
// taken on the presence of the _pct/_count keys, never on value magnitude:
// a win rate below 1 is legitimate in either unit.
func KPI(raw []byte) models.KpiSnapshot {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return models.KpiSnapshot{}
	}

	_, hasPct := obj["win_rate_pct"]
	_, hasCount := obj["trades_count"]
	if hasPct || hasCount {
		snap := models.KpiSnapshot{
			Trades:       numField(obj, "trades_count"),
			WinRate:      numField(obj, "win_rate_pct"),
			ProfitFactor: numField(obj, "profit_factor"),
			NetPnL:       numField(obj, "avg_trade_pnl"),
		}
		if snap.WinRate != nil {
			scaled := *snap.WinRate / 100
			snap.WinRate = &scaled
		}
		return snap
	}

	return models.KpiSnapshot{
		Trades:       numField(obj, "trades"),
		WinRate:      numField(obj, "win_rate"),
		ProfitFactor: numField(obj, "profit_factor"),
		NetPnL:       numField(obj, "net_pnl"),
	}
}

// Equity normalizes an equity payload into the columnar form. Accepted
// shapes: {points:[{ts,equity},...]} and the already-columnar
// {ts:[...], equity:[...]}. The two slices are truncated to equal length.
func Equity(raw []byte) models.EquityCurve {
	var withPoints struct {
		Points []map[string]json.RawMessage `json:"points"`
	}
	if err := json.Unmarshal(raw, &withPoints); err == nil && withPoints.Points != nil {
		curve := models.EquityCurve{
			TS:     make([]string, 0, len(withPoints.Points)),
			Equity: make([]float64, 0, len(withPoints.Points)),
		}
		for _, p := range withPoints.Points {
			v := numField(p, "equity")
			if v == nil {
				continue
			}
			curve.TS = append(curve.TS, stringField(p, "ts"))
			curve.Equity = append(curve.Equity, *v)
		}
		return curve
	}

	var columnar struct {
		TS     []json.RawMessage `json:"ts"`
		Equity []float64         `json:"equity"`
	}
	if err := json.Unmarshal(raw, &columnar); err != nil {
		return models.EquityCurve{}
	}
	n := len(columnar.Equity)
	if len(columnar.TS) < n {
		n = len(columnar.TS)
	}
	curve := models.EquityCurve{TS: make([]string, n), Equity: columnar.Equity[:n:n]}
	for i := 0; i < n; i++ {
		curve.TS[i] = rawToString(columnar.TS[i])
	}
	return curve
}

// Trades normalizes a trades payload. Accepted envelopes: {trades:[...]},
// {items:[...]}, or a bare array. Rows that are not objects are skipped.
func Trades(raw []byte) []models.TradeRecord {
	items := tradeItems(raw)
	out := make([]models.TradeRecord, 0, len(items))
	for _, item := range items {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(item, &obj); err != nil {
			continue
		}
		out = append(out, tradeFromRaw(obj))
	}
	return out
}

func tradeItems(raw []byte) []json.RawMessage {
	var envelope struct {
		Trades []json.RawMessage `json:"trades"`
		Items  []json.RawMessage `json:"items"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil {
		if envelope.Trades != nil {
			return envelope.Trades
		}
		if envelope.Items != nil {
			return envelope.Items
		}
	}

	var bare []json.RawMessage
	if err := json.Unmarshal(raw, &bare); err == nil {
		return bare
	}
	return nil
}

func tradeFromRaw(obj map[string]json.RawMessage) models.TradeRecord {
	rec := models.TradeRecord{
		ID:     firstString(obj, tradeIDKeys),
		Time:   firstString(obj, tradeTimeKeys),
		Symbol: firstString(obj, []string{"symbol"}),
		Side:   classifySide(firstString(obj, tradeSideKeys)),
		Qty:    firstNum(obj, tradeQtyKeys),
		Price:  firstNum(obj, tradePriceKeys),
		PnL:    firstNum(obj, tradePnLKeys),
	}
	if rec.Symbol == "" {
		rec.Symbol = placeholderSymbol
	}
	return rec
}

// classifySide maps a free-text side/action/type value onto the two-value
// enumeration. Anything containing "sell" (case-insensitive) is SELL,
// everything else is BUY. Lossy but deterministic; kept for compatibility
// with the source data.
func classifySide(raw string) models.Side {
	if strings.Contains(strings.ToLower(raw), "sell") {
		return models.SideSell
	}
	return models.SideBuy
}

// numField extracts a numeric field, accepting JSON numbers and numeric
// strings. Returns nil for missing, null, or non-numeric values.
func numField(obj map[string]json.RawMessage, key string) *float64 {
	raw, ok := obj[key]
	if !ok {
		return nil
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return &f
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return &f
		}
	}
	return nil
}

func firstNum(obj map[string]json.RawMessage, keys []string) float64 {
	for _, key := range keys {
		if v := numField(obj, key); v != nil {
			return *v
		}
	}
	return 0
}

// stringField renders a field that may be a string or a number as a string.
func stringField(obj map[string]json.RawMessage, key string) string {
	raw, ok := obj[key]
	if !ok {
		return ""
	}
	return rawToString(raw)
}

func firstString(obj map[string]json.RawMessage, keys []string) string {
	for _, key := range keys {
		if s := stringField(obj, key); s != "" {
			return s
		}
	}
	return ""
}

func rawToString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return ""
}
