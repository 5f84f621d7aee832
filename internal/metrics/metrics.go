// Package metrics holds the pure computations derived from normalized data:
// drawdown series, KPI deltas, and trade aggregates.
package metrics

import (
	"math"

	"github.com/finactical/finactical-dash/pkg/models"
)

// Drawdown returns, for each equity point, the distance below the running
// peak (zero at or above the peak, negative below). The result has the same
// length as the input.
func Drawdown(equity []float64) []float64 {
	out := make([]float64, len(equity))
	peak := math.Inf(-1)
	for i, v := range equity {
		if v > peak {
			peak = v
		}
		out[i] = v - peak
	}
	return out
}

// MaxDrawdownPct returns the deepest peak-to-trough decline as a percentage
// of the peak, as a positive number. Zero for flat or rising curves. Peaks
// at or below zero are skipped: a percentage of a non-positive base is
// meaningless.
func MaxDrawdownPct(equity []float64) float64 {
	peak := math.Inf(-1)
	worst := 0.0
	for _, v := range equity {
		if v > peak {
			peak = v
		}
		if peak <= 0 {
			continue
		}
		dd := (peak - v) / peak * 100
		if dd > worst {
			worst = dd
		}
	}
	return worst
}

// PercentDeltas computes the percent change of each KPI from the previous
// snapshot, rounded to one decimal. A delta is nil when either side is
// missing or the previous value is zero.
func PercentDeltas(prev, curr models.KpiSnapshot) models.KpiDeltas {
	return models.KpiDeltas{
		Trades:       percentDelta(prev.Trades, curr.Trades),
		WinRate:      percentDelta(prev.WinRate, curr.WinRate),
		ProfitFactor: percentDelta(prev.ProfitFactor, curr.ProfitFactor),
		NetPnL:       percentDelta(prev.NetPnL, curr.NetPnL),
	}
}

func percentDelta(prev, curr *float64) *float64 {
	if prev == nil || curr == nil || *prev == 0 {
		return nil
	}
	d := (*curr - *prev) / math.Abs(*prev) * 100
	d = math.Round(d*10) / 10
	return &d
}

// TradeStats aggregates a set of trade records into a KPI snapshot:
// count, win rate (fraction of trades with positive pnl), profit factor
// (gross profit over gross loss), and net pnl. Fields that would divide
// by zero are left nil.
func TradeStats(trades []models.TradeRecord) models.KpiSnapshot {
	count := float64(len(trades))
	snap := models.KpiSnapshot{Trades: &count}
	if len(trades) == 0 {
		return snap
	}

	var wins, grossProfit, grossLoss, net float64
	for _, tr := range trades {
		net += tr.PnL
		if tr.PnL > 0 {
			wins++
			grossProfit += tr.PnL
		} else if tr.PnL < 0 {
			grossLoss += -tr.PnL
		}
	}

	winRate := wins / count
	snap.WinRate = &winRate
	snap.NetPnL = &net
	if grossLoss > 0 {
		pf := grossProfit / grossLoss
		snap.ProfitFactor = &pf
	}
	return snap
}
