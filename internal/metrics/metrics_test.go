package metrics

import (
	"testing"

	"github.com/finactical/finactical-dash/pkg/models"
)

func fp(v float64) *float64 { return &v }

func TestDrawdown(t *testing.T) {
	cases := []struct {
		name   string
		equity []float64
		want   []float64
	}{
		{"empty", []float64{}, []float64{}},
		{"single", []float64{5}, []float64{0}},
		{"mixed", []float64{1, 3, 2, 5, 4}, []float64{0, 0, -1, 0, -1}},
		{"monotonic rise", []float64{1, 2, 3}, []float64{0, 0, 0}},
		{"decline", []float64{10, 8, 6}, []float64{0, -2, -4}},
		{"negative start", []float64{-5, -3, -4}, []float64{0, 0, -1}},
	}
	for _, tc := range cases {
		got := Drawdown(tc.equity)
		if len(got) != len(tc.want) {
			t.Errorf("%s: len = %d, want %d", tc.name, len(got), len(tc.want))
			continue
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Errorf("%s: [%d] = %v, want %v", tc.name, i, got[i], tc.want[i])
			}
		}
	}
}

func TestMaxDrawdownPct(t *testing.T) {
	cases := []struct {
		name   string
		equity []float64
		want   float64
	}{
		{"empty", nil, 0},
		{"rising", []float64{1, 2, 3}, 0},
		{"halved", []float64{100, 50, 120}, 50},
		{"deepest wins", []float64{100, 90, 100, 60}, 40},
	}
	for _, tc := range cases {
		if got := MaxDrawdownPct(tc.equity); got != tc.want {
			t.Errorf("%s: got %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestPercentDeltas(t *testing.T) {
	prev := models.KpiSnapshot{NetPnL: fp(100), WinRate: fp(0.5), Trades: fp(0)}
	curr := models.KpiSnapshot{NetPnL: fp(110), WinRate: fp(0.4), Trades: fp(3), ProfitFactor: fp(2)}

	d := PercentDeltas(prev, curr)

	if d.NetPnL == nil || *d.NetPnL != 10.0 {
		t.Errorf("net pnl delta = %v, want 10.0", d.NetPnL)
	}
	if d.WinRate == nil || *d.WinRate != -20.0 {
		t.Errorf("win rate delta = %v, want -20.0", d.WinRate)
	}
	if d.Trades != nil {
		t.Errorf("trades delta = %v, want nil when previous is zero", d.Trades)
	}
	if d.ProfitFactor != nil {
		t.Errorf("profit factor delta = %v, want nil when previous missing", d.ProfitFactor)
	}
}

func TestPercentDeltaNegativeBase(t *testing.T) {
	d := PercentDeltas(models.KpiSnapshot{NetPnL: fp(-50)}, models.KpiSnapshot{NetPnL: fp(-25)})
	if d.NetPnL == nil || *d.NetPnL != 50.0 {
		t.Errorf("delta = %v, want 50.0 (divisor is |prev|)", d.NetPnL)
	}
}

func TestPercentDeltaRounding(t *testing.T) {
	d := PercentDeltas(models.KpiSnapshot{NetPnL: fp(3)}, models.KpiSnapshot{NetPnL: fp(4)})
	if d.NetPnL == nil || *d.NetPnL != 33.3 {
		t.Errorf("delta = %v, want 33.3", d.NetPnL)
	}
}

func TestTradeStats(t *testing.T) {
	trades := []models.TradeRecord{
		{PnL: 10}, {PnL: -4}, {PnL: 6}, {PnL: 0},
	}
	snap := TradeStats(trades)

	if snap.Trades == nil || *snap.Trades != 4 {
		t.Errorf("trades = %v, want 4", snap.Trades)
	}
	if snap.WinRate == nil || *snap.WinRate != 0.5 {
		t.Errorf("win rate = %v, want 0.5", snap.WinRate)
	}
	if snap.ProfitFactor == nil || *snap.ProfitFactor != 4 {
		t.Errorf("profit factor = %v, want 4", snap.ProfitFactor)
	}
	if snap.NetPnL == nil || *snap.NetPnL != 12 {
		t.Errorf("net pnl = %v, want 12", snap.NetPnL)
	}
}

func TestTradeStatsNoLosses(t *testing.T) {
	snap := TradeStats([]models.TradeRecord{{PnL: 1}, {PnL: 2}})
	if snap.ProfitFactor != nil {
		t.Errorf("profit factor = %v, want nil with zero gross loss", snap.ProfitFactor)
	}
}

func TestTradeStatsEmpty(t *testing.T) {
	snap := TradeStats(nil)
	if snap.Trades == nil || *snap.Trades != 0 {
		t.Errorf("trades = %v, want 0", snap.Trades)
	}
	if snap.WinRate != nil || snap.NetPnL != nil {
		t.Errorf("win rate/net pnl = %v/%v, want nil for empty set", snap.WinRate, snap.NetPnL)
	}
}
