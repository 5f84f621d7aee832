package ui

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/finactical/finactical-dash/pkg/models"
)

func TestFilterTrades(t *testing.T) {
	trades := []models.TradeRecord{
		{ID: "101", Symbol: "BTCUSDT", Side: models.SideBuy},
		{ID: "102", Symbol: "ETHUSDT", Side: models.SideSell},
		{ID: "203", Symbol: "BTCUSDT", Side: models.SideSell},
	}

	if got := filterTrades(trades, ""); len(got) != 3 {
		t.Errorf("empty query: len = %d, want all 3", len(got))
	}
	if got := filterTrades(trades, "eth"); len(got) != 1 || got[0].ID != "102" {
		t.Errorf("symbol query: %+v", got)
	}
	if got := filterTrades(trades, "sell"); len(got) != 2 {
		t.Errorf("side query: len = %d, want 2", len(got))
	}
	if got := filterTrades(trades, "10"); len(got) != 2 {
		t.Errorf("id substring query: len = %d, want 2", len(got))
	}
	if got := filterTrades(trades, "  SELL  "); len(got) != 2 {
		t.Errorf("trimmed case-insensitive query: len = %d, want 2", len(got))
	}
	if got := filterTrades(trades, "xrp"); len(got) != 0 {
		t.Errorf("no-match query: %+v", got)
	}
}

func TestNextRefresh(t *testing.T) {
	cases := map[int]int{10: 30, 30: 60, 60: 0, 0: 10, 45: 10}
	for cur, want := range cases {
		if got := nextRefresh(cur); got != want {
			t.Errorf("nextRefresh(%d) = %d, want %d", cur, got, want)
		}
	}
}

func TestSparkline(t *testing.T) {
	if got := Sparkline(nil, 40); got != "" {
		t.Errorf("empty series = %q, want empty", got)
	}

	got := Sparkline([]float64{0, 1, 2, 3}, 40)
	runes := []rune(got)
	if len(runes) != 4 {
		t.Fatalf("len = %d, want 4 (no padding)", len(runes))
	}
	if runes[0] != sparkLevels[0] || runes[3] != sparkLevels[len(sparkLevels)-1] {
		t.Errorf("extremes not mapped to extreme glyphs: %q", got)
	}

	flat := Sparkline([]float64{5, 5, 5}, 40)
	for _, r := range flat {
		if r != sparkLevels[len(sparkLevels)/2] {
			t.Errorf("flat series glyph = %q, want mid-height", string(r))
		}
	}
}

func TestSparklineDownsamples(t *testing.T) {
	values := make([]float64, 1000)
	for i := range values {
		values[i] = float64(i)
	}
	got := []rune(Sparkline(values, 50))
	if len(got) != 50 {
		t.Fatalf("len = %d, want 50", len(got))
	}
	if got[0] == got[len(got)-1] {
		t.Error("rising series lost its shape after downsampling")
	}
}

func TestDownsampleShorterThanWidth(t *testing.T) {
	values := []float64{1, 2, 3}
	got := downsample(values, 10)
	if len(got) != 3 {
		t.Fatalf("len = %d, want untouched 3", len(got))
	}
}

func TestRangeOf(t *testing.T) {
	lo, hi := rangeOf([]float64{3, -1, 7})
	if lo != -1 || hi != 7 {
		t.Errorf("range = (%v, %v), want (-1, 7)", lo, hi)
	}
	lo, hi = rangeOf(nil)
	if lo != 0 || hi != 0 {
		t.Errorf("empty range = (%v, %v), want zeros", lo, hi)
	}
}

func TestFmtHelpers(t *testing.T) {
	if got := fmtNum(nil, 2); got != "—" {
		t.Errorf("nil value = %q, want dash", got)
	}
	v := 12.345
	if got := fmtNum(&v, 2); got != "12.35" {
		t.Errorf("fmtNum = %q", got)
	}
	w := 0.662
	if got := fmtPct(&w); got != "66.2%" {
		t.Errorf("fmtPct = %q", got)
	}
	if got := fmtPct(nil); got != "—" {
		t.Errorf("nil pct = %q, want dash", got)
	}
}

func TestRefreshLabel(t *testing.T) {
	if got := refreshLabel(0); got != "manual" {
		t.Errorf("label(0) = %q", got)
	}
	if got := refreshLabel(30); got != "every 30s" {
		t.Errorf("label(30) = %q", got)
	}
}

func TestClip(t *testing.T) {
	if got := clip("short", 10); got != "short" {
		t.Errorf("clip = %q", got)
	}
	got := clip("averylongidentifier", 8)
	if len([]rune(got)) != 8 || !strings.HasSuffix(got, "…") {
		t.Errorf("clip = %q, want 8 runes ending in ellipsis", got)
	}

	// Multibyte symbols must never be cut mid-rune.
	got = clip("BTC—ÜBER—LANG", 6)
	if !utf8.ValidString(got) {
		t.Errorf("clip = %q, invalid UTF-8", got)
	}
	if len([]rune(got)) != 6 || !strings.HasSuffix(got, "…") {
		t.Errorf("clip = %q, want 6 runes ending in ellipsis", got)
	}
	if got := clip("日本語", 5); got != "日本語" {
		t.Errorf("clip = %q, want unchanged", got)
	}
}

func TestClampPage(t *testing.T) {
	m := Model{}
	m.state.Trades = make([]models.TradeRecord, 30) // two pages at 25/page
	m.page = 5
	m.clampPage()
	if m.page != 1 {
		t.Errorf("page = %d, want clamped to 1", m.page)
	}

	m.state.Trades = nil
	m.clampPage()
	if m.page != 0 {
		t.Errorf("page = %d, want 0 with no trades", m.page)
	}
}

func TestThemeByName(t *testing.T) {
	if ThemeByName("light").Name != "light" {
		t.Error("light theme not selected")
	}
	if ThemeByName("dark").Name != "dark" {
		t.Error("dark theme not selected")
	}
	if ThemeByName("unknown").Name != "dark" {
		t.Error("unknown theme must fall back to dark")
	}
}
