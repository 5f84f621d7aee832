package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/finactical/finactical-dash/internal/metrics"
	"github.com/finactical/finactical-dash/pkg/models"
)

func (m Model) View() string {
	var sections []string

	sections = append(sections, m.viewHeader())
	if m.state.Err != "" {
		sections = append(sections, m.theme.Banner.Render(m.state.Err))
	}
	sections = append(sections, m.viewCards())
	sections = append(sections, m.viewCharts())
	sections = append(sections, m.viewTrades())
	if m.status != "" {
		sections = append(sections, m.theme.Status.Render(m.status))
	}
	sections = append(sections, m.viewFooter())

	return m.theme.App.Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

func (m Model) viewHeader() string {
	title := m.theme.Title.Render("Finactical Dashboard")
	meta := fmt.Sprintf("  %s · %s · %s", m.cfg.APIBase, refreshLabel(m.cfg.RefreshSec), m.ctrl.Phase())
	if !m.state.LastUpdate.IsZero() {
		meta += " · updated " + m.state.LastUpdate.Format("15:04:05")
	}
	return title + m.theme.Footer.Render(meta)
}

func (m Model) viewCards() string {
	kpi := m.state.KPI
	if kpi == nil {
		kpi = &models.KpiSnapshot{}
	}
	d := m.state.Deltas

	netStyle := m.theme.Value
	if kpi.NetPnL != nil && *kpi.NetPnL > 0 {
		netStyle = m.theme.Up.Bold(true)
	} else if kpi.NetPnL != nil && *kpi.NetPnL < 0 {
		netStyle = m.theme.Down.Bold(true)
	}

	cards := []string{
		m.card("Trades", fmtNum(kpi.Trades, 0), d.Trades, m.theme.Value),
		m.card("Win Rate", fmtPct(kpi.WinRate), d.WinRate, m.theme.Value),
		m.card("Profit Factor", fmtNum(kpi.ProfitFactor, 2), d.ProfitFactor, m.theme.Value),
		m.card("Net PnL", fmtNum(kpi.NetPnL, 2), d.NetPnL, netStyle),
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cards...)
}

func (m Model) card(name, value string, delta *float64, valueStyle lipgloss.Style) string {
	body := lipgloss.JoinVertical(lipgloss.Left,
		m.theme.CardName.Render(name),
		valueStyle.Render(value),
		m.deltaLine(delta),
	)
	return m.theme.Card.Render(body)
}

// deltaLine renders the change since the previous snapshot: an arrow plus
// the signed percentage, or a dash when no comparison is possible.
func (m Model) deltaLine(delta *float64) string {
	if delta == nil {
		return m.theme.Neutral.Render("—")
	}
	switch {
	case *delta > 0:
		return m.theme.Up.Render(fmt.Sprintf("▲ %+.1f%%", *delta))
	case *delta < 0:
		return m.theme.Down.Render(fmt.Sprintf("▼ %+.1f%%", *delta))
	default:
		return m.theme.Neutral.Render("0.0%")
	}
}

func (m Model) viewCharts() string {
	chartWidth := m.width - 20
	if chartWidth < 20 {
		chartWidth = 20
	}

	equity := m.state.Equity.Equity
	lo, hi := rangeOf(equity)
	last := "—"
	if len(equity) > 0 {
		last = fmtFloat(equity[len(equity)-1], 2)
	}
	eq := lipgloss.JoinVertical(lipgloss.Left,
		m.theme.Header.Render("EQUITY"),
		m.theme.Spark.Render(Sparkline(equity, chartWidth)),
		m.theme.Footer.Render(fmt.Sprintf("min %s · max %s · last %s · %d points",
			fmtFloat(lo, 2), fmtFloat(hi, 2), last, len(equity))),
	)

	maxDD := metrics.MaxDrawdownPct(equity)
	dd := lipgloss.JoinVertical(lipgloss.Left,
		m.theme.Header.Render("DRAWDOWN"),
		m.theme.SparkDD.Render(Sparkline(m.state.Drawdown, chartWidth)),
		m.theme.Footer.Render(fmt.Sprintf("max drawdown %.1f%%", maxDD)),
	)

	return lipgloss.JoinVertical(lipgloss.Left,
		m.theme.Section.Render(eq),
		m.theme.Section.Render(dd),
	)
}

func (m Model) viewTrades() string {
	trades := m.filteredTrades()
	pages := 1
	if len(trades) > 0 {
		pages = (len(trades)-1)/pageSize + 1
	}
	start := m.page * pageSize
	end := start + pageSize
	if start > len(trades) {
		start = len(trades)
	}
	if end > len(trades) {
		end = len(trades)
	}

	var b strings.Builder
	header := fmt.Sprintf("TRADES  %d/%d  page %d/%d", len(trades), len(m.state.Trades), m.page+1, pages)
	if m.mode == modeSearch {
		header += "  search: " + m.input + "█"
	} else if m.search != "" {
		header += "  search: " + m.search
	}
	b.WriteString(m.theme.Header.Render(header))
	b.WriteByte('\n')
	b.WriteString(fmt.Sprintf("  %-12s %-20s %-10s %-5s %12s %12s %12s\n",
		"ID", "TIME", "SYMBOL", "SIDE", "QTY", "PRICE", "PNL"))

	if len(trades) == 0 {
		b.WriteString(m.theme.Neutral.Render("  no trades") + "\n")
	}
	for i, tr := range trades[start:end] {
		style := m.theme.Row
		if i%2 == 1 {
			style = m.theme.RowAlt
		}

		side := m.theme.Up.Render(fmt.Sprintf("%-5s", tr.Side))
		if tr.Side == models.SideSell {
			side = m.theme.Down.Render(fmt.Sprintf("%-5s", tr.Side))
		}
		pnl := fmt.Sprintf("%12s", fmtFloat(tr.PnL, 2))
		if tr.PnL > 0 {
			pnl = m.theme.Up.Render(pnl)
		} else if tr.PnL < 0 {
			pnl = m.theme.Down.Render(pnl)
		}

		b.WriteString(style.Render(fmt.Sprintf("  %-12s %-20s %-10s ",
			clip(tr.ID, 12), clip(tr.Time, 20), clip(tr.Symbol, 10))))
		b.WriteString(side)
		b.WriteString(style.Render(fmt.Sprintf(" %12s %12s ",
			fmtFloat(tr.Qty, 4), fmtFloat(tr.Price, 2))))
		b.WriteString(pnl)
		b.WriteByte('\n')
	}

	return m.theme.Section.Render(b.String())
}

func (m Model) viewFooter() string {
	if m.mode == modeBase {
		return m.theme.Footer.Render("api base: " + m.input + "█  (enter apply, esc cancel)")
	}
	return m.theme.Footer.Render(
		"r refresh · / search · i interval · t theme · b api base · J/C export json/csv · ←/→ page · q quit")
}

func refreshLabel(sec int) string {
	if sec <= 0 {
		return "manual"
	}
	return "every " + strconv.Itoa(sec) + "s"
}

// fmtNum renders an optional KPI value, em dash when absent.
func fmtNum(v *float64, decimals int) string {
	if v == nil {
		return "—"
	}
	return fmtFloat(*v, decimals)
}

// fmtPct renders an optional win-rate fraction as a percentage.
func fmtPct(v *float64) string {
	if v == nil {
		return "—"
	}
	return fmt.Sprintf("%.1f%%", *v*100)
}

func fmtFloat(v float64, decimals int) string {
	return strconv.FormatFloat(v, 'f', decimals, 64)
}

func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
