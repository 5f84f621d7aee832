// Package ui is the terminal dashboard: stat cards, equity and drawdown
// charts, a searchable trades table, and export actions.
package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/finactical/finactical-dash/internal/config"
	"github.com/finactical/finactical-dash/internal/export"
	"github.com/finactical/finactical-dash/internal/poller"
	"github.com/finactical/finactical-dash/pkg/models"
)

// pageSize is the number of trade rows shown per table page.
const pageSize = 25

type inputMode int

const (
	modeNormal inputMode = iota
	modeSearch
	modeBase
)

type stateMsg poller.State

type exportDoneMsg struct {
	path string
	err  error
}

type clearStatusMsg struct{ at time.Time }

// Model is the bubbletea model for the dashboard.
type Model struct {
	ctrl    *poller.Controller
	updates <-chan poller.State
	log     *zap.Logger

	cfg          config.Config
	settingsPath string

	theme  Theme
	state  poller.State
	width  int
	height int

	mode   inputMode
	search string
	input  string
	page   int
	status string
}

// New builds the dashboard model. updates is the channel the poller's
// notify callback feeds.
func New(cfg config.Config, ctrl *poller.Controller, updates <-chan poller.State, settingsPath string, log *zap.Logger) Model {
	if log == nil {
		log = zap.NewNop()
	}
	return Model{
		ctrl:         ctrl,
		updates:      updates,
		log:          log,
		cfg:          cfg,
		settingsPath: settingsPath,
		theme:        ThemeByName(cfg.Theme),
		width:        120,
		height:       40,
	}
}

func (m Model) Init() tea.Cmd {
	return m.listen()
}

// listen blocks on the poller channel and turns each snapshot into a
// message. Re-issued after every delivery.
func (m Model) listen() tea.Cmd {
	return func() tea.Msg {
		st, ok := <-m.updates
		if !ok {
			return tea.Quit()
		}
		return stateMsg(st)
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case stateMsg:
		m.state = poller.State(msg)
		m.clampPage()
		return m, m.listen()

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case exportDoneMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("export failed: %v", msg.err)
		} else {
			m.status = "exported " + msg.path
		}
		return m, expireStatus()

	case clearStatusMsg:
		m.status = ""
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case modeSearch:
			return m.updateSearch(msg)
		case modeBase:
			return m.updateBase(msg)
		default:
			return m.updateNormal(msg)
		}
	}
	return m, nil
}

func (m Model) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "r":
		m.ctrl.RefreshNow()
	case "/":
		m.mode = modeSearch
		m.input = m.search
	case "b":
		m.mode = modeBase
		m.input = m.cfg.APIBase
	case "i":
		m.cfg.RefreshSec = nextRefresh(m.cfg.RefreshSec)
		m.applyConfig()
	case "t":
		if m.cfg.Theme == "light" {
			m.cfg.Theme = "dark"
		} else {
			m.cfg.Theme = "light"
		}
		m.theme = ThemeByName(m.cfg.Theme)
		m.saveSettings()
	case "J":
		return m, m.exportCmd("json")
	case "C":
		return m, m.exportCmd("csv")
	case "left", "h", "pgup":
		if m.page > 0 {
			m.page--
		}
	case "right", "l", "pgdown":
		m.page++
		m.clampPage()
	case "esc":
		if m.search != "" {
			m.search = ""
			m.page = 0
		}
	}
	return m, nil
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.search = m.input
		m.page = 0
		m.mode = modeNormal
	case "esc":
		m.mode = modeNormal
	case "backspace":
		if len(m.input) > 0 {
			m.input = m.input[:len(m.input)-1]
		}
	default:
		if len(msg.Runes) > 0 {
			m.input += string(msg.Runes)
		}
	}
	return m, nil
}

func (m Model) updateBase(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		base := strings.TrimRight(strings.TrimSpace(m.input), "/")
		m.mode = modeNormal
		if base != "" && base != m.cfg.APIBase {
			m.cfg.APIBase = base
			m.applyConfig()
		}
	case "esc":
		m.mode = modeNormal
	case "backspace":
		if len(m.input) > 0 {
			m.input = m.input[:len(m.input)-1]
		}
	default:
		if len(msg.Runes) > 0 {
			m.input += string(msg.Runes)
		}
	}
	return m, nil
}

// applyConfig pushes the current cfg into the poller and persists the
// user-visible part.
func (m *Model) applyConfig() {
	m.ctrl.Reconfigure(poller.Config{
		APIBase:         m.cfg.APIBase,
		RefreshInterval: time.Duration(m.cfg.RefreshSec) * time.Second,
		TradesLimit:     m.cfg.TradesLimit,
	})
	m.saveSettings()
}

func (m *Model) saveSettings() {
	if m.settingsPath == "" {
		return
	}
	refresh := m.cfg.RefreshSec
	s := config.Settings{
		APIBase:    m.cfg.APIBase,
		RefreshSec: &refresh,
		Theme:      m.cfg.Theme,
	}
	if err := config.SaveSettings(m.settingsPath, s); err != nil {
		m.log.Warn("save settings", zap.Error(err))
	}
}

func (m Model) exportCmd(format string) tea.Cmd {
	trades := m.filteredTrades()
	dir := m.cfg.ExportDir
	return func() tea.Msg {
		var path string
		var err error
		if format == "json" {
			path, err = export.WriteTradesJSON(dir, trades, time.Now())
		} else {
			path, err = export.WriteTradesCSV(dir, trades, time.Now())
		}
		return exportDoneMsg{path: path, err: err}
	}
}

func expireStatus() tea.Cmd {
	return tea.Tick(4*time.Second, func(t time.Time) tea.Msg {
		return clearStatusMsg{at: t}
	})
}

// filteredTrades applies the search query to the current trade set. The
// query matches id, symbol, or side, case-insensitively.
func (m Model) filteredTrades() []models.TradeRecord {
	return filterTrades(m.state.Trades, m.search)
}

func filterTrades(trades []models.TradeRecord, query string) []models.TradeRecord {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return trades
	}
	out := make([]models.TradeRecord, 0, len(trades))
	for _, tr := range trades {
		if strings.Contains(strings.ToLower(tr.ID), q) ||
			strings.Contains(strings.ToLower(tr.Symbol), q) ||
			strings.Contains(strings.ToLower(string(tr.Side)), q) {
			out = append(out, tr)
		}
	}
	return out
}

// nextRefresh cycles the refresh interval through 10s, 30s, 60s, and
// manual (0).
func nextRefresh(cur int) int {
	switch cur {
	case 10:
		return 30
	case 30:
		return 60
	case 60:
		return 0
	default:
		return 10
	}
}

func (m *Model) clampPage() {
	n := len(m.filteredTrades())
	last := 0
	if n > 0 {
		last = (n - 1) / pageSize
	}
	if m.page > last {
		m.page = last
	}
	if m.page < 0 {
		m.page = 0
	}
}
