package mockapi

import (
	"context"
	"encoding/json"
	"math"
	"net"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/finactical/finactical-dash/internal/metrics"
	"github.com/finactical/finactical-dash/pkg/models"
)

const baseCurrency = "USD"

// Server serves the /api/v1 metrics endpoints from a Store.
type Server struct {
	httpServer *http.Server
	store      *Store
	apiKey     string
	log        *zap.Logger
}

// NewServer creates a server bound to addr. When apiKey is non-empty every
// /api/v1 request must carry it in x-api-key; a dev server with an empty
// key is open.
func NewServer(addr string, store *Store, apiKey string, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{store: store, apiKey: apiKey, log: log}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/health", s.handleHealth)
	mux.HandleFunc("/api/v1/kpi", s.requireKey(s.handleKPI))
	mux.HandleFunc("/api/v1/equity", s.requireKey(s.handleEquity))
	mux.HandleFunc("/api/v1/trades", s.requireKey(s.handleTrades))
	mux.HandleFunc("/api/v1/trades/", s.requireKey(s.handleTradeByID))

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Handler exposes the mux, mainly for tests.
func (s *Server) Handler() http.Handler { return s.httpServer.Handler }

// Start begins serving HTTP requests.
func (s *Server) Start(_ context.Context) error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	s.log.Info("mock api listening", zap.String("addr", s.httpServer.Addr))
	go func() {
		if err := s.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.log.Error("mock api", zap.Error(err))
		}
	}()
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) requireKey(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.apiKey != "" && r.Header.Get("x-api-key") != s.apiKey {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// GET /api/v1/health — liveness probe including a database check.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	if err := s.store.Ping(); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		s.writeJSON(w, map[string]interface{}{"ok": false, "error": err.Error()})
		return
	}
	s.writeJSON(w, map[string]interface{}{"ok": true})
}

// GET /api/v1/kpi — trade and equity statistics for the requested window.
func (s *Server) handleKPI(w http.ResponseWriter, r *http.Request) {
	rows, ok := s.loadWindow(w, r)
	if !ok {
		return
	}

	equity := make([]float64, len(rows))
	for i, row := range rows {
		equity[i] = row.Equity()
	}

	// Trade-level stats come from exit rows only; entries and holds carry
	// no realized pnl.
	var exits []models.TradeRecord
	for _, row := range rows {
		if !row.IsExit() {
			continue
		}
		pnl := 0.0
		if row.PnL != nil {
			pnl = *row.PnL
		}
		exits = append(exits, models.TradeRecord{PnL: pnl})
	}
	stats := metrics.TradeStats(exits)

	out := map[string]interface{}{
		"currency":         baseCurrency,
		"trades_count":     len(exits),
		"total_return_pct": totalReturnPct(equity),
		"max_drawdown_pct": -metrics.MaxDrawdownPct(equity),
		"win_rate_pct":     0.0,
		"profit_factor":    0.0,
		"avg_trade_pnl":    0.0,
		"start":            windowEdge(rows, 0),
		"end":              windowEdge(rows, len(rows)-1),
	}
	if stats.WinRate != nil {
		out["win_rate_pct"] = *stats.WinRate * 100
	}
	if stats.ProfitFactor != nil && !math.IsInf(*stats.ProfitFactor, 0) {
		out["profit_factor"] = *stats.ProfitFactor
	}
	if stats.NetPnL != nil && len(exits) > 0 {
		out["avg_trade_pnl"] = *stats.NetPnL / float64(len(exits))
	}
	s.writeJSON(w, out)
}

// GET /api/v1/equity — the equity curve as timestamped points.
func (s *Server) handleEquity(w http.ResponseWriter, r *http.Request) {
	rows, ok := s.loadWindow(w, r)
	if !ok {
		return
	}

	points := make([]map[string]interface{}, len(rows))
	for i, row := range rows {
		points[i] = map[string]interface{}{
			"ts":     epochToISO(row.Timestamp),
			"equity": row.Equity(),
		}
	}
	s.writeJSON(w, map[string]interface{}{
		"currency": baseCurrency,
		"start":    windowEdge(rows, 0),
		"end":      windowEdge(rows, len(rows)-1),
		"points":   points,
	})
}

// GET /api/v1/trades — the trade log with status filter, sort, and paging.
func (s *Server) handleTrades(w http.ResponseWriter, r *http.Request) {
	rows, ok := s.loadWindow(w, r)
	if !ok {
		return
	}

	status := strings.ToUpper(r.URL.Query().Get("status"))
	if status == "" {
		status = "ALL"
	}
	switch status {
	case "OPEN", "CLOSED", "ALL":
	default:
		http.Error(w, "status must be OPEN, CLOSED, or ALL", http.StatusBadRequest)
		return
	}
	limit := clampInt(queryInt(r, "limit", 100), 1, 1000)
	offset := queryInt(r, "offset", 0)
	if offset < 0 {
		offset = 0
	}
	sortKey := r.URL.Query().Get("sort")
	if sortKey == "" {
		sortKey = "-timestamp"
	}

	var items []map[string]interface{}
	for _, row := range rows {
		isExit := row.IsExit()
		if status == "CLOSED" && !isExit {
			continue
		}
		if status == "OPEN" && isExit {
			continue
		}
		items = append(items, tradeJSON(row))
	}

	desc := strings.HasPrefix(sortKey, "-")
	field := strings.TrimLeft(sortKey, "+-")
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i][field], items[j][field]
		if desc {
			return lessByField(b, a)
		}
		return lessByField(a, b)
	})

	total := len(items)
	if offset > total {
		offset = total
	}
	endIdx := offset + limit
	if endIdx > total {
		endIdx = total
	}
	s.writeJSON(w, map[string]interface{}{
		"count": total,
		"items": items[offset:endIdx],
	})
}

// GET /api/v1/trades/{id} — one trade by its timestamp id.
func (s *Server) handleTradeByID(w http.ResponseWriter, r *http.Request) {
	idStr := strings.TrimPrefix(r.URL.Path, "/api/v1/trades/")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		http.Error(w, "invalid trade id", http.StatusBadRequest)
		return
	}

	rows, err := s.store.Rows(&id, &id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if len(rows) == 0 {
		w.WriteHeader(http.StatusNotFound)
		s.writeJSON(w, map[string]interface{}{"detail": "Trade not found"})
		return
	}
	s.writeJSON(w, tradeJSON(rows[0]))
}

// loadWindow reads rows for the optional start/end ISO query params,
// writing a 500 on failure.
func (s *Server) loadWindow(w http.ResponseWriter, r *http.Request) ([]TradeRow, bool) {
	start := parseISOToEpoch(r.URL.Query().Get("start"))
	end := parseISOToEpoch(r.URL.Query().Get("end"))
	rows, err := s.store.Rows(start, end)
	if err != nil {
		s.log.Error("load trade window", zap.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return nil, false
	}
	return rows, true
}

func tradeJSON(row TradeRow) map[string]interface{} {
	action := strings.TrimSpace(row.Action)
	if action == "" {
		action = "Hold"
	}
	var pnl interface{}
	if row.IsExit() && row.PnL != nil {
		pnl = *row.PnL
	}
	var closeTime interface{}
	if row.CloseTime != nil {
		closeTime = epochToISO(*row.CloseTime)
	}
	return map[string]interface{}{
		"id":          row.Timestamp,
		"timestamp":   epochToISO(row.Timestamp),
		"close_time":  closeTime,
		"action":      action,
		"position":    row.Position,
		"usdt":        row.USDT,
		"trade_price": row.TradePrice,
		"pnl":         pnl,
		"is_exit":     row.IsExit(),
		"equity":      row.Equity(),
		"currency":    baseCurrency,
	}
}

// lessByField orders two item values for the sort query: numeric compare
// when both sides are numbers, string compare when both are strings, and
// missing or null values count as zero.
func lessByField(a, b interface{}) bool {
	af, aNum := numValue(a)
	bf, bNum := numValue(b)
	if aNum && bNum {
		return af < bf
	}
	as, aStr := a.(string)
	bs, bStr := b.(string)
	if aStr && bStr {
		return as < bs
	}
	return af < bf
}

func numValue(v interface{}) (float64, bool) {
	switch t := v.(type) {
	case nil:
		return 0, true
	case int64:
		return float64(t), true
	case float64:
		return t, true
	case bool:
		if t {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

func totalReturnPct(equity []float64) float64 {
	if len(equity) < 2 || equity[0] == 0 {
		return 0
	}
	return (equity[len(equity)-1]/equity[0] - 1) * 100
}

func windowEdge(rows []TradeRow, i int) interface{} {
	if len(rows) == 0 || i < 0 {
		return nil
	}
	return epochToISO(rows[i].Timestamp)
}

func epochToISO(sec int64) string {
	return time.Unix(sec, 0).UTC().Format("2006-01-02T15:04:05Z")
}

func parseISOToEpoch(s string) *int64 {
	if s == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil
	}
	ep := t.Unix()
	return &ep
}

func queryInt(r *http.Request, key string, def int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
