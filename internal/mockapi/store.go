// Package mockapi is a development stand-in for the remote trading-metrics
// API. It serves KPI, equity, and trade data computed from a local SQLite
// trade log, so the dashboard can be exercised without a live backend.
package mockapi

import (
	"database/sql"
	"fmt"
	"math/rand"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// ExitActions are the trade-log actions that realize PnL and close a
// position. Everything else is an entry or a hold.
var ExitActions = map[string]bool{
	"Sell":                true,
	"Cover":               true,
	"Stop Loss Sell":      true,
	"Stop Loss Cover":     true,
	"Trailing Stop Sell":  true,
	"Trailing Stop Cover": true,
	"Time Exit Sell":      true,
	"Time Exit Cover":     true,
}

// TradeRow is one row of the trade log. Timestamp doubles as the row id.
type TradeRow struct {
	Timestamp  int64
	Position   float64
	USDT       float64
	TradePrice float64
	CloseTime  *int64
	Action     string
	PnL        *float64
}

// Equity returns the account equity at this row: cash plus the marked
// position. Position may be negative for shorts.
func (r TradeRow) Equity() float64 {
	return r.USDT + r.Position*r.TradePrice
}

// IsExit reports whether the row's action closes a position.
func (r TradeRow) IsExit() bool {
	return ExitActions[r.Action]
}

// Store wraps the SQLite trade log.
type Store struct {
	db *sql.DB
}

// Open opens (and if needed creates) the trade log at path. Use ":memory:"
// for an ephemeral store.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_synchronous=NORMAL")
	if err != nil {
		return nil, fmt.Errorf("mockapi: open db: %w", err)
	}
	const schema = `CREATE TABLE IF NOT EXISTS trade (
		timestamp   INTEGER PRIMARY KEY,
		position    REAL,
		usdt        REAL,
		trade_price REAL,
		close_time  INTEGER,
		action      TEXT,
		pnl         REAL
	)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("mockapi: create schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Ping verifies the database is reachable.
func (s *Store) Ping() error {
	var one int
	return s.db.QueryRow("SELECT 1").Scan(&one)
}

// Insert adds one trade row.
func (s *Store) Insert(r TradeRow) error {
	_, err := s.db.Exec(
		"INSERT INTO trade (timestamp, position, usdt, trade_price, close_time, action, pnl) VALUES (?, ?, ?, ?, ?, ?, ?)",
		r.Timestamp, r.Position, r.USDT, r.TradePrice, r.CloseTime, r.Action, r.PnL,
	)
	if err != nil {
		return fmt.Errorf("mockapi: insert trade: %w", err)
	}
	return nil
}

// Rows returns trade rows in the [start, end] epoch window, ordered by
// timestamp ascending. Nil bounds are open.
func (s *Store) Rows(start, end *int64) ([]TradeRow, error) {
	query := "SELECT timestamp, position, usdt, trade_price, close_time, action, pnl FROM trade"
	var args []interface{}
	switch {
	case start != nil && end != nil:
		query += " WHERE timestamp >= ? AND timestamp <= ?"
		args = append(args, *start, *end)
	case start != nil:
		query += " WHERE timestamp >= ?"
		args = append(args, *start)
	case end != nil:
		query += " WHERE timestamp <= ?"
		args = append(args, *end)
	}
	query += " ORDER BY timestamp ASC"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("mockapi: query trades: %w", err)
	}
	defer rows.Close()

	var out []TradeRow
	for rows.Next() {
		var r TradeRow
		var closeTime sql.NullInt64
		var pnl sql.NullFloat64
		var action sql.NullString
		if err := rows.Scan(&r.Timestamp, &r.Position, &r.USDT, &r.TradePrice, &closeTime, &action, &pnl); err != nil {
			return nil, fmt.Errorf("mockapi: scan trade: %w", err)
		}
		if closeTime.Valid {
			ct := closeTime.Int64
			r.CloseTime = &ct
		}
		if pnl.Valid {
			p := pnl.Float64
			r.PnL = &p
		}
		r.Action = action.String
		out = append(out, r)
	}
	return out, rows.Err()
}

// Seed fills an empty store with n deterministic rows of a random-walk
// trading session ending at end. No-op if the store already has data.
func (s *Store) Seed(n int, end time.Time) error {
	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM trade").Scan(&count); err != nil {
		return fmt.Errorf("mockapi: count trades: %w", err)
	}
	if count > 0 || n <= 0 {
		return nil
	}

	rng := rand.New(rand.NewSource(42))
	usdt := 10000.0
	position := 0.0
	entryPrice := 0.0
	price := 40000.0
	ts := end.Add(-time.Duration(n) * time.Hour).Unix()

	for i := 0; i < n; i++ {
		price *= 1 + (rng.Float64()-0.5)*0.02
		row := TradeRow{Timestamp: ts, TradePrice: price}

		if position == 0 {
			// Open a long with roughly a quarter of cash.
			size := usdt * 0.25 / price
			usdt -= size * price
			position = size
			entryPrice = price
			row.Action = "Buy"
		} else if rng.Float64() < 0.4 {
			pnl := position * (price - entryPrice)
			usdt += position * price
			closeTS := ts
			row.Action = exitActionFor(rng, pnl)
			row.PnL = &pnl
			row.CloseTime = &closeTS
			position = 0
		} else {
			row.Action = "Hold"
		}

		row.Position = position
		row.USDT = usdt
		if err := s.Insert(row); err != nil {
			return err
		}
		ts += 3600
	}
	return nil
}

func exitActionFor(rng *rand.Rand, pnl float64) string {
	if pnl < 0 && rng.Float64() < 0.5 {
		return "Stop Loss Sell"
	}
	if rng.Float64() < 0.15 {
		return "Time Exit Sell"
	}
	return "Sell"
}
