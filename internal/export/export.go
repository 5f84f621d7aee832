// Package export serializes trade data to CSV and JSON files for download.
package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/finactical/finactical-dash/pkg/models"
)

// Field is one key/value pair of an export row. Rows carry their fields as
// an ordered slice rather than a map so column order is stable.
type Field struct {
	Key   string
	Value interface{}
}

// Row is an ordered set of fields.
type Row []Field

// MarshalJSON renders the row as a JSON object with fields in slice order.
func (r Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range r {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.Key)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(f.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// TradeRows converts trade records into export rows with the canonical
// column set.
func TradeRows(trades []models.TradeRecord) []Row {
	rows := make([]Row, len(trades))
	for i, tr := range trades {
		rows[i] = Row{
			{Key: "id", Value: tr.ID},
			{Key: "time", Value: tr.Time},
			{Key: "symbol", Value: tr.Symbol},
			{Key: "side", Value: string(tr.Side)},
			{Key: "qty", Value: tr.Qty},
			{Key: "price", Value: tr.Price},
			{Key: "pnl", Value: tr.PnL},
		}
	}
	return rows
}

// CSV renders rows as CSV. The header is the union of all row keys in
// first-seen order; rows missing a column emit an empty cell. Quoting
// follows encoding/csv (RFC 4180).
func CSV(rows []Row) ([]byte, error) {
	var columns []string
	seen := make(map[string]int)
	for _, row := range rows {
		for _, f := range row {
			if _, ok := seen[f.Key]; !ok {
				seen[f.Key] = len(columns)
				columns = append(columns, f.Key)
			}
		}
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(columns); err != nil {
		return nil, err
	}
	record := make([]string, len(columns))
	for _, row := range rows {
		for i := range record {
			record[i] = ""
		}
		for _, f := range row {
			record[seen[f.Key]] = cellString(f.Value)
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// JSON renders rows as a pretty-printed JSON array.
func JSON(rows []Row) ([]byte, error) {
	return json.MarshalIndent(rows, "", "  ")
}

func cellString(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprintf("%v", t)
	}
}

// Filename builds a timestamped export filename such as
// "trades_2026-08-29T10-30-00-000Z.csv". Colons and dots from the timestamp
// become hyphens so the name is safe on every filesystem.
func Filename(prefix, ext string, now time.Time) string {
	stamp := now.UTC().Format("2006-01-02T15:04:05.000Z")
	stamp = strings.NewReplacer(":", "-", ".", "-").Replace(stamp)
	return fmt.Sprintf("%s_%s.%s", prefix, stamp, ext)
}

// WriteTradesCSV writes the trades as CSV into dir and returns the full path.
func WriteTradesCSV(dir string, trades []models.TradeRecord, now time.Time) (string, error) {
	data, err := CSV(TradeRows(trades))
	if err != nil {
		return "", err
	}
	return writeFile(dir, Filename("trades", "csv", now), data)
}

// WriteTradesJSON writes the trades as pretty JSON into dir and returns the
// full path.
func WriteTradesJSON(dir string, trades []models.TradeRecord, now time.Time) (string, error) {
	data, err := JSON(TradeRows(trades))
	if err != nil {
		return "", err
	}
	return writeFile(dir, Filename("trades", "json", now), data)
}

func writeFile(dir, name string, data []byte) (string, error) {
	path := dir + string(os.PathSeparator) + name
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write export: %w", err)
	}
	return path, nil
}
