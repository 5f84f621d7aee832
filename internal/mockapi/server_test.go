package mockapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func i64(v int64) *int64     { return &v }
func f64(v float64) *float64 { return &v }

func seededStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	// Buy at 100, hold, exit at 110 for +10; buy at 110, stop out at 105.
	rows := []TradeRow{
		{Timestamp: 1000, Position: 1, USDT: 900, TradePrice: 100, Action: "Buy"},
		{Timestamp: 2000, Position: 1, USDT: 900, TradePrice: 105, Action: "Hold"},
		{Timestamp: 3000, Position: 0, USDT: 1010, TradePrice: 110, Action: "Sell", PnL: f64(10), CloseTime: i64(3000)},
		{Timestamp: 4000, Position: 1, USDT: 900, TradePrice: 110, Action: "Buy"},
		{Timestamp: 5000, Position: 0, USDT: 1005, TradePrice: 105, Action: "Stop Loss Sell", PnL: f64(-5), CloseTime: i64(5000)},
	}
	for _, r := range rows {
		if err := store.Insert(r); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}
	return store
}

func testServer(t *testing.T, apiKey string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(NewServer(":0", seededStore(t), apiKey, nil).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func getJSON(t *testing.T, url string, out interface{}) int {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("get %s: %v", url, err)
	}
	defer resp.Body.Close()
	if out != nil && resp.StatusCode == http.StatusOK {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
	return resp.StatusCode
}

func TestHealth(t *testing.T) {
	srv := testServer(t, "")
	var body map[string]interface{}
	if code := getJSON(t, srv.URL+"/api/v1/health", &body); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if body["ok"] != true {
		t.Fatalf("body = %v", body)
	}
}

func TestKPI(t *testing.T) {
	srv := testServer(t, "")
	var body map[string]interface{}
	if code := getJSON(t, srv.URL+"/api/v1/kpi", &body); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}

	if body["trades_count"] != float64(2) {
		t.Errorf("trades_count = %v, want 2 exit rows", body["trades_count"])
	}
	if body["win_rate_pct"] != float64(50) {
		t.Errorf("win_rate_pct = %v, want 50", body["win_rate_pct"])
	}
	if body["profit_factor"] != float64(2) {
		t.Errorf("profit_factor = %v, want 10/5 = 2", body["profit_factor"])
	}
	if body["avg_trade_pnl"] != float64(2.5) {
		t.Errorf("avg_trade_pnl = %v, want (10-5)/2", body["avg_trade_pnl"])
	}
	if body["currency"] != "USD" {
		t.Errorf("currency = %v", body["currency"])
	}
	if _, ok := body["max_drawdown_pct"].(float64); !ok {
		t.Errorf("max_drawdown_pct missing: %v", body)
	}
}

func TestEquityPoints(t *testing.T) {
	srv := testServer(t, "")
	var body struct {
		Points []struct {
			TS     string  `json:"ts"`
			Equity float64 `json:"equity"`
		} `json:"points"`
		Start string `json:"start"`
	}
	if code := getJSON(t, srv.URL+"/api/v1/equity", &body); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if len(body.Points) != 5 {
		t.Fatalf("points = %d, want 5", len(body.Points))
	}
	// First row: 900 cash + 1 * 100.
	if body.Points[0].Equity != 1000 {
		t.Errorf("equity[0] = %v, want 1000", body.Points[0].Equity)
	}
	if _, err := time.Parse(time.RFC3339, body.Points[0].TS); err != nil {
		t.Errorf("ts not ISO: %q", body.Points[0].TS)
	}
	if body.Start != body.Points[0].TS {
		t.Errorf("start = %q, want first point ts", body.Start)
	}
}

func TestTradesFilterSortPage(t *testing.T) {
	srv := testServer(t, "")

	var all struct {
		Count int                      `json:"count"`
		Items []map[string]interface{} `json:"items"`
	}
	if code := getJSON(t, srv.URL+"/api/v1/trades", &all); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if all.Count != 5 {
		t.Fatalf("count = %d, want 5", all.Count)
	}
	// Default sort is -timestamp.
	if all.Items[0]["id"] != float64(5000) {
		t.Errorf("first id = %v, want newest 5000", all.Items[0]["id"])
	}
	// Exit rows carry pnl, others null.
	if all.Items[0]["pnl"] != float64(-5) {
		t.Errorf("exit pnl = %v, want -5", all.Items[0]["pnl"])
	}
	if all.Items[1]["pnl"] != nil {
		t.Errorf("entry pnl = %v, want null", all.Items[1]["pnl"])
	}

	var closed struct {
		Count int `json:"count"`
	}
	getJSON(t, srv.URL+"/api/v1/trades?status=CLOSED", &closed)
	if closed.Count != 2 {
		t.Errorf("closed count = %d, want 2", closed.Count)
	}
	var open struct {
		Count int `json:"count"`
	}
	getJSON(t, srv.URL+"/api/v1/trades?status=OPEN", &open)
	if open.Count != 3 {
		t.Errorf("open count = %d, want 3", open.Count)
	}

	var page struct {
		Count int                      `json:"count"`
		Items []map[string]interface{} `json:"items"`
	}
	getJSON(t, srv.URL+"/api/v1/trades?sort=%2Btimestamp&limit=2&offset=1", &page)
	if page.Count != 5 || len(page.Items) != 2 {
		t.Fatalf("count/page = %d/%d, want 5/2", page.Count, len(page.Items))
	}
	if page.Items[0]["id"] != float64(2000) {
		t.Errorf("paged first id = %v, want 2000", page.Items[0]["id"])
	}

	// Sorting keys on the named field, not just the direction prefix.
	var byPnL struct {
		Items []map[string]interface{} `json:"items"`
	}
	getJSON(t, srv.URL+"/api/v1/trades?sort=-pnl&status=CLOSED", &byPnL)
	if len(byPnL.Items) != 2 {
		t.Fatalf("closed items = %d, want 2", len(byPnL.Items))
	}
	if byPnL.Items[0]["pnl"] != float64(10) || byPnL.Items[1]["pnl"] != float64(-5) {
		t.Errorf("pnl order = [%v %v], want [10 -5]", byPnL.Items[0]["pnl"], byPnL.Items[1]["pnl"])
	}

	var byAction struct {
		Items []map[string]interface{} `json:"items"`
	}
	getJSON(t, srv.URL+"/api/v1/trades?sort=%2Baction", &byAction)
	if byAction.Items[0]["action"] != "Buy" {
		t.Errorf("first action = %v, want Buy", byAction.Items[0]["action"])
	}
}

func TestTradesRejectsUnknownStatus(t *testing.T) {
	srv := testServer(t, "")

	if code := getJSON(t, srv.URL+"/api/v1/trades?status=CLOSE", nil); code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", code)
	}
	// Case-insensitive values still pass.
	if code := getJSON(t, srv.URL+"/api/v1/trades?status=closed", nil); code != http.StatusOK {
		t.Errorf("status = %d, want 200", code)
	}
}

func TestTradesWindow(t *testing.T) {
	srv := testServer(t, "")
	start := time.Unix(2000, 0).UTC().Format(time.RFC3339)
	end := time.Unix(4000, 0).UTC().Format(time.RFC3339)

	var body struct {
		Count int `json:"count"`
	}
	getJSON(t, srv.URL+"/api/v1/trades?start="+start+"&end="+end, &body)
	if body.Count != 3 {
		t.Errorf("windowed count = %d, want 3", body.Count)
	}
}

func TestTradeByID(t *testing.T) {
	srv := testServer(t, "")

	var body map[string]interface{}
	if code := getJSON(t, srv.URL+"/api/v1/trades/3000", &body); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if body["action"] != "Sell" || body["is_exit"] != true {
		t.Errorf("trade = %v", body)
	}

	if code := getJSON(t, srv.URL+"/api/v1/trades/9999", nil); code != http.StatusNotFound {
		t.Errorf("missing trade status = %d, want 404", code)
	}
	if code := getJSON(t, srv.URL+"/api/v1/trades/abc", nil); code != http.StatusBadRequest {
		t.Errorf("bad id status = %d, want 400", code)
	}
}

func TestAPIKeyGuard(t *testing.T) {
	srv := testServer(t, "hunter2")

	if code := getJSON(t, srv.URL+"/api/v1/kpi", nil); code != http.StatusUnauthorized {
		t.Fatalf("no key status = %d, want 401", code)
	}
	// Health stays open for probes.
	if code := getJSON(t, srv.URL+"/api/v1/health", nil); code != http.StatusOK {
		t.Fatalf("health status = %d, want 200", code)
	}

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/api/v1/kpi", nil)
	req.Header.Set("x-api-key", "hunter2")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("keyed status = %d, want 200", resp.StatusCode)
	}
}

func TestSeedDeterministicAndIdempotent(t *testing.T) {
	store, err := Open(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	end := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	if err := store.Seed(48, end); err != nil {
		t.Fatalf("seed: %v", err)
	}
	rows, err := store.Rows(nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 48 {
		t.Fatalf("rows = %d, want 48", len(rows))
	}
	// Second seed must not add rows.
	if err := store.Seed(48, end); err != nil {
		t.Fatalf("reseed: %v", err)
	}
	again, _ := store.Rows(nil, nil)
	if len(again) != 48 {
		t.Fatalf("rows after reseed = %d, want 48", len(again))
	}

	var exits int
	for _, r := range rows {
		if r.IsExit() {
			if r.PnL == nil || r.CloseTime == nil {
				t.Fatal("exit row missing pnl or close_time")
			}
			exits++
		}
	}
	if exits == 0 {
		t.Fatal("seed produced no exit rows")
	}
}
