// Package poller drives the dashboard's fetch cycles: it polls the metrics
// API on a configurable interval, runs the three endpoint fetches
// concurrently, and publishes normalized state snapshots to the UI.
package poller

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/finactical/finactical-dash/internal/metrics"
	"github.com/finactical/finactical-dash/internal/metricsapi"
	"github.com/finactical/finactical-dash/internal/normalize"
	"github.com/finactical/finactical-dash/pkg/models"
)

// Phase describes what the controller is doing right now.
type Phase int

const (
	// PhaseIdle means no timer is armed; refreshes happen only on demand.
	PhaseIdle Phase = iota
	// PhaseScheduled means a timer is armed and waiting.
	PhaseScheduled
	// PhaseFetching means at least one fetch cycle is in flight.
	PhaseFetching
)

func (p Phase) String() string {
	switch p {
	case PhaseScheduled:
		return "scheduled"
	case PhaseFetching:
		return "fetching"
	default:
		return "idle"
	}
}

// API is the slice of the metrics client the controller needs.
type API interface {
	KPI(ctx context.Context) ([]byte, error)
	Equity(ctx context.Context) ([]byte, error)
	Trades(ctx context.Context, limit int) ([]byte, error)
}

// Config is the controller's runtime configuration. Reconfigure applies a
// new one atomically.
type Config struct {
	APIBase         string
	RefreshInterval time.Duration // zero disables the timer (manual mode)
	TradesLimit     int
}

// State is one published snapshot. Either a whole cycle's data landed or
// none of it did; a failed cycle keeps the previous data and sets Err.
type State struct {
	Seq        uint64
	KPI        *models.KpiSnapshot
	Deltas     models.KpiDeltas
	Equity     models.EquityCurve
	Drawdown   []float64
	Trades     []models.TradeRecord
	Err        string
	LastUpdate time.Time
}

// Controller owns the polling loop. All exported methods are safe for
// concurrent use.
type Controller struct {
	log    *zap.Logger
	notify func(State)
	newAPI func(base string) API

	mu         sync.Mutex
	ctx        context.Context
	api        API
	cfg        Config
	state      State
	prevKPI    *models.KpiSnapshot
	seq        uint64 // last issued cycle number
	applied    uint64 // last cycle whose result was accepted
	fetching   int
	cancelTick context.CancelFunc
}

// New creates a Controller. newAPI builds a client for a base URL and is
// called again whenever Reconfigure changes the base; pass nil to use the
// default metricsapi client.
func New(cfg Config, newAPI func(base string) API, notify func(State), log *zap.Logger) *Controller {
	if newAPI == nil {
		newAPI = func(base string) API { return metricsapi.NewClient(base) }
	}
	if notify == nil {
		notify = func(State) {}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Controller{
		log:    log,
		notify: notify,
		newAPI: newAPI,
		cfg:    cfg,
		api:    newAPI(cfg.APIBase),
	}
}

// Start arms the controller against ctx and runs an immediate first cycle.
// It does not block.
func (c *Controller) Start(ctx context.Context) {
	c.mu.Lock()
	c.ctx = ctx
	c.armTickerLocked()
	c.mu.Unlock()
	c.RefreshNow()
}

// Config returns the current configuration.
func (c *Controller) Config() Config {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cfg
}

// State returns the last published snapshot.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Phase reports the controller's current phase.
func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fetching > 0 {
		return PhaseFetching
	}
	if c.cancelTick != nil {
		return PhaseScheduled
	}
	return PhaseIdle
}

// Reconfigure applies cfg: the client is rebuilt if the base URL changed,
// the timer is re-armed for the new interval, and an immediate cycle runs
// so the user sees the effect of the change without waiting a full period.
// Previously displayed data survives the switch.
func (c *Controller) Reconfigure(cfg Config) {
	c.mu.Lock()
	if cfg.APIBase != c.cfg.APIBase {
		c.api = c.newAPI(cfg.APIBase)
	}
	c.cfg = cfg
	c.armTickerLocked()
	c.mu.Unlock()
	c.RefreshNow()
}

// RefreshNow starts a fetch cycle immediately, regardless of the timer.
// Overlapping cycles are allowed; stale results are dropped on arrival.
func (c *Controller) RefreshNow() {
	c.mu.Lock()
	if c.ctx == nil || c.ctx.Err() != nil {
		c.mu.Unlock()
		return
	}
	c.seq++
	seq := c.seq
	ctx := c.ctx
	api := c.api
	limit := c.cfg.TradesLimit
	base := c.cfg.APIBase
	c.fetching++
	c.mu.Unlock()

	go c.runCycle(ctx, api, seq, limit, base)
}

// armTickerLocked tears down any existing timer goroutine and starts a new
// one for the current interval. Caller holds c.mu.
func (c *Controller) armTickerLocked() {
	if c.cancelTick != nil {
		c.cancelTick()
		c.cancelTick = nil
	}
	if c.ctx == nil || c.cfg.RefreshInterval <= 0 {
		return
	}

	tickCtx, cancel := context.WithCancel(c.ctx)
	c.cancelTick = cancel
	interval := c.cfg.RefreshInterval
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-tickCtx.Done():
				return
			case <-ticker.C:
				c.RefreshNow()
			}
		}
	}()
}

func (c *Controller) runCycle(ctx context.Context, api API, seq uint64, limit int, base string) {
	start := time.Now()

	var rawKPI, rawEquity, rawTrades []byte
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		rawKPI, err = api.KPI(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		rawEquity, err = api.Equity(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		rawTrades, err = api.Trades(gctx, limit)
		return err
	})

	if err := g.Wait(); err != nil {
		c.log.Warn("fetch cycle failed",
			zap.Uint64("seq", seq),
			zap.String("base", base),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		c.applyError(seq, fmt.Sprintf("API unreachable: %v (%s)", err, base))
		return
	}

	kpi := normalize.KPI(rawKPI)
	equity := normalize.Equity(rawEquity)
	trades := normalize.Trades(rawTrades)

	c.log.Debug("fetch cycle complete",
		zap.Uint64("seq", seq),
		zap.Int("equity_points", equity.Len()),
		zap.Int("trades", len(trades)),
		zap.Duration("elapsed", time.Since(start)))
	c.applyCycle(seq, kpi, equity, trades)
}

// applyCycle commits a successful cycle. Results from a cycle older than one
// already applied are dropped so a slow response never overwrites newer data.
func (c *Controller) applyCycle(seq uint64, kpi models.KpiSnapshot, equity models.EquityCurve, trades []models.TradeRecord) {
	c.mu.Lock()
	c.fetching--
	if seq <= c.applied {
		c.log.Debug("dropping stale cycle", zap.Uint64("seq", seq), zap.Uint64("applied", c.applied))
		c.mu.Unlock()
		return
	}
	c.applied = seq

	var deltas models.KpiDeltas
	if c.prevKPI != nil {
		deltas = metrics.PercentDeltas(*c.prevKPI, kpi)
	}
	c.prevKPI = &kpi

	c.state = State{
		Seq:        seq,
		KPI:        &kpi,
		Deltas:     deltas,
		Equity:     equity,
		Drawdown:   metrics.Drawdown(equity.Equity),
		Trades:     trades,
		LastUpdate: time.Now(),
	}
	st := c.state
	c.mu.Unlock()

	c.notify(st)
}

// applyError commits a failed cycle: previous data stays on screen, only
// the banner and sequence advance.
func (c *Controller) applyError(seq uint64, banner string) {
	c.mu.Lock()
	c.fetching--
	if seq <= c.applied {
		c.mu.Unlock()
		return
	}
	c.applied = seq

	c.state.Seq = seq
	c.state.Err = banner
	st := c.state
	c.mu.Unlock()

	c.notify(st)
}
