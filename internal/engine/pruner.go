package engine

import (
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"orderbook/internal/domain"
)

// DayOrderPruner is the background worker that cancels GoodForDay
// orders at a fixed daily cutoff. It shares the engine's lock via a
// sync.Cond backed by an atomic shutdown flag and a WaitGroup, so Stop
// can signal the worker and block until it has actually exited.
type DayOrderPruner struct {
	engine *Engine
	logger *slog.Logger

	cutoffHour   int
	cutoffMinute int
	slack        time.Duration
	tickInterval time.Duration

	cond     *sync.Cond
	shutdown atomic.Bool
	wg       sync.WaitGroup
	started  bool

	// now is overridable in tests so the cutoff computation doesn't
	// depend on wall-clock time.
	now func() time.Time
}

// NewDayOrderPruner creates a pruner bound to engine, with a cutoff of
// cutoffHour:cutoffMinute local time plus slack, and a tickInterval
// bounding how long a single wait can block before rechecking shutdown.
func NewDayOrderPruner(engine *Engine, logger *slog.Logger, cutoffHour, cutoffMinute int, slack, tickInterval time.Duration) *DayOrderPruner {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &DayOrderPruner{
		engine:       engine,
		logger:       logger,
		cutoffHour:   cutoffHour,
		cutoffMinute: cutoffMinute,
		slack:        slack,
		tickInterval: tickInterval,
		cond:         sync.NewCond(&engine.mu),
		now:          time.Now,
	}
}

// Start launches the pruner's background goroutine. Calling Start
// twice panics — it is not meant to be restarted after Stop.
func (p *DayOrderPruner) Start() {
	if p.started {
		panic("engine: DayOrderPruner already started")
	}
	p.started = true
	p.wg.Add(1)
	go p.run()
}

// Stop signals the worker to exit and blocks until it has. No
// operation on the pruner may run after Stop returns.
func (p *DayOrderPruner) Stop() {
	p.shutdown.Store(true)
	p.cond.L.Lock()
	p.cond.Broadcast()
	p.cond.L.Unlock()
	p.wg.Wait()
}

// run is the worker loop: compute the next cutoff, sleep until it (or
// shutdown), then collect and cancel GoodForDay orders.
func (p *DayOrderPruner) run() {
	defer p.wg.Done()

	for !p.shutdown.Load() {
		deadline, err := p.nextCutoff()
		if err != nil {
			// Tolerate a failed local-time conversion by re-looping
			// rather than exiting — a bad timezone database shouldn't
			// take the whole pruner down.
			p.logger.Warn("pruner: failed to compute next cutoff, retrying", slog.String("error", err.Error()))
			p.sleep(p.tickInterval)
			continue
		}

		if p.waitUntil(deadline) {
			return // woke for shutdown
		}
		if p.shutdown.Load() {
			return
		}

		p.pruneOnce()
	}
}

// waitUntil blocks the caller until deadline or shutdown, whichever
// comes first, re-checking in increments of at most tickInterval so a
// long sleep still notices Stop promptly. Returns true iff it woke
// because of shutdown.
func (p *DayOrderPruner) waitUntil(deadline time.Time) bool {
	for {
		if p.shutdown.Load() {
			return true
		}
		remaining := deadline.Sub(p.now())
		if remaining <= 0 {
			return false
		}
		wait := remaining
		if wait > p.tickInterval {
			wait = p.tickInterval
		}
		p.sleep(wait)
	}
}

// sleep blocks for d or until Stop broadcasts, using the engine's
// mutex via the condition variable so the pruner never polls while
// holding the lock for longer than necessary.
func (p *DayOrderPruner) sleep(d time.Duration) {
	if d <= 0 {
		return
	}
	// Take the lock before arming the timer: the timer's Broadcast needs
	// the same lock, so it cannot fire before Wait has released it.
	p.cond.L.Lock()
	timer := time.AfterFunc(d, func() {
		p.cond.L.Lock()
		p.cond.Broadcast()
		p.cond.L.Unlock()
	})
	defer timer.Stop()

	if !p.shutdown.Load() {
		p.cond.Wait()
	}
	p.cond.L.Unlock()
}

// nextCutoff computes the next wall-clock occurrence of the configured
// cutoff, plus the configured slack.
func (p *DayOrderPruner) nextCutoff() (time.Time, error) {
	loc, err := time.LoadLocation("Local")
	if err != nil {
		return time.Time{}, err
	}
	now := p.now().In(loc)
	cutoff := time.Date(now.Year(), now.Month(), now.Day(), p.cutoffHour, p.cutoffMinute, 0, 0, loc)
	if !cutoff.After(now) {
		cutoff = cutoff.AddDate(0, 0, 1)
	}
	return cutoff.Add(p.slack), nil
}

// pruneOnce scans the order index for GoodForDay orders, releases the
// lock, then cancels them as a batch — the two-phase
// collect-then-cancel pattern avoids mutating the order index while
// iterating it.
func (p *DayOrderPruner) pruneOnce() {
	p.engine.mu.Lock()
	var ids []domain.OrderID
	for id, slot := range p.engine.orders {
		if slot.order.Type() == domain.GoodForDay {
			ids = append(ids, id)
		}
	}
	p.engine.mu.Unlock()

	if len(ids) == 0 {
		return
	}
	p.logger.Info("pruner: cancelling day orders", slog.Int("count", len(ids)))
	p.engine.CancelBatch(ids)
}
