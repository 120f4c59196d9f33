// Package scheduler drives the trade decision pipeline. A single ticker
// triggers evaluation of every active strategy; a per-strategy running flag
// guarantees that two passes for the same strategy never overlap. A strategy
// still busy when the next tick fires is skipped, not queued.
package scheduler

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"ai-trading-bot/internal/events"
	"ai-trading-bot/internal/oracle"
	"ai-trading-bot/pkg/db"
	"ai-trading-bot/pkg/exchanges/common"
)

var (
	// ErrStrategyBusy is returned when a manual trigger races an in-flight
	// pass for the same strategy.
	ErrStrategyBusy = errors.New("strategy execution already in progress")
	// ErrInvalidState is returned when a trade operation is not legal in the
	// trade's current status.
	ErrInvalidState = errors.New("trade is not in a valid state for this operation")
)

// minCandles is the warm-up floor: below this the pipeline will not act.
const minCandles = 50

// Oracle confirms or vetoes classifier signals. It never fails outward.
type Oracle interface {
	Decide(ctx context.Context, req oracle.Request) oracle.Decision
}

// Config wires the scheduler's collaborators.
type Config struct {
	DB           *db.Database
	Gateway      common.Gateway
	Oracle       Oracle
	Bus          *events.Bus
	Interval     time.Duration
	CandleLimit  int
	QtyPrecision int32
	// Execution gates order placement. When false the pipeline runs fully
	// but stops just before the exchange call (dry run).
	Execution bool
}

// Scheduler owns the tick loop and the per-strategy mutual exclusion.
type Scheduler struct {
	db           *db.Database
	gateway      common.Gateway
	oracle       Oracle
	bus          *events.Bus
	interval     time.Duration
	candleLimit  int
	qtyPrecision int32
	execution    bool

	mu      sync.Mutex
	running map[string]bool
}

// New creates a scheduler. Start must be called to begin ticking.
func New(cfg Config) *Scheduler {
	limit := cfg.CandleLimit
	if limit < minCandles {
		limit = minCandles
	}
	precision := cfg.QtyPrecision
	if precision <= 0 {
		precision = 3
	}
	return &Scheduler{
		db:           cfg.DB,
		gateway:      cfg.Gateway,
		oracle:       cfg.Oracle,
		bus:          cfg.Bus,
		interval:     cfg.Interval,
		candleLimit:  limit,
		qtyPrecision: precision,
		execution:    cfg.Execution,
		running:      make(map[string]bool),
	}
}

// Start launches the tick loop. It returns immediately; the loop stops when
// ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	log.Printf("⏱️ Scheduler started: interval=%s, execution=%v", s.interval, s.execution)
	ticker := time.NewTicker(s.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.Tick(ctx)
			case <-ctx.Done():
				log.Printf("Scheduler stopped")
				return
			}
		}
	}()
}

// Tick evaluates every active strategy once. Strategies run concurrently
// with each other; a strategy whose previous pass is still running is
// skipped for this tick.
func (s *Scheduler) Tick(ctx context.Context) {
	strategies, err := s.db.ListActiveStrategies(ctx)
	if err != nil {
		log.Printf("❌ Scheduler: list active strategies: %v", err)
		return
	}

	for _, strat := range strategies {
		if !s.tryAcquire(strat.ID) {
			log.Printf("Scheduler: strategy %s (%s) still running, skipping tick", strat.Name, strat.ID)
			continue
		}
		go func(st db.Strategy) {
			defer s.release(st.ID)
			s.runStrategy(ctx, st)
		}(strat)
	}
}

// ExecuteStrategy runs one pass for a single strategy immediately, outside
// the tick cycle. Used by the manual trigger endpoint. The pass is
// synchronous and honors the same mutual exclusion as ticks.
func (s *Scheduler) ExecuteStrategy(ctx context.Context, id string) error {
	strat, err := s.db.GetStrategy(ctx, id)
	if err != nil {
		return err
	}
	if !s.tryAcquire(strat.ID) {
		return ErrStrategyBusy
	}
	defer s.release(strat.ID)
	s.runStrategy(ctx, *strat)
	return nil
}

// runStrategy iterates the strategy's symbols sequentially. A failure in one
// symbol's pipeline never aborts the remaining symbols.
func (s *Scheduler) runStrategy(ctx context.Context, strat db.Strategy) {
	for _, symbol := range strat.Symbols {
		if err := s.runSymbol(ctx, strat, symbol); err != nil {
			log.Printf("❌ Scheduler: %s/%s pipeline: %v", strat.Name, symbol, err)
		}
	}
}

// tryAcquire sets the running flag if it is clear, reporting whether the
// caller now owns the pass.
func (s *Scheduler) tryAcquire(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running[id] {
		return false
	}
	s.running[id] = true
	return true
}

func (s *Scheduler) release(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.running, id)
}
