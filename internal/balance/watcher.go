// Package balance keeps a cached view of the exchange account balance,
// refreshed on a fixed interval.
package balance

import (
	"context"
	"log"
	"sync"
	"time"

	"ai-trading-bot/internal/events"
	"ai-trading-bot/pkg/exchanges/common"
)

// Watcher periodically syncs the available balance from the exchange and
// publishes balance-update events. Reads are served from the cache so the
// pipeline never blocks on the exchange for a balance figure it can tolerate
// being one sync interval stale.
type Watcher struct {
	gateway  common.Gateway
	bus      *events.Bus
	interval time.Duration

	mu        sync.RWMutex
	available float64
	lastSync  time.Time
}

// NewWatcher creates a watcher; Start begins the sync loop.
func NewWatcher(gateway common.Gateway, bus *events.Bus, interval time.Duration) *Watcher {
	return &Watcher{
		gateway:  gateway,
		bus:      bus,
		interval: interval,
	}
}

// Start runs an initial sync and then refreshes on the interval until ctx is
// cancelled.
func (w *Watcher) Start(ctx context.Context) {
	if err := w.Sync(ctx); err != nil {
		log.Printf("❌ Balance: initial sync failed: %v", err)
	}

	ticker := time.NewTicker(w.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := w.Sync(ctx); err != nil {
					log.Printf("❌ Balance: sync failed: %v", err)
				}
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Sync fetches the balance once and updates the cache.
func (w *Watcher) Sync(ctx context.Context) error {
	available, err := w.gateway.GetBalance(ctx)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	w.mu.Lock()
	w.available = available
	w.lastSync = now
	w.mu.Unlock()

	log.Printf("💰 Balance synced: available=%.2f", available)
	w.bus.Publish(events.EventBalanceUpdate, events.BalanceUpdate{
		Available: available,
		Time:      now,
	})
	return nil
}

// Available returns the cached balance and when it was last synced.
func (w *Watcher) Available() (float64, time.Time) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.available, w.lastSync
}
