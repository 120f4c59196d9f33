// Package market publishes live prices onto the event bus.
package market

import (
	"context"
	"log"

	"ai-trading-bot/internal/events"
	stream "ai-trading-bot/pkg/market/bybit"
)

// Feed bridges the Bybit public ticker stream onto the event bus.
type Feed struct {
	Stream  *stream.StreamClient
	Bus     *events.Bus
	Symbols []string
}

// Start subscribes to every configured symbol and republishes updates as
// market-update events until ctx is cancelled.
func (f *Feed) Start(ctx context.Context) {
	if f.Bus == nil || f.Stream == nil || len(f.Symbols) == 0 {
		log.Println("market feed not fully configured; skipping start")
		return
	}

	ch, stop, err := f.Stream.SubscribeTickers(ctx, f.Symbols)
	if err != nil {
		log.Printf("❌ market feed: subscribe failed: %v", err)
		return
	}
	log.Printf("📡 market feed streaming %d symbols", len(f.Symbols))

	go func() {
		defer stop()
		for tick := range ch {
			f.Bus.Publish(events.EventMarketUpdate, events.MarketUpdate{
				Symbol: tick.Symbol,
				Price:  tick.LastPrice,
				Time:   tick.Time,
			})
		}
	}()
}
