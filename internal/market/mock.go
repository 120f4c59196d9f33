package market

import (
	"context"
	"log"
	"math/rand"
	"time"

	"ai-trading-bot/internal/events"
)

// MockFeed generates synthetic random-walk ticks for local development, so
// the websocket dashboard and scheduler can run without exchange access.
type MockFeed struct {
	Bus        *events.Bus
	Symbols    []string
	StartPrice float64
	Step       float64
	Interval   time.Duration

	prices map[string]float64
}

// Start begins publishing ticks until ctx is cancelled.
func (m *MockFeed) Start(ctx context.Context) {
	if m.Bus == nil {
		log.Println("mock feed: bus not set")
		return
	}
	if len(m.Symbols) == 0 {
		m.Symbols = []string{"BTCUSDT"}
	}
	if m.StartPrice == 0 {
		m.StartPrice = 50000
	}
	if m.Step == 0 {
		m.Step = m.StartPrice * 0.001
	}
	if m.Interval == 0 {
		m.Interval = time.Second
	}
	m.prices = make(map[string]float64, len(m.Symbols))
	for _, sym := range m.Symbols {
		m.prices[sym] = m.StartPrice
	}

	log.Printf("📡 mock market feed streaming %d symbols", len(m.Symbols))
	go func() {
		t := time.NewTicker(m.Interval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				m.tick()
			}
		}
	}()
}

func (m *MockFeed) tick() {
	for _, sym := range m.Symbols {
		price := m.prices[sym] + (rand.Float64()*2-1)*m.Step
		if price <= 0 {
			price = m.Step
		}
		m.prices[sym] = price
		m.Bus.Publish(events.EventMarketUpdate, events.MarketUpdate{
			Symbol: sym,
			Price:  price,
			Time:   time.Now().UTC(),
		})
	}
}
