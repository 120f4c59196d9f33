package events

import (
	"time"

	"ai-trading-bot/internal/indicators"
	"ai-trading-bot/internal/oracle"
	"ai-trading-bot/pkg/db"
)

// Event enumerates the notification topics emitted by the bot.
type Event string

const (
	EventMarketUpdate  Event = "market_update"
	EventTradeExecuted Event = "trade_executed"
	EventBalanceUpdate Event = "balance_update"
)

// MarketUpdate is published on every price tick from the market feed.
type MarketUpdate struct {
	Symbol string    `json:"symbol"`
	Price  float64   `json:"price"`
	Time   time.Time `json:"time"`
}

// BalanceUpdate is published after each balance sync.
type BalanceUpdate struct {
	Available float64   `json:"available"`
	Time      time.Time `json:"time"`
}

// TradeExecuted is published after an order attempt completes, successful or
// not. Decision is nil when the strategy ran without confirmation.
type TradeExecuted struct {
	Trade      db.Trade            `json:"trade"`
	Indicators indicators.Snapshot `json:"indicators"`
	Decision   *oracle.Decision    `json:"decision,omitempty"`
}
