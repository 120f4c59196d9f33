package common

import "time"

// Side denotes order side.
type Side string

const (
	SideBuy  Side = "Buy"
	SideSell Side = "Sell"
)

// Opposite returns the closing side for a position opened with s.
func (s Side) Opposite() Side {
	if s == SideBuy {
		return SideSell
	}
	return SideBuy
}

// OrderType denotes basic order types.
type OrderType string

const (
	OrderTypeMarket OrderType = "Market"
	OrderTypeLimit  OrderType = "Limit"
)

// Candle is one OHLCV data point for a fixed interval.
type Candle struct {
	OpenTime time.Time
	Open     float64
	High     float64
	Low      float64
	Close    float64
	Volume   float64
}

// Position is an open exchange position.
type Position struct {
	Symbol     string
	Side       Side
	Qty        float64
	EntryPrice float64
}

// OrderRequest captures an order intent to be sent to an exchange.
type OrderRequest struct {
	Symbol string
	Side   Side
	Type   OrderType
	Qty    float64
	Price  float64 // required for Limit
}

// OrderResult returns the exchange ack.
type OrderResult struct {
	OrderID string
}
