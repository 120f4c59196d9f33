package common

import "context"

// Gateway abstracts a trading venue. Every call may fail independently with a
// transport or exchange-rejection error; callers must never assume atomicity
// across multiple Gateway calls.
type Gateway interface {
	// GetCandles fetches the most recent candles for (symbol, interval),
	// oldest first.
	GetCandles(ctx context.Context, symbol, interval string, limit int) ([]Candle, error)
	// GetPrice returns the current mark price.
	GetPrice(ctx context.Context, symbol string) (float64, error)
	// GetBalance returns the available account balance in quote currency.
	GetBalance(ctx context.Context) (float64, error)
	// GetPositions lists open positions, optionally filtered by symbol
	// (empty string = all symbols).
	GetPositions(ctx context.Context, symbol string) ([]Position, error)
	// PlaceOrder submits a market or limit order.
	PlaceOrder(ctx context.Context, req OrderRequest) (OrderResult, error)
	// SetStopLoss attaches a stop-loss level to the open position.
	SetStopLoss(ctx context.Context, symbol string, side Side, stopPrice float64) error
	// CancelOrder cancels one order by exchange order ID.
	CancelOrder(ctx context.Context, symbol, orderID string) error
	// CancelAllOrders cancels every open order for a symbol.
	CancelAllOrders(ctx context.Context, symbol string) error
}
