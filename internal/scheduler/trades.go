package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"ai-trading-bot/pkg/db"
	"ai-trading-bot/pkg/exchanges/common"
)

// CloseTrade exits an executed trade at market. The opposing-side order
// closes the position, then the realized P&L and exit price are persisted.
// Only EXECUTED trades can close.
func (s *Scheduler) CloseTrade(ctx context.Context, id string) (*db.Trade, error) {
	trade, err := s.db.GetTrade(ctx, id)
	if err != nil {
		return nil, err
	}
	if trade.Status != db.TradeStatusExecuted {
		return nil, fmt.Errorf("%w: cannot close trade in status %s", ErrInvalidState, trade.Status)
	}

	exit, err := s.gateway.GetPrice(ctx, trade.Symbol)
	if err != nil {
		return nil, fmt.Errorf("fetch exit price: %w", err)
	}

	side := common.Side(trade.Side)
	if _, err := s.gateway.PlaceOrder(ctx, common.OrderRequest{
		Symbol: trade.Symbol,
		Side:   side.Opposite(),
		Type:   common.OrderTypeMarket,
		Qty:    trade.Qty,
	}); err != nil {
		return nil, fmt.Errorf("close position: %w", err)
	}

	pnl := realizedPnL(side, trade.EntryPrice, exit, trade.Qty)
	closedAt := time.Now().UTC()
	if err := s.db.CloseTrade(ctx, id, exit, pnl, closedAt); err != nil {
		return nil, fmt.Errorf("persist close: %w", err)
	}

	log.Printf("✅ Scheduler: closed trade %s %s at %.2f, pnl=%.2f", id, trade.Symbol, exit, pnl)
	trade.Status = db.TradeStatusClosed
	trade.ExitPrice = &exit
	trade.RealizedPnL = &pnl
	trade.ClosedAt = &closedAt
	return trade, nil
}

// CancelTrade cancels a trade's exchange order when one exists and marks the
// record CANCELLED. The status update happens even if the exchange-side
// cancellation fails, so the call is idempotent for the operator. CLOSED and
// CANCELLED are terminal and stay untouched.
func (s *Scheduler) CancelTrade(ctx context.Context, id string) (*db.Trade, error) {
	trade, err := s.db.GetTrade(ctx, id)
	if err != nil {
		return nil, err
	}
	if trade.Status == db.TradeStatusClosed || trade.Status == db.TradeStatusCancelled {
		return nil, fmt.Errorf("%w: cannot cancel trade in status %s", ErrInvalidState, trade.Status)
	}

	if trade.OrderID != "" && trade.OrderID != db.FailedOrderID {
		if err := s.gateway.CancelOrder(ctx, trade.Symbol, trade.OrderID); err != nil {
			log.Printf("⚠️ Scheduler: cancel order %s on exchange failed: %v", trade.OrderID, err)
		}
	}

	if err := s.db.CancelTrade(ctx, id); err != nil {
		return nil, fmt.Errorf("persist cancel: %w", err)
	}
	trade.Status = db.TradeStatusCancelled
	return trade, nil
}

// realizedPnL is signed from the position's perspective: longs profit when
// exit exceeds entry, shorts when it falls below.
func realizedPnL(side common.Side, entry, exit, qty float64) float64 {
	if side == common.SideBuy {
		return (exit - entry) * qty
	}
	return (entry - exit) * qty
}
