package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"ai-trading-bot/internal/events"
	"ai-trading-bot/internal/indicators"
	"ai-trading-bot/internal/oracle"
	"ai-trading-bot/internal/risk"
	"ai-trading-bot/internal/strategy"
	"ai-trading-bot/pkg/db"
	"ai-trading-bot/pkg/exchanges/common"
)

// runSymbol performs one full pipeline pass for (strategy, symbol). The
// returned error aborts this symbol only; intentional no-trades
// (insufficient data, hold signal, low confidence, position limit) return
// nil after logging.
func (s *Scheduler) runSymbol(ctx context.Context, strat db.Strategy, symbol string) error {
	candles, err := s.gateway.GetCandles(ctx, symbol, strat.Timeframe, s.candleLimit)
	if err != nil {
		return fmt.Errorf("fetch candles: %w", err)
	}
	if len(candles) < minCandles {
		log.Printf("Scheduler: %s/%s insufficient data (%d candles, need %d)", strat.Name, symbol, len(candles), minCandles)
		return nil
	}

	closes := make([]float64, len(candles))
	for i, c := range candles {
		closes[i] = c.Close
	}
	price := closes[len(closes)-1]

	snap := indicators.Compute(closes, indicatorParams(strat.Indicators))
	signal := strategy.Classify(strategy.Archetype(strat.Archetype), snap, price)
	if signal == strategy.SignalHold {
		return nil
	}
	log.Printf("📊 Scheduler: %s/%s signal=%s price=%.2f rsi=%.1f", strat.Name, symbol, signal, price, snap.RSI)

	var decision *oracle.Decision
	if strat.UseAIConfirmation {
		dec := s.oracle.Decide(ctx, oracle.Request{
			Symbol:       symbol,
			Price:        price,
			Indicators:   snap,
			RecentPrices: closes,
			Signal:       signal,
		})
		if dec.Action != signal {
			log.Printf("Scheduler: %s/%s oracle did not confirm %s (said %s), skipping", strat.Name, symbol, signal, dec.Action)
			return nil
		}
		if dec.Confidence < strat.MinAIConfidence {
			log.Printf("Scheduler: %s/%s confidence %.0f below threshold %.0f, skipping", strat.Name, symbol, dec.Confidence, strat.MinAIConfidence)
			return nil
		}
		decision = &dec
	}

	positions, err := s.gateway.GetPositions(ctx, symbol)
	if err != nil {
		return fmt.Errorf("fetch positions: %w", err)
	}
	if len(positions) >= strat.MaxPositions {
		log.Printf("Scheduler: %s/%s position limit reached (%d/%d), skipping", strat.Name, symbol, len(positions), strat.MaxPositions)
		return nil
	}

	balance, err := s.gateway.GetBalance(ctx)
	if err != nil {
		return fmt.Errorf("fetch balance: %w", err)
	}
	qty, err := risk.CalculateQty(balance, strat.RiskPercentage, price, s.qtyPrecision)
	if err != nil {
		return fmt.Errorf("size order: %w", err)
	}

	side := common.SideBuy
	if signal == strategy.SignalShort {
		side = common.SideSell
	}

	if !s.execution {
		log.Printf("🛑 Scheduler: execution disabled, would place %s %s qty=%v at %.2f", side, symbol, qty, price)
		return nil
	}

	return s.placeAndRecord(ctx, strat, symbol, side, qty, price, snap, decision)
}

// placeAndRecord submits the order and persists the outcome. Persistence
// happens strictly after the exchange call returns, so the trade record
// always reflects what the exchange actually saw.
func (s *Scheduler) placeAndRecord(ctx context.Context, strat db.Strategy, symbol string, side common.Side, qty, price float64, snap indicators.Snapshot, decision *oracle.Decision) error {
	now := time.Now().UTC()
	trade := db.Trade{
		ID:         uuid.NewString(),
		StrategyID: strat.ID,
		Symbol:     symbol,
		Side:       string(side),
		Qty:        qty,
		EntryPrice: price,
		CreatedAt:  now,
	}
	if decision != nil {
		trade.Confidence = &decision.Confidence
		trade.Reasoning = &decision.Reasoning
	}

	res, err := s.gateway.PlaceOrder(ctx, common.OrderRequest{
		Symbol: symbol,
		Side:   side,
		Type:   common.OrderTypeMarket,
		Qty:    qty,
	})
	if err != nil {
		log.Printf("❌ Scheduler: %s/%s order rejected: %v", strat.Name, symbol, err)
		trade.OrderID = db.FailedOrderID
		trade.Status = db.TradeStatusFailed
		reason := "order placement failed: " + err.Error()
		if trade.Reasoning != nil {
			reason = *trade.Reasoning + " | " + reason
		}
		trade.Reasoning = &reason
		if dbErr := s.db.CreateTrade(ctx, trade); dbErr != nil {
			return fmt.Errorf("persist failed trade: %w", dbErr)
		}
		return nil
	}

	trade.OrderID = res.OrderID
	trade.Status = db.TradeStatusExecuted
	trade.ExecutedAt = &now

	stop := risk.StopLossPrice(price, side, strat.StopLossPercentage)
	if err := s.gateway.SetStopLoss(ctx, symbol, side, stop); err != nil {
		// The position is live on the exchange; the record stays EXECUTED.
		log.Printf("⚠️ Scheduler: %s/%s stop-loss at %.2f failed: %v", strat.Name, symbol, stop, err)
	}

	if err := s.db.CreateTrade(ctx, trade); err != nil {
		return fmt.Errorf("persist executed trade: %w", err)
	}

	log.Printf("✅ Scheduler: %s/%s %s qty=%v at %.2f (order %s)", strat.Name, symbol, side, qty, price, res.OrderID)
	s.bus.Publish(events.EventTradeExecuted, events.TradeExecuted{
		Trade:      trade,
		Indicators: snap,
		Decision:   decision,
	})
	return nil
}

// indicatorParams maps a strategy's stored tuning onto the engine's params.
// Bollinger settings are not strategy-tunable and keep their defaults.
func indicatorParams(p db.IndicatorParams) indicators.Params {
	return indicators.Params{
		RSIPeriod:  p.RSIPeriod,
		EMAShort:   p.EMAShort,
		EMALong:    p.EMALong,
		MACDFast:   p.MACDFast,
		MACDSlow:   p.MACDSlow,
		MACDSignal: p.MACDSignal,
	}
}
