package scheduler

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"ai-trading-bot/internal/events"
	"ai-trading-bot/internal/oracle"
	"ai-trading-bot/internal/strategy"
	"ai-trading-bot/pkg/db"
	"ai-trading-bot/pkg/exchanges/common"
)

// mockGateway scripts exchange behavior and counts every call.
type mockGateway struct {
	mu sync.Mutex

	candles   []common.Candle
	candleErr error
	price     float64
	priceErr  error
	balance   float64
	positions []common.Position
	orderID   string
	orderErr  error
	stopErr   error
	cancelErr error

	candleCalls int
	orderCalls  int
	stopCalls   int
	cancelCalls int
}

func (m *mockGateway) GetCandles(context.Context, string, string, int) ([]common.Candle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.candleCalls++
	return m.candles, m.candleErr
}

func (m *mockGateway) GetPrice(context.Context, string) (float64, error) {
	return m.price, m.priceErr
}

func (m *mockGateway) GetBalance(context.Context) (float64, error) {
	return m.balance, nil
}

func (m *mockGateway) GetPositions(context.Context, string) ([]common.Position, error) {
	return m.positions, nil
}

func (m *mockGateway) PlaceOrder(context.Context, common.OrderRequest) (common.OrderResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orderCalls++
	if m.orderErr != nil {
		return common.OrderResult{}, m.orderErr
	}
	return common.OrderResult{OrderID: m.orderID}, nil
}

func (m *mockGateway) SetStopLoss(context.Context, string, common.Side, float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopCalls++
	return m.stopErr
}

func (m *mockGateway) CancelOrder(context.Context, string, string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cancelCalls++
	return m.cancelErr
}

func (m *mockGateway) CancelAllOrders(context.Context, string) error { return nil }

// fakeOracle returns a scripted decision.
type fakeOracle struct {
	decision oracle.Decision
	calls    int
}

func (f *fakeOracle) Decide(context.Context, oracle.Request) oracle.Decision {
	f.calls++
	return f.decision
}

func newTestDB(t *testing.T) *db.Database {
	t.Helper()
	database, err := db.New(":memory:")
	if err != nil {
		t.Fatalf("db.New: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	if err := db.ApplyMigrations(database); err != nil {
		t.Fatalf("ApplyMigrations: %v", err)
	}
	return database
}

// risingCandles produces a steady uptrend long enough for every indicator:
// EMAs aligned upward, positive MACD, price above the Bollinger middle. The
// trend archetype classifies it LONG.
func risingCandles(n int) []common.Candle {
	candles := make([]common.Candle, n)
	for i := range candles {
		c := 100 + float64(i)
		candles[i] = common.Candle{
			OpenTime: time.Unix(int64(i)*60, 0),
			Open:     c - 0.5,
			High:     c + 1,
			Low:      c - 1,
			Close:    c,
			Volume:   10,
		}
	}
	return candles
}

func testStrategy(t *testing.T, database *db.Database, mutate func(*db.Strategy)) db.Strategy {
	t.Helper()
	s := db.Strategy{
		ID:                 "strat-1",
		Name:               "Trend Rider",
		Archetype:          string(strategy.ArchetypeTrend),
		IsActive:           true,
		Symbols:            []string{"BTCUSDT"},
		Timeframe:          "15",
		RiskPercentage:     1,
		MaxPositions:       2,
		StopLossPercentage: 2,
		Indicators:         db.DefaultIndicatorParams(),
	}
	if mutate != nil {
		mutate(&s)
	}
	if err := database.CreateStrategy(context.Background(), s); err != nil {
		t.Fatalf("CreateStrategy: %v", err)
	}
	return s
}

func newTestScheduler(database *db.Database, gw common.Gateway, orc Oracle) *Scheduler {
	return New(Config{
		DB:           database,
		Gateway:      gw,
		Oracle:       orc,
		Bus:          events.NewBus(),
		Interval:     time.Minute,
		CandleLimit:  100,
		QtyPrecision: 3,
		Execution:    true,
	})
}

func TestPipelinePlacesOrderAndPersistsExecutedTrade(t *testing.T) {
	database := newTestDB(t)
	strat := testStrategy(t, database, nil)
	gw := &mockGateway{candles: risingCandles(100), balance: 10000, orderID: "ord-1"}
	sched := newTestScheduler(database, gw, &fakeOracle{})

	tradeCh, unsub := sched.bus.Subscribe(events.EventTradeExecuted, 1)
	defer unsub()

	if err := sched.runSymbol(context.Background(), strat, "BTCUSDT"); err != nil {
		t.Fatalf("runSymbol: %v", err)
	}
	if gw.orderCalls != 1 {
		t.Fatalf("orderCalls=%d, want 1", gw.orderCalls)
	}
	if gw.stopCalls != 1 {
		t.Fatalf("stopCalls=%d, want 1", gw.stopCalls)
	}

	trades, err := database.ListTrades(context.Background(), 10)
	if err != nil {
		t.Fatalf("ListTrades: %v", err)
	}
	if len(trades) != 1 {
		t.Fatalf("trade count=%d, want 1", len(trades))
	}
	tr := trades[0]
	if tr.Status != db.TradeStatusExecuted {
		t.Fatalf("status=%s, want EXECUTED", tr.Status)
	}
	if tr.OrderID != "ord-1" {
		t.Fatalf("orderID=%s", tr.OrderID)
	}
	if tr.Side != string(common.SideBuy) {
		t.Fatalf("side=%s, want Buy (uptrend classifies long)", tr.Side)
	}
	// balance 10000, risk 1%, price 199 -> 100/199 rounded down to 3 dp
	if math.Abs(tr.Qty-0.502) > 1e-9 {
		t.Fatalf("qty=%v, want 0.502", tr.Qty)
	}
	if tr.Confidence != nil {
		t.Fatalf("confidence should be nil without confirmation, got %v", *tr.Confidence)
	}

	select {
	case payload := <-tradeCh:
		ev, ok := payload.(events.TradeExecuted)
		if !ok {
			t.Fatalf("payload type %T", payload)
		}
		if ev.Trade.ID != tr.ID {
			t.Fatalf("event trade=%s, want %s", ev.Trade.ID, tr.ID)
		}
	default:
		t.Fatal("no trade-executed event published")
	}
}

func TestPipelineInsufficientCandlesIsSilentNoop(t *testing.T) {
	database := newTestDB(t)
	strat := testStrategy(t, database, nil)
	gw := &mockGateway{candles: risingCandles(49), balance: 10000}
	sched := newTestScheduler(database, gw, &fakeOracle{})

	if err := sched.runSymbol(context.Background(), strat, "BTCUSDT"); err != nil {
		t.Fatalf("runSymbol: %v", err)
	}
	if gw.orderCalls != 0 {
		t.Fatalf("orderCalls=%d, want 0", gw.orderCalls)
	}
	trades, _ := database.ListTrades(context.Background(), 10)
	if len(trades) != 0 {
		t.Fatalf("trade count=%d, want 0", len(trades))
	}
}

func TestPipelineCandleFetchErrorAborts(t *testing.T) {
	database := newTestDB(t)
	strat := testStrategy(t, database, nil)
	gw := &mockGateway{candleErr: errors.New("boom")}
	sched := newTestScheduler(database, gw, &fakeOracle{})

	if err := sched.runSymbol(context.Background(), strat, "BTCUSDT"); err == nil {
		t.Fatal("expected error from candle fetch")
	}
	if gw.orderCalls != 0 {
		t.Fatalf("orderCalls=%d, want 0", gw.orderCalls)
	}
}

func TestPipelineLowConfidenceSkipsWithoutTrade(t *testing.T) {
	database := newTestDB(t)
	strat := testStrategy(t, database, func(s *db.Strategy) {
		s.UseAIConfirmation = true
		s.MinAIConfidence = 70
	})
	gw := &mockGateway{candles: risingCandles(100), balance: 10000, orderID: "ord-1"}
	orc := &fakeOracle{decision: oracle.Decision{Action: strategy.SignalLong, Confidence: 40, RiskLevel: oracle.RiskMedium}}
	sched := newTestScheduler(database, gw, orc)

	if err := sched.runSymbol(context.Background(), strat, "BTCUSDT"); err != nil {
		t.Fatalf("runSymbol: %v", err)
	}
	if orc.calls != 1 {
		t.Fatalf("oracle calls=%d, want 1", orc.calls)
	}
	if gw.orderCalls != 0 {
		t.Fatalf("orderCalls=%d, want 0", gw.orderCalls)
	}
	trades, _ := database.ListTrades(context.Background(), 10)
	if len(trades) != 0 {
		t.Fatalf("trade count=%d, want 0", len(trades))
	}
}

func TestPipelineOracleHoldShortCircuits(t *testing.T) {
	database := newTestDB(t)
	strat := testStrategy(t, database, func(s *db.Strategy) {
		s.UseAIConfirmation = true
		s.MinAIConfidence = 0
	})
	gw := &mockGateway{candles: risingCandles(100), balance: 10000, orderID: "ord-1"}
	// a failing oracle degrades to safe hold; the pipeline must not trade
	orc := &fakeOracle{decision: oracle.SafeHold("AI service unavailable.")}
	sched := newTestScheduler(database, gw, orc)

	if err := sched.runSymbol(context.Background(), strat, "BTCUSDT"); err != nil {
		t.Fatalf("runSymbol: %v", err)
	}
	if gw.orderCalls != 0 {
		t.Fatalf("orderCalls=%d, want 0", gw.orderCalls)
	}
	trades, _ := database.ListTrades(context.Background(), 10)
	if len(trades) != 0 {
		t.Fatalf("trade count=%d, want 0", len(trades))
	}
}

func TestPipelineConfirmedTradeRecordsDecision(t *testing.T) {
	database := newTestDB(t)
	strat := testStrategy(t, database, func(s *db.Strategy) {
		s.UseAIConfirmation = true
		s.MinAIConfidence = 70
	})
	gw := &mockGateway{candles: risingCandles(100), balance: 10000, orderID: "ord-1"}
	orc := &fakeOracle{decision: oracle.Decision{
		Action:     strategy.SignalLong,
		Confidence: 85,
		Reasoning:  "momentum continuation",
		RiskLevel:  oracle.RiskMedium,
	}}
	sched := newTestScheduler(database, gw, orc)

	if err := sched.runSymbol(context.Background(), strat, "BTCUSDT"); err != nil {
		t.Fatalf("runSymbol: %v", err)
	}
	trades, _ := database.ListTrades(context.Background(), 10)
	if len(trades) != 1 {
		t.Fatalf("trade count=%d, want 1", len(trades))
	}
	tr := trades[0]
	if tr.Confidence == nil || *tr.Confidence != 85 {
		t.Fatalf("confidence=%v, want 85", tr.Confidence)
	}
	if tr.Reasoning == nil || *tr.Reasoning != "momentum continuation" {
		t.Fatalf("reasoning=%v", tr.Reasoning)
	}
}

func TestPipelinePositionLimitBlocksTrade(t *testing.T) {
	database := newTestDB(t)
	strat := testStrategy(t, database, func(s *db.Strategy) { s.MaxPositions = 1 })
	gw := &mockGateway{
		candles:   risingCandles(100),
		balance:   10000,
		positions: []common.Position{{Symbol: "BTCUSDT", Side: common.SideBuy, Qty: 0.5}},
	}
	sched := newTestScheduler(database, gw, &fakeOracle{})

	if err := sched.runSymbol(context.Background(), strat, "BTCUSDT"); err != nil {
		t.Fatalf("runSymbol: %v", err)
	}
	if gw.orderCalls != 0 {
		t.Fatalf("orderCalls=%d, want 0", gw.orderCalls)
	}
}

func TestPipelineOrderFailurePersistsFailedTrade(t *testing.T) {
	database := newTestDB(t)
	strat := testStrategy(t, database, nil)
	gw := &mockGateway{candles: risingCandles(100), balance: 10000, orderErr: errors.New("insufficient margin")}
	sched := newTestScheduler(database, gw, &fakeOracle{})

	if err := sched.runSymbol(context.Background(), strat, "BTCUSDT"); err != nil {
		t.Fatalf("runSymbol: %v", err)
	}
	if gw.stopCalls != 0 {
		t.Fatalf("stopCalls=%d, want 0 after rejected order", gw.stopCalls)
	}

	trades, _ := database.ListTrades(context.Background(), 10)
	if len(trades) != 1 {
		t.Fatalf("trade count=%d, want 1", len(trades))
	}
	tr := trades[0]
	if tr.Status != db.TradeStatusFailed {
		t.Fatalf("status=%s, want FAILED", tr.Status)
	}
	if tr.OrderID != db.FailedOrderID {
		t.Fatalf("orderID=%s, want sentinel", tr.OrderID)
	}
	if tr.Reasoning == nil || !strings.Contains(*tr.Reasoning, "insufficient margin") {
		t.Fatalf("reasoning=%v, want order error annotated", tr.Reasoning)
	}
}

func TestPipelineStopLossFailureKeepsTradeExecuted(t *testing.T) {
	database := newTestDB(t)
	strat := testStrategy(t, database, nil)
	gw := &mockGateway{candles: risingCandles(100), balance: 10000, orderID: "ord-1", stopErr: errors.New("trading-stop rejected")}
	sched := newTestScheduler(database, gw, &fakeOracle{})

	if err := sched.runSymbol(context.Background(), strat, "BTCUSDT"); err != nil {
		t.Fatalf("runSymbol: %v", err)
	}
	trades, _ := database.ListTrades(context.Background(), 10)
	if len(trades) != 1 || trades[0].Status != db.TradeStatusExecuted {
		t.Fatalf("trade must stay EXECUTED after stop-loss failure, got %+v", trades)
	}
}

func TestExecutionDisabledStopsBeforeExchange(t *testing.T) {
	database := newTestDB(t)
	strat := testStrategy(t, database, nil)
	gw := &mockGateway{candles: risingCandles(100), balance: 10000, orderID: "ord-1"}
	sched := New(Config{
		DB: database, Gateway: gw, Oracle: &fakeOracle{}, Bus: events.NewBus(),
		Interval: time.Minute, CandleLimit: 100, QtyPrecision: 3, Execution: false,
	})

	if err := sched.runSymbol(context.Background(), strat, "BTCUSDT"); err != nil {
		t.Fatalf("runSymbol: %v", err)
	}
	if gw.orderCalls != 0 {
		t.Fatalf("orderCalls=%d, want 0 in dry run", gw.orderCalls)
	}
	trades, _ := database.ListTrades(context.Background(), 10)
	if len(trades) != 0 {
		t.Fatalf("trade count=%d, want 0", len(trades))
	}
}

func TestRunningFlagBlocksConcurrentPass(t *testing.T) {
	database := newTestDB(t)
	strat := testStrategy(t, database, nil)
	gw := &mockGateway{candles: risingCandles(100), balance: 10000, orderID: "ord-1"}
	sched := newTestScheduler(database, gw, &fakeOracle{})

	if !sched.tryAcquire(strat.ID) {
		t.Fatal("first acquire should succeed")
	}
	if err := sched.ExecuteStrategy(context.Background(), strat.ID); !errors.Is(err, ErrStrategyBusy) {
		t.Fatalf("err=%v, want ErrStrategyBusy", err)
	}
	if gw.candleCalls != 0 || gw.orderCalls != 0 {
		t.Fatalf("busy strategy made gateway calls: candles=%d orders=%d", gw.candleCalls, gw.orderCalls)
	}

	sched.release(strat.ID)
	if err := sched.ExecuteStrategy(context.Background(), strat.ID); err != nil {
		t.Fatalf("ExecuteStrategy after release: %v", err)
	}
	if gw.orderCalls != 1 {
		t.Fatalf("orderCalls=%d, want 1", gw.orderCalls)
	}
}

func TestExecuteStrategyUnknownID(t *testing.T) {
	database := newTestDB(t)
	gw := &mockGateway{}
	sched := newTestScheduler(database, gw, &fakeOracle{})
	if err := sched.ExecuteStrategy(context.Background(), "missing"); !errors.Is(err, db.ErrNotFound) {
		t.Fatalf("err=%v, want ErrNotFound", err)
	}
}

func TestSymbolFailureDoesNotAbortRemainingSymbols(t *testing.T) {
	database := newTestDB(t)
	strat := testStrategy(t, database, func(s *db.Strategy) {
		s.Symbols = []string{"BTCUSDT", "ETHUSDT"}
	})
	// every candle fetch fails; both symbols must still be attempted
	gw := &mockGateway{candleErr: errors.New("down")}
	sched := newTestScheduler(database, gw, &fakeOracle{})

	sched.runStrategy(context.Background(), strat)
	if gw.candleCalls != 2 {
		t.Fatalf("candleCalls=%d, want 2 (one per symbol)", gw.candleCalls)
	}
}

func seedExecutedTrade(t *testing.T, database *db.Database, side common.Side, entry, qty float64) db.Trade {
	t.Helper()
	now := time.Now().UTC()
	tr := db.Trade{
		ID:         fmt.Sprintf("trade-%s-%d", side, time.Now().UnixNano()),
		StrategyID: "",
		Symbol:     "BTCUSDT",
		Side:       string(side),
		Qty:        qty,
		EntryPrice: entry,
		OrderID:    "ord-1",
		Status:     db.TradeStatusExecuted,
		CreatedAt:  now,
		ExecutedAt: &now,
	}
	if err := database.CreateTrade(context.Background(), tr); err != nil {
		t.Fatalf("CreateTrade: %v", err)
	}
	return tr
}

func TestCloseTradePnL(t *testing.T) {
	tests := []struct {
		name    string
		side    common.Side
		entry   float64
		exit    float64
		qty     float64
		wantPnL float64
	}{
		{name: "long profit", side: common.SideBuy, entry: 100, exit: 110, qty: 2, wantPnL: 20},
		{name: "short profit", side: common.SideSell, entry: 100, exit: 90, qty: 2, wantPnL: 20},
		{name: "short loss", side: common.SideSell, entry: 100, exit: 110, qty: 2, wantPnL: -20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			database := newTestDB(t)
			tr := seedExecutedTrade(t, database, tt.side, tt.entry, tt.qty)
			gw := &mockGateway{price: tt.exit, orderID: "close-1"}
			sched := newTestScheduler(database, gw, &fakeOracle{})

			closed, err := sched.CloseTrade(context.Background(), tr.ID)
			if err != nil {
				t.Fatalf("CloseTrade: %v", err)
			}
			if closed.Status != db.TradeStatusClosed {
				t.Fatalf("status=%s, want CLOSED", closed.Status)
			}
			if closed.RealizedPnL == nil || math.Abs(*closed.RealizedPnL-tt.wantPnL) > 1e-9 {
				t.Fatalf("pnl=%v, want %v", closed.RealizedPnL, tt.wantPnL)
			}
			if gw.orderCalls != 1 {
				t.Fatalf("orderCalls=%d, want 1 closing order", gw.orderCalls)
			}

			stored, err := database.GetTrade(context.Background(), tr.ID)
			if err != nil {
				t.Fatalf("GetTrade: %v", err)
			}
			if stored.ExitPrice == nil || *stored.ExitPrice != tt.exit {
				t.Fatalf("stored exit=%v, want %v", stored.ExitPrice, tt.exit)
			}
		})
	}
}

func TestCloseTradeRejectsClosedAndMissing(t *testing.T) {
	database := newTestDB(t)
	tr := seedExecutedTrade(t, database, common.SideBuy, 100, 1)
	gw := &mockGateway{price: 110, orderID: "close-1"}
	sched := newTestScheduler(database, gw, &fakeOracle{})

	if _, err := sched.CloseTrade(context.Background(), tr.ID); err != nil {
		t.Fatalf("first close: %v", err)
	}
	if _, err := sched.CloseTrade(context.Background(), tr.ID); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("second close err=%v, want ErrInvalidState", err)
	}
	if gw.orderCalls != 1 {
		t.Fatalf("orderCalls=%d, rejected close must not touch the gateway", gw.orderCalls)
	}
	if _, err := sched.CloseTrade(context.Background(), "missing"); !errors.Is(err, db.ErrNotFound) {
		t.Fatalf("missing trade err=%v, want ErrNotFound", err)
	}
}

func TestCancelTradeSkipsGatewayForFailedSentinel(t *testing.T) {
	database := newTestDB(t)
	now := time.Now().UTC()
	tr := db.Trade{
		ID:         "trade-failed",
		Symbol:     "BTCUSDT",
		Side:       string(common.SideBuy),
		Qty:        1,
		EntryPrice: 100,
		OrderID:    db.FailedOrderID,
		Status:     db.TradeStatusFailed,
		CreatedAt:  now,
	}
	if err := database.CreateTrade(context.Background(), tr); err != nil {
		t.Fatalf("CreateTrade: %v", err)
	}
	gw := &mockGateway{}
	sched := newTestScheduler(database, gw, &fakeOracle{})

	cancelled, err := sched.CancelTrade(context.Background(), tr.ID)
	if err != nil {
		t.Fatalf("CancelTrade: %v", err)
	}
	if gw.cancelCalls != 0 {
		t.Fatalf("cancelCalls=%d, sentinel order must not reach the gateway", gw.cancelCalls)
	}
	if cancelled.Status != db.TradeStatusCancelled {
		t.Fatalf("status=%s, want CANCELLED", cancelled.Status)
	}
}

func TestCancelTradeSurvivesExchangeRejection(t *testing.T) {
	database := newTestDB(t)
	tr := seedExecutedTrade(t, database, common.SideBuy, 100, 1)
	gw := &mockGateway{cancelErr: errors.New("order already filled")}
	sched := newTestScheduler(database, gw, &fakeOracle{})

	cancelled, err := sched.CancelTrade(context.Background(), tr.ID)
	if err != nil {
		t.Fatalf("CancelTrade: %v", err)
	}
	if gw.cancelCalls != 1 {
		t.Fatalf("cancelCalls=%d, want 1", gw.cancelCalls)
	}
	if cancelled.Status != db.TradeStatusCancelled {
		t.Fatalf("status=%s, want CANCELLED even after exchange rejection", cancelled.Status)
	}
	if cancelled.ClosedAt != nil {
		t.Fatalf("ClosedAt=%v, cancelled trade must not carry a close time", cancelled.ClosedAt)
	}
}

func TestCancelTradeRejectsClosedTrade(t *testing.T) {
	database := newTestDB(t)
	tr := seedExecutedTrade(t, database, common.SideBuy, 100, 1)
	gw := &mockGateway{price: 110, orderID: "close-1"}
	sched := newTestScheduler(database, gw, &fakeOracle{})

	closed, err := sched.CloseTrade(context.Background(), tr.ID)
	if err != nil {
		t.Fatalf("CloseTrade: %v", err)
	}

	if _, err := sched.CancelTrade(context.Background(), tr.ID); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("cancel of closed trade err=%v, want ErrInvalidState", err)
	}
	if gw.cancelCalls != 0 {
		t.Fatalf("cancelCalls=%d, rejected cancel must not touch the gateway", gw.cancelCalls)
	}

	stored, err := database.GetTrade(context.Background(), tr.ID)
	if err != nil {
		t.Fatalf("GetTrade: %v", err)
	}
	if stored.Status != db.TradeStatusClosed {
		t.Fatalf("status=%s, closed trade must stay CLOSED", stored.Status)
	}
	if stored.RealizedPnL == nil || *stored.RealizedPnL != *closed.RealizedPnL {
		t.Fatalf("RealizedPnL=%v, want %v untouched", stored.RealizedPnL, *closed.RealizedPnL)
	}
}

func TestCancelTradeRejectsSecondCancel(t *testing.T) {
	database := newTestDB(t)
	tr := seedExecutedTrade(t, database, common.SideBuy, 100, 1)
	gw := &mockGateway{}
	sched := newTestScheduler(database, gw, &fakeOracle{})

	if _, err := sched.CancelTrade(context.Background(), tr.ID); err != nil {
		t.Fatalf("first cancel: %v", err)
	}
	if _, err := sched.CancelTrade(context.Background(), tr.ID); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("second cancel err=%v, want ErrInvalidState", err)
	}
	if gw.cancelCalls != 1 {
		t.Fatalf("cancelCalls=%d, want 1", gw.cancelCalls)
	}
}

func TestTickSkipsInactiveStrategies(t *testing.T) {
	database := newTestDB(t)
	testStrategy(t, database, func(s *db.Strategy) { s.IsActive = false })
	gw := &mockGateway{candles: risingCandles(100), balance: 10000, orderID: "ord-1"}
	sched := newTestScheduler(database, gw, &fakeOracle{})

	sched.Tick(context.Background())
	time.Sleep(50 * time.Millisecond)
	if gw.candleCalls != 0 {
		t.Fatalf("candleCalls=%d, inactive strategy must not run", gw.candleCalls)
	}
}
