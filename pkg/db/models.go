package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("record not found")
)

// Trade lifecycle states. PENDING is the entry point; FAILED, CANCELLED and
// CLOSED are terminal.
const (
	TradeStatusPending   = "PENDING"
	TradeStatusExecuted  = "EXECUTED"
	TradeStatusFailed    = "FAILED"
	TradeStatusCancelled = "CANCELLED"
	TradeStatusClosed    = "CLOSED"
)

// FailedOrderID is the sentinel order identifier recorded when order
// placement was rejected by the exchange.
const FailedOrderID = "FAILED"

// IndicatorParams holds per-strategy indicator tuning, stored as JSON.
type IndicatorParams struct {
	RSIPeriod     int     `json:"rsiPeriod"`
	RSIOversold   float64 `json:"rsiOversold"`
	RSIOverbought float64 `json:"rsiOverbought"`
	EMAShort      int     `json:"emaShort"`
	EMALong       int     `json:"emaLong"`
	MACDFast      int     `json:"macdFast"`
	MACDSlow      int     `json:"macdSlow"`
	MACDSignal    int     `json:"macdSignal"`
}

// DefaultIndicatorParams mirrors the defaults used by seeded strategies.
func DefaultIndicatorParams() IndicatorParams {
	return IndicatorParams{
		RSIPeriod:     14,
		RSIOversold:   30,
		RSIOverbought: 70,
		EMAShort:      9,
		EMALong:       21,
		MACDFast:      12,
		MACDSlow:      26,
		MACDSignal:    9,
	}
}

// Strategy is an operator-owned trading strategy configuration.
type Strategy struct {
	ID                   string
	Name                 string
	Archetype            string // scalping | trend | medium-term
	IsActive             bool
	Symbols              []string
	Timeframe            string
	RiskPercentage       float64
	MaxPositions         int
	StopLossPercentage   float64
	TakeProfitPercentage float64
	Indicators           IndicatorParams
	UseAIConfirmation    bool
	MinAIConfidence      float64
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// Trade is an execution record produced by the scheduler. Exactly one row is
// created per order attempt, including rejected ones (status FAILED).
type Trade struct {
	ID          string
	StrategyID  string
	Symbol      string
	Side        string // Buy | Sell
	Qty         float64
	EntryPrice  float64
	OrderID     string
	Confidence  *float64
	Reasoning   *string
	Status      string
	ExitPrice   *float64
	RealizedPnL *float64
	CreatedAt   time.Time
	ExecutedAt  *time.Time
	ClosedAt    *time.Time
}

// TradeStats summarizes closed-trade performance for the dashboard.
type TradeStats struct {
	Total    int     `json:"total"`
	Executed int     `json:"executed"`
	Closed   int     `json:"closed"`
	Failed   int     `json:"failed"`
	Wins     int     `json:"wins"`
	Losses   int     `json:"losses"`
	TotalPnL float64 `json:"totalPnl"`
}

// ----------------------------------------
// Strategy queries
// ----------------------------------------

// CreateStrategy inserts a new strategy row.
func (d *Database) CreateStrategy(ctx context.Context, s Strategy) error {
	params, err := json.Marshal(s.Indicators)
	if err != nil {
		return fmt.Errorf("marshal indicator params: %w", err)
	}
	_, err = d.DB.ExecContext(ctx, `
		INSERT INTO strategies (
			id, name, archetype, is_active, symbols, timeframe,
			risk_percentage, max_positions, stop_loss_percentage, take_profit_percentage,
			indicator_params, use_ai_confirmation, min_ai_confidence
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		s.ID, s.Name, s.Archetype, boolToInt(s.IsActive), strings.Join(s.Symbols, ","), s.Timeframe,
		s.RiskPercentage, s.MaxPositions, s.StopLossPercentage, s.TakeProfitPercentage,
		string(params), boolToInt(s.UseAIConfirmation), s.MinAIConfidence,
	)
	return err
}

// UpdateStrategy overwrites the mutable fields of a strategy.
func (d *Database) UpdateStrategy(ctx context.Context, s Strategy) error {
	params, err := json.Marshal(s.Indicators)
	if err != nil {
		return fmt.Errorf("marshal indicator params: %w", err)
	}
	res, err := d.DB.ExecContext(ctx, `
		UPDATE strategies SET
			name = ?, archetype = ?, symbols = ?, timeframe = ?,
			risk_percentage = ?, max_positions = ?, stop_loss_percentage = ?,
			take_profit_percentage = ?, indicator_params = ?,
			use_ai_confirmation = ?, min_ai_confidence = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`,
		s.Name, s.Archetype, strings.Join(s.Symbols, ","), s.Timeframe,
		s.RiskPercentage, s.MaxPositions, s.StopLossPercentage,
		s.TakeProfitPercentage, string(params),
		boolToInt(s.UseAIConfirmation), s.MinAIConfidence,
		s.ID,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// SetStrategyActive toggles the active flag.
func (d *Database) SetStrategyActive(ctx context.Context, id string, active bool) error {
	res, err := d.DB.ExecContext(ctx, `
		UPDATE strategies SET is_active = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?
	`, boolToInt(active), id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// GetStrategy loads one strategy by ID.
func (d *Database) GetStrategy(ctx context.Context, id string) (*Strategy, error) {
	row := d.DB.QueryRowContext(ctx, strategySelect+` WHERE id = ?`, id)
	s, err := scanStrategy(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return s, err
}

// ListStrategies returns all strategies ordered by creation time descending.
func (d *Database) ListStrategies(ctx context.Context) ([]Strategy, error) {
	rows, err := d.DB.QueryContext(ctx, strategySelect+` ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query strategies: %w", err)
	}
	defer rows.Close()
	return collectStrategies(rows)
}

// ListActiveStrategies returns only strategies with the active flag set.
// The scheduler calls this on every tick.
func (d *Database) ListActiveStrategies(ctx context.Context) ([]Strategy, error) {
	rows, err := d.DB.QueryContext(ctx, strategySelect+` WHERE is_active = 1 ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("query active strategies: %w", err)
	}
	defer rows.Close()
	return collectStrategies(rows)
}

// DeleteStrategy removes a strategy row.
func (d *Database) DeleteStrategy(ctx context.Context, id string) error {
	res, err := d.DB.ExecContext(ctx, `DELETE FROM strategies WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

const strategySelect = `
	SELECT id, name, archetype, is_active, symbols, timeframe,
	       risk_percentage, max_positions, stop_loss_percentage, take_profit_percentage,
	       indicator_params, use_ai_confirmation, min_ai_confidence,
	       created_at, updated_at
	FROM strategies`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanStrategy(row rowScanner) (*Strategy, error) {
	var (
		s          Strategy
		active     int
		useAI      int
		symbols    string
		paramsJSON string
	)
	err := row.Scan(
		&s.ID, &s.Name, &s.Archetype, &active, &symbols, &s.Timeframe,
		&s.RiskPercentage, &s.MaxPositions, &s.StopLossPercentage, &s.TakeProfitPercentage,
		&paramsJSON, &useAI, &s.MinAIConfidence,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	s.IsActive = active == 1
	s.UseAIConfirmation = useAI == 1
	if symbols != "" {
		s.Symbols = strings.Split(symbols, ",")
	}
	if err := json.Unmarshal([]byte(paramsJSON), &s.Indicators); err != nil {
		return nil, fmt.Errorf("unmarshal indicator params for %s: %w", s.ID, err)
	}
	return &s, nil
}

func collectStrategies(rows *sql.Rows) ([]Strategy, error) {
	var out []Strategy
	for rows.Next() {
		s, err := scanStrategy(rows)
		if err != nil {
			return nil, fmt.Errorf("scan strategy: %w", err)
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

// ----------------------------------------
// Trade queries
// ----------------------------------------

// CreateTrade inserts a new trade row.
func (d *Database) CreateTrade(ctx context.Context, t Trade) error {
	_, err := d.DB.ExecContext(ctx, `
		INSERT INTO trades (
			id, strategy_id, symbol, side, qty, entry_price, order_id,
			confidence, reasoning, status, executed_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		t.ID, t.StrategyID, t.Symbol, t.Side, t.Qty, t.EntryPrice, t.OrderID,
		t.Confidence, t.Reasoning, t.Status, t.ExecutedAt,
	)
	return err
}

// GetTrade loads one trade by ID.
func (d *Database) GetTrade(ctx context.Context, id string) (*Trade, error) {
	row := d.DB.QueryRowContext(ctx, tradeSelect+` WHERE id = ?`, id)
	t, err := scanTrade(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return t, err
}

// ListTrades returns the most recent trades, newest first.
func (d *Database) ListTrades(ctx context.Context, limit int) ([]Trade, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := d.DB.QueryContext(ctx, tradeSelect+` ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query trades: %w", err)
	}
	defer rows.Close()
	return collectTrades(rows)
}

// ListTradesBySymbol returns recent trades for one symbol, newest first.
func (d *Database) ListTradesBySymbol(ctx context.Context, symbol string, limit int) ([]Trade, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := d.DB.QueryContext(ctx, tradeSelect+` WHERE symbol = ? ORDER BY created_at DESC LIMIT ?`, symbol, limit)
	if err != nil {
		return nil, fmt.Errorf("query trades by symbol: %w", err)
	}
	defer rows.Close()
	return collectTrades(rows)
}

// CloseTrade records the exit of an executed trade.
func (d *Database) CloseTrade(ctx context.Context, id string, exitPrice, realizedPnL float64, closedAt time.Time) error {
	res, err := d.DB.ExecContext(ctx, `
		UPDATE trades SET status = ?, exit_price = ?, realized_pnl = ?, closed_at = ?
		WHERE id = ?
	`, TradeStatusClosed, exitPrice, realizedPnL, closedAt, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// CancelTrade marks a trade cancelled. closed_at stays empty so it always
// means a real close with an exit price.
func (d *Database) CancelTrade(ctx context.Context, id string) error {
	res, err := d.DB.ExecContext(ctx, `
		UPDATE trades SET status = ? WHERE id = ?
	`, TradeStatusCancelled, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// GetTradeStats aggregates realized performance across all trades.
func (d *Database) GetTradeStats(ctx context.Context) (*TradeStats, error) {
	var stats TradeStats
	err := d.DB.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       SUM(CASE WHEN status = 'EXECUTED' THEN 1 ELSE 0 END),
		       SUM(CASE WHEN status = 'CLOSED' THEN 1 ELSE 0 END),
		       SUM(CASE WHEN status = 'FAILED' THEN 1 ELSE 0 END),
		       SUM(CASE WHEN realized_pnl > 0 THEN 1 ELSE 0 END),
		       SUM(CASE WHEN realized_pnl < 0 THEN 1 ELSE 0 END),
		       COALESCE(SUM(realized_pnl), 0)
		FROM trades
	`).Scan(&stats.Total, &stats.Executed, &stats.Closed, &stats.Failed,
		&stats.Wins, &stats.Losses, &stats.TotalPnL)
	if err != nil {
		return nil, fmt.Errorf("query trade stats: %w", err)
	}
	return &stats, nil
}

const tradeSelect = `
	SELECT id, COALESCE(strategy_id, ''), symbol, side, qty, entry_price, order_id,
	       confidence, reasoning, status, exit_price, realized_pnl,
	       created_at, executed_at, closed_at
	FROM trades`

func scanTrade(row rowScanner) (*Trade, error) {
	var (
		t          Trade
		confidence sql.NullFloat64
		reasoning  sql.NullString
		exitPrice  sql.NullFloat64
		pnl        sql.NullFloat64
		executedAt sql.NullTime
		closedAt   sql.NullTime
	)
	err := row.Scan(
		&t.ID, &t.StrategyID, &t.Symbol, &t.Side, &t.Qty, &t.EntryPrice, &t.OrderID,
		&confidence, &reasoning, &t.Status, &exitPrice, &pnl,
		&t.CreatedAt, &executedAt, &closedAt,
	)
	if err != nil {
		return nil, err
	}
	if confidence.Valid {
		t.Confidence = &confidence.Float64
	}
	if reasoning.Valid {
		t.Reasoning = &reasoning.String
	}
	if exitPrice.Valid {
		t.ExitPrice = &exitPrice.Float64
	}
	if pnl.Valid {
		t.RealizedPnL = &pnl.Float64
	}
	if executedAt.Valid {
		t.ExecutedAt = &executedAt.Time
	}
	if closedAt.Valid {
		t.ClosedAt = &closedAt.Time
	}
	return &t, nil
}

func collectTrades(rows *sql.Rows) ([]Trade, error) {
	var out []Trade
	for rows.Next() {
		t, err := scanTrade(rows)
		if err != nil {
			return nil, fmt.Errorf("scan trade: %w", err)
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
