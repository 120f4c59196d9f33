package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"ai-trading-bot/internal/scheduler"
	"ai-trading-bot/internal/strategy"
	"ai-trading-bot/pkg/db"
)

type strategyRequest struct {
	Name                 string              `json:"name" binding:"required,min=1,max=120"`
	Archetype            string              `json:"archetype" binding:"required,min=1"`
	Symbols              []string            `json:"symbols" binding:"required,min=1"`
	Timeframe            string              `json:"timeframe" binding:"required,min=1"`
	RiskPercentage       float64             `json:"riskPercentage" binding:"gt=0,lte=100"`
	MaxPositions         int                 `json:"maxPositions" binding:"gte=1"`
	StopLossPercentage   float64             `json:"stopLossPercentage" binding:"gte=0,lte=100"`
	TakeProfitPercentage float64             `json:"takeProfitPercentage" binding:"gte=0"`
	Indicators           *db.IndicatorParams `json:"indicators"`
	UseAIConfirmation    bool                `json:"useAiConfirmation"`
	MinAIConfidence      float64             `json:"minAiConfidence" binding:"gte=0,lte=100"`
}

type listTradesQuery struct {
	Symbol string `form:"symbol"`
	Limit  int    `form:"limit"`
}

func (q *listTradesQuery) normalize() {
	if q.Limit <= 0 {
		q.Limit = 100
	}
	if q.Limit > 500 {
		q.Limit = 500
	}
}

// strategyView is the JSON shape for a strategy record.
type strategyView struct {
	ID                   string             `json:"id"`
	Name                 string             `json:"name"`
	Archetype            string             `json:"archetype"`
	IsActive             bool               `json:"isActive"`
	Symbols              []string           `json:"symbols"`
	Timeframe            string             `json:"timeframe"`
	RiskPercentage       float64            `json:"riskPercentage"`
	MaxPositions         int                `json:"maxPositions"`
	StopLossPercentage   float64            `json:"stopLossPercentage"`
	TakeProfitPercentage float64            `json:"takeProfitPercentage"`
	Indicators           db.IndicatorParams `json:"indicators"`
	UseAIConfirmation    bool               `json:"useAiConfirmation"`
	MinAIConfidence      float64            `json:"minAiConfidence"`
	CreatedAt            time.Time          `json:"createdAt"`
	UpdatedAt            time.Time          `json:"updatedAt"`
}

type tradeView struct {
	ID          string     `json:"id"`
	StrategyID  string     `json:"strategyId"`
	Symbol      string     `json:"symbol"`
	Side        string     `json:"side"`
	Qty         float64    `json:"qty"`
	EntryPrice  float64    `json:"entryPrice"`
	OrderID     string     `json:"orderId"`
	Confidence  *float64   `json:"confidence"`
	Reasoning   *string    `json:"reasoning"`
	Status      string     `json:"status"`
	ExitPrice   *float64   `json:"exitPrice"`
	RealizedPnL *float64   `json:"realizedPnl"`
	CreatedAt   time.Time  `json:"createdAt"`
	ExecutedAt  *time.Time `json:"executedAt"`
	ClosedAt    *time.Time `json:"closedAt"`
}

func toStrategyView(s db.Strategy) strategyView {
	return strategyView{
		ID:                   s.ID,
		Name:                 s.Name,
		Archetype:            s.Archetype,
		IsActive:             s.IsActive,
		Symbols:              s.Symbols,
		Timeframe:            s.Timeframe,
		RiskPercentage:       s.RiskPercentage,
		MaxPositions:         s.MaxPositions,
		StopLossPercentage:   s.StopLossPercentage,
		TakeProfitPercentage: s.TakeProfitPercentage,
		Indicators:           s.Indicators,
		UseAIConfirmation:    s.UseAIConfirmation,
		MinAIConfidence:      s.MinAIConfidence,
		CreatedAt:            s.CreatedAt,
		UpdatedAt:            s.UpdatedAt,
	}
}

func toTradeView(t db.Trade) tradeView {
	return tradeView{
		ID:          t.ID,
		StrategyID:  t.StrategyID,
		Symbol:      t.Symbol,
		Side:        t.Side,
		Qty:         t.Qty,
		EntryPrice:  t.EntryPrice,
		OrderID:     t.OrderID,
		Confidence:  t.Confidence,
		Reasoning:   t.Reasoning,
		Status:      t.Status,
		ExitPrice:   t.ExitPrice,
		RealizedPnL: t.RealizedPnL,
		CreatedAt:   t.CreatedAt,
		ExecutedAt:  t.ExecutedAt,
		ClosedAt:    t.ClosedAt,
	}
}

func respondError(c *gin.Context, status int, code, msg string) {
	c.JSON(status, gin.H{
		"code":  code,
		"error": msg,
	})
}

func (s *Server) listStrategies(c *gin.Context) {
	strategies, err := s.DB.ListStrategies(c.Request.Context())
	if err != nil {
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}
	views := make([]strategyView, len(strategies))
	for i, st := range strategies {
		views[i] = toStrategyView(st)
	}
	c.JSON(http.StatusOK, gin.H{"strategies": views})
}

func (s *Server) getStrategy(c *gin.Context) {
	st, err := s.DB.GetStrategy(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			respondError(c, http.StatusNotFound, "STRATEGY_NOT_FOUND", "strategy not found")
			return
		}
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}
	c.JSON(http.StatusOK, toStrategyView(*st))
}

func (s *Server) createStrategy(c *gin.Context) {
	var req strategyRequest
	if err := c.BindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_PAYLOAD", err.Error())
		return
	}
	if !strategy.Archetype(req.Archetype).Valid() {
		respondError(c, http.StatusBadRequest, "INVALID_ARCHETYPE", "unknown strategy archetype")
		return
	}

	params := db.DefaultIndicatorParams()
	if req.Indicators != nil {
		params = *req.Indicators
	}
	now := time.Now().UTC()
	st := db.Strategy{
		ID:                   uuid.NewString(),
		Name:                 req.Name,
		Archetype:            req.Archetype,
		Symbols:              req.Symbols,
		Timeframe:            req.Timeframe,
		RiskPercentage:       req.RiskPercentage,
		MaxPositions:         req.MaxPositions,
		StopLossPercentage:   req.StopLossPercentage,
		TakeProfitPercentage: req.TakeProfitPercentage,
		Indicators:           params,
		UseAIConfirmation:    req.UseAIConfirmation,
		MinAIConfidence:      req.MinAIConfidence,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	if err := s.DB.CreateStrategy(c.Request.Context(), st); err != nil {
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}
	c.JSON(http.StatusCreated, toStrategyView(st))
}

func (s *Server) updateStrategy(c *gin.Context) {
	ctx := c.Request.Context()
	existing, err := s.DB.GetStrategy(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			respondError(c, http.StatusNotFound, "STRATEGY_NOT_FOUND", "strategy not found")
			return
		}
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}

	var req strategyRequest
	if err := c.BindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_PAYLOAD", err.Error())
		return
	}
	if !strategy.Archetype(req.Archetype).Valid() {
		respondError(c, http.StatusBadRequest, "INVALID_ARCHETYPE", "unknown strategy archetype")
		return
	}

	existing.Name = req.Name
	existing.Archetype = req.Archetype
	existing.Symbols = req.Symbols
	existing.Timeframe = req.Timeframe
	existing.RiskPercentage = req.RiskPercentage
	existing.MaxPositions = req.MaxPositions
	existing.StopLossPercentage = req.StopLossPercentage
	existing.TakeProfitPercentage = req.TakeProfitPercentage
	if req.Indicators != nil {
		existing.Indicators = *req.Indicators
	}
	existing.UseAIConfirmation = req.UseAIConfirmation
	existing.MinAIConfidence = req.MinAIConfidence
	existing.UpdatedAt = time.Now().UTC()

	if err := s.DB.UpdateStrategy(ctx, *existing); err != nil {
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}
	c.JSON(http.StatusOK, toStrategyView(*existing))
}

func (s *Server) deleteStrategy(c *gin.Context) {
	if err := s.DB.DeleteStrategy(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			respondError(c, http.StatusNotFound, "STRATEGY_NOT_FOUND", "strategy not found")
			return
		}
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

func (s *Server) setStrategyActive(c *gin.Context, active bool) {
	if err := s.DB.SetStrategyActive(c.Request.Context(), c.Param("id"), active); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			respondError(c, http.StatusNotFound, "STRATEGY_NOT_FOUND", "strategy not found")
			return
		}
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": c.Param("id"), "isActive": active})
}

func (s *Server) activateStrategy(c *gin.Context)   { s.setStrategyActive(c, true) }
func (s *Server) deactivateStrategy(c *gin.Context) { s.setStrategyActive(c, false) }

// executeStrategy triggers one synchronous pipeline pass, outside the tick
// cycle.
func (s *Server) executeStrategy(c *gin.Context) {
	err := s.Executor.ExecuteStrategy(c.Request.Context(), c.Param("id"))
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"executed": true})
	case errors.Is(err, db.ErrNotFound):
		respondError(c, http.StatusNotFound, "STRATEGY_NOT_FOUND", "strategy not found")
	case errors.Is(err, scheduler.ErrStrategyBusy):
		respondError(c, http.StatusConflict, "STRATEGY_BUSY", "strategy execution already in progress")
	default:
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
	}
}

func (s *Server) listTrades(c *gin.Context) {
	var q listTradesQuery
	if err := c.BindQuery(&q); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_QUERY", err.Error())
		return
	}
	q.normalize()

	var (
		trades []db.Trade
		err    error
	)
	if q.Symbol != "" {
		trades, err = s.DB.ListTradesBySymbol(c.Request.Context(), q.Symbol, q.Limit)
	} else {
		trades, err = s.DB.ListTrades(c.Request.Context(), q.Limit)
	}
	if err != nil {
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}

	views := make([]tradeView, len(trades))
	for i, t := range trades {
		views[i] = toTradeView(t)
	}
	c.JSON(http.StatusOK, gin.H{"trades": views})
}

func (s *Server) getTradeStats(c *gin.Context) {
	stats, err := s.DB.GetTradeStats(c.Request.Context())
	if err != nil {
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (s *Server) closeTrade(c *gin.Context) {
	trade, err := s.Executor.CloseTrade(c.Request.Context(), c.Param("id"))
	switch {
	case err == nil:
		c.JSON(http.StatusOK, toTradeView(*trade))
	case errors.Is(err, db.ErrNotFound):
		respondError(c, http.StatusNotFound, "TRADE_NOT_FOUND", "trade not found")
	case errors.Is(err, scheduler.ErrInvalidState):
		respondError(c, http.StatusConflict, "INVALID_TRADE_STATE", err.Error())
	default:
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
	}
}

func (s *Server) cancelTrade(c *gin.Context) {
	trade, err := s.Executor.CancelTrade(c.Request.Context(), c.Param("id"))
	switch {
	case err == nil:
		c.JSON(http.StatusOK, toTradeView(*trade))
	case errors.Is(err, db.ErrNotFound):
		respondError(c, http.StatusNotFound, "TRADE_NOT_FOUND", "trade not found")
	case errors.Is(err, scheduler.ErrInvalidState):
		respondError(c, http.StatusConflict, "INVALID_TRADE_STATE", err.Error())
	default:
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
	}
}

func (s *Server) getBalance(c *gin.Context) {
	if s.Balance == nil {
		respondError(c, http.StatusServiceUnavailable, "BALANCE_UNAVAILABLE", "balance watcher not running")
		return
	}
	available, lastSync := s.Balance.Available()
	c.JSON(http.StatusOK, gin.H{
		"available": available,
		"lastSync":  lastSync,
	})
}
