package oracle

import (
	"context"

	"ai-trading-bot/internal/indicators"
	"ai-trading-bot/internal/strategy"
)

// RiskLevel is the oracle's own assessment of the suggested action.
type RiskLevel string

const (
	RiskLow    RiskLevel = "LOW"
	RiskMedium RiskLevel = "MEDIUM"
	RiskHigh   RiskLevel = "HIGH"
)

// Decision is the oracle's confirming judgement for one pipeline pass.
// Ephemeral: only confidence and reasoning survive, copied into the trade
// record on execution.
type Decision struct {
	Action     strategy.Signal `json:"action"`
	Confidence float64         `json:"confidence"`
	Reasoning  string          `json:"reasoning"`
	RiskLevel  RiskLevel       `json:"riskLevel"`
}

// Request carries everything the oracle sees for one decision.
type Request struct {
	Symbol       string
	Price        float64
	Indicators   indicators.Snapshot
	RecentPrices []float64
	Signal       strategy.Signal
}

// Disabled stands in for the oracle when no model is configured. Every
// decision is a safe hold, so strategies that require confirmation never
// trade.
type Disabled struct{}

func (Disabled) Decide(_ context.Context, _ Request) Decision {
	return SafeHold("AI confirmation is not configured.")
}

// SafeHold is the fail-safe decision returned whenever the underlying model
// call fails: a broken oracle must never cause an order.
func SafeHold(reasoning string) Decision {
	return Decision{
		Action:     strategy.SignalHold,
		Confidence: 0,
		Reasoning:  reasoning,
		RiskLevel:  RiskHigh,
	}
}
