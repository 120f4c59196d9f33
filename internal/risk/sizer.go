// Package risk turns an account balance and a strategy's risk settings into
// concrete order parameters. All arithmetic goes through decimals so the
// quantities sent to the exchange never carry float residue.
package risk

import (
	"fmt"

	"github.com/shopspring/decimal"

	"ai-trading-bot/pkg/exchanges/common"
)

// CalculateQty sizes an order so that riskPct percent of the balance is
// committed at the given price. The result is rounded down to precision
// decimal places; rounding down keeps the committed capital at or below the
// configured risk.
func CalculateQty(balance, riskPct, price float64, precision int32) (float64, error) {
	if balance <= 0 {
		return 0, fmt.Errorf("balance must be positive, got %.2f", balance)
	}
	if price <= 0 {
		return 0, fmt.Errorf("price must be positive, got %.2f", price)
	}
	if riskPct <= 0 || riskPct > 100 {
		return 0, fmt.Errorf("risk percentage out of range: %.2f", riskPct)
	}

	capital := decimal.NewFromFloat(balance).
		Mul(decimal.NewFromFloat(riskPct)).
		Div(decimal.NewFromInt(100))
	qty := capital.Div(decimal.NewFromFloat(price)).RoundDown(precision)

	f, _ := qty.Float64()
	if f <= 0 {
		return 0, fmt.Errorf("computed quantity rounds to zero (balance %.2f, risk %.2f%%, price %.2f)", balance, riskPct, price)
	}
	return f, nil
}

// StopLossPrice places the protective stop stopLossPct percent away from the
// entry, below it for longs and above it for shorts. Rounded to two decimals,
// which suits USDT-quoted pairs; finer tick sizes would need per-symbol
// metadata from the instruments endpoint.
func StopLossPrice(entry float64, side common.Side, stopLossPct float64) float64 {
	e := decimal.NewFromFloat(entry)
	offset := e.Mul(decimal.NewFromFloat(stopLossPct)).Div(decimal.NewFromInt(100))

	var stop decimal.Decimal
	if side == common.SideBuy {
		stop = e.Sub(offset)
	} else {
		stop = e.Add(offset)
	}
	f, _ := stop.Round(2).Float64()
	return f
}

// TakeProfitPrice mirrors StopLossPrice on the profitable side of the entry.
func TakeProfitPrice(entry float64, side common.Side, takeProfitPct float64) float64 {
	e := decimal.NewFromFloat(entry)
	offset := e.Mul(decimal.NewFromFloat(takeProfitPct)).Div(decimal.NewFromInt(100))

	var target decimal.Decimal
	if side == common.SideBuy {
		target = e.Add(offset)
	} else {
		target = e.Sub(offset)
	}
	f, _ := target.Round(2).Float64()
	return f
}
