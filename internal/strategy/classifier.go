package strategy

import (
	"ai-trading-bot/internal/indicators"
)

// classifierFunc maps an indicator snapshot and the current price to a
// signal. Every policy is pure and deterministic; partial condition matches
// resolve to HOLD.
type classifierFunc func(snap indicators.Snapshot, price float64) Signal

// classifiers keys every known archetype to its policy. medium-term
// deliberately reuses the trend policy: the original system never gave it a
// distinct branch and strategies rely on that aliasing.
var classifiers = map[Archetype]classifierFunc{
	ArchetypeScalping:   classifyScalping,
	ArchetypeTrend:      classifyTrend,
	ArchetypeMediumTerm: classifyTrend,
}

// Classify returns the directional signal for the archetype. Unknown
// archetypes classify as HOLD, the conservative default.
func Classify(a Archetype, snap indicators.Snapshot, price float64) Signal {
	fn, ok := classifiers[a]
	if !ok {
		return SignalHold
	}
	return fn(snap, price)
}

// classifyScalping looks for RSI exhaustion confirmed by EMA alignment and
// MACD momentum. Boundaries are strict: RSI exactly 30 or 70 holds.
func classifyScalping(snap indicators.Snapshot, _ float64) Signal {
	if snap.RSI < 30 && snap.EMAShort > snap.EMALong && snap.MACD.Histogram > 0 {
		return SignalLong
	}
	if snap.RSI > 70 && snap.EMAShort < snap.EMALong && snap.MACD.Histogram < 0 {
		return SignalShort
	}
	return SignalHold
}

// classifyTrend requires EMA alignment, MACD crossover and price on the
// matching side of the Bollinger middle band, all three at once.
func classifyTrend(snap indicators.Snapshot, price float64) Signal {
	if snap.EMAShort > snap.EMALong && snap.MACD.MACD > snap.MACD.Signal && price > snap.Bollinger.Middle {
		return SignalLong
	}
	if snap.EMAShort < snap.EMALong && snap.MACD.MACD < snap.MACD.Signal && price < snap.Bollinger.Middle {
		return SignalShort
	}
	return SignalHold
}
