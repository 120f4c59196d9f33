// Package strategy classifies market state into directional signals per
// strategy archetype.
package strategy

// Signal is a directional trading signal.
type Signal string

const (
	SignalLong  Signal = "LONG"
	SignalShort Signal = "SHORT"
	SignalHold  Signal = "HOLD"
)

// Archetype selects the classification policy for a strategy.
type Archetype string

const (
	ArchetypeScalping   Archetype = "scalping"
	ArchetypeTrend      Archetype = "trend"
	ArchetypeMediumTerm Archetype = "medium-term"
)

// Valid reports whether a stored archetype string is known.
func (a Archetype) Valid() bool {
	_, ok := classifiers[a]
	return ok
}
