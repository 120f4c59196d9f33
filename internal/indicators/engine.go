// Package indicators computes technical indicators over a chronological
// price series. All functions are pure; insufficient warm-up history yields
// defined neutral defaults (RSI=50, everything else 0) instead of an error.
package indicators

// Params tunes the indicator set per strategy.
type Params struct {
	RSIPeriod       int
	EMAShort        int
	EMALong         int
	MACDFast        int
	MACDSlow        int
	MACDSignal      int
	BollingerPeriod int
	BollingerStdDev float64
}

// DefaultParams returns the standard indicator configuration.
func DefaultParams() Params {
	return Params{
		RSIPeriod:       14,
		EMAShort:        9,
		EMALong:         21,
		MACDFast:        12,
		MACDSlow:        26,
		MACDSignal:      9,
		BollingerPeriod: 20,
		BollingerStdDev: 2,
	}
}

// normalize fills zero fields with defaults so partially configured
// strategies still compute every indicator.
func (p Params) normalize() Params {
	def := DefaultParams()
	if p.RSIPeriod <= 0 {
		p.RSIPeriod = def.RSIPeriod
	}
	if p.EMAShort <= 0 {
		p.EMAShort = def.EMAShort
	}
	if p.EMALong <= 0 {
		p.EMALong = def.EMALong
	}
	if p.MACDFast <= 0 {
		p.MACDFast = def.MACDFast
	}
	if p.MACDSlow <= 0 {
		p.MACDSlow = def.MACDSlow
	}
	if p.MACDSignal <= 0 {
		p.MACDSignal = def.MACDSignal
	}
	if p.BollingerPeriod <= 0 {
		p.BollingerPeriod = def.BollingerPeriod
	}
	if p.BollingerStdDev <= 0 {
		p.BollingerStdDev = def.BollingerStdDev
	}
	return p
}

// Snapshot is the derived indicator state for one pipeline pass. It is
// ephemeral: consumed by the classifier and the decision oracle, never
// persisted.
type Snapshot struct {
	RSI       float64   `json:"rsi"`
	EMAShort  float64   `json:"emaShort"`
	EMALong   float64   `json:"emaLong"`
	MACD      MACDValue `json:"macd"`
	Bollinger Bands     `json:"bollinger"`
}

// Compute derives the full indicator snapshot from closing prices
// (chronological, oldest first).
func Compute(closes []float64, p Params) Snapshot {
	p = p.normalize()
	return Snapshot{
		RSI:       RSI(closes, p.RSIPeriod),
		EMAShort:  EMA(closes, p.EMAShort),
		EMALong:   EMA(closes, p.EMALong),
		MACD:      MACD(closes, p.MACDFast, p.MACDSlow, p.MACDSignal),
		Bollinger: Bollinger(closes, p.BollingerPeriod, p.BollingerStdDev),
	}
}
