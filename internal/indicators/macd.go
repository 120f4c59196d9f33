package indicators

// MACDValue holds the MACD line, its signal line and the histogram.
type MACDValue struct {
	MACD      float64 `json:"macd"`
	Signal    float64 `json:"signal"`
	Histogram float64 `json:"histogram"`
}

// MACD computes the Moving Average Convergence Divergence for the latest
// value. Warm-up requires slow+signal-1 values; anything shorter returns the
// zero value.
func MACD(values []float64, fast, slow, signal int) MACDValue {
	if fast <= 0 || slow <= 0 || signal <= 0 || fast >= slow {
		return MACDValue{}
	}
	if len(values) < slow+signal-1 {
		return MACDValue{}
	}

	fastSeries := emaSeries(values, fast)
	slowSeries := emaSeries(values, slow)

	// Align: slowSeries[i] corresponds to fastSeries[i+(slow-fast)].
	offset := slow - fast
	line := make([]float64, len(slowSeries))
	for i := range slowSeries {
		line[i] = fastSeries[i+offset] - slowSeries[i]
	}

	signalSeries := emaSeries(line, signal)
	if len(signalSeries) == 0 {
		return MACDValue{}
	}

	macd := line[len(line)-1]
	sig := signalSeries[len(signalSeries)-1]
	return MACDValue{
		MACD:      macd,
		Signal:    sig,
		Histogram: macd - sig,
	}
}
