package indicators

// EMA returns the latest exponential moving average value, seeded with the
// simple average of the first period values. Returns 0 when fewer than
// period values are available.
func EMA(values []float64, period int) float64 {
	series := emaSeries(values, period)
	if len(series) == 0 {
		return 0
	}
	return series[len(series)-1]
}

// emaSeries computes the EMA for every index from period-1 onward.
func emaSeries(values []float64, period int) []float64 {
	if period <= 0 || len(values) < period {
		return nil
	}

	seed := 0.0
	for _, v := range values[:period] {
		seed += v
	}
	seed /= float64(period)

	k := 2.0 / float64(period+1)
	series := make([]float64, 0, len(values)-period+1)
	series = append(series, seed)
	prev := seed
	for _, v := range values[period:] {
		prev = (v-prev)*k + prev
		series = append(series, prev)
	}
	return series
}
