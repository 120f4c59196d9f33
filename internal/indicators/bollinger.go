package indicators

import "math"

// Bands holds Bollinger band levels.
type Bands struct {
	Upper  float64 `json:"upper"`
	Middle float64 `json:"middle"`
	Lower  float64 `json:"lower"`
}

// Bollinger computes Bollinger bands over the last period values with the
// given standard-deviation multiplier. Returns the zero value when fewer
// than period values are available.
func Bollinger(values []float64, period int, stdDev float64) Bands {
	if period <= 0 || len(values) < period {
		return Bands{}
	}

	window := values[len(values)-period:]
	mean := 0.0
	for _, v := range window {
		mean += v
	}
	mean /= float64(period)

	variance := 0.0
	for _, v := range window {
		d := v - mean
		variance += d * d
	}
	sd := math.Sqrt(variance / float64(period))

	return Bands{
		Upper:  mean + stdDev*sd,
		Middle: mean,
		Lower:  mean - stdDev*sd,
	}
}
