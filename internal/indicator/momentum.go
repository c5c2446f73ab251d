package indicator

import "math"

// Momentum computes closes[t] - closes[t-period], aligned to the input.
// Positions before the lookback window are NaN. If the input is shorter than
// period+1, a zero-filled series of the same length is returned.
func Momentum(closes []float64, period int) []float64 {
	out := make([]float64, len(closes))
	if period <= 0 || len(closes) < period+1 {
		return out
	}
	for i := range closes {
		if i < period {
			out[i] = math.NaN()
			continue
		}
		out[i] = closes[i] - closes[i-period]
	}
	return out
}

// Last returns the final value of a derived series, or NaN for an empty one.
func Last(series []float64) float64 {
	if len(series) == 0 {
		return math.NaN()
	}
	return series[len(series)-1]
}
