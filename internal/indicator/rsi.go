package indicator

import "math"

// lossFloor is substituted for a zero average loss to avoid division by zero.
const lossFloor = 1e-8

// RSI computes the Relative Strength Index over the close series using a
// rolling mean of gains and losses. The output is the same length as the
// input and aligned to it; positions before the lookback window is satisfied
// are NaN. If the input is shorter than period+1, a constant-50 (neutral)
// series of the same length is returned instead of failing.
func RSI(closes []float64, period int) []float64 {
	out := make([]float64, len(closes))
	if period <= 0 || len(closes) < period+1 {
		for i := range out {
			out[i] = 50
		}
		return out
	}

	gains := make([]float64, len(closes))
	losses := make([]float64, len(closes))
	for i := 1; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			gains[i] = change
		} else {
			losses[i] = -change
		}
	}

	var gainSum, lossSum float64
	for i := range closes {
		gainSum += gains[i]
		lossSum += losses[i]
		if i > period {
			gainSum -= gains[i-period]
			lossSum -= losses[i-period]
		}
		if i < period {
			out[i] = math.NaN()
			continue
		}
		avgGain := gainSum / float64(period)
		avgLoss := lossSum / float64(period)
		if avgLoss == 0 {
			avgLoss = lossFloor
		}
		rs := avgGain / avgLoss
		out[i] = 100 - 100/(1+rs)
	}
	return out
}
