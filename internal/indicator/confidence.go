package indicator

import "math"

// Confidence derives a 0-100 score from how far RSI sits from the neutral
// midpoint and how strong the MACD histogram is:
//
//	0.5*(|rsi-50|/50) + 0.5*min(|hist|*10, 1), scaled by 100.
//
// Bounded to [0,100] by construction. Used by tiers without a fixed
// confidence constant.
func Confidence(rsi, macdHistogram float64) float64 {
	if math.IsNaN(rsi) || math.IsNaN(macdHistogram) {
		return 0
	}
	rsiPart := math.Abs(rsi-50) / 50
	macdPart := math.Min(math.Abs(macdHistogram)*10, 1)
	return (0.5*rsiPart + 0.5*macdPart) * 100
}
