package indicator

// EMA computes the exponential moving average with the standard weighting
// alpha = 2/(span+1) and no bias adjustment. Output is aligned to the input.
func EMA(values []float64, span int) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}
	alpha := 2.0 / (float64(span) + 1.0)
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = alpha*values[i] + (1-alpha)*out[i-1]
	}
	return out
}

// MACD computes the MACD line, its signal line, and the histogram over the
// close series. All three outputs are the same length as the input. If the
// input is shorter than the long span, three zero-filled series are returned.
func MACD(closes []float64, short, long, signalSpan int) (macdLine, signalLine, histogram []float64) {
	n := len(closes)
	if n < long {
		return make([]float64, n), make([]float64, n), make([]float64, n)
	}

	emaShort := EMA(closes, short)
	emaLong := EMA(closes, long)

	macdLine = make([]float64, n)
	for i := range macdLine {
		macdLine[i] = emaShort[i] - emaLong[i]
	}
	signalLine = EMA(macdLine, signalSpan)

	histogram = make([]float64, n)
	for i := range histogram {
		histogram[i] = macdLine[i] - signalLine[i]
	}
	return macdLine, signalLine, histogram
}
