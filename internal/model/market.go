package model

import "time"

// Candle represents a single OHLCV candlestick.
type Candle struct {
	OpenTime time.Time
	Open     float64
	High     float64
	Low      float64
	Close    float64
	Volume   float64
}

// PriceSeries holds the candles fetched for one symbol in one cycle.
// Immutable once fetched; each analysis task owns its own series.
type PriceSeries struct {
	Symbol    string
	Candles   []Candle
	FetchedAt time.Time
}

// Len returns the number of candles in the series.
func (s *PriceSeries) Len() int { return len(s.Candles) }

// Closes extracts the close prices in chronological order.
func (s *PriceSeries) Closes() []float64 {
	closes := make([]float64, len(s.Candles))
	for i, c := range s.Candles {
		closes[i] = c.Close
	}
	return closes
}

// LastClose returns the most recent close price, or 0 for an empty series.
func (s *PriceSeries) LastClose() float64 {
	if len(s.Candles) == 0 {
		return 0
	}
	return s.Candles[len(s.Candles)-1].Close
}
