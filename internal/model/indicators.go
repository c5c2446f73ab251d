package model

import "math"

// IndicatorSnapshot holds the most recent derived indicator values for one
// symbol. Computed fresh each cycle and discarded after the decision is made.
// A NaN value means the indicator was not computed or is undefined for the
// series; the decision engine treats that as insufficient data.
type IndicatorSnapshot struct {
	RSI      float64
	MACDHist float64
	Momentum float64
}

// NewIndicatorSnapshot returns a snapshot with every value undefined.
func NewIndicatorSnapshot() IndicatorSnapshot {
	nan := math.NaN()
	return IndicatorSnapshot{RSI: nan, MACDHist: nan, Momentum: nan}
}

// HasRSI reports whether the RSI value is defined.
func (s IndicatorSnapshot) HasRSI() bool { return !math.IsNaN(s.RSI) }

// HasMACD reports whether the MACD histogram value is defined.
func (s IndicatorSnapshot) HasMACD() bool { return !math.IsNaN(s.MACDHist) }

// HasMomentum reports whether the momentum value is defined.
func (s IndicatorSnapshot) HasMomentum() bool { return !math.IsNaN(s.Momentum) }
