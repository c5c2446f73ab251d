package model

// Signal is the outcome of one decision-rule evaluation.
type Signal string

const (
	SignalBuy     Signal = "Buy"
	SignalSell    Signal = "Sell"
	SignalNeutral Signal = "Neutral"
)

// Actionable reports whether the signal should produce an alert.
// Neutral signals are discarded.
func (s Signal) Actionable() bool {
	return s == SignalBuy || s == SignalSell
}

// Decision is the full output of the decision engine for one
// (subscriber, symbol) task.
type Decision struct {
	Signal     Signal
	Confidence int    // 0-100
	Algorithm  string // tier/algorithm tag recorded on the alert
}
