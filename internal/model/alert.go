package model

import "time"

// AlertTTL is how long an alert stays fresh after creation. Expiry is
// advisory: consumers treat expired alerts as stale, nothing deletes them.
const AlertTTL = 24 * time.Hour

// Alert is a persisted, time-bounded record of an actionable signal.
// Created once by the sink and never mutated by the engine afterwards;
// the read flag belongs to the downstream presentation layer.
type Alert struct {
	ID         int64
	UserID     int64
	CoinPair   string // display pair label, e.g. "BTC/USD"
	AlertType  string // "buy" or "sell"
	Price      float64
	Confidence int
	Algorithm  string
	Message    string
	IsRead     bool
	CreatedAt  time.Time
	ExpiresAt  time.Time
}
