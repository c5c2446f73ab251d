// Package notifier delivers alert notifications out of band (web push,
// webhooks). Delivery is best-effort: a failed send never fails the alert
// that triggered it.
package notifier

import "context"

// Notifiable is the narrow capability a recipient must expose for push
// delivery. The concrete subscriber type from the store implements it.
type Notifiable interface {
	Identity() string
	PushEnabled() bool
	PushEndpoint() string
	PushKeys() (p256dh, auth string)
}

// Notification carries one alert's delivery payload.
type Notification struct {
	Symbol     string `json:"symbol"`
	Signal     string `json:"signal"`
	Price      string `json:"price"`
	Confidence string `json:"confidence"`
	Algorithm  string `json:"algorithm"`
}

// Notifier is the interface for all delivery backends.
type Notifier interface {
	// Send delivers a notification to one recipient. Returns an error if
	// delivery fails; callers are expected to log and move on.
	Send(ctx context.Context, to Notifiable, n Notification) error
}
