package model

// MaxSymbolsNonElite caps the monitored symbol set for every tier except elite.
const MaxSymbolsNonElite = 2

// PushSubscription holds a subscriber's web-push delivery credentials.
type PushSubscription struct {
	Enabled  bool
	Endpoint string
	P256dh   string
	Auth     string
}

// Subscriber is a user eligible for monitoring, as produced by the registry.
// Administrator accounts are always eligible and carry the free tier with the
// configured default symbol set.
type Subscriber struct {
	ID          int64
	Email       string
	DisplayName string
	IsAdmin     bool
	Tier        string
	Symbols     []string
	Push        PushSubscription
}

// Identity returns the subscriber's notification identity.
func (s Subscriber) Identity() string { return s.Email }

// PushEnabled reports whether out-of-band push delivery is enabled.
func (s Subscriber) PushEnabled() bool { return s.Push.Enabled }

// PushEndpoint returns the web-push endpoint URL.
func (s Subscriber) PushEndpoint() string { return s.Push.Endpoint }

// PushKeys returns the web-push encryption keys.
func (s Subscriber) PushKeys() (p256dh, auth string) { return s.Push.P256dh, s.Push.Auth }
