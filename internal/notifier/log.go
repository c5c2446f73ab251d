package notifier

import (
	"context"

	"github.com/rs/zerolog"
)

// LogNotifier writes notifications to the log. Used when no push gateway is
// configured and in development.
type LogNotifier struct {
	log zerolog.Logger
}

// NewLogNotifier creates a log-backed notifier.
func NewLogNotifier(log zerolog.Logger) *LogNotifier {
	return &LogNotifier{log: log.With().Str("component", "notifier").Logger()}
}

func (l *LogNotifier) Send(_ context.Context, to Notifiable, n Notification) error {
	l.log.Info().
		Str("recipient", to.Identity()).
		Str("symbol", n.Symbol).
		Str("signal", n.Signal).
		Str("price", n.Price).
		Str("confidence", n.Confidence).
		Str("algorithm", n.Algorithm).
		Msg("alert notification")
	return nil
}
