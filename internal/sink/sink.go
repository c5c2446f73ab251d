// Package sink turns actionable decisions into persisted alerts and forwards
// them for out-of-band delivery.
package sink

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"SignalSentinel/internal/metrics"
	"SignalSentinel/internal/model"
	"SignalSentinel/internal/notifier"
)

// AlertStore is the persistence surface the sink writes to.
type AlertStore interface {
	InsertAlert(ctx context.Context, a *model.Alert) error
}

// Sink persists alerts and forwards them to the notifier. The persistence
// write is the operation that can fail; notification delivery is
// fire-and-forget.
type Sink struct {
	store    AlertStore
	notifier notifier.Notifier
	metrics  *metrics.Recorder
	log      zerolog.Logger
	now      func() time.Time
}

// New creates a sink.
func New(store AlertStore, n notifier.Notifier, rec *metrics.Recorder, log zerolog.Logger) *Sink {
	return &Sink{
		store:    store,
		notifier: n,
		metrics:  rec,
		log:      log.With().Str("component", "sink").Logger(),
		now:      time.Now,
	}
}

// Emit persists one alert for an actionable decision and forwards it to the
// notifier. On persistence failure it logs and returns the error without
// retrying; sibling tasks are unaffected. A notification failure never fails
// the alert.
func (s *Sink) Emit(ctx context.Context, sub model.Subscriber, coin string, d model.Decision, snap model.IndicatorSnapshot, price float64) error {
	if !d.Signal.Actionable() {
		return nil
	}

	now := s.now().UTC()
	alert := &model.Alert{
		UserID:     sub.ID,
		CoinPair:   pairLabel(coin),
		AlertType:  strings.ToLower(string(d.Signal)),
		Price:      price,
		Confidence: d.Confidence,
		Algorithm:  d.Algorithm,
		Message:    formatMessage(exchangeSymbol(coin), d, snap, price, now),
		CreatedAt:  now,
		ExpiresAt:  now.Add(model.AlertTTL),
	}

	if err := s.store.InsertAlert(ctx, alert); err != nil {
		s.metrics.PersistError()
		s.log.Error().Int64("user_id", sub.ID).Str("coin", coin).Err(err).Msg("alert write failed")
		return fmt.Errorf("emit alert: %w", err)
	}
	s.metrics.AlertEmitted(string(d.Signal))
	s.log.Info().
		Int64("user_id", sub.ID).
		Str("email", sub.Email).
		Str("coin", coin).
		Str("signal", string(d.Signal)).
		Str("algorithm", d.Algorithm).
		Int("confidence", d.Confidence).
		Msg("alert created")

	s.forward(ctx, sub, exchangeSymbol(coin), d, price)
	return nil
}

// forward sends the out-of-band notification. Best effort: failures are
// counted and logged, never returned.
func (s *Sink) forward(ctx context.Context, sub model.Subscriber, symbol string, d model.Decision, price float64) {
	if s.notifier == nil || !sub.PushEnabled() {
		return
	}
	n := notifier.Notification{
		Symbol:     symbol,
		Signal:     string(d.Signal),
		Price:      fmt.Sprintf("$%.4f", price),
		Confidence: fmt.Sprintf("%d%%", d.Confidence),
		Algorithm:  d.Algorithm,
	}
	if err := s.notifier.Send(ctx, sub, n); err != nil {
		s.metrics.NotifyError()
		s.log.Warn().Str("recipient", sub.Identity()).Err(err).Msg("push delivery failed")
	}
}

// ExchangeSymbol maps a stored coin name to the exchange ticker, e.g.
// "btc" -> "BTCUSDT".
func exchangeSymbol(coin string) string {
	return strings.ToUpper(strings.TrimSpace(coin)) + "USDT"
}

// pairLabel is the display label stored on the alert, e.g. "BTC/USD".
func pairLabel(coin string) string {
	return strings.ToUpper(strings.TrimSpace(coin)) + "/USD"
}

// formatMessage builds the free-text message shown to the subscriber. The
// format is a display convenience, never machine-parsed.
func formatMessage(symbol string, d model.Decision, snap model.IndicatorSnapshot, price float64, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s signal for %s\n", strings.ToUpper(string(d.Signal)), symbol)
	fmt.Fprintf(&b, "Algorithm: %s\n", strings.ToUpper(d.Algorithm))
	fmt.Fprintf(&b, "RSI: %.2f\n", snap.RSI)
	if snap.HasMACD() {
		fmt.Fprintf(&b, "MACD Histogram: %.6f\n", snap.MACDHist)
	}
	if snap.HasMomentum() {
		fmt.Fprintf(&b, "Momentum: %.4f\n", snap.Momentum)
	}
	fmt.Fprintf(&b, "Price: $%.4f\n", price)
	fmt.Fprintf(&b, "Confidence: %d%%\n", d.Confidence)
	fmt.Fprintf(&b, "Generated: %s UTC", now.Format("2006-01-02 15:04:05"))
	return b.String()
}
