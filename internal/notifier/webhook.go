package notifier

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
)

// WebhookNotifier POSTs notifications to the push-delivery gateway, which
// handles the actual web-push encryption and transport.
type WebhookNotifier struct {
	http *resty.Client
	log  zerolog.Logger
}

// NewWebhookNotifier creates a notifier targeting the given gateway URL.
func NewWebhookNotifier(url string, log zerolog.Logger) *WebhookNotifier {
	return &WebhookNotifier{
		http: resty.New().SetBaseURL(url).SetTimeout(10 * time.Second),
		log:  log.With().Str("component", "notifier").Logger(),
	}
}

type webhookPayload struct {
	Recipient string       `json:"recipient"`
	Endpoint  string       `json:"endpoint"`
	P256dh    string       `json:"p256dh"`
	Auth      string       `json:"auth"`
	Alert     Notification `json:"alert"`
}

func (w *WebhookNotifier) Send(ctx context.Context, to Notifiable, n Notification) error {
	if !to.PushEnabled() {
		return nil
	}

	p256dh, auth := to.PushKeys()
	payload := webhookPayload{
		Recipient: to.Identity(),
		Endpoint:  to.PushEndpoint(),
		P256dh:    p256dh,
		Auth:      auth,
		Alert:     n,
	}

	resp, err := w.http.R().
		SetContext(ctx).
		SetBody(payload).
		Post("")
	if err != nil {
		return fmt.Errorf("push webhook: %w", err)
	}
	if !resp.IsSuccess() {
		return fmt.Errorf("push webhook: status %d", resp.StatusCode())
	}

	w.log.Debug().Str("recipient", to.Identity()).Str("symbol", n.Symbol).Msg("push notification sent")
	return nil
}
