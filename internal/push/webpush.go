package push

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	webpush "github.com/SherClockHolmes/webpush-go"
)

// payloadTTL is how long the push service may queue an undelivered
// notification. Proximity alerts are stale after a day.
const payloadTTL = 24 * 60 * 60

// WebPushTransport delivers payloads over the Web Push protocol with VAPID
// authentication.
type WebPushTransport struct {
	subscriber      string // mailto: contact required by VAPID
	vapidPublicKey  string
	vapidPrivateKey string
}

// NewWebPushTransport creates the production transport. Returns nil when
// the VAPID keys are not configured, which disables push delivery.
func NewWebPushTransport(subscriber, publicKey, privateKey string) *WebPushTransport {
	if publicKey == "" || privateKey == "" {
		return nil
	}
	return &WebPushTransport{
		subscriber:      subscriber,
		vapidPublicKey:  publicKey,
		vapidPrivateKey: privateKey,
	}
}

// Send encrypts and posts the payload to the subscription's endpoint.
// 404/410 responses are reported as ErrEndpointGone so the engine prunes
// the subscription; other non-2xx responses are transient.
func (t *WebPushTransport) Send(ctx context.Context, sub Subscription, payload Payload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	resp, err := webpush.SendNotificationWithContext(ctx, body, &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			Auth:   sub.AuthSecret,
			P256dh: sub.EncryptionKey,
		},
	}, &webpush.Options{
		Subscriber:      t.subscriber,
		VAPIDPublicKey:  t.vapidPublicKey,
		VAPIDPrivateKey: t.vapidPrivateKey,
		TTL:             payloadTTL,
	})
	if err != nil {
		return fmt.Errorf("send web push: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return fmt.Errorf("endpoint %s: %w", sub.Endpoint, ErrEndpointGone)
	case resp.StatusCode >= 400:
		return fmt.Errorf("push service returned %d", resp.StatusCode)
	}
	return nil
}
