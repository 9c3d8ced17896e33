package push

import (
	"context"
	"io"
	"net/http"

	webpush "github.com/SherClockHolmes/webpush-go"

	"github.com/dmitrijs2005/keepintouch/internal/common"
	"github.com/dmitrijs2005/keepintouch/internal/models"
)

// VAPIDConfig holds the application server keys used to sign push requests.
type VAPIDConfig struct {
	PublicKey  string
	PrivateKey string
	Subject    string
}

// Configured reports whether both keys are present. The subject falls back
// to a placeholder when missing, but keys are mandatory.
func (c VAPIDConfig) Configured() bool {
	return c.PublicKey != "" && c.PrivateKey != ""
}

func (c VAPIDConfig) validate() error {
	if !c.Configured() {
		return common.ErrVAPIDNotConfigured
	}
	return nil
}

// Sender delivers an encrypted payload to a single push endpoint and
// returns the HTTP status reported by the push service.
type Sender interface {
	Send(ctx context.Context, sub *models.PushSubscription, payload []byte) (int, error)
}

// WebPushSender is the production Sender backed by the Web Push protocol.
type WebPushSender struct {
	vapid VAPIDConfig
	ttl   int
}

func NewWebPushSender(vapid VAPIDConfig) *WebPushSender {
	return &WebPushSender{vapid: vapid, ttl: 24 * 60 * 60}
}

func (s *WebPushSender) Send(ctx context.Context, sub *models.PushSubscription, payload []byte) (int, error) {
	target := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256dhKey,
			Auth:   sub.AuthKey,
		},
	}
	subject := s.vapid.Subject
	if subject == "" {
		subject = "mailto:admin@example.com"
	}
	resp, err := webpush.SendNotificationWithContext(ctx, payload, target, &webpush.Options{
		Subscriber:      subject,
		VAPIDPublicKey:  s.vapid.PublicKey,
		VAPIDPrivateKey: s.vapid.PrivateKey,
		TTL:             s.ttl,
	})
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	return resp.StatusCode, nil
}

// gone reports whether the push service says the subscription no longer
// exists and should be deactivated.
func gone(status int) bool {
	return status == http.StatusNotFound || status == http.StatusGone
}
