package push

import (
	"log/slog"

	webpush "github.com/SherClockHolmes/webpush-go"
	"github.com/pkg/errors"
)

var ErrInvalidPushConfig = errors.New("invalid push config")

// Subscription mirrors the browser PushSubscription shape.
type Subscription struct {
	Endpoint string
	P256dh   string
	Auth     string
}

// Sender wraps Web Push delivery. Failures are logged by callers and
// never surfaced to the user action that triggered the notification.
type Sender struct {
	vapidPublicKey  string
	vapidPrivateKey string
	subscriber      string
	logger          *slog.Logger
}

type Option func(*Sender)

func WithVAPIDKeys(publicKey, privateKey string) Option {
	return func(s *Sender) {
		s.vapidPublicKey = publicKey
		s.vapidPrivateKey = privateKey
	}
}

func WithSubscriber(email string) Option {
	return func(s *Sender) {
		s.subscriber = email
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Sender) {
		s.logger = l
	}
}

func (s *Sender) IsValid() error {
	switch {
	case s.vapidPublicKey == "" || s.vapidPrivateKey == "":
		return errors.Wrap(ErrInvalidPushConfig, "vapid keys cannot be empty")
	case s.subscriber == "":
		return errors.Wrap(ErrInvalidPushConfig, "subscriber cannot be empty")
	case s.logger == nil:
		return errors.Wrap(ErrInvalidPushConfig, "logger cannot be nil")
	default:
		return nil
	}
}

func New(opts ...Option) (*Sender, error) {
	s := &Sender{}

	for _, opt := range opts {
		opt(s)
	}

	return s, s.IsValid()
}

func (s *Sender) Send(sub Subscription, payload []byte) error {
	resp, err := webpush.SendNotification(payload, &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256dh,
			Auth:   sub.Auth,
		},
	}, &webpush.Options{
		Subscriber:      s.subscriber,
		VAPIDPublicKey:  s.vapidPublicKey,
		VAPIDPrivateKey: s.vapidPrivateKey,
		TTL:             60,
	})
	if err != nil {
		return errors.Wrap(err, "failed to send push notification")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return errors.Errorf("push endpoint returned status %d", resp.StatusCode)
	}
	return nil
}

// SendAsync delivers in the background, logging failures.
func (s *Sender) SendAsync(sub Subscription, payload []byte) {
	go func() {
		if err := s.Send(sub, payload); err != nil {
			s.logger.Error("async push delivery failed", "endpoint", sub.Endpoint, "error", err)
		}
	}()
}
