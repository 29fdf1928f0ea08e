package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"amcwallet/internal/models"
	"amcwallet/pkg/integrations/push"
	tickerScheduler "amcwallet/pkg/integrations/scheduler"
	"amcwallet/pkg/types/cache"
	"amcwallet/pkg/types/scheduler"

	"github.com/pkg/errors"
)

var ErrInvalidAlertConfig = errors.New("invalid alert service config")

type AlertRepository interface {
	ListPendingPriceAlerts() ([]models.PriceAlert, error)
	MarkPriceAlertTriggered(id int64) error
	GetUserByID(id string) (*models.User, error)
	ListPushSubscriptionsByUser(userID string) ([]models.PushSubscription, error)
}

type EmailSender interface {
	SendAsync(to, subject, body string)
}

type PushNotifier interface {
	SendAsync(sub push.Subscription, payload []byte)
}

// AlertService sweeps pending price alerts against the latest cached
// quotes. Triggered alerts fire email and push notifications
// best-effort and are marked so they fire once.
type AlertService struct {
	ctx       context.Context
	logger    *slog.Logger
	cache     cache.Cache[string, PriceQuote]
	repo      AlertRepository
	mailer    EmailSender
	notifier  PushNotifier
	scheduler scheduler.Scheduler
}

type AlertOption func(*AlertService)

func WithAlertContext(ctx context.Context) AlertOption {
	return func(s *AlertService) {
		s.ctx = ctx
	}
}

func WithAlertLogger(l *slog.Logger) AlertOption {
	return func(s *AlertService) {
		s.logger = l
	}
}

func WithAlertCache(c cache.Cache[string, PriceQuote]) AlertOption {
	return func(s *AlertService) {
		s.cache = c
	}
}

func WithAlertRepo(r AlertRepository) AlertOption {
	return func(s *AlertService) {
		s.repo = r
	}
}

func WithAlertMailer(m EmailSender) AlertOption {
	return func(s *AlertService) {
		s.mailer = m
	}
}

func WithAlertNotifier(n PushNotifier) AlertOption {
	return func(s *AlertService) {
		s.notifier = n
	}
}

// IsValid leaves mailer and notifier optional; a deployment without
// SMTP or VAPID credentials still sweeps and marks alerts.
func (s *AlertService) IsValid() error {
	switch {
	case s.ctx == nil:
		return errors.Wrap(ErrInvalidAlertConfig, "ctx cannot be nil")
	case s.logger == nil:
		return errors.Wrap(ErrInvalidAlertConfig, "logger cannot be nil")
	case s.cache == nil:
		return errors.Wrap(ErrInvalidAlertConfig, "cache cannot be nil")
	case s.repo == nil:
		return errors.Wrap(ErrInvalidAlertConfig, "repo cannot be nil")
	default:
		return nil
	}
}

func NewAlertService(opts ...AlertOption) (*AlertService, error) {
	s := &AlertService{}

	for _, opt := range opts {
		opt(s)
	}

	if err := s.IsValid(); err != nil {
		return nil, err
	}

	sched, err := tickerScheduler.New(
		tickerScheduler.WithContext(s.ctx),
		tickerScheduler.WithLogger(s.logger),
		tickerScheduler.WithInterval(scheduler.IntervalAlertScan),
		tickerScheduler.WithHandler(s.sweep),
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create scheduler")
	}
	s.scheduler = sched

	return s, nil
}

func (s *AlertService) Start() error {
	return s.scheduler.Start()
}

func (s *AlertService) Stop() {
	s.scheduler.Stop()
}

func (s *AlertService) sweep() error {
	alerts, err := s.repo.ListPendingPriceAlerts()
	if err != nil {
		return errors.Wrap(err, "failed to list pending alerts")
	}

	for _, alert := range alerts {
		quote, ok := s.cache.Get(alert.Symbol)
		if !ok || quote.Price <= 0 {
			continue
		}
		if !crossed(alert, quote.Price) {
			continue
		}

		if err := s.repo.MarkPriceAlertTriggered(alert.ID); err != nil {
			s.logger.Error("failed to mark alert triggered", "alert", alert.ID, "error", err)
			continue
		}

		s.notify(alert, quote.Price)
	}

	return nil
}

func crossed(alert models.PriceAlert, price float64) bool {
	switch alert.Direction {
	case models.AlertDirectionAbove:
		return price >= alert.TargetPrice
	case models.AlertDirectionBelow:
		return price <= alert.TargetPrice
	default:
		return false
	}
}

func (s *AlertService) notify(alert models.PriceAlert, price float64) {
	subject := fmt.Sprintf("%s price alert", alert.Symbol)
	body := fmt.Sprintf("%s is now $%.2f, %s your target of $%.2f.",
		alert.Symbol, price, alert.Direction, alert.TargetPrice)

	if s.mailer != nil {
		user, err := s.repo.GetUserByID(alert.UserID)
		if err != nil {
			s.logger.Error("failed to load alert user", "alert", alert.ID, "error", err)
		} else {
			s.mailer.SendAsync(user.Email, subject, body)
		}
	}

	if s.notifier == nil {
		return
	}

	subs, err := s.repo.ListPushSubscriptionsByUser(alert.UserID)
	if err != nil {
		s.logger.Error("failed to list push subscriptions", "alert", alert.ID, "error", err)
		return
	}

	payload, err := json.Marshal(map[string]any{
		"title": subject,
		"body":  body,
	})
	if err != nil {
		s.logger.Error("failed to marshal push payload", "alert", alert.ID, "error", err)
		return
	}

	for _, sub := range subs {
		s.notifier.SendAsync(push.Subscription{
			Endpoint: sub.Endpoint,
			P256dh:   sub.P256dh,
			Auth:     sub.Auth,
		}, payload)
	}
}
