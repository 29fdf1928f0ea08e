package service

import (
	"context"
	"log/slog"
	"sync"
	"testing"

	"amcwallet/internal/models"
	"amcwallet/pkg/integrations/memcache"
	"amcwallet/pkg/integrations/push"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type memAlertRepo struct {
	alerts        map[int64]models.PriceAlert
	users         map[string]models.User
	subscriptions map[string][]models.PushSubscription
}

func newMemAlertRepo() *memAlertRepo {
	return &memAlertRepo{
		alerts:        make(map[int64]models.PriceAlert),
		users:         make(map[string]models.User),
		subscriptions: make(map[string][]models.PushSubscription),
	}
}

func (r *memAlertRepo) ListPendingPriceAlerts() ([]models.PriceAlert, error) {
	var out []models.PriceAlert
	for _, a := range r.alerts {
		if !a.Triggered {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *memAlertRepo) MarkPriceAlertTriggered(id int64) error {
	a, ok := r.alerts[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	a.Triggered = true
	r.alerts[id] = a
	return nil
}

func (r *memAlertRepo) GetUserByID(id string) (*models.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &u, nil
}

func (r *memAlertRepo) ListPushSubscriptionsByUser(userID string) ([]models.PushSubscription, error) {
	return r.subscriptions[userID], nil
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []string
}

func (m *recordingMailer) SendAsync(to, subject, body string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, to)
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []push.Subscription
}

func (n *recordingNotifier) SendAsync(sub push.Subscription, payload []byte) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sub)
}

func setupAlertService(t *testing.T, repo *memAlertRepo, quotes map[string]float64) (*AlertService, *recordingMailer, *recordingNotifier) {
	t.Helper()
	quoteCache := memcache.New[string, PriceQuote]()
	for symbol, price := range quotes {
		quoteCache.Set(symbol, PriceQuote{Symbol: symbol, Price: price})
	}

	mailer := &recordingMailer{}
	notifier := &recordingNotifier{}
	svc, err := NewAlertService(
		WithAlertContext(context.Background()),
		WithAlertLogger(slog.Default()),
		WithAlertCache(quoteCache),
		WithAlertRepo(repo),
		WithAlertMailer(mailer),
		WithAlertNotifier(notifier),
	)
	require.NoError(t, err)
	return svc, mailer, notifier
}

func TestAlertService_SweepTriggersCrossedAlerts(t *testing.T) {
	repo := newMemAlertRepo()
	repo.users["u1"] = models.User{ID: "u1", Email: "u1@example.com"}
	repo.subscriptions["u1"] = []models.PushSubscription{
		{UserID: "u1", Endpoint: "https://push.example/1", P256dh: "k", Auth: "a"},
	}
	repo.alerts[1] = models.PriceAlert{
		ID: 1, UserID: "u1", Symbol: "BTC",
		Direction: models.AlertDirectionAbove, TargetPrice: 40000,
	}
	repo.alerts[2] = models.PriceAlert{
		ID: 2, UserID: "u1", Symbol: "BTC",
		Direction: models.AlertDirectionAbove, TargetPrice: 60000,
	}

	svc, mailer, notifier := setupAlertService(t, repo, map[string]float64{"BTC": 50000})
	require.NoError(t, svc.sweep())

	assert.True(t, repo.alerts[1].Triggered)
	assert.False(t, repo.alerts[2].Triggered)
	assert.Equal(t, []string{"u1@example.com"}, mailer.sent)
	require.Len(t, notifier.sent, 1)
	assert.Equal(t, "https://push.example/1", notifier.sent[0].Endpoint)
}

func TestAlertService_SweepBelowDirection(t *testing.T) {
	repo := newMemAlertRepo()
	repo.users["u1"] = models.User{ID: "u1", Email: "u1@example.com"}
	repo.alerts[1] = models.PriceAlert{
		ID: 1, UserID: "u1", Symbol: "ETH",
		Direction: models.AlertDirectionBelow, TargetPrice: 3500,
	}

	svc, _, _ := setupAlertService(t, repo, map[string]float64{"ETH": 3000})
	require.NoError(t, svc.sweep())

	assert.True(t, repo.alerts[1].Triggered)
}

func TestAlertService_TriggeredAlertsFireOnce(t *testing.T) {
	repo := newMemAlertRepo()
	repo.users["u1"] = models.User{ID: "u1", Email: "u1@example.com"}
	repo.alerts[1] = models.PriceAlert{
		ID: 1, UserID: "u1", Symbol: "BTC",
		Direction: models.AlertDirectionAbove, TargetPrice: 40000,
	}

	svc, mailer, _ := setupAlertService(t, repo, map[string]float64{"BTC": 50000})
	require.NoError(t, svc.sweep())
	require.NoError(t, svc.sweep())

	assert.Len(t, mailer.sent, 1)
}

func TestAlertService_MissingQuoteSkipped(t *testing.T) {
	repo := newMemAlertRepo()
	repo.alerts[1] = models.PriceAlert{
		ID: 1, UserID: "u1", Symbol: "BTC",
		Direction: models.AlertDirectionAbove, TargetPrice: 40000,
	}

	svc, mailer, _ := setupAlertService(t, repo, nil)
	require.NoError(t, svc.sweep())

	assert.False(t, repo.alerts[1].Triggered)
	assert.Empty(t, mailer.sent)
}

func TestAlertService_OptionalNotifiers(t *testing.T) {
	repo := newMemAlertRepo()
	repo.alerts[1] = models.PriceAlert{
		ID: 1, UserID: "u1", Symbol: "BTC",
		Direction: models.AlertDirectionAbove, TargetPrice: 40000,
	}

	quoteCache := memcache.New[string, PriceQuote]()
	quoteCache.Set("BTC", PriceQuote{Symbol: "BTC", Price: 50000})

	svc, err := NewAlertService(
		WithAlertContext(context.Background()),
		WithAlertLogger(slog.Default()),
		WithAlertCache(quoteCache),
		WithAlertRepo(repo),
	)
	require.NoError(t, err)

	require.NoError(t, svc.sweep())
	assert.True(t, repo.alerts[1].Triggered)
}
