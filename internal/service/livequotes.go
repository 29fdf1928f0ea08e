package service

import (
	"context"
	"encoding/json"
	"log/slog"

	tickerScheduler "amcwallet/pkg/integrations/scheduler"
	"amcwallet/pkg/types/cache"
	"amcwallet/pkg/types/pubsub"
	"amcwallet/pkg/types/scheduler"

	"github.com/pkg/errors"
)

var ErrInvalidLiveQuoteConfig = errors.New("invalid live quote service config")

// LiveQuoteService keeps a cache of the latest quotes warm and fans
// each refresh out to stream subscribers. The engine already handles
// synthetic drift and market fetching; this loop just paces it.
type LiveQuoteService struct {
	ctx       context.Context
	logger    *slog.Logger
	cache     cache.Cache[string, PriceQuote]
	engine    PriceSource
	publisher pubsub.Publisher
	scheduler scheduler.Scheduler
}

type LiveQuoteOption func(*LiveQuoteService)

func WithLiveQuoteContext(ctx context.Context) LiveQuoteOption {
	return func(s *LiveQuoteService) {
		s.ctx = ctx
	}
}

func WithLiveQuoteLogger(l *slog.Logger) LiveQuoteOption {
	return func(s *LiveQuoteService) {
		s.logger = l
	}
}

func WithLiveQuoteCache(c cache.Cache[string, PriceQuote]) LiveQuoteOption {
	return func(s *LiveQuoteService) {
		s.cache = c
	}
}

func WithLiveQuoteEngine(e PriceSource) LiveQuoteOption {
	return func(s *LiveQuoteService) {
		s.engine = e
	}
}

func WithLiveQuotePublisher(p pubsub.Publisher) LiveQuoteOption {
	return func(s *LiveQuoteService) {
		s.publisher = p
	}
}

func (s *LiveQuoteService) IsValid() error {
	switch {
	case s.ctx == nil:
		return errors.Wrap(ErrInvalidLiveQuoteConfig, "ctx cannot be nil")
	case s.logger == nil:
		return errors.Wrap(ErrInvalidLiveQuoteConfig, "logger cannot be nil")
	case s.cache == nil:
		return errors.Wrap(ErrInvalidLiveQuoteConfig, "cache cannot be nil")
	case s.engine == nil:
		return errors.Wrap(ErrInvalidLiveQuoteConfig, "engine cannot be nil")
	case s.publisher == nil:
		return errors.Wrap(ErrInvalidLiveQuoteConfig, "publisher cannot be nil")
	default:
		return nil
	}
}

func NewLiveQuoteService(opts ...LiveQuoteOption) (*LiveQuoteService, error) {
	s := &LiveQuoteService{}

	for _, opt := range opts {
		opt(s)
	}

	if err := s.IsValid(); err != nil {
		return nil, err
	}

	sched, err := tickerScheduler.New(
		tickerScheduler.WithContext(s.ctx),
		tickerScheduler.WithLogger(s.logger),
		tickerScheduler.WithInterval(scheduler.IntervalQuoteRefresh),
		tickerScheduler.WithHandler(s.tick),
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create scheduler")
	}
	s.scheduler = sched

	return s, nil
}

func (s *LiveQuoteService) Start() error {
	if err := s.tick(); err != nil {
		s.logger.Error("initial tick failed", "error", err)
	}

	return s.scheduler.Start()
}

func (s *LiveQuoteService) Stop() {
	s.scheduler.Stop()
}

func (s *LiveQuoteService) tick() error {
	quotes, err := s.engine.Prices()
	if err != nil {
		return errors.Wrap(err, "failed to refresh quotes")
	}

	for symbol, quote := range quotes {
		s.cache.Set(symbol, quote)
	}

	data, err := json.Marshal(quotes)
	if err != nil {
		return errors.Wrap(err, "failed to marshal quotes")
	}

	if err := s.publisher.Publish(data); err != nil {
		return errors.Wrap(err, "failed to publish quotes")
	}

	s.logger.Debug("published quotes", "count", len(quotes))
	return nil
}
