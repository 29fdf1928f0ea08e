package service

import (
	"log/slog"
	"math"
	"sync"
	"time"

	"amcwallet/internal/models"
	"amcwallet/pkg/clock"
	"amcwallet/pkg/types/quotes"

	"github.com/pkg/errors"
)

var ErrInvalidPriceEngineConfig = errors.New("invalid price engine config")

// maxDriftSteps caps how many elapsed intervals a single read will
// replay, so a tiny interval or a long-idle process cannot spin the
// read path.
const maxDriftSteps = 10000

type TokenConfigRepository interface {
	GetTokenConfig(symbol string) (*models.TokenConfig, error)
	ListTokenConfigs() ([]models.TokenConfig, error)
	SaveTokenConfig(config *models.TokenConfig) error
}

// PriceQuote is the per-symbol view served to clients.
type PriceQuote struct {
	Symbol    string  `json:"symbol"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Change24h float64 `json:"change24h"`
}

// PriceEngine derives the display price for every tracked symbol:
// pass-through of cached market quotes for BTC and ETH, and the lazy
// drift simulation for AMC. There is no background recompute; the
// drift step runs synchronously on read once enough wall-clock time
// has passed.
type PriceEngine struct {
	logger  *slog.Logger
	repo    TokenConfigRepository
	fetcher quotes.QuoteFetcher
	clock   clock.Clock

	// serializes drift application so overlapping reads cannot apply
	// the same elapsed intervals twice
	driftMu sync.Mutex
}

type PriceEngineOption func(*PriceEngine)

func WithPriceEngineLogger(l *slog.Logger) PriceEngineOption {
	return func(e *PriceEngine) {
		e.logger = l
	}
}

func WithPriceEngineRepo(r TokenConfigRepository) PriceEngineOption {
	return func(e *PriceEngine) {
		e.repo = r
	}
}

func WithPriceEngineFetcher(f quotes.QuoteFetcher) PriceEngineOption {
	return func(e *PriceEngine) {
		e.fetcher = f
	}
}

func WithPriceEngineClock(c clock.Clock) PriceEngineOption {
	return func(e *PriceEngine) {
		e.clock = c
	}
}

func (e *PriceEngine) IsValid() error {
	switch {
	case e.logger == nil:
		return errors.Wrap(ErrInvalidPriceEngineConfig, "logger cannot be nil")
	case e.repo == nil:
		return errors.Wrap(ErrInvalidPriceEngineConfig, "repo cannot be nil")
	case e.fetcher == nil:
		return errors.Wrap(ErrInvalidPriceEngineConfig, "fetcher cannot be nil")
	case e.clock == nil:
		return errors.Wrap(ErrInvalidPriceEngineConfig, "clock cannot be nil")
	default:
		return nil
	}
}

func NewPriceEngine(opts ...PriceEngineOption) (*PriceEngine, error) {
	e := &PriceEngine{
		clock: clock.New(),
	}

	for _, opt := range opts {
		opt(e)
	}

	if err := e.IsValid(); err != nil {
		return nil, err
	}
	return e, nil
}

// Prices returns the current quote for every symbol it can price.
// Market-tracked symbols are omitted when no fresh-enough quote is
// available; quote-source failures never propagate to the caller.
func (e *PriceEngine) Prices() (map[string]PriceQuote, error) {
	configs, err := e.repo.ListTokenConfigs()
	if err != nil {
		return nil, errors.Wrap(err, "failed to list token configs")
	}

	out := make(map[string]PriceQuote, len(configs))
	var market []*quotes.Quote
	marketConfigs := make(map[string]models.TokenConfig)

	for _, config := range configs {
		if config.Symbol == models.SymbolAMC {
			synthetic := e.syntheticQuote(config)
			out[synthetic.Symbol] = synthetic
			continue
		}
		market = append(market, &quotes.Quote{
			Asset: quotes.Asset{Name: config.DisplayName, Symbol: config.Symbol},
		})
		marketConfigs[config.Symbol] = config
	}

	if len(market) > 0 {
		if err := e.fetcher.FetchMany(market...); err != nil {
			e.logger.Warn("quote fetch degraded", "error", err)
		}
		for _, q := range market {
			if q.Price <= 0 {
				continue // unavailable, omit
			}
			out[q.Asset.Symbol] = PriceQuote{
				Symbol:    q.Asset.Symbol,
				Name:      marketConfigs[q.Asset.Symbol].DisplayName,
				Price:     q.Price,
				Change24h: q.Change24h,
			}
		}
	}

	return out, nil
}

// syntheticQuote applies any due drift steps and builds the AMC quote.
func (e *PriceEngine) syntheticQuote(config models.TokenConfig) PriceQuote {
	e.driftMu.Lock()
	defer e.driftMu.Unlock()

	// reload under the lock so two concurrent reads see each other's
	// persisted step
	if fresh, err := e.repo.GetTokenConfig(config.Symbol); err == nil {
		config = *fresh
	}

	e.applyDrift(&config)

	price := config.CurrentPrice
	if price <= 0 {
		price = config.BasePrice
	}

	change := 0.0
	if config.BasePrice > 0 {
		change = (price - config.BasePrice) / config.BasePrice * 100
	}

	return PriceQuote{
		Symbol:    config.Symbol,
		Name:      config.DisplayName,
		Price:     price,
		Change24h: change,
	}
}

// applyDrift replays every interval elapsed since the last update and
// persists the result. Invalid configs and non-finite results are
// logged and skipped, leaving the stored price untouched.
func (e *PriceEngine) applyDrift(config *models.TokenConfig) {
	if config.AutoMode == models.AutoModeNone || config.AutoMode == "" {
		return
	}

	now := e.clock.Now()

	intervalMinutes := config.ChangeIntervalMinutes
	if intervalMinutes <= 0 {
		// a zero-minute interval would make every read a new interval
		intervalMinutes = 1
	}
	interval := time.Duration(intervalMinutes) * time.Minute

	steps := int(now.Sub(config.LastUpdatedAt) / interval)
	if steps < 1 {
		return
	}
	if steps > maxDriftSteps {
		steps = maxDriftSteps
	}

	rate := config.ChangeRatePercent / 100
	if rate <= 0 || math.IsNaN(rate) {
		e.logger.Warn("skipping drift: invalid change rate",
			"symbol", config.Symbol, "rate", config.ChangeRatePercent)
		return
	}

	price := config.CurrentPrice
	if price <= 0 {
		price = config.BasePrice
	}

	cycleCount := config.CycleCurrentCount
	cycleDirection := config.CycleDirection

	for i := 0; i < steps; i++ {
		switch config.AutoMode {
		case models.AutoModeIncrease:
			price *= 1 + rate
		case models.AutoModeDecrease:
			price *= 1 - rate
		case models.AutoModeCycle:
			if cycleCount < config.CycleIncreaseCount {
				price *= 1 + rate
				cycleCount++
				cycleDirection = models.CycleDirectionIncrease
			} else {
				price *= 1 - rate
				cycleCount = 0
				cycleDirection = models.CycleDirectionDecrease
			}
		default:
			e.logger.Warn("skipping drift: unknown auto mode",
				"symbol", config.Symbol, "mode", config.AutoMode)
			return
		}
	}

	if price <= 0 || math.IsNaN(price) || math.IsInf(price, 0) {
		e.logger.Warn("skipping drift: computed price is not a positive finite number",
			"symbol", config.Symbol, "price", price)
		return
	}

	config.CurrentPrice = price
	config.LastUpdatedAt = now
	config.CycleCurrentCount = cycleCount
	config.CycleDirection = cycleDirection

	if err := e.repo.SaveTokenConfig(config); err != nil {
		e.logger.Error("failed to persist drift step", "symbol", config.Symbol, "error", err)
	}
}
