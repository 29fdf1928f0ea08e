package quotes

import (
	"fmt"
	"sync"
	"time"

	"amcwallet/pkg/integrations/quotes/binancequotes"
	"amcwallet/pkg/integrations/quotes/coingeckoquotes"
	"amcwallet/pkg/types/quotes"
)

var _ quotes.QuoteFetcher = (*QuoteService)(nil)

const (
	// freshFor is how long a fetched quote is served without hitting
	// the network again.
	freshFor = time.Minute
	// staleCeiling bounds how old a cached quote may be and still be
	// served when every provider is down. Beyond this the symbol is
	// reported as unavailable instead.
	staleCeiling = 10 * time.Minute
)

type cachedQuote struct {
	quote     quotes.Quote
	fetchedAt time.Time
}

type quoteCache struct {
	mu       sync.RWMutex
	bySymbol map[string]cachedQuote
}

func (c *quoteCache) get(symbol string, maxAge time.Duration) (quotes.Quote, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.bySymbol[symbol]
	if !ok || time.Since(entry.fetchedAt) > maxAge {
		return quotes.Quote{}, false
	}
	return entry.quote, true
}

func (c *quoteCache) set(q quotes.Quote) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.bySymbol == nil {
		c.bySymbol = make(map[string]cachedQuote)
	}
	c.bySymbol[q.Asset.Symbol] = cachedQuote{quote: q, fetchedAt: time.Now()}
}

// QuoteService chains providers with a short-TTL cache in front.
// Binance answers first; CoinGecko covers for it. A total provider
// outage degrades to stale-but-bounded cached data.
type QuoteService struct {
	Primary  quotes.QuoteFetcher
	Fallback quotes.QuoteFetcher
	cache    quoteCache
}

func NewQuoteService() *QuoteService {
	return &QuoteService{
		Primary:  binancequotes.NewQuoteFetcher(),
		Fallback: coingeckoquotes.NewQuoteFetcher(),
	}
}

func (s *QuoteService) Fetch(q *quotes.Quote) error {
	if cached, ok := s.cache.get(q.Asset.Symbol, freshFor); ok {
		*q = cached
		return nil
	}

	err := s.Primary.Fetch(q)
	if err == nil && q.Price > 0 {
		s.cache.set(*q)
		return nil
	}
	primaryErr := fmt.Errorf("%s error: %v", quotes.SourceBinance, err)

	err = s.Fallback.Fetch(q)
	if err == nil && q.Price > 0 {
		s.cache.set(*q)
		return nil
	}
	fallbackErr := fmt.Errorf("%s error: %v", quotes.SourceCoinGecko, err)

	if cached, ok := s.cache.get(q.Asset.Symbol, staleCeiling); ok {
		*q = cached
		return nil
	}

	return fmt.Errorf("no quote for %s: %v; %v", q.Asset.Symbol, primaryErr, fallbackErr)
}

// FetchMany fills every quote it can. When some symbols fail their
// Price stays zero and a joined error describes the misses; callers
// omit those symbols rather than failing the read.
func (s *QuoteService) FetchMany(qs ...*quotes.Quote) error {
	var errs []error
	for _, q := range qs {
		if err := s.Fetch(q); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		joined := errs[0]
		for _, e := range errs[1:] {
			joined = fmt.Errorf("%v; %v", joined, e)
		}
		return joined
	}
	return nil
}
