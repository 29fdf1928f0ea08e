package coingeckoquotes

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"amcwallet/pkg/types/quotes"
)

var _ quotes.QuoteFetcher = (*QuoteFetcher)(nil)

type QuoteFetcher struct {
	BaseURL string
	Client  *http.Client
}

func NewQuoteFetcher() *QuoteFetcher {
	return &QuoteFetcher{
		BaseURL: "https://api.coingecko.com/api/v3",
		Client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *QuoteFetcher) Fetch(quote *quotes.Quote) error {
	return c.FetchMany(quote)
}

// FetchMany resolves all requested assets in one /coins/markets call.
// CoinGecko is addressed by coin id (the lowercased asset name), not by
// ticker symbol.
func (c *QuoteFetcher) FetchMany(qs ...*quotes.Quote) error {
	ids := make([]string, 0, len(qs))
	for _, q := range qs {
		ids = append(ids, strings.ToLower(q.Asset.Name))
	}

	endpoint := fmt.Sprintf("%s/coins/markets?vs_currency=usd&ids=%s",
		c.BaseURL, strings.Join(ids, ","))

	resp, err := c.Client.Get(endpoint)
	if err != nil {
		return fmt.Errorf("failed to fetch quotes: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var results []struct {
		ID        string  `json:"id"`
		Symbol    string  `json:"symbol"`
		Price     float64 `json:"current_price"`
		Change24h float64 `json:"price_change_percentage_24h"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	byID := make(map[string]int, len(results))
	for i, r := range results {
		byID[r.ID] = i
	}

	for _, q := range qs {
		i, ok := byID[strings.ToLower(q.Asset.Name)]
		if !ok {
			return fmt.Errorf("quote not found for asset: %s", q.Asset.Name)
		}
		q.Price = results[i].Price
		q.Change24h = results[i].Change24h
		q.Source = quotes.SourceCoinGecko
	}

	return nil
}
