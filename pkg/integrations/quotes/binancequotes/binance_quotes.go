package binancequotes

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
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
		BaseURL: "https://api.binance.com/api/v3",
		Client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// Fetch fills in the USD price and 24h change for one symbol from the
// 24hr ticker endpoint.
func (b *QuoteFetcher) Fetch(quote *quotes.Quote) error {
	pair := quote.Asset.Symbol + "USDT"
	endpoint := fmt.Sprintf("%s/ticker/24hr?symbol=%s", b.BaseURL, pair)

	resp, err := b.Client.Get(endpoint)
	if err != nil {
		return fmt.Errorf("failed to fetch quote: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusBadRequest {
		return fmt.Errorf("invalid trading pair: %s", pair)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var result struct {
		Symbol             string `json:"symbol"`
		LastPrice          string `json:"lastPrice"`
		PriceChangePercent string `json:"priceChangePercent"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	price, err := strconv.ParseFloat(result.LastPrice, 64)
	if err != nil {
		return fmt.Errorf("invalid price format: %w", err)
	}

	change, err := strconv.ParseFloat(result.PriceChangePercent, 64)
	if err != nil {
		return fmt.Errorf("invalid change format: %w", err)
	}

	quote.Price = price
	quote.Change24h = change
	quote.Source = quotes.SourceBinance
	return nil
}

func (b *QuoteFetcher) FetchMany(qs ...*quotes.Quote) error {
	for _, q := range qs {
		if err := b.Fetch(q); err != nil {
			return fmt.Errorf("failed to fetch quote for %s: %w", q.Asset.Symbol, err)
		}
	}
	return nil
}
