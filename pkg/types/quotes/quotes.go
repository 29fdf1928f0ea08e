package quotes

const (
	SourceBinance   = "binance"
	SourceCoinGecko = "coingecko"
)

type Asset struct {
	Name   string
	Symbol string
}

// Quote is one market quote for a tracked asset. Change24h is a
// percentage, not a ratio.
type Quote struct {
	Asset     Asset
	Price     float64
	Change24h float64
	Source    string
}

type QuoteFetcher interface {
	Fetch(quote *Quote) error
	FetchMany(quotes ...*Quote) error
}

var SampleQuotes = []*Quote{
	{Asset: Asset{Name: "Bitcoin", Symbol: "BTC"}},
	{Asset: Asset{Name: "Ethereum", Symbol: "ETH"}},
}
