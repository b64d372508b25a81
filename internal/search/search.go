// Package search performs case-insensitive substring search over fixed
// in-memory reference lists.
//
// The lists are a stand-in for a live provider search endpoint. Callers
// depend only on the filter contract and the result shape, so swapping in
// a real search later does not touch them.
package search

import (
	"strings"

	"github.com/shopspring/decimal"

	"marketdata/internal/quote"
)

// Result is one search hit. Price is indicative, not live.
type Result struct {
	Symbol string          `json:"symbol"`
	Name   string          `json:"name"`
	Price  decimal.Decimal `json:"price"`
	Type   quote.AssetType `json:"type"`
}

// Stocks returns reference-list entries whose symbol or name contains the
// query, case-insensitive. Query length is the caller's concern: handlers
// reject queries shorter than 2 characters before calling this.
func Stocks(query string) []Result {
	return filter(stockList, query)
}

// Crypto is the crypto counterpart of Stocks.
func Crypto(query string) []Result {
	return filter(cryptoList, query)
}

func filter(list []Result, query string) []Result {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]Result, 0, 8)
	for _, r := range list {
		if strings.Contains(strings.ToLower(r.Symbol), q) || strings.Contains(strings.ToLower(r.Name), q) {
			out = append(out, r)
		}
	}
	return out
}

func stock(symbol, name string, price float64) Result {
	return Result{Symbol: symbol, Name: name, Price: decimal.NewFromFloat(price), Type: quote.AssetStock}
}

func coin(symbol, name string, price float64) Result {
	return Result{Symbol: symbol, Name: name, Price: decimal.NewFromFloat(price), Type: quote.AssetCrypto}
}

var stockList = []Result{
	stock("AAPL", "Apple Inc.", 175.43),
	stock("MSFT", "Microsoft Corporation", 338.11),
	stock("GOOGL", "Alphabet Inc.", 125.37),
	stock("AMZN", "Amazon.com Inc.", 127.74),
	stock("NVDA", "NVIDIA Corporation", 421.13),
	stock("META", "Meta Platforms Inc.", 298.58),
	stock("TSLA", "Tesla Inc.", 248.50),
	stock("BRK.B", "Berkshire Hathaway Inc.", 348.94),
	stock("JPM", "JPMorgan Chase & Co.", 146.43),
	stock("V", "Visa Inc.", 235.44),
	stock("JNJ", "Johnson & Johnson", 161.69),
	stock("WMT", "Walmart Inc.", 157.65),
	stock("PG", "Procter & Gamble Co.", 151.03),
	stock("DIS", "The Walt Disney Company", 90.14),
	stock("KO", "The Coca-Cola Company", 59.13),
	stock("NFLX", "Netflix Inc.", 399.93),
	stock("INTC", "Intel Corporation", 34.56),
	stock("AMD", "Advanced Micro Devices Inc.", 102.82),
	stock("SPY", "SPDR S&P 500 ETF Trust", 436.04),
	stock("QQQ", "Invesco QQQ Trust", 358.27),
}

var cryptoList = []Result{
	coin("BTC", "Bitcoin", 43250.00),
	coin("ETH", "Ethereum", 2280.50),
	coin("USDT", "Tether", 1.00),
	coin("BNB", "BNB", 305.12),
	coin("SOL", "Solana", 98.45),
	coin("XRP", "XRP", 0.62),
	coin("USDC", "USD Coin", 1.00),
	coin("ADA", "Cardano", 0.59),
	coin("DOGE", "Dogecoin", 0.092),
	coin("DOT", "Polkadot", 7.34),
	coin("MATIC", "Polygon", 0.89),
	coin("LTC", "Litecoin", 72.18),
}
