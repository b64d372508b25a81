// Package coingecko fetches crypto quotes from the CoinGecko simple price
// endpoint. No API key is required on the public tier.
package coingecko

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"marketdata/internal/httpx"
	"marketdata/internal/quote"
)

// idBySymbol maps common tickers to CoinGecko asset ids. Unmapped symbols
// are lowercased and used as the id directly, best effort.
var idBySymbol = map[string]string{
	"BTC":  "bitcoin",
	"ETH":  "ethereum",
	"USDT": "tether",
	"BNB":  "binancecoin",
	"SOL":  "solana",
	"XRP":  "ripple",
	"USDC": "usd-coin",
	"ADA":  "cardano",
	"DOGE": "dogecoin",
	"DOT":  "polkadot",
}

// AssetID resolves a ticker symbol to the provider's internal asset id.
func AssetID(symbol string) string {
	sym := strings.ToUpper(strings.TrimSpace(symbol))
	if id, ok := idBySymbol[sym]; ok {
		return id
	}
	return strings.ToLower(strings.TrimSpace(symbol))
}

type Config struct {
	Name     string
	Endpoint string
	Currency string
	Headers  map[string]string
}

type Provider struct {
	cfg    Config
	client *httpx.Client
}

func New(cfg Config, hc *httpx.Client) *Provider {
	if cfg.Name == "" {
		cfg.Name = "CoinGecko"
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = "https://api.coingecko.com/api/v3/simple/price"
	}
	if cfg.Currency == "" {
		cfg.Currency = "usd"
	}
	return &Provider{cfg: cfg, client: hc}
}

func (p *Provider) Name() string { return p.cfg.Name }

func (p *Provider) Fetch(ctx context.Context, symbol string) (quote.Quote, error) {
	id := AssetID(symbol)
	cur := strings.ToLower(p.cfg.Currency)

	q := url.Values{}
	q.Set("ids", id)
	q.Set("vs_currencies", cur)
	q.Set("include_24hr_change", "true")

	// Response shape: {"bitcoin": {"usd": 12345.6, "usd_24h_change": 1.2}}
	var api map[string]map[string]float64
	if err := p.client.GetJSON(ctx, p.cfg.Endpoint+"?"+q.Encode(), p.cfg.Headers, &api); err != nil {
		kind := quote.KindTransportError
		var se *httpx.StatusError
		if errors.As(err, &se) && se.Code == http.StatusTooManyRequests {
			kind = quote.KindRateLimited
		}
		return quote.Quote{}, &quote.Error{Kind: kind, Provider: p.cfg.Name, Symbol: symbol, Err: err}
	}

	entry, ok := api[id]
	if !ok {
		return quote.Quote{}, quote.Errf(quote.KindNoData, p.cfg.Name, symbol, "id %q not in response", id)
	}
	price := decimal.NewFromFloat(entry[cur])
	if !price.IsPositive() {
		return quote.Quote{}, quote.Errf(quote.KindNoData, p.cfg.Name, symbol, "no usable price for id %q", id)
	}

	// Only a 24h percent change is available; derive the absolute change
	// from it so the normalized shape stays consistent across providers.
	changePct := decimal.NewFromFloat(entry[cur+"_24h_change"])
	change := price.Mul(changePct).Div(decimal.NewFromInt(100))

	return quote.Quote{
		Symbol:        strings.ToUpper(strings.TrimSpace(symbol)),
		Price:         price,
		Change:        change,
		ChangePercent: changePct,
		Source:        p.cfg.Name,
		ResolvedAt:    time.Now().UTC(),
	}, nil
}
