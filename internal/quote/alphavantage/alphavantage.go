// Package alphavantage fetches equity quotes from the Alpha Vantage
// GLOBAL_QUOTE endpoint. The free tier reports quota exhaustion inside a
// 200 response, so classification inspects the body, not just the status.
package alphavantage

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"marketdata/internal/httpx"
	"marketdata/internal/quote"
)

type Config struct {
	Name     string
	Endpoint string
	APIKey   string
	Headers  map[string]string
}

type Provider struct {
	cfg    Config
	client *httpx.Client
}

func New(cfg Config, hc *httpx.Client) *Provider {
	if cfg.Name == "" {
		cfg.Name = "AlphaVantage"
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = "https://www.alphavantage.co/query"
	}
	return &Provider{cfg: cfg, client: hc}
}

func (p *Provider) Name() string { return p.cfg.Name }

func (p *Provider) Fetch(ctx context.Context, symbol string) (quote.Quote, error) {
	sym := strings.ToUpper(strings.TrimSpace(symbol))

	q := url.Values{}
	q.Set("function", "GLOBAL_QUOTE")
	q.Set("symbol", sym)
	q.Set("apikey", p.cfg.APIKey)

	var api apiResponse
	if err := p.client.GetJSON(ctx, p.cfg.Endpoint+"?"+q.Encode(), p.cfg.Headers, &api); err != nil {
		return quote.Quote{}, &quote.Error{Kind: quote.KindTransportError, Provider: p.cfg.Name, Symbol: sym, Err: err}
	}

	// The three non-happy body shapes the free tier produces.
	if msg := strings.TrimSpace(api.ErrorMessage); msg != "" {
		return quote.Quote{}, quote.Errf(quote.KindTransportError, p.cfg.Name, sym, "provider error: %s", msg)
	}
	if isRateLimitNotice(api.Note) {
		return quote.Quote{}, quote.Errf(quote.KindRateLimited, p.cfg.Name, sym, "note: %s", api.Note)
	}
	if isRateLimitNotice(api.Information) {
		return quote.Quote{}, quote.Errf(quote.KindRateLimited, p.cfg.Name, sym, "information: %s", api.Information)
	}

	gq := api.GlobalQuote
	price, err := decimal.NewFromString(strings.TrimSpace(gq.Price))
	if err != nil || !price.IsPositive() {
		return quote.Quote{}, quote.Errf(quote.KindNoData, p.cfg.Name, sym, "no usable price in response")
	}

	change, _ := decimal.NewFromString(strings.TrimSpace(gq.Change))
	changePct, _ := decimal.NewFromString(strings.TrimSpace(strings.TrimSuffix(gq.ChangePercent, "%")))

	return quote.Quote{
		Symbol:        sym,
		Price:         price,
		Change:        change,
		ChangePercent: changePct,
		Source:        p.cfg.Name,
		ResolvedAt:    time.Now().UTC(),
	}, nil
}

// isRateLimitNotice matches both the legacy "call frequency" note and the
// newer "rate limit" information text.
func isRateLimitNotice(s string) bool {
	l := strings.ToLower(s)
	return strings.Contains(l, "call frequency") || strings.Contains(l, "rate limit")
}

type apiResponse struct {
	GlobalQuote  globalQuote `json:"Global Quote"`
	ErrorMessage string      `json:"Error Message"`
	Note         string      `json:"Note"`
	Information  string      `json:"Information"`
}

type globalQuote struct {
	Symbol        string `json:"01. symbol"`
	Price         string `json:"05. price"`
	Change        string `json:"09. change"`
	ChangePercent string `json:"10. change percent"`
}
