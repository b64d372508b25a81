// Package yahoochart fetches equity quotes from the unauthenticated Yahoo
// Finance chart endpoint. It serves as the fallback when the primary
// equities source is rate limited or unreachable.
package yahoochart

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
	Headers  map[string]string
}

type Provider struct {
	cfg    Config
	client *httpx.Client
}

func New(cfg Config, hc *httpx.Client) *Provider {
	if cfg.Name == "" {
		cfg.Name = "YahooChart"
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = "https://query1.finance.yahoo.com/v8/finance/chart"
	}
	return &Provider{cfg: cfg, client: hc}
}

func (p *Provider) Name() string { return p.cfg.Name }

func (p *Provider) Fetch(ctx context.Context, symbol string) (quote.Quote, error) {
	sym := strings.ToUpper(strings.TrimSpace(symbol))

	u := p.cfg.Endpoint + "/" + url.PathEscape(sym) + "?interval=1d&range=1d"
	var api apiResponse
	if err := p.client.GetJSON(ctx, u, p.cfg.Headers, &api); err != nil {
		return quote.Quote{}, &quote.Error{Kind: quote.KindTransportError, Provider: p.cfg.Name, Symbol: sym, Err: err}
	}

	if api.Chart.Error != nil {
		return quote.Quote{}, quote.Errf(quote.KindNoData, p.cfg.Name, sym, "chart error: %s", api.Chart.Error.Description)
	}
	if len(api.Chart.Result) == 0 {
		return quote.Quote{}, quote.Errf(quote.KindNoData, p.cfg.Name, sym, "empty chart result")
	}

	meta := api.Chart.Result[0].Meta
	price := decimal.NewFromFloat(meta.RegularMarketPrice)
	if !price.IsPositive() {
		return quote.Quote{}, quote.Errf(quote.KindNoData, p.cfg.Name, sym, "no usable price in chart meta")
	}

	prevClose := decimal.NewFromFloat(meta.ChartPreviousClose)
	if !prevClose.IsPositive() {
		prevClose = decimal.NewFromFloat(meta.PreviousClose)
	}

	// The chart endpoint carries no change fields; compute them from the
	// previous close. A missing or zero close yields zero change, never a
	// division by zero.
	change := decimal.Zero
	changePct := decimal.Zero
	if prevClose.IsPositive() {
		change = price.Sub(prevClose)
		changePct = change.Div(prevClose).Mul(decimal.NewFromInt(100))
	}

	return quote.Quote{
		Symbol:        sym,
		Price:         price,
		Change:        change,
		ChangePercent: changePct,
		Source:        p.cfg.Name,
		ResolvedAt:    time.Now().UTC(),
	}, nil
}

type apiResponse struct {
	Chart struct {
		Result []struct {
			Meta meta `json:"meta"`
		} `json:"result"`
		Error *apiError `json:"error"`
	} `json:"chart"`
}

type meta struct {
	Currency           string  `json:"currency"`
	Symbol             string  `json:"symbol"`
	RegularMarketPrice float64 `json:"regularMarketPrice"`
	ChartPreviousClose float64 `json:"chartPreviousClose"`
	PreviousClose      float64 `json:"previousClose"`
}

type apiError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}
