// Package updater refreshes current prices for a list of assets without
// letting one failure abort the batch.
package updater

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"marketdata/internal/quote"
)

// Asset is one portfolio position. Only Symbol and Type are read here;
// every other field passes through unchanged.
type Asset struct {
	Symbol        string          `json:"symbol"`
	Type          quote.AssetType `json:"type"`
	Quantity      decimal.Decimal `json:"quantity"`
	PurchasePrice decimal.Decimal `json:"purchasePrice"`
	CurrentPrice  decimal.Decimal `json:"currentPrice"`
	LastUpdated   time.Time       `json:"lastUpdated"`
}

// QuoteSource resolves a single asset to a quote, nil when no price exists.
type QuoteSource interface {
	Quote(ctx context.Context, assetType quote.AssetType, symbol string) (*quote.Quote, error)
}

// DefaultDelay paces sequential provider calls. The constant is a blunt
// rate-limit control, tunable via config, not a hard provider requirement.
const DefaultDelay = 200 * time.Millisecond

// Updater walks a batch of assets sequentially, resolving a fresh price
// for each and keeping the prior value when resolution fails.
type Updater struct {
	Source QuoteSource
	Delay  time.Duration
	Log    *zap.Logger

	// Sleep is swappable so tests can observe pacing without waiting.
	Sleep func(ctx context.Context, d time.Duration)
}

func New(source QuoteSource, delay time.Duration, log *zap.Logger) *Updater {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Updater{Source: source, Delay: delay, Log: log}
}

// UpdatePrices returns a new slice, same length and order as assets, where
// each element is either the input with CurrentPrice/LastUpdated refreshed
// or the input unchanged when no valid quote was found. It never fails:
// per-asset errors degrade to "keep prior value".
func (u *Updater) UpdatePrices(ctx context.Context, assets []Asset) []Asset {
	out := make([]Asset, len(assets))
	for i, a := range assets {
		out[i] = a

		// Once the context is gone, stop calling providers; the rest of
		// the batch passes through with prior values intact.
		if ctx.Err() != nil {
			continue
		}

		q, err := u.Source.Quote(ctx, a.Type, a.Symbol)
		switch {
		case err != nil:
			u.log().Warn("price refresh failed, keeping last known value",
				zap.String("symbol", a.Symbol),
				zap.String("type", string(a.Type)),
				zap.Error(err))
		case q != nil && q.Valid():
			out[i].CurrentPrice = q.Price
			out[i].LastUpdated = q.ResolvedAt
		}

		if i < len(assets)-1 {
			u.sleep(ctx, u.Delay)
		}
	}
	return out
}

func (u *Updater) sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	if u.Sleep != nil {
		u.Sleep(ctx, d)
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

func (u *Updater) log() *zap.Logger {
	if u.Log != nil {
		return u.Log
	}
	return zap.NewNop()
}
