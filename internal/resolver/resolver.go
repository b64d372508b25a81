// Package resolver picks the right provider chain for an asset type and
// orchestrates the primary -> secondary equities fallback.
package resolver

import (
	"context"

	"go.uber.org/zap"

	"marketdata/internal/quote"
	"marketdata/internal/quote/quotecache"
	"marketdata/internal/quote/ratelimit"
)

// Resolver resolves (assetType, symbol) to a quote. Fields are optional
// except the fetchers for the types actually resolved: a nil Cache disables
// caching, a nil Limiter disables gating, a nil Log disables logging.
type Resolver struct {
	Primary   quote.Fetcher // equities, authenticated, rate limited
	Secondary quote.Fetcher // equities fallback, unauthenticated
	Crypto    quote.Fetcher
	Cache     *quotecache.Cache
	Limiter   ratelimit.Gate // guards Primary only
	Log       *zap.Logger
}

// Quote returns the current quote for the asset, or (nil, nil) when the
// asset type has no real-time pricing source. Callers must treat a nil
// quote as an expected outcome, not an error to surface.
func (r *Resolver) Quote(ctx context.Context, assetType quote.AssetType, symbol string) (*quote.Quote, error) {
	if !assetType.HasLivePricing() {
		return nil, nil
	}

	key := string(assetType) + ":" + symbol
	q, err := r.Cache.Fetch(key, func() (quote.Quote, error) {
		return r.resolve(ctx, assetType, symbol)
	})
	if err != nil {
		return nil, err
	}
	return &q, nil
}

func (r *Resolver) resolve(ctx context.Context, assetType quote.AssetType, symbol string) (quote.Quote, error) {
	switch assetType {
	case quote.AssetStock, quote.AssetETF:
		return r.resolveEquity(ctx, symbol)
	case quote.AssetCrypto:
		return r.Crypto.Fetch(ctx, symbol)
	}
	// HasLivePricing guarantees we never get here.
	return quote.Quote{}, quote.Errf(quote.KindUnsupportedType, "resolver", symbol, "no source for type %q", assetType)
}

// resolveEquity tries the primary source and falls back to the secondary
// exactly once when the primary is rate limited or unreachable. A NoData
// answer from the primary is authoritative and does not trigger fallback.
func (r *Resolver) resolveEquity(ctx context.Context, symbol string) (quote.Quote, error) {
	if r.Limiter != nil {
		if err := r.Limiter.Wait(ctx); err != nil {
			return quote.Quote{}, &quote.Error{Kind: quote.KindTransportError, Provider: r.Primary.Name(), Symbol: symbol, Err: err}
		}
	}
	q, err := r.Primary.Fetch(ctx, symbol)
	if err == nil {
		return q, nil
	}

	switch quote.KindOf(err) {
	case quote.KindRateLimited, quote.KindTransportError:
		r.log().Warn("primary equities source failed, falling back",
			zap.String("symbol", symbol),
			zap.String("provider", r.Primary.Name()),
			zap.String("kind", quote.KindOf(err).String()),
			zap.Error(err))
		return r.Secondary.Fetch(ctx, symbol)
	}
	return quote.Quote{}, err
}

func (r *Resolver) log() *zap.Logger {
	if r.Log != nil {
		return r.Log
	}
	return zap.NewNop()
}
