// Package overview snapshots headline market indicators.
package overview

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"marketdata/internal/quote"
)

// QuoteSource resolves a single asset to a quote, nil when no price exists.
type QuoteSource interface {
	Quote(ctx context.Context, assetType quote.AssetType, symbol string) (*quote.Quote, error)
}

// Config names the three proxy symbols. Zero values fall back to SPY/QQQ/BTC.
type Config struct {
	IndexSymbol  string
	TechSymbol   string
	CryptoSymbol string
}

// Snapshot is the headline indicators. A nil field means that lookup
// failed; the snapshot as a whole never fails.
type Snapshot struct {
	PrimaryIndex    *quote.Quote `json:"primaryIndex"`
	TechIndex       *quote.Quote `json:"techIndex"`
	CryptoBenchmark *quote.Quote `json:"cryptoBenchmark"`
	ResolvedAt      time.Time    `json:"resolvedAt"`
}

type Service struct {
	cfg    Config
	source QuoteSource
}

func New(cfg Config, source QuoteSource) *Service {
	if cfg.IndexSymbol == "" {
		cfg.IndexSymbol = "SPY"
	}
	if cfg.TechSymbol == "" {
		cfg.TechSymbol = "QQQ"
	}
	if cfg.CryptoSymbol == "" {
		cfg.CryptoSymbol = "BTC"
	}
	return &Service{cfg: cfg, source: source}
}

// Snapshot resolves the three symbols concurrently. They hit different
// providers, so no shared rate-limit budget is being protected here,
// unlike the sequential batch updater.
func (s *Service) Snapshot(ctx context.Context) Snapshot {
	snap := Snapshot{ResolvedAt: time.Now().UTC()}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		snap.PrimaryIndex, _ = s.source.Quote(ctx, quote.AssetETF, s.cfg.IndexSymbol)
		return nil
	})
	g.Go(func() error {
		snap.TechIndex, _ = s.source.Quote(ctx, quote.AssetETF, s.cfg.TechSymbol)
		return nil
	})
	g.Go(func() error {
		snap.CryptoBenchmark, _ = s.source.Quote(ctx, quote.AssetCrypto, s.cfg.CryptoSymbol)
		return nil
	})
	_ = g.Wait()
	return snap
}
