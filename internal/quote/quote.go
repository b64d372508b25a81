package quote

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Quote is the normalized shape returned by all providers.
// Prices are decimals to avoid float rounding in change math.
type Quote struct {
	Symbol        string          `json:"symbol"`
	Price         decimal.Decimal `json:"price"`
	Change        decimal.Decimal `json:"change"`
	ChangePercent decimal.Decimal `json:"changePercent"`
	Source        string          `json:"source"`
	ResolvedAt    time.Time       `json:"resolvedAt"`
}

// Valid reports whether the quote carries a usable price.
func (q Quote) Valid() bool { return q.Price.IsPositive() }

// AssetType classifies an asset for pricing dispatch.
type AssetType string

const (
	AssetStock      AssetType = "stock"
	AssetCrypto     AssetType = "crypto"
	AssetBond       AssetType = "bond"
	AssetETF        AssetType = "etf"
	AssetMutualFund AssetType = "mutual-fund"
	AssetRealEstate AssetType = "real-estate"
	AssetCommodity  AssetType = "commodity"
	AssetOther      AssetType = "other"
)

// HasLivePricing reports whether any real-time source exists for the type.
// Mutual funds have no intraday source; bonds, real estate, commodities and
// "other" never have one.
func (t AssetType) HasLivePricing() bool {
	switch t {
	case AssetStock, AssetETF, AssetCrypto:
		return true
	}
	return false
}

// Fetcher talks to exactly one external quote source.
//
//go:generate mockgen -package=resolver_test -destination=../resolver/mock_fetcher_test.go -source=quote.go Fetcher
type Fetcher interface {
	Name() string
	Fetch(ctx context.Context, symbol string) (Quote, error)
}

// Kind classifies a provider failure.
type Kind int

const (
	KindUnknown Kind = iota
	KindRateLimited
	KindNoData
	KindTransportError
	KindUnsupportedType
)

func (k Kind) String() string {
	switch k {
	case KindRateLimited:
		return "rate_limited"
	case KindNoData:
		return "no_data"
	case KindTransportError:
		return "transport_error"
	case KindUnsupportedType:
		return "unsupported_type"
	}
	return "unknown"
}

// Error is a classified provider failure. The resolver matches on Kind to
// decide between falling back and giving up.
type Error struct {
	Kind     Kind
	Provider string
	Symbol   string
	Err      error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s %q: %v", e.Provider, e.Kind, e.Symbol, e.Err)
	}
	return fmt.Sprintf("%s: %s %q", e.Provider, e.Kind, e.Symbol)
}

func (e *Error) Unwrap() error { return e.Err }

// Errf builds a classified error with a formatted cause.
func Errf(kind Kind, provider, symbol, format string, args ...any) *Error {
	return &Error{Kind: kind, Provider: provider, Symbol: symbol, Err: fmt.Errorf(format, args...)}
}

// KindOf extracts the failure kind from err, or KindUnknown when err is not
// a classified provider error.
func KindOf(err error) Kind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return KindUnknown
}
