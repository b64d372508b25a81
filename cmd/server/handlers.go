package main

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"marketdata/internal/overview"
	"marketdata/internal/quote"
	"marketdata/internal/search"
	"marketdata/internal/updater"
)

type quoteSource interface {
	Quote(ctx context.Context, assetType quote.AssetType, symbol string) (*quote.Quote, error)
}

type priceUpdater interface {
	UpdatePrices(ctx context.Context, assets []updater.Asset) []updater.Asset
}

type snapshotter interface {
	Snapshot(ctx context.Context) overview.Snapshot
}

type api struct {
	source   quoteSource
	updater  priceUpdater
	overview snapshotter
	log      *zap.Logger
}

const maxBatchAssets = 1000

func (a *api) routes(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("GET /api/quote", a.handleQuote)
	mux.HandleFunc("POST /api/prices", a.handlePrices)
	mux.HandleFunc("GET /api/market/overview", a.handleOverview)
	mux.HandleFunc("GET /api/search/stocks", a.handleSearchStocks)
	mux.HandleFunc("GET /api/search/crypto", a.handleSearchCrypto)
}

// handleQuote serves a single-asset lookup. A nil quote is an expected
// outcome (unsupported type or no source had a price) and maps to 404.
func (a *api) handleQuote(w http.ResponseWriter, r *http.Request) {
	symbol := strings.TrimSpace(r.URL.Query().Get("symbol"))
	if symbol == "" {
		http.Error(w, "missing symbol query param", http.StatusBadRequest)
		return
	}
	assetType := quote.AssetType(r.URL.Query().Get("type"))
	if assetType == "" {
		assetType = quote.AssetStock
	}

	q, err := a.source.Quote(r.Context(), assetType, symbol)
	if err != nil {
		a.log.Warn("quote lookup failed", zap.String("symbol", symbol), zap.Error(err))
	}
	if q == nil {
		http.Error(w, "no price available", http.StatusNotFound)
		return
	}
	writeJSON(w, q)
}

type pricesRequest struct {
	Assets []updater.Asset `json:"assets"`
}

type pricesResponse struct {
	Assets []updater.Asset `json:"assets"`
}

func (a *api) handlePrices(w http.ResponseWriter, r *http.Request) {
	var body pricesRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if len(body.Assets) == 0 {
		http.Error(w, "assets cannot be empty", http.StatusBadRequest)
		return
	}
	if len(body.Assets) > maxBatchAssets {
		http.Error(w, "too many assets (max 1000)", http.StatusBadRequest)
		return
	}
	updated := a.updater.UpdatePrices(r.Context(), body.Assets)
	writeJSON(w, pricesResponse{Assets: updated})
}

func (a *api) handleOverview(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, a.overview.Snapshot(r.Context()))
}

type searchResponse struct {
	Results []search.Result `json:"results"`
}

func (a *api) handleSearchStocks(w http.ResponseWriter, r *http.Request) {
	q, ok := searchQuery(w, r)
	if !ok {
		return
	}
	writeJSON(w, searchResponse{Results: search.Stocks(q)})
}

func (a *api) handleSearchCrypto(w http.ResponseWriter, r *http.Request) {
	q, ok := searchQuery(w, r)
	if !ok {
		return
	}
	writeJSON(w, searchResponse{Results: search.Crypto(q)})
}

// searchQuery enforces the minimum query length at the caller boundary,
// keeping the search package itself contract-free on length.
func searchQuery(w http.ResponseWriter, r *http.Request) (string, bool) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if len(q) < 2 {
		http.Error(w, "query must be at least 2 characters", http.StatusBadRequest)
		return "", false
	}
	return q, true
}

func writeJSON(w http.ResponseWriter, v any) {
	w.WriteHeader(http.StatusOK)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}
