package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"marketdata/internal/config"
	"marketdata/internal/httpx"
	"marketdata/internal/quote"
	"marketdata/internal/quote/alphavantage"
	"marketdata/internal/quote/coingecko"
	"marketdata/internal/quote/ratelimit"
	"marketdata/internal/quote/yahoochart"
	"marketdata/internal/resolver"
	"marketdata/internal/updater"
)

// One-shot CLI: resolve current prices for a set of symbols and print the
// updated asset records as JSON. Useful for smoke-testing provider config.
func main() {
	_ = godotenv.Load()

	var symbolsCSV string
	var assetType string
	var timeout int
	var configPath string
	var delayMS int

	flag.StringVar(&symbolsCSV, "symbols", getenv("SYMBOLS", "AAPL"), "comma-separated symbols")
	flag.StringVar(&assetType, "type", getenv("ASSET_TYPE", "stock"), "asset type (stock|etf|crypto|...)")
	flag.IntVar(&timeout, "timeout", getenvInt("REQUEST_TIMEOUT_SEC", 15), "request timeout seconds")
	flag.IntVar(&delayMS, "delay-ms", getenvInt("UPDATER_DELAY_MS", 0), "inter-request delay override in ms")
	flag.StringVar(&configPath, "config", getenv("CONFIG_FILE", ""), "path to config.json (optional)")
	flag.Parse()

	log, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatal("config", zap.Error(err))
	}
	if timeout > 0 {
		cfg.Server.RequestTimeoutSec = timeout
	}
	if delayMS > 0 {
		cfg.Updater.DelayMS = delayMS
	}

	hc := httpx.New(time.Duration(cfg.Server.RequestTimeoutSec) * time.Second)

	res := &resolver.Resolver{
		Secondary: yahoochart.New(yahoochart.Config{Endpoint: cfg.YahooChart.Endpoint}, hc),
		Crypto: coingecko.New(coingecko.Config{
			Endpoint: cfg.CoinGecko.Endpoint,
			Currency: cfg.CoinGecko.Currency,
		}, hc),
		Log: log,
	}
	if cfg.AlphaVantage.Enabled && cfg.AlphaVantage.APIKey != "" {
		res.Primary = alphavantage.New(alphavantage.Config{
			Endpoint: cfg.AlphaVantage.Endpoint,
			APIKey:   cfg.AlphaVantage.APIKey,
		}, hc)
		if cfg.AlphaVantage.MaxRequestsPerMinute > 0 {
			res.Limiter = ratelimit.NewTokenBucket(float64(cfg.AlphaVantage.MaxRequestsPerMinute)/60.0, cfg.AlphaVantage.Burst)
		}
	} else {
		res.Primary = res.Secondary
	}

	assets := make([]updater.Asset, 0, 8)
	for _, s := range splitCSV(symbolsCSV) {
		assets = append(assets, updater.Asset{Symbol: s, Type: quote.AssetType(assetType)})
	}
	if len(assets) == 0 {
		log.Fatal("no symbols given")
	}

	upd := updater.New(res, time.Duration(cfg.Updater.DelayMS)*time.Millisecond, log)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(len(assets))*time.Duration(cfg.Server.RequestTimeoutSec+1)*time.Second)
	defer cancel()
	updated := upd.UpdatePrices(ctx, assets)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(updated)
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		var x int
		if _, err := fmt.Sscanf(v, "%d", &x); err == nil && x != 0 {
			return x
		}
	}
	return def
}
