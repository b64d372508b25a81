package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

type Server struct {
	Port              string `json:"port"`
	RequestTimeoutSec int    `json:"request_timeout_sec"`
}

type AlphaVantage struct {
	Enabled              bool   `json:"enabled"`
	APIKey               string `json:"api_key"`
	Endpoint             string `json:"endpoint"`
	MaxRequestsPerMinute int    `json:"max_requests_per_minute"`
	Burst                int    `json:"burst"`
}

type YahooChart struct {
	Endpoint string `json:"endpoint"`
}

type CoinGecko struct {
	Endpoint string `json:"endpoint"`
	Currency string `json:"currency"`
}

type Cache struct {
	TTLSeconds int `json:"ttl_sec"`
	MaxItems   int `json:"max_items"`
}

type Updater struct {
	DelayMS int `json:"delay_ms"`
}

type Overview struct {
	IndexSymbol  string `json:"index_symbol"`
	TechSymbol   string `json:"tech_symbol"`
	CryptoSymbol string `json:"crypto_symbol"`
}

type Config struct {
	Server       Server       `json:"server"`
	AlphaVantage AlphaVantage `json:"alphavantage"`
	YahooChart   YahooChart   `json:"yahoochart"`
	CoinGecko    CoinGecko    `json:"coingecko"`
	Cache        Cache        `json:"cache"`
	Updater      Updater      `json:"updater"`
	Overview     Overview     `json:"overview"`
}

func Default() Config {
	return Config{
		Server: Server{Port: "8080", RequestTimeoutSec: 10},
		AlphaVantage: AlphaVantage{
			Enabled:              true,
			Endpoint:             "https://www.alphavantage.co/query",
			MaxRequestsPerMinute: 5,
			Burst:                1,
		},
		YahooChart: YahooChart{
			Endpoint: "https://query1.finance.yahoo.com/v8/finance/chart",
		},
		CoinGecko: CoinGecko{
			Endpoint: "https://api.coingecko.com/api/v3/simple/price",
			Currency: "usd",
		},
		Cache: Cache{
			TTLSeconds: 45,
			MaxItems:   10000,
		},
		Updater: Updater{DelayMS: 200},
		Overview: Overview{
			IndexSymbol:  "SPY",
			TechSymbol:   "QQQ",
			CryptoSymbol: "BTC",
		},
	}
}

// Load reads JSON config from path. If path is empty or file does not exist,
// it returns defaults. Environment variables override select fields for secrecy.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		if _, err := os.Stat("config.json"); err == nil {
			path = "config.json"
		}
	}
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err == nil {
			if err := json.Unmarshal(b, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config: %w", err)
			}
		}
	}
	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("PORT"); v != "" {
		cfg.Server.Port = v
	}
	if v := envInt("REQUEST_TIMEOUT_SEC"); v > 0 {
		cfg.Server.RequestTimeoutSec = v
	}
	if v := os.Getenv("ALPHAVANTAGE_ENABLED"); v != "" {
		cfg.AlphaVantage.Enabled = envBool(v, cfg.AlphaVantage.Enabled)
	}
	if v := os.Getenv("ALPHAVANTAGE_API_KEY"); v != "" {
		cfg.AlphaVantage.APIKey = v
	}
	if v := os.Getenv("ALPHAVANTAGE_ENDPOINT"); v != "" {
		cfg.AlphaVantage.Endpoint = v
	}
	if v := envInt("ALPHAVANTAGE_MAX_RPM"); v > 0 {
		cfg.AlphaVantage.MaxRequestsPerMinute = v
	}
	if v := envInt("ALPHAVANTAGE_BURST"); v > 0 {
		cfg.AlphaVantage.Burst = v
	}
	if v := os.Getenv("YAHOO_ENDPOINT"); v != "" {
		cfg.YahooChart.Endpoint = v
	}
	if v := os.Getenv("COINGECKO_ENDPOINT"); v != "" {
		cfg.CoinGecko.Endpoint = v
	}
	if v := os.Getenv("COINGECKO_CURRENCY"); v != "" {
		cfg.CoinGecko.Currency = v
	}
	if os.Getenv("CACHE_TTL_SEC") != "" {
		cfg.Cache.TTLSeconds = envInt("CACHE_TTL_SEC")
	}
	if v := envInt("CACHE_MAX_ITEMS"); v > 0 {
		cfg.Cache.MaxItems = v
	}
	if v := envInt("UPDATER_DELAY_MS"); v > 0 {
		cfg.Updater.DelayMS = v
	}
	if v := os.Getenv("OVERVIEW_INDEX_SYMBOL"); v != "" {
		cfg.Overview.IndexSymbol = v
	}
	if v := os.Getenv("OVERVIEW_TECH_SYMBOL"); v != "" {
		cfg.Overview.TechSymbol = v
	}
	if v := os.Getenv("OVERVIEW_CRYPTO_SYMBOL"); v != "" {
		cfg.Overview.CryptoSymbol = v
	}
}

func envInt(key string) int {
	v := os.Getenv(key)
	if v == "" {
		return 0
	}
	var x int
	_, _ = fmt.Sscanf(v, "%d", &x)
	return x
}

func envBool(v string, def bool) bool {
	switch strings.ToLower(v) {
	case "1", "true", "yes", "y":
		return true
	case "0", "false", "no", "n":
		return false
	}
	return def
}
