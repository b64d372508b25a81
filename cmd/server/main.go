package main

import (
	"compress/gzip"
	"context"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"marketdata/internal/config"
	"marketdata/internal/httpx"
	"marketdata/internal/overview"
	"marketdata/internal/quote/alphavantage"
	"marketdata/internal/quote/coingecko"
	"marketdata/internal/quote/quotecache"
	"marketdata/internal/quote/ratelimit"
	"marketdata/internal/quote/yahoochart"
	"marketdata/internal/resolver"
	"marketdata/internal/updater"
)

func main() {
	_ = godotenv.Load()

	log, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Fatal("config", zap.Error(err))
	}
	if cfg.AlphaVantage.Enabled && cfg.AlphaVantage.APIKey == "" {
		log.Warn("alphavantage.enabled=true but ALPHAVANTAGE_API_KEY not set; equities will rely on the fallback source")
	}

	httpClient := httpx.New(time.Duration(cfg.Server.RequestTimeoutSec) * time.Second)

	res := buildResolver(cfg, httpClient, log)
	upd := updater.New(res, time.Duration(cfg.Updater.DelayMS)*time.Millisecond, log)
	ov := overview.New(overview.Config{
		IndexSymbol:  cfg.Overview.IndexSymbol,
		TechSymbol:   cfg.Overview.TechSymbol,
		CryptoSymbol: cfg.Overview.CryptoSymbol,
	}, res)

	mux := http.NewServeMux()
	a := &api{source: res, updater: upd, overview: ov, log: log}
	a.routes(mux)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           withJSONHeaders(withGzip(recoverPanic(limitBody(mux)))),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      5 * time.Minute, // batch updates pace sequentially
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server", zap.Error(err))
		}
	}()

	// graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}

func buildResolver(cfg config.Config, hc *httpx.Client, log *zap.Logger) *resolver.Resolver {
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
			rate := float64(cfg.AlphaVantage.MaxRequestsPerMinute) / 60.0
			res.Limiter = ratelimit.NewTokenBucket(rate, cfg.AlphaVantage.Burst)
		}
	} else {
		// No key: the fallback source answers equities directly.
		res.Primary = res.Secondary
	}

	if cfg.Cache.TTLSeconds > 0 {
		res.Cache = &quotecache.Cache{
			TTL:      time.Duration(cfg.Cache.TTLSeconds) * time.Second,
			MaxItems: cfg.Cache.MaxItems,
		}
	}
	return res
}

func withJSONHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		// Basic CORS for browser usage; adjust as needed.
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type,Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// withGzip compresses response when client supports gzip.
func withGzip(next http.Handler) http.Handler {
	var gzPool = sync.Pool{New: func() any {
		// Prefer best speed to reduce CPU usage since payloads are JSON
		w, _ := gzip.NewWriterLevel(io.Discard, gzip.BestSpeed)
		return w
	}}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") {
			next.ServeHTTP(w, r)
			return
		}
		gz := gzPool.Get().(*gzip.Writer)
		gz.Reset(w)
		defer func() {
			_ = gz.Close()
			gz.Reset(io.Discard)
			gzPool.Put(gz)
		}()
		w.Header().Set("Content-Encoding", "gzip")
		w.Header().Add("Vary", "Accept-Encoding")
		gw := gzipResponseWriter{ResponseWriter: w, Writer: gz}
		next.ServeHTTP(gw, r)
	})
}

type gzipResponseWriter struct {
	http.ResponseWriter
	Writer io.Writer
}

func (g gzipResponseWriter) Write(b []byte) (int, error) {
	return g.Writer.Write(b)
}

// limitBody caps request body size to avoid memory abuse.
func limitBody(next http.Handler) http.Handler {
	const maxBody = 1 << 20 // 1MB
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost && r.Body != nil {
			r.Body = http.MaxBytesReader(w, r.Body, maxBody)
		}
		next.ServeHTTP(w, r)
	})
}

// recoverPanic protects handlers from panics.
func recoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				http.Error(w, "internal server error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
