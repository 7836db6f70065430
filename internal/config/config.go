package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	infraconfig "marketdata-aggregator/internal/infrastructure/config"
)

type Config struct {
	// Common
	Env      string
	LogLevel string
	// API
	Port        string
	Storage     string
	DatabaseURL string
	// Upstream
	Provider           string
	CoinGeckoBaseURL   string
	CoinGeckoAPIKey    string
	UpstreamTimeout    time.Duration
	UpstreamMaxRetries int
	// Aggregator
	FetchConcurrency int
	DedupeInflight   bool
	// Scheduler
	SchedulerEnabled  bool
	SchedulerInterval time.Duration
	Watchlist         []string
	WatchCurrency     string
	// Worker gRPC health
	GRPCAddr string
	// Redis (price cache)
	CacheBackend  string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoiDef(s string, def int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}

func boolDef(s string, def bool) bool {
	b, err := strconv.ParseBool(s)
	if err != nil {
		return def
	}
	return b
}

func durMS(key string, def time.Duration) time.Duration {
	ms := atoiDef(getEnv(key, ""), int(def/time.Millisecond))
	if ms <= 0 {
		return def
	}
	return time.Duration(ms) * time.Millisecond
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Load reads environment variables and applies defaults.
func Load() Config {
	return Config{
		Env:                getEnv("ENV", "local"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		Port:               getEnv("PORT", infraconfig.DefaultHTTPPort),
		Storage:            getEnv("STORAGE", "pg"),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		Provider:           getEnv("PROVIDER", "coingecko"),
		CoinGeckoBaseURL:   getEnv("COINGECKO_BASE_URL", infraconfig.DefaultCoinGeckoBaseURL),
		CoinGeckoAPIKey:    getEnv("COINGECKO_API_KEY", ""),
		UpstreamTimeout:    durMS("UPSTREAM_TIMEOUT_MS", infraconfig.DefaultUpstreamTimeout),
		UpstreamMaxRetries: atoiDef(getEnv("UPSTREAM_MAX_RETRIES", ""), infraconfig.DefaultUpstreamRetries),
		FetchConcurrency:   atoiDef(getEnv("FETCH_CONCURRENCY", ""), infraconfig.DefaultFetchConcurrency),
		DedupeInflight:     boolDef(getEnv("DEDUPE_INFLIGHT", ""), true),
		SchedulerEnabled:   boolDef(getEnv("SCHEDULER_ENABLED", ""), true),
		SchedulerInterval:  durMS("SCHEDULER_INTERVAL_MS", infraconfig.DefaultSchedulerEvery),
		Watchlist:          splitList(getEnv("WATCHLIST", infraconfig.DefaultWatchlist)),
		WatchCurrency:      getEnv("WATCH_CURRENCY", infraconfig.DefaultWatchCurrency),
		GRPCAddr:           getEnv("GRPC_ADDR", ":9090"),
		CacheBackend:       getEnv("CACHE_BACKEND", "redis"),
		RedisAddr:          getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:      getEnv("REDIS_PASSWORD", ""),
		RedisDB:            atoiDef(getEnv("REDIS_DB", "0"), 0),
	}
}
