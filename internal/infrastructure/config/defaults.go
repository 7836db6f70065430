package config

import "time"

const (
	DefaultHTTPPort         = "8080"
	DefaultShutdownTimeout  = 10 * time.Second
	DefaultSchedulerEvery   = time.Minute
	DefaultWatchCurrency    = "usd"
	DefaultWatchlist        = "bitcoin,ethereum,solana,cardano,ripple,dogecoin"
	DefaultCoinGeckoBaseURL = "https://api.coingecko.com/api/v3"
	DefaultUpstreamTimeout  = 5 * time.Second
	DefaultUpstreamRetries  = 2
	DefaultFetchConcurrency = 0 // unbounded
	DefaultPGMaxConns       = 5
	DefaultPGMinConns       = 1

	// PriceCacheTTL is fixed; cached prices older than this are refetched.
	PriceCacheTTL = 2 * time.Minute
)
