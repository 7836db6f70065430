package bootstrap

import (
	"context"
	"fmt"
	"net/http"

	"marketdata-aggregator/internal/application"
	"marketdata-aggregator/internal/config"
	infraconfig "marketdata-aggregator/internal/infrastructure/config"
	"marketdata-aggregator/internal/infrastructure/grpc/healthserver"
	httpserver "marketdata-aggregator/internal/infrastructure/http"
	"marketdata-aggregator/internal/infrastructure/httpx"
	"marketdata-aggregator/internal/infrastructure/logx"
	"marketdata-aggregator/internal/infrastructure/memory"
	"marketdata-aggregator/internal/infrastructure/pg"
	"marketdata-aggregator/internal/infrastructure/provider"
	redisstore "marketdata-aggregator/internal/infrastructure/redis"
	"marketdata-aggregator/internal/infrastructure/worker"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Storage is the durable store plus its readiness check.
type Storage struct {
	Repo application.SnapshotRepo
	Ping func(ctx context.Context) error
}

// APIApp is everything cmd/api runs.
type APIApp struct {
	Config    config.Config
	Server    *httpserver.Server
	Scheduler *worker.Scheduler
}

// WorkerApp is everything cmd/worker runs.
type WorkerApp struct {
	Config    config.Config
	Scheduler *worker.Scheduler
	Health    *healthserver.Health
}

func ProvideLogger() *zap.Logger { return logx.L() }

func ProvideConfig() config.Config { return config.Load() }

// ProvideStorage opens the store selected by STORAGE. For pg the schema is
// migrated before anything else is built.
func ProvideStorage(ctx context.Context, log *zap.Logger, cfg config.Config) (Storage, func(), error) {
	switch cfg.Storage {
	case "pg":
		if cfg.DatabaseURL == "" {
			return Storage{}, func() {}, ErrMissingDBURL
		}
		db, err := pg.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return Storage{}, func() {}, err
		}
		if err := pg.RunMigrations(ctx, db); err != nil {
			db.Close()
			return Storage{}, func() {}, err
		}
		cleanup := func() {
			log.Info("closing pg")
			db.Close()
		}
		return Storage{Repo: pg.NewSnapshotRepo(db), Ping: db.Ping}, cleanup, nil
	case "memory":
		log.Warn("using in-memory storage; snapshots are lost on restart")
		repo := memory.NewSnapshotRepo()
		return Storage{Repo: repo, Ping: repo.Ping}, func() {}, nil
	default:
		return Storage{}, func() {}, fmt.Errorf("%w: STORAGE=%q", ErrUnknownBackend, cfg.Storage)
	}
}

// ProvidePriceCache builds the cache selected by CACHE_BACKEND. An unreachable
// Redis is logged and not fatal: the service treats cache errors as misses.
func ProvidePriceCache(ctx context.Context, log *zap.Logger, cfg config.Config) (application.PriceCache, func(), error) {
	switch cfg.CacheBackend {
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		cache := redisstore.New(client)
		if err := cache.Ping(ctx); err != nil {
			log.Warn("redis_unreachable", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		}
		return cache, func() { _ = client.Close() }, nil
	case "memory":
		return memory.NewCache(), func() {}, nil
	default:
		return nil, func() {}, fmt.Errorf("%w: CACHE_BACKEND=%q", ErrUnknownBackend, cfg.CacheBackend)
	}
}

func ProvidePriceProvider(cfg config.Config, log *zap.Logger) (application.PriceProvider, error) {
	switch cfg.Provider {
	case "coingecko":
		client := &httpx.Client{
			HTTP:       &http.Client{Timeout: cfg.UpstreamTimeout},
			MaxRetries: cfg.UpstreamMaxRetries,
		}
		return provider.NewCoinGecko(cfg.CoinGeckoBaseURL, cfg.CoinGeckoAPIKey, client, log.With(zap.String("provider", "coingecko"))), nil
	case "fake":
		return provider.NewFake(decimal.RequireFromString("1.2345")), nil
	default:
		return nil, fmt.Errorf("%w: PROVIDER=%q", ErrUnknownBackend, cfg.Provider)
	}
}

func ProvideMarketDataService(cache application.PriceCache, st Storage, p application.PriceProvider, cfg config.Config, log *zap.Logger) *application.MarketDataService {
	return application.NewMarketDataService(cache, st.Repo, p,
		application.WithLogger(log.With(zap.String("component", "aggregator"))),
		application.WithCacheTTL(infraconfig.PriceCacheTTL),
		application.WithFetchConcurrency(cfg.FetchConcurrency),
		application.WithInflightDedupe(cfg.DedupeInflight),
	)
}

func ProvideScheduler(svc *application.MarketDataService, cfg config.Config, log *zap.Logger) *worker.Scheduler {
	return &worker.Scheduler{
		Refresher: svc,
		Watchlist: cfg.Watchlist,
		Currency:  cfg.WatchCurrency,
		Interval:  cfg.SchedulerInterval,
		Log:       log.With(zap.String("component", "scheduler")),
	}
}

func ProvideHTTPServer(svc *application.MarketDataService, st Storage) *httpserver.Server {
	srv := httpserver.NewServer(svc)
	srv.SetReadyCheck(st.Ping)
	return srv
}

func ProvideHealth() *healthserver.Health { return healthserver.New() }
