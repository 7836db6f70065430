package application

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"marketdata-aggregator/internal/domain"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	SourceCoinGecko = "CoinGecko"

	defaultCacheTTL = 2 * time.Minute
)

// FetchResult is the outcome of one symbol in a FetchMultiple call.
// Exactly one of Snapshot or Err is meaningful.
type FetchResult struct {
	Symbol   string
	Snapshot domain.PriceSnapshot
	Err      error
}

// MarketDataService reads prices cache-aside: cache first, upstream on a miss,
// then the durable store.
type MarketDataService struct {
	cache       PriceCache
	store       SnapshotRepo
	provider    PriceProvider
	clock       Clock
	log         *zap.Logger
	cacheTTL    time.Duration
	source      string
	concurrency int
	flights     *flightGroup
}

type Option func(*MarketDataService)

func WithClock(c Clock) Option { return func(s *MarketDataService) { s.clock = c } }
func WithLogger(l *zap.Logger) Option { return func(s *MarketDataService) { s.log = l } }
func WithCacheTTL(d time.Duration) Option { return func(s *MarketDataService) { s.cacheTTL = d } }
func WithSource(name string) Option { return func(s *MarketDataService) { s.source = name } }

// WithFetchConcurrency caps how many symbols FetchMultiple fetches at once.
// Zero or less means one goroutine per symbol.
func WithFetchConcurrency(n int) Option { return func(s *MarketDataService) { s.concurrency = n } }

// WithInflightDedupe makes concurrent fetches of the same cache key share a
// single upstream call instead of each issuing their own.
func WithInflightDedupe(on bool) Option {
	return func(s *MarketDataService) {
		if on {
			s.flights = newFlightGroup()
		} else {
			s.flights = nil
		}
	}
}

func NewMarketDataService(cache PriceCache, store SnapshotRepo, provider PriceProvider, opts ...Option) *MarketDataService {
	s := &MarketDataService{
		cache:    cache,
		store:    store,
		provider: provider,
		cacheTTL: defaultCacheTTL,
		source:   SourceCoinGecko,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.clock == nil {
		s.clock = realClock{}
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	return s
}

// FetchAndCache returns the current snapshot for symbol in currency and persists it.
func (s *MarketDataService) FetchAndCache(ctx context.Context, symbol, currency string) (domain.PriceSnapshot, error) {
	symbol, currency = domain.NormalizeSymbol(symbol), domain.NormalizeSymbol(currency)
	if symbol == "" || currency == "" {
		return domain.PriceSnapshot{}, fmt.Errorf("%w: symbol and currency are required", ErrBadRequest)
	}
	if s.flights == nil {
		return s.fetchAndCache(ctx, symbol, currency)
	}
	v, err := s.flights.Do(ctx, domain.CacheKey(symbol, currency), func(ctx context.Context) (any, error) {
		return s.fetchAndCache(ctx, symbol, currency)
	})
	if err != nil {
		return domain.PriceSnapshot{}, err
	}
	return v.(domain.PriceSnapshot), nil
}

func (s *MarketDataService) fetchAndCache(ctx context.Context, symbol, currency string) (domain.PriceSnapshot, error) {
	log := s.log.With(zap.String("symbol", symbol), zap.String("currency", currency))
	key := domain.CacheKey(symbol, currency)

	raw, hit := s.readCache(ctx, log, key, symbol)
	if !hit {
		records, err := s.provider.Fetch(ctx, []string{symbol}, currency)
		if err != nil {
			log.Error("upstream_fetch_failed", zap.Error(err))
			return domain.PriceSnapshot{}, err
		}
		rec, ok := findRecord(records, symbol)
		if !ok {
			log.Warn("upstream_symbol_missing", zap.Int("records", len(records)))
			return domain.PriceSnapshot{}, fmt.Errorf("%w: %s", domain.ErrSymbolNotFound, symbol)
		}
		raw = rec
	}

	snap := raw.ToSnapshot(currency, s.source, s.clock.Now())
	if err := snap.Validate(); err != nil {
		log.Error("snapshot_rejected", zap.Error(err), zap.Bool("cache_hit", hit))
		return domain.PriceSnapshot{}, err
	}
	// Only records that pass validation are cached.
	if !hit {
		s.writeCache(ctx, log, key, raw)
	}
	saved, err := s.store.Save(ctx, snap)
	if err != nil {
		perr := &domain.PersistenceError{Op: "save", Err: err}
		log.Error("snapshot_persist_failed", zap.Error(perr))
		return domain.PriceSnapshot{}, perr
	}
	log.Debug("snapshot_saved", zap.String("id", saved.ID), zap.Bool("cache_hit", hit))
	return saved, nil
}

// readCache never fails: transport errors and corrupt payloads count as a miss.
func (s *MarketDataService) readCache(ctx context.Context, log *zap.Logger, key, symbol string) (domain.RawPriceRecord, bool) {
	b, found, err := s.cache.Get(ctx, key)
	if err != nil {
		log.Warn("cache_get_failed", zap.String("key", key), zap.Error(err))
		return domain.RawPriceRecord{}, false
	}
	if !found {
		return domain.RawPriceRecord{}, false
	}
	var rec domain.RawPriceRecord
	if err := json.Unmarshal(b, &rec); err != nil {
		log.Warn("cache_payload_invalid", zap.Error(&domain.CacheCodecError{Key: key, Err: err}))
		return domain.RawPriceRecord{}, false
	}
	if !strings.EqualFold(rec.ID, symbol) {
		log.Warn("cache_payload_invalid", zap.Error(&domain.CacheCodecError{Key: key, Err: fmt.Errorf("record id %q", rec.ID)}))
		return domain.RawPriceRecord{}, false
	}
	rec.ID = symbol
	return rec, true
}

func (s *MarketDataService) writeCache(ctx context.Context, log *zap.Logger, key string, rec domain.RawPriceRecord) {
	b, err := json.Marshal(rec)
	if err != nil {
		log.Warn("cache_encode_failed", zap.Error(&domain.CacheCodecError{Key: key, Err: err}))
		return
	}
	if err := s.cache.Set(ctx, key, b, s.cacheTTL); err != nil {
		log.Warn("cache_set_failed", zap.String("key", key), zap.Error(err))
	}
}

func findRecord(records []domain.RawPriceRecord, symbol string) (domain.RawPriceRecord, bool) {
	for _, r := range records {
		if strings.EqualFold(r.ID, symbol) {
			r.ID = symbol
			return r, true
		}
	}
	return domain.RawPriceRecord{}, false
}

// FetchMultiple runs FetchAndCache for every distinct symbol concurrently.
// One symbol failing does not affect the others. Results follow the order of
// first appearance in symbols.
func (s *MarketDataService) FetchMultiple(ctx context.Context, symbols []string, currency string) []FetchResult {
	distinct := distinctSymbols(symbols)
	results := make([]FetchResult, len(distinct))

	var g errgroup.Group
	if s.concurrency > 0 {
		g.SetLimit(s.concurrency)
	}
	for i, sym := range distinct {
		i, sym := i, sym
		g.Go(func() error {
			snap, err := s.FetchAndCache(ctx, sym, currency)
			results[i] = FetchResult{Symbol: sym, Snapshot: snap, Err: err}
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func distinctSymbols(symbols []string) []string {
	seen := make(map[string]struct{}, len(symbols))
	out := make([]string, 0, len(symbols))
	for _, sym := range symbols {
		sym = domain.NormalizeSymbol(sym)
		if sym == "" {
			continue
		}
		if _, ok := seen[sym]; ok {
			continue
		}
		seen[sym] = struct{}{}
		out = append(out, sym)
	}
	return out
}

// FetchHistorical returns every persisted snapshot. It never touches the cache or upstream.
func (s *MarketDataService) FetchHistorical(ctx context.Context) ([]domain.PriceSnapshot, error) {
	out, err := s.store.FindAll(ctx)
	if err != nil {
		s.log.Error("history_read_failed", zap.Error(err))
		return nil, &domain.PersistenceError{Op: "find_all", Err: err}
	}
	return out, nil
}

func (s *MarketDataService) FindBySymbol(ctx context.Context, symbol string) ([]domain.PriceSnapshot, error) {
	symbol = domain.NormalizeSymbol(symbol)
	if symbol == "" {
		return nil, fmt.Errorf("%w: symbol is required", ErrBadRequest)
	}
	out, err := s.store.FindBySymbol(ctx, symbol)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "find_by_symbol", Err: err}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: no snapshot for %s", ErrNotFound, symbol)
	}
	return out, nil
}

func (s *MarketDataService) FindByAssetType(ctx context.Context, assetType string) ([]domain.PriceSnapshot, error) {
	t, ok := domain.ParseAssetType(assetType)
	if !ok {
		return nil, fmt.Errorf("%w: unknown asset type %q", ErrBadRequest, assetType)
	}
	out, err := s.store.FindByAssetType(ctx, t)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "find_by_asset_type", Err: err}
	}
	return out, nil
}
