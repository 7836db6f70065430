package application

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"marketdata-aggregator/internal/domain"
)

var (
	ErrRepo  = errors.New("repo error")
	ErrCache = errors.New("cache error")
)

type fakeCache struct {
	mu     sync.Mutex
	data   map[string][]byte
	ttls   map[string]time.Duration
	gets   int
	sets   int
	getErr error
	setErr error
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (f *fakeCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets++
	if f.getErr != nil {
		return nil, false, f.getErr
	}
	v, ok := f.data[key]
	return v, ok, nil
}

func (f *fakeCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sets++
	if f.setErr != nil {
		return f.setErr
	}
	f.data[key] = value
	f.ttls[key] = ttl
	return nil
}

func (f *fakeCache) counts() (gets, sets int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.gets, f.sets
}

type fakeStore struct {
	mu     sync.Mutex
	rows   map[string]domain.PriceSnapshot
	saves  int
	reads  int
	nextID int
	err    error
}

func newFakeStore() *fakeStore { return &fakeStore{rows: map[string]domain.PriceSnapshot{}} }

func (f *fakeStore) Save(_ context.Context, s domain.PriceSnapshot) (domain.PriceSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saves++
	if f.err != nil {
		return domain.PriceSnapshot{}, f.err
	}
	if prev, ok := f.rows[s.Symbol]; ok {
		s.ID = prev.ID
	} else {
		f.nextID++
		s.ID = fmt.Sprintf("snap-%d", f.nextID)
	}
	f.rows[s.Symbol] = s
	return s, nil
}

func (f *fakeStore) FindAll(context.Context) ([]domain.PriceSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads++
	if f.err != nil {
		return nil, f.err
	}
	out := make([]domain.PriceSnapshot, 0, len(f.rows))
	for _, s := range f.rows {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out, nil
}

func (f *fakeStore) FindBySymbol(_ context.Context, symbol string) ([]domain.PriceSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads++
	if f.err != nil {
		return nil, f.err
	}
	if s, ok := f.rows[symbol]; ok {
		return []domain.PriceSnapshot{s}, nil
	}
	return nil, nil
}

func (f *fakeStore) FindByAssetType(_ context.Context, t domain.AssetType) ([]domain.PriceSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads++
	if f.err != nil {
		return nil, f.err
	}
	var out []domain.PriceSnapshot
	for _, s := range f.rows {
		if s.AssetType == t {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeStore) saveCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.saves
}

type fakeProvider struct {
	mu      sync.Mutex
	records map[string]domain.RawPriceRecord
	errs    map[string]error
	err     error
	calls   int

	// block, when set, is called before answering; used to hold calls in flight.
	block func(ctx context.Context)
}

func (f *fakeProvider) Fetch(ctx context.Context, symbols []string, _ string) ([]domain.RawPriceRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	f.calls++
	block := f.block
	f.mu.Unlock()
	if block != nil {
		block(ctx)
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	var out []domain.RawPriceRecord
	for _, s := range symbols {
		if err, ok := f.errs[s]; ok {
			return nil, err
		}
		if r, ok := f.records[s]; ok {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeProvider) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeClock struct{ t time.Time }

func (f fakeClock) Now() time.Time { return f.t }

// waiting reports how many callers are currently joined on key.
func (g *flightGroup) waiting(key string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	if c, ok := g.calls[key]; ok {
		return c.waiters
	}
	return 0
}
