package memory

import (
	"context"
	"sort"
	"sync"

	"marketdata-aggregator/internal/application"
	"marketdata-aggregator/internal/domain"

	"github.com/google/uuid"
)

var _ application.SnapshotRepo = (*SnapshotRepo)(nil)

// SnapshotRepo keeps one snapshot per symbol. Saving an existing symbol
// overwrites it and keeps the original ID.
type SnapshotRepo struct {
	mu   sync.RWMutex
	rows map[string]domain.PriceSnapshot
}

func NewSnapshotRepo() *SnapshotRepo {
	return &SnapshotRepo{rows: make(map[string]domain.PriceSnapshot)}
}

func (r *SnapshotRepo) Save(_ context.Context, s domain.PriceSnapshot) (domain.PriceSnapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if prev, ok := r.rows[s.Symbol]; ok {
		s.ID = prev.ID
	} else {
		s.ID = uuid.NewString()
	}
	r.rows[s.Symbol] = s
	return s, nil
}

func (r *SnapshotRepo) FindAll(_ context.Context) ([]domain.PriceSnapshot, error) {
	return r.filter(func(domain.PriceSnapshot) bool { return true }), nil
}

func (r *SnapshotRepo) FindBySymbol(_ context.Context, symbol string) ([]domain.PriceSnapshot, error) {
	return r.filter(func(s domain.PriceSnapshot) bool { return s.Symbol == symbol }), nil
}

func (r *SnapshotRepo) FindByAssetType(_ context.Context, t domain.AssetType) ([]domain.PriceSnapshot, error) {
	return r.filter(func(s domain.PriceSnapshot) bool { return s.AssetType == t }), nil
}

// Ping always succeeds.
func (r *SnapshotRepo) Ping(context.Context) error { return nil }

func (r *SnapshotRepo) filter(keep func(domain.PriceSnapshot) bool) []domain.PriceSnapshot {
	r.mu.RLock()
	out := make([]domain.PriceSnapshot, 0, len(r.rows))
	for _, s := range r.rows {
		if keep(s) {
			out = append(out, s)
		}
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}
