package application

import (
	"context"
	"time"

	"marketdata-aggregator/internal/domain"
)

// PriceCache is a key/value store with per-entry TTL. Implementations must not
// serialize access across keys.
type PriceCache interface {
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// SnapshotRepo is the durable record. Save overwrites an existing row for the same symbol.
type SnapshotRepo interface {
	Save(ctx context.Context, s domain.PriceSnapshot) (domain.PriceSnapshot, error)
	FindAll(ctx context.Context) ([]domain.PriceSnapshot, error)
	FindBySymbol(ctx context.Context, symbol string) ([]domain.PriceSnapshot, error)
	FindByAssetType(ctx context.Context, t domain.AssetType) ([]domain.PriceSnapshot, error)
}

// PriceProvider queries the upstream price API. It reports failures as
// *domain.InvalidSymbolError or *domain.UpstreamUnavailableError.
type PriceProvider interface {
	Fetch(ctx context.Context, symbols []string, currency string) ([]domain.RawPriceRecord, error)
}

// Refresher is what the scheduler needs from the service.
type Refresher interface {
	FetchMultiple(ctx context.Context, symbols []string, currency string) []FetchResult
}
