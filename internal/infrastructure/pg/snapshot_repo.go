package pg

import (
	"context"
	"fmt"

	"marketdata-aggregator/internal/application"
	"marketdata-aggregator/internal/domain"
	"marketdata-aggregator/internal/infrastructure/logx"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var _ application.SnapshotRepo = (*SnapshotRepo)(nil)

type SnapshotRepo struct{ db *DB }

func NewSnapshotRepo(db *DB) *SnapshotRepo { return &SnapshotRepo{db: db} }

const selectSnapshots = `
        SELECT id::text, symbol, asset_type, price::text, currency, source, observed_at
        FROM market_data`

// Save upserts by symbol. The first insert assigns the ID; later saves for the
// same symbol overwrite every other column and keep it.
func (r *SnapshotRepo) Save(ctx context.Context, s domain.PriceSnapshot) (domain.PriceSnapshot, error) {
	const up = `
        INSERT INTO market_data(id, symbol, asset_type, price, currency, source, observed_at)
        VALUES ($1, $2, $3, $4::numeric, $5, $6, $7)
        ON CONFLICT (symbol) DO UPDATE
          SET asset_type=EXCLUDED.asset_type, price=EXCLUDED.price, currency=EXCLUDED.currency,
              source=EXCLUDED.source, observed_at=EXCLUDED.observed_at
        RETURNING id::text`
	log := logx.L().With(
		zap.String("repo", "market_data"),
		zap.String("operation", "Save"),
		zap.String("symbol", s.Symbol),
	)
	log.Debug("sql.exec_start")
	var id string
	err := r.db.Pool.QueryRow(ctx, up,
		uuid.NewString(), s.Symbol, string(s.AssetType), s.Price.String(), s.Currency, s.Source, s.Timestamp.UTC(),
	).Scan(&id)
	if err != nil {
		log.Error("sql.exec_failed", zap.Error(err))
		return domain.PriceSnapshot{}, err
	}
	s.ID = id
	log.Debug("sql.exec_success", zap.String("id", id))
	return s, nil
}

func (r *SnapshotRepo) FindAll(ctx context.Context) ([]domain.PriceSnapshot, error) {
	return r.query(ctx, "FindAll", selectSnapshots+` ORDER BY symbol`)
}

func (r *SnapshotRepo) FindBySymbol(ctx context.Context, symbol string) ([]domain.PriceSnapshot, error) {
	return r.query(ctx, "FindBySymbol", selectSnapshots+` WHERE symbol=$1 ORDER BY symbol`, symbol)
}

func (r *SnapshotRepo) FindByAssetType(ctx context.Context, t domain.AssetType) ([]domain.PriceSnapshot, error) {
	return r.query(ctx, "FindByAssetType", selectSnapshots+` WHERE asset_type=$1 ORDER BY symbol`, string(t))
}

func (r *SnapshotRepo) query(ctx context.Context, op, q string, args ...any) ([]domain.PriceSnapshot, error) {
	log := logx.L().With(zap.String("repo", "market_data"), zap.String("operation", op))
	log.Debug("sql.query_start")
	rows, err := r.db.Pool.Query(ctx, q, args...)
	if err != nil {
		log.Error("sql.query_failed", zap.Error(err))
		return nil, err
	}
	out, err := pgx.CollectRows(rows, scanSnapshot)
	if err != nil {
		log.Error("sql.scan_failed", zap.Error(err))
		return nil, err
	}
	log.Debug("sql.query_success", zap.Int("rows", len(out)))
	return out, nil
}

func scanSnapshot(row pgx.CollectableRow) (domain.PriceSnapshot, error) {
	var (
		s         domain.PriceSnapshot
		assetType string
		price     string
	)
	if err := row.Scan(&s.ID, &s.Symbol, &assetType, &price, &s.Currency, &s.Source, &s.Timestamp); err != nil {
		return domain.PriceSnapshot{}, err
	}
	d, err := decimal.NewFromString(price)
	if err != nil {
		return domain.PriceSnapshot{}, fmt.Errorf("price %q: %w", price, err)
	}
	s.AssetType = domain.AssetType(assetType)
	s.Price = d
	s.Timestamp = s.Timestamp.UTC()
	return s, nil
}
