package provider

import (
	"context"
	"time"

	"marketdata-aggregator/internal/application"
	"marketdata-aggregator/internal/domain"

	"github.com/shopspring/decimal"
)

// Ensure Fake implements application.PriceProvider.
var _ application.PriceProvider = (*Fake)(nil)

// Fake answers every symbol with the same price. Used with PROVIDER=fake.
type Fake struct {
	price decimal.Decimal
}

func NewFake(price decimal.Decimal) *Fake { return &Fake{price: price} }

func (f *Fake) Fetch(_ context.Context, symbols []string, _ string) ([]domain.RawPriceRecord, error) {
	now := time.Now().UTC()
	out := make([]domain.RawPriceRecord, 0, len(symbols))
	for _, s := range symbols {
		out = append(out, domain.RawPriceRecord{
			ID:           s,
			Name:         s,
			CurrentPrice: f.price,
			LastUpdated:  &now,
		})
	}
	return out, nil
}
