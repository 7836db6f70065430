package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// RawPriceRecord mirrors one element of the CoinGecko /coins/markets response.
// It is also the value stored in the price cache.
type RawPriceRecord struct {
	ID                       string              `json:"id"`
	Symbol                   string              `json:"symbol"`
	Name                     string              `json:"name"`
	CurrentPrice             decimal.Decimal     `json:"current_price"`
	MarketCap                decimal.NullDecimal `json:"market_cap"`
	TotalVolume              decimal.NullDecimal `json:"total_volume"`
	High24h                  decimal.NullDecimal `json:"high_24h"`
	Low24h                   decimal.NullDecimal `json:"low_24h"`
	PriceChangePercentage24h decimal.NullDecimal `json:"price_change_percentage_24h"`
	LastUpdated              *time.Time          `json:"last_updated,omitempty"`
}

// ToSnapshot converts the record into an unsaved snapshot. now is used when the
// upstream did not report an observation time.
func (r RawPriceRecord) ToSnapshot(currency, source string, now time.Time) PriceSnapshot {
	ts := now
	if r.LastUpdated != nil && !r.LastUpdated.IsZero() {
		ts = *r.LastUpdated
	}
	return PriceSnapshot{
		Symbol:    r.ID,
		AssetType: AssetTypeCrypto,
		Price:     r.CurrentPrice,
		Currency:  currency,
		Source:    source,
		Timestamp: ts.UTC(),
	}
}
