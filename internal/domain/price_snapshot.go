package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const cacheKeyPrefix = "crypto"

// PriceSnapshot is one persisted price observation. The store keeps one per symbol.
type PriceSnapshot struct {
	ID        string
	Symbol    string
	AssetType AssetType
	Price     decimal.Decimal
	Currency  string
	Source    string
	Timestamp time.Time
}

func (s PriceSnapshot) Validate() error {
	switch {
	case s.Symbol == "":
		return invalidSnapshot("empty symbol")
	case s.Currency == "":
		return invalidSnapshot("empty currency")
	case s.Price.IsNegative():
		return invalidSnapshot("negative price " + s.Price.String())
	}
	return nil
}

// NormalizeSymbol trims and lower-cases an upstream asset id or currency code.
func NormalizeSymbol(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// CacheKey builds the namespaced cache key crypto:<symbol>:<currency>.
func CacheKey(symbol, currency string) string {
	return cacheKeyPrefix + ":" + symbol + ":" + currency
}
