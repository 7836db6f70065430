package domain

import "strings"

type AssetType string

const (
	AssetTypeCrypto    AssetType = "CRYPTO"
	AssetTypeStock     AssetType = "STOCK"
	AssetTypeForex     AssetType = "FOREX"
	AssetTypeCommodity AssetType = "COMMODITY"
)

var knownAssetTypes = map[AssetType]bool{
	AssetTypeCrypto:    true,
	AssetTypeStock:     true,
	AssetTypeForex:     true,
	AssetTypeCommodity: true,
}

// ParseAssetType accepts any letter case and reports whether the value is a known category.
func ParseAssetType(s string) (AssetType, bool) {
	t := AssetType(strings.ToUpper(strings.TrimSpace(s)))
	return t, knownAssetTypes[t]
}
