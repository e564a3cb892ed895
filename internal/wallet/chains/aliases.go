package chains

import "strings"

// chainAliases normalizes chain identifiers as reported by external
// providers (balance aggregators and the like) to our internal keys.
// This is static configuration only; no derivation logic depends on it.
//
//nolint:gochecknoglobals
var chainAliases = map[string]string{
	"eth":                 "ethereum",
	"mainnet":             "ethereum",
	"homestead":           "ethereum",
	"matic":               "polygon",
	"polygon-pos":         "polygon",
	"binance-smart-chain": "bsc",
	"bnb":                 "bsc",
	"arbitrum-one":        "arbitrum",
	"op":                  "optimism",
	"optimistic-ethereum": "optimism",
	"dot":                 "polkadot",
	"ksm":                 "kusama",
}

// ResolveAlias maps an externally reported chain identifier to an internal
// chain key. Identifiers that are already internal keys (possibly carrying
// an account-model suffix) pass through Normalize unchanged.
func ResolveAlias(raw string) string {
	key := strings.ToLower(strings.TrimSpace(raw))
	if mapped, ok := chainAliases[key]; ok {
		return mapped
	}
	return Normalize(key)
}
