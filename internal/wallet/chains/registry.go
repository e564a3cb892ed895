// Package chains holds the static registry of supported chains. The
// registry is immutable, loaded at init and queried without I/O.
package chains

import (
	"strings"

	"github/chapool/go-accounts/internal/apperrors"
)

// Kind discriminates the two supported chain families.
type Kind string

const (
	// KindEVM marks chains addressed by a numeric chain ID.
	KindEVM Kind = "evm"
	// KindSubstrate marks chains addressed by an SS58 prefix.
	KindSubstrate Kind = "substrate"
)

// Config describes one supported chain. Exactly one Config exists per
// (Key, Testnet) pair.
type Config struct {
	Key         string
	Kind        Kind
	DisplayName string

	// ChainID is the CAIP-2-style numeric ID. EVM only.
	ChainID int64

	// SS58Prefix is the address network prefix. Substrate only.
	SS58Prefix uint16

	Testnet  bool
	Decimals uint8
}

//nolint:gochecknoglobals // static registry, written once at init
var registry = []Config{
	{Key: "ethereum", Kind: KindEVM, DisplayName: "Ethereum", ChainID: 1, Decimals: 18},
	{Key: "ethereum", Kind: KindEVM, DisplayName: "Ethereum Sepolia", ChainID: 11155111, Decimals: 18, Testnet: true},
	{Key: "base", Kind: KindEVM, DisplayName: "Base", ChainID: 8453, Decimals: 18},
	{Key: "base", Kind: KindEVM, DisplayName: "Base Sepolia", ChainID: 84532, Decimals: 18, Testnet: true},
	{Key: "polygon", Kind: KindEVM, DisplayName: "Polygon", ChainID: 137, Decimals: 18},
	{Key: "polygon", Kind: KindEVM, DisplayName: "Polygon Amoy", ChainID: 80002, Decimals: 18, Testnet: true},
	{Key: "arbitrum", Kind: KindEVM, DisplayName: "Arbitrum One", ChainID: 42161, Decimals: 18},
	{Key: "arbitrum", Kind: KindEVM, DisplayName: "Arbitrum Sepolia", ChainID: 421614, Decimals: 18, Testnet: true},
	{Key: "optimism", Kind: KindEVM, DisplayName: "OP Mainnet", ChainID: 10, Decimals: 18},
	{Key: "optimism", Kind: KindEVM, DisplayName: "OP Sepolia", ChainID: 11155420, Decimals: 18, Testnet: true},
	{Key: "bsc", Kind: KindEVM, DisplayName: "BNB Smart Chain", ChainID: 56, Decimals: 18},
	{Key: "bsc", Kind: KindEVM, DisplayName: "BNB Smart Chain Testnet", ChainID: 97, Decimals: 18, Testnet: true},

	{Key: "polkadot", Kind: KindSubstrate, DisplayName: "Polkadot", SS58Prefix: 0, Decimals: 10},
	{Key: "polkadot", Kind: KindSubstrate, DisplayName: "Westend", SS58Prefix: 42, Decimals: 12, Testnet: true},
	{Key: "kusama", Kind: KindSubstrate, DisplayName: "Kusama", SS58Prefix: 2, Decimals: 12},
	{Key: "kusama", Kind: KindSubstrate, DisplayName: "Kusama Testnet", SS58Prefix: 42, Decimals: 12, Testnet: true},
	{Key: "astar", Kind: KindSubstrate, DisplayName: "Astar", SS58Prefix: 5, Decimals: 18},
	{Key: "astar", Kind: KindSubstrate, DisplayName: "Shibuya", SS58Prefix: 5, Decimals: 18, Testnet: true},
}

//nolint:gochecknoglobals // derived lookup indexes over the static registry
var (
	byKey     map[string]map[bool]Config
	byChainID map[int64]Config
)

//nolint:gochecknoinits // index construction over a compile-time table
func init() {
	byKey = make(map[string]map[bool]Config, len(registry))
	byChainID = make(map[int64]Config, len(registry))

	for _, cfg := range registry {
		variants, ok := byKey[cfg.Key]
		if !ok {
			variants = make(map[bool]Config, 2)
			byKey[cfg.Key] = variants
		}
		if _, dup := variants[cfg.Testnet]; dup {
			panic("chains: duplicate config for " + cfg.Key)
		}
		variants[cfg.Testnet] = cfg

		if cfg.Kind == KindEVM {
			byChainID[cfg.ChainID] = cfg
		}
	}
}

// accountModelSuffixes are stripped by Normalize. The same base chain is
// addressed under different names depending on the account model in use.
//
//nolint:gochecknoglobals
var accountModelSuffixes = []string{"erc4337", "eip7702", "smartaccount"}

// Normalize lowercases rawKey and strips account-model suffixes to recover
// the underlying chain family, e.g. "baseErc4337" -> "base".
func Normalize(rawKey string) string {
	key := strings.ToLower(strings.TrimSpace(rawKey))
	for _, suffix := range accountModelSuffixes {
		if trimmed, ok := strings.CutSuffix(key, suffix); ok && trimmed != "" {
			return trimmed
		}
	}
	return key
}

// Get returns the config for a chain key, normalized first. Unknown keys
// fail with an unsupported-chain error.
func Get(chainKey string, useTestnet bool) (Config, error) {
	variants, ok := byKey[Normalize(chainKey)]
	if !ok {
		return Config{}, apperrors.Newf(apperrors.KindUnsupportedChain, "unsupported chain %q", chainKey)
	}

	cfg, ok := variants[useTestnet]
	if !ok {
		return Config{}, apperrors.Newf(apperrors.KindUnsupportedChain, "chain %q has no testnet=%v variant", chainKey, useTestnet)
	}

	return cfg, nil
}

// ConfigForChainID resolves a numeric EVM chain ID to its config. Chain IDs
// are globally unique, so the testnet variant is implied by the ID itself.
func ConfigForChainID(chainID int64) (Config, error) {
	cfg, ok := byChainID[chainID]
	if !ok {
		return Config{}, apperrors.Newf(apperrors.KindUnsupportedChain, "unsupported chain id %d", chainID)
	}
	return cfg, nil
}

// IsSupported reports whether the normalized key is registered at all.
func IsSupported(chainKey string) bool {
	_, ok := byKey[Normalize(chainKey)]
	return ok
}

// EVMKeys returns the keys of all registered EVM chains (mainnet variants).
func EVMKeys() []string {
	keys := make([]string, 0, len(byKey))
	for key, variants := range byKey {
		if cfg, ok := variants[false]; ok && cfg.Kind == KindEVM {
			keys = append(keys, key)
		}
	}
	return keys
}
