// Package wallet is the account engine facade: deterministic multi-chain
// account derivation on top of the seed gate, the account factories and the
// persisted address cache.
package wallet

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"github/chapool/go-accounts/internal/apperrors"
	"github/chapool/go-accounts/internal/metrics"
	"github/chapool/go-accounts/internal/util"
	"github/chapool/go-accounts/internal/wallet/account"
	"github/chapool/go-accounts/internal/wallet/addresscache"
	"github/chapool/go-accounts/internal/wallet/chains"
	"github/chapool/go-accounts/internal/wallet/seed"
	"github/chapool/go-accounts/internal/wallet/smartaccount"
)

// Service provides account creation and cached address access.
type Service interface {
	// CreateAccount derives the account for (userID, chain, accountType,
	// accountIndex). Derivation is pure: repeated calls yield identical
	// accounts. The address cache is refreshed when the derived value
	// differs from the cached one.
	CreateAccount(ctx context.Context, userID string, chainKey string, accountType account.Type, accountIndex int, useTestnet bool) (*account.Account, error)

	// GetCachedAddress returns the cached address for (userID, chain)
	// without deriving. The cache is an accelerator, never a source of
	// truth.
	GetCachedAddress(ctx context.Context, userID string, chainKey string) (string, bool, error)

	// SaveAddresses applies a chain->address mapping atomically.
	SaveAddresses(ctx context.Context, userID string, addresses map[string]string) error

	// ClearAddresses drops all cached rows for a user, used after
	// credential migration.
	ClearAddresses(ctx context.Context, userID string) error
}

type service struct {
	seedManager   seed.Manager
	cache         addresscache.Service
	smartAccounts smartaccount.Service
	params        account.Params
	metrics       *metrics.Service
}

// NewService creates a new account engine service. smartAccounts may be nil
// when no smart-account registry is wired.
//
//nolint:ireturn // Returning interface is intentional for dependency injection
func NewService(seedManager seed.Manager, cache addresscache.Service, smartAccounts smartaccount.Service, params account.Params, metricsService *metrics.Service) (Service, error) {
	return &service{
		seedManager:   seedManager,
		cache:         cache,
		smartAccounts: smartAccounts,
		params:        params,
		metrics:       metricsService,
	}, nil
}

func (s *service) CreateAccount(ctx context.Context, userID string, chainKey string, accountType account.Type, accountIndex int, useTestnet bool) (*account.Account, error) {
	log := util.LogFromContext(ctx).With().
		Str("user_id", userID).
		Str("chain", chainKey).
		Str("account_type", string(accountType)).
		Int("account_index", accountIndex).
		Logger()

	// All request validation happens before the seed gate is touched:
	// unsupported chains, unknown account types and bad indices must never
	// cause secret material to be materialized.
	if accountIndex < 0 {
		return nil, apperrors.Newf(apperrors.KindInvalidIndex, "account index %d out of range", accountIndex)
	}

	cfg, err := chains.Get(chainKey, useTestnet)
	if err != nil {
		return nil, err
	}

	factory, err := account.FactoryFor(accountType, s.params)
	if err != nil {
		return nil, err
	}

	seedBuf, err := s.seedManager.GetSeed(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer seedBuf.Wipe()

	derived, err := factory.DeriveAccount(ctx, seedBuf, chainKey, accountIndex, useTestnet)
	if err != nil {
		log.Error().Err(err).Msg("Account derivation failed")
		return nil, err
	}

	s.metrics.ObserveDerivation(derived.Chain, string(derived.AccountType))

	if derived.AccountType == account.TypeErc4337 && s.smartAccounts != nil {
		record := &smartaccount.Record{
			UserID:            userID,
			ChainID:           cfg.ChainID,
			Address:           derived.Address,
			EntryPointAddress: s.params.EntryPointAddress.Hex(),
			FactoryAddress:    s.params.FactoryAddress.Hex(),
		}
		if err := s.smartAccounts.Upsert(ctx, record); err != nil {
			log.Error().Err(err).Msg("Failed to store smart-account record")
			return nil, err
		}
	}

	if err := s.refreshCache(ctx, userID, chainKey, derived.Address); err != nil {
		// The account itself is valid; a cache refresh failure only costs
		// the next read a re-derivation.
		log.Warn().Err(err).Msg("Failed to refresh address cache")
	}

	log.Info().Str("address", derived.Address).Msg("Account derived")

	return derived, nil
}

// refreshCache upserts the cache row when the derived address differs. Rows
// are keyed by the raw requested chain key (lowercased): the same base
// chain yields different addresses per account model, and the model is
// encoded in the key suffix.
func (s *service) refreshCache(ctx context.Context, userID string, chainKey string, address string) error {
	cacheKey := strings.ToLower(strings.TrimSpace(chainKey))

	cached, ok, err := s.cache.Get(ctx, userID, cacheKey)
	if err != nil {
		return err
	}
	if ok && cached == address {
		return nil
	}

	return s.cache.Save(ctx, userID, cacheKey, address)
}

func (s *service) GetCachedAddress(ctx context.Context, userID string, chainKey string) (string, bool, error) {
	address, ok, err := s.cache.Get(ctx, userID, strings.ToLower(strings.TrimSpace(chainKey)))
	if err != nil {
		return "", false, errors.Wrap(err, "failed to read address cache")
	}

	if ok {
		s.metrics.ObserveCacheLookup("hit")
	} else {
		s.metrics.ObserveCacheLookup("miss")
	}

	return address, ok, nil
}

func (s *service) SaveAddresses(ctx context.Context, userID string, addresses map[string]string) error {
	normalized := make(map[string]string, len(addresses))
	for chainKey, address := range addresses {
		normalized[strings.ToLower(strings.TrimSpace(chainKey))] = address
	}

	return s.cache.SaveAll(ctx, userID, normalized)
}

func (s *service) ClearAddresses(ctx context.Context, userID string) error {
	return s.cache.Clear(ctx, userID)
}
