package signer

import (
	"context"
	"strings"

	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"github/chapool/go-accounts/internal/apperrors"
	"github/chapool/go-accounts/internal/metrics"
	"github/chapool/go-accounts/internal/util"
	"github/chapool/go-accounts/internal/wallet/account"
	"github/chapool/go-accounts/internal/wallet/chains"
	"github/chapool/go-accounts/internal/wallet/delegation"
	"github/chapool/go-accounts/internal/wallet/seed"
)

// signingAccountIndex is the fixed derivation index signing keys live at.
// Delegation records are created for addresses derived at this index.
const signingAccountIndex = 0

type service struct {
	seedManager seed.Manager
	delegations delegation.Service
	params      account.Params
	metrics     *metrics.Service
}

// NewService creates the signing adapter.
//
//nolint:ireturn // Returning interface is intentional for dependency injection
func NewService(seedManager seed.Manager, delegations delegation.Service, params account.Params, metricsService *metrics.Service) Service {
	return &service{
		seedManager: seedManager,
		delegations: delegations,
		params:      params,
		metrics:     metricsService,
	}
}

// authorize resolves the numeric chain ID to an internal chain config and
// requires a delegation record for the lowercased address. It runs to
// completion before any seed retrieval so unauthorized requests never cause
// secret material to be materialized.
func (s *service) authorize(ctx context.Context, userID string, chainID int64, address string) (chains.Config, error) {
	cfg, err := chains.ConfigForChainID(chainID)
	if err != nil {
		return chains.Config{}, err
	}

	ok, err := s.delegations.Has(ctx, userID, chainID, strings.ToLower(address))
	if err != nil {
		return chains.Config{}, apperrors.Wrap(err, apperrors.KindInternal, "failed to verify ownership")
	}
	if !ok {
		return chains.Config{}, apperrors.Newf(apperrors.KindOwnershipMismatch, "no delegation record for address %s on chain %d", strings.ToLower(address), chainID)
	}

	return cfg, nil
}

func (s *service) SignTransaction(ctx context.Context, userID string, chainID int64, address string, req *TransactionRequest) (result *SignedTransaction, err error) {
	defer func() { s.observe("transaction", err) }()

	cfg, err := s.authorize(ctx, userID, chainID, address)
	if err != nil {
		return nil, err
	}

	seedBuf, err := s.seedManager.GetSeed(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer seedBuf.Wipe()

	privateKey, wipeKey, err := account.ECDSAKey(seedBuf, signingAccountIndex)
	if err != nil {
		return nil, err
	}
	defer wipeKey()

	if err := verifyKeyControlsAddress(privateKey, address); err != nil {
		return nil, err
	}

	signed, err := s.signEIP1559Transaction(privateKey, chainID, req)
	if err != nil {
		return nil, err
	}

	util.LogFromContext(ctx).Info().
		Str("user_id", userID).
		Int64("chain_id", chainID).
		Str("chain", cfg.Key).
		Str("tx_hash", signed.TxHash).
		Msg("Transaction signed")

	return signed, nil
}

func (s *service) SignMessage(ctx context.Context, userID string, chainID int64, address string, message []byte) (signature string, err error) {
	defer func() { s.observe("message", err) }()

	if _, err = s.authorize(ctx, userID, chainID, address); err != nil {
		return "", err
	}

	seedBuf, err := s.seedManager.GetSeed(ctx, userID)
	if err != nil {
		return "", err
	}
	defer seedBuf.Wipe()

	privateKey, wipeKey, err := account.ECDSAKey(seedBuf, signingAccountIndex)
	if err != nil {
		return "", err
	}
	defer wipeKey()

	if err := verifyKeyControlsAddress(privateKey, address); err != nil {
		return "", err
	}

	return signPersonalMessage(privateKey, message)
}

func (s *service) SignTypedData(ctx context.Context, userID string, chainID int64, address string, typedData apitypes.TypedData) (signature string, err error) {
	defer func() { s.observe("typed_data", err) }()

	if _, err = s.authorize(ctx, userID, chainID, address); err != nil {
		return "", err
	}

	seedBuf, err := s.seedManager.GetSeed(ctx, userID)
	if err != nil {
		return "", err
	}
	defer seedBuf.Wipe()

	privateKey, wipeKey, err := account.ECDSAKey(seedBuf, signingAccountIndex)
	if err != nil {
		return "", err
	}
	defer wipeKey()

	if err := verifyKeyControlsAddress(privateKey, address); err != nil {
		return "", err
	}

	return signTypedData(privateKey, typedData)
}

func (s *service) observe(operation string, err error) {
	result := "ok"
	if err != nil {
		result = string(apperrors.KindOf(err))
	}
	s.metrics.ObserveSignRequest(operation, result)
}
