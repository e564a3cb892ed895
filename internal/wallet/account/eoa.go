package account

import (
	"context"

	"github.com/ethereum/go-ethereum/crypto"
	"github/chapool/go-accounts/internal/apperrors"
	"github/chapool/go-accounts/internal/wallet/addrcheck"
	"github/chapool/go-accounts/internal/wallet/chains"
	"github/chapool/go-accounts/internal/wallet/secret"
)

// eoaFactory derives plain externally-owned EVM accounts. No on-chain state
// is involved; the address is a pure function of the seed and index.
type eoaFactory struct{}

func (f *eoaFactory) DeriveAccount(_ context.Context, seedBuf *secret.Buffer, chainKey string, accountIndex int, useTestnet bool) (*Account, error) {
	cfg, err := chains.Get(chainKey, useTestnet)
	if err != nil {
		return nil, err
	}
	if cfg.Kind != chains.KindEVM {
		return nil, apperrors.Newf(apperrors.KindUnsupportedChain, "chain %q is not an EVM chain", chainKey)
	}

	privateKey, wipe, err := ECDSAKey(seedBuf, accountIndex)
	if err != nil {
		return nil, err
	}
	defer wipe()

	address := crypto.PubkeyToAddress(privateKey.PublicKey)

	// Post-condition, not input validation: a malformed result here is a
	// derivation defect.
	if !addrcheck.ValidateEVM(address.Hex()) {
		return nil, apperrors.New(apperrors.KindAddressValidation, "derived EVM address failed checksum validation").
			WithDetail("chain", cfg.Key).
			WithDetail("account_index", accountIndex)
	}

	return &Account{
		Address:      address.Hex(),
		PublicKey:    compressedPublicKeyHex(privateKey),
		Chain:        cfg.Key,
		AccountType:  TypeEOA,
		AccountIndex: accountIndex,
	}, nil
}
