package account

import (
	"context"
	"crypto/ecdsa"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	"github/chapool/go-accounts/internal/apperrors"
	"github/chapool/go-accounts/internal/wallet/addrcheck"
	"github/chapool/go-accounts/internal/wallet/chains"
	"github/chapool/go-accounts/internal/wallet/secret"
)

// eip7702Factory derives delegated accounts. Under EIP-7702 the EOA itself
// becomes the smart account: its address is the account address, and the
// delegate contract supplies the code it executes.
type eip7702Factory struct {
	params Params
}

func (f *eip7702Factory) DeriveAccount(_ context.Context, seedBuf *secret.Buffer, chainKey string, accountIndex int, useTestnet bool) (*Account, error) {
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

	if !addrcheck.ValidateEVM(address.Hex()) {
		return nil, apperrors.New(apperrors.KindAddressValidation, "derived delegated-account address failed checksum validation").
			WithDetail("chain", cfg.Key).
			WithDetail("account_index", accountIndex)
	}

	return &Account{
		Address:      address.Hex(),
		PublicKey:    compressedPublicKeyHex(privateKey),
		Chain:        cfg.Key,
		AccountType:  TypeEip7702,
		AccountIndex: accountIndex,
	}, nil
}

// Delegate returns the configured delegate contract address.
func (f *eip7702Factory) Delegate() common.Address {
	return f.params.DelegateAddress
}

// SignDelegationAuthorization signs the EIP-7702 authorization tuple that
// designates the delegate contract for the given chain and nonce.
func SignDelegationAuthorization(privateKey *ecdsa.PrivateKey, chainID int64, delegate common.Address, nonce uint64) (types.SetCodeAuthorization, error) {
	auth := types.SetCodeAuthorization{
		ChainID: *uint256.NewInt(uint64(chainID)),
		Address: delegate,
		Nonce:   nonce,
	}

	signed, err := types.SignSetCode(privateKey, auth)
	if err != nil {
		return types.SetCodeAuthorization{}, errors.Wrap(err, "failed to sign delegation authorization")
	}

	return signed, nil
}
