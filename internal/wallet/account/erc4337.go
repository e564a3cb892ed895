package account

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github/chapool/go-accounts/internal/apperrors"
	"github/chapool/go-accounts/internal/wallet/addrcheck"
	"github/chapool/go-accounts/internal/wallet/chains"
	"github/chapool/go-accounts/internal/wallet/secret"
)

// erc4337Factory derives counterfactual smart-account addresses. The
// account exists at its address before any deployment; flipping the
// persisted deployed flag is the confirmation caller's job, never ours.
type erc4337Factory struct {
	params Params
}

func (f *erc4337Factory) DeriveAccount(_ context.Context, seedBuf *secret.Buffer, chainKey string, accountIndex int, useTestnet bool) (*Account, error) {
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

	owner := crypto.PubkeyToAddress(privateKey.PublicKey)
	address := counterfactualAddress(f.params.FactoryAddress, f.params.EntryPointAddress, owner, accountIndex)

	if !addrcheck.ValidateEVM(address.Hex()) {
		return nil, apperrors.New(apperrors.KindAddressValidation, "derived smart-account address failed checksum validation").
			WithDetail("chain", cfg.Key).
			WithDetail("account_index", accountIndex)
	}

	return &Account{
		Address:      address.Hex(),
		PublicKey:    compressedPublicKeyHex(privateKey),
		Chain:        cfg.Key,
		AccountType:  TypeErc4337,
		AccountIndex: accountIndex,
	}, nil
}

// counterfactualAddress computes the deterministic CREATE2 address the
// factory contract will deploy the account to: the salt is the account
// index, the init-code hash commits to the entry point and the owner key.
func counterfactualAddress(factory common.Address, entryPoint common.Address, owner common.Address, accountIndex int) common.Address {
	var salt [32]byte
	new(big.Int).SetInt64(int64(accountIndex)).FillBytes(salt[:])

	initCodeHash := crypto.Keccak256(entryPoint.Bytes(), owner.Bytes(), salt[:])

	return crypto.CreateAddress2(factory, salt, initCodeHash)
}
