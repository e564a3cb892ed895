// Package account derives chain accounts from seed material. Four account
// models live behind one Factory contract: plain EOAs, ERC-4337 smart
// accounts, EIP-7702 delegated accounts and Substrate SR25519 accounts.
package account

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github/chapool/go-accounts/internal/apperrors"
	"github/chapool/go-accounts/internal/wallet/secret"
)

// Type tags the supported account models. The set is closed: dispatch is an
// explicit switch and an unknown tag is an error, never a fallthrough.
type Type string

const (
	// TypeEOA is a plain externally-owned EVM account.
	TypeEOA Type = "eoa"
	// TypeErc4337 is an ERC-4337 smart contract account.
	TypeErc4337 Type = "erc4337"
	// TypeEip7702 is an EOA with EIP-7702 delegated execution.
	TypeEip7702 Type = "eip7702"
	// TypeSubstrate is a Substrate SR25519 account.
	TypeSubstrate Type = "substrate"
)

// Account is the derived value object. It carries no secret material, is
// created fresh on every derivation and is immutable once returned; for
// fixed inputs derivation always yields an identical Account.
type Account struct {
	Address      string
	PublicKey    string
	Chain        string
	AccountType  Type
	AccountIndex int
}

// Factory turns (seed, chain, account index) into a ready-to-use account.
type Factory interface {
	DeriveAccount(ctx context.Context, seedBuf *secret.Buffer, chainKey string, accountIndex int, useTestnet bool) (*Account, error)
}

// Params carries the contract addresses the smart-account factories are
// parameterized with.
type Params struct {
	// EntryPointAddress is the ERC-4337 entry point contract.
	EntryPointAddress common.Address
	// FactoryAddress is the ERC-4337 account factory contract.
	FactoryAddress common.Address
	// DelegateAddress is the EIP-7702 delegate contract.
	DelegateAddress common.Address
}

// FactoryFor returns the factory for an account type.
//
//nolint:ireturn // Polymorphic dispatch over the closed type set
func FactoryFor(accountType Type, params Params) (Factory, error) {
	switch accountType {
	case TypeEOA:
		return &eoaFactory{}, nil
	case TypeErc4337:
		return &erc4337Factory{params: params}, nil
	case TypeEip7702:
		return &eip7702Factory{params: params}, nil
	case TypeSubstrate:
		return &substrateFactory{}, nil
	default:
		return nil, apperrors.Newf(apperrors.KindUnsupportedChain, "no factory for account type %q", accountType)
	}
}

// ParseType validates a raw account-type tag against the closed set.
func ParseType(raw string) (Type, error) {
	switch Type(raw) {
	case TypeEOA, TypeErc4337, TypeEip7702, TypeSubstrate:
		return Type(raw), nil
	default:
		return "", apperrors.Newf(apperrors.KindUnsupportedChain, "unknown account type %q", raw)
	}
}
