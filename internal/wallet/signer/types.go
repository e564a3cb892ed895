package signer

import (
	"context"

	"github.com/ethereum/go-ethereum/signer/core/apitypes"
)

// Service is the ownership-gated signing adapter. Every operation verifies
// the delegation record for the claimed (user, chain, address) before any
// secret material is fetched; that ordering is a hard requirement, not an
// optimization.
type Service interface {
	// SignTransaction signs an EIP-1559 transaction through the delegated
	// smart-account path.
	SignTransaction(ctx context.Context, userID string, chainID int64, address string, req *TransactionRequest) (*SignedTransaction, error)

	// SignMessage signs an EIP-191 personal message. Signature authority
	// for personal signing rests with the controlling key, so this derives
	// the underlying EOA directly, not the smart-account wrapper; the
	// ownership check stays keyed on the delegated address, which under
	// EIP-7702 is that same EOA.
	SignMessage(ctx context.Context, userID string, chainID int64, address string, message []byte) (string, error)

	// SignTypedData signs EIP-712 typed data with the controlling EOA key.
	SignTypedData(ctx context.Context, userID string, chainID int64, address string, typedData apitypes.TypedData) (string, error)
}

// TransactionRequest describes an EIP-1559 transaction to sign. Amount
// fields travel as decimal strings to avoid precision loss.
type TransactionRequest struct {
	To                   string
	Value                string
	GasLimit             uint64
	MaxFeePerGas         string
	MaxPriorityFeePerGas string
	Nonce                uint64
	Data                 []byte

	// AuthorizationNonce, when set, attaches a signed EIP-7702 SetCode
	// authorization designating the configured delegate contract, turning
	// the payload into a set-code transaction.
	AuthorizationNonce *uint64
}

// SignedTransaction is the signing result.
type SignedTransaction struct {
	RawTransaction []byte
	TxHash         string
}
