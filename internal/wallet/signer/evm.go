package signer

import (
	"crypto/ecdsa"
	"encoding/hex"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	"github/chapool/go-accounts/internal/apperrors"
	"github/chapool/go-accounts/internal/wallet/account"
)

const base10 = 10

// verifyKeyControlsAddress asserts the derived key matches the claimed
// address. Under EIP-7702 the delegated account address is the EOA address,
// so a mismatch means the delegation record and the derivation disagree.
func verifyKeyControlsAddress(privateKey *ecdsa.PrivateKey, address string) error {
	derived := crypto.PubkeyToAddress(privateKey.PublicKey)
	if !strings.EqualFold(derived.Hex(), address) {
		return apperrors.New(apperrors.KindOwnershipMismatch, "claimed address does not match derived signing key").
			WithDetail("claimed", strings.ToLower(address)).
			WithDetail("derived", strings.ToLower(derived.Hex()))
	}
	return nil
}

// signEIP1559Transaction builds and signs the requested transaction. With an
// authorization nonce present the payload becomes an EIP-7702 set-code
// transaction carrying a freshly signed delegation designation.
func (s *service) signEIP1559Transaction(privateKey *ecdsa.PrivateKey, chainID int64, req *TransactionRequest) (*SignedTransaction, error) {
	if !common.IsHexAddress(req.To) {
		return nil, errors.Errorf("invalid recipient address: %s", req.To)
	}
	toAddress := common.HexToAddress(req.To)

	value, ok := new(big.Int).SetString(req.Value, base10)
	if !ok {
		return nil, errors.New("invalid value format")
	}

	maxFeePerGas, ok := new(big.Int).SetString(req.MaxFeePerGas, base10)
	if !ok {
		return nil, errors.New("invalid maxFeePerGas format")
	}

	maxPriorityFeePerGas, ok := new(big.Int).SetString(req.MaxPriorityFeePerGas, base10)
	if !ok {
		return nil, errors.New("invalid maxPriorityFeePerGas format")
	}

	var tx *types.Transaction
	if req.AuthorizationNonce != nil {
		auth, err := account.SignDelegationAuthorization(privateKey, chainID, s.params.DelegateAddress, *req.AuthorizationNonce)
		if err != nil {
			return nil, err
		}

		tx = types.NewTx(&types.SetCodeTx{
			ChainID:   uint256.NewInt(uint64(chainID)),
			Nonce:     req.Nonce,
			GasTipCap: uint256.MustFromBig(maxPriorityFeePerGas),
			GasFeeCap: uint256.MustFromBig(maxFeePerGas),
			Gas:       req.GasLimit,
			To:        toAddress,
			Value:     uint256.MustFromBig(value),
			Data:      req.Data,
			AuthList:  []types.SetCodeAuthorization{auth},
		})
	} else {
		tx = types.NewTx(&types.DynamicFeeTx{
			ChainID:   big.NewInt(chainID),
			Nonce:     req.Nonce,
			GasTipCap: maxPriorityFeePerGas,
			GasFeeCap: maxFeePerGas,
			Gas:       req.GasLimit,
			To:        &toAddress,
			Value:     value,
			Data:      req.Data,
		})
	}

	signedTx, err := types.SignTx(tx, types.LatestSignerForChainID(big.NewInt(chainID)), privateKey)
	if err != nil {
		return nil, errors.Wrap(err, "failed to sign transaction")
	}

	txBytes, err := signedTx.MarshalBinary()
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal transaction")
	}

	return &SignedTransaction{
		RawTransaction: txBytes,
		TxHash:         signedTx.Hash().Hex(),
	}, nil
}

// signPersonalMessage produces an EIP-191 personal signature with the
// legacy 27/28 recovery id expected by on-chain verifiers.
func signPersonalMessage(privateKey *ecdsa.PrivateKey, message []byte) (string, error) {
	digest := accounts.TextHash(message)

	signature, err := crypto.Sign(digest, privateKey)
	if err != nil {
		return "", errors.Wrap(err, "failed to sign message")
	}
	signature[crypto.RecoveryIDOffset] += 27

	return "0x" + hex.EncodeToString(signature), nil
}

// signTypedData produces an EIP-712 signature over the typed data digest.
func signTypedData(privateKey *ecdsa.PrivateKey, typedData apitypes.TypedData) (string, error) {
	digest, _, err := apitypes.TypedDataAndHash(typedData)
	if err != nil {
		return "", errors.Wrap(err, "failed to hash typed data")
	}

	signature, err := crypto.Sign(digest, privateKey)
	if err != nil {
		return "", errors.Wrap(err, "failed to sign typed data")
	}
	signature[crypto.RecoveryIDOffset] += 27

	return "0x" + hex.EncodeToString(signature), nil
}
