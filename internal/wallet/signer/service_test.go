package signer_test

import (
	"context"
	"encoding/hex"
	"strconv"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tyler-smith/go-bip39"
	"github/chapool/go-accounts/internal/apperrors"
	"github/chapool/go-accounts/internal/wallet/account"
	"github/chapool/go-accounts/internal/wallet/secret"
	"github/chapool/go-accounts/internal/wallet/signer"
)

const testMnemonic = "legal winner thank year wave sausage worth useful legal winner thank yellow"

// seedManagerFake hands out fresh buffers over a fixed seed and counts
// retrievals, so tests can assert the ownership check runs first.
type seedManagerFake struct {
	getSeedCalls int
}

func (f *seedManagerFake) GetSeed(_ context.Context, _ string) (*secret.Buffer, error) {
	f.getSeedCalls++
	seedBytes := bip39.NewSeed(testMnemonic, "")
	buf := secret.FromBytes(seedBytes)
	secret.Zeroize(seedBytes)
	return buf, nil
}

func (f *seedManagerFake) Provision(_ context.Context, _ string) (string, error) {
	return "", nil
}

// delegationFake answers Has from a fixed record set.
type delegationFake struct {
	records  map[string]bool
	hasCalls int
}

func delegationKey(userID string, chainID int64, address string) string {
	return userID + "|" + strconv.FormatInt(chainID, 10) + "|" + strings.ToLower(address)
}

func (f *delegationFake) Has(_ context.Context, userID string, chainID int64, address string) (bool, error) {
	f.hasCalls++
	return f.records[delegationKey(userID, chainID, address)], nil
}

func (f *delegationFake) Create(_ context.Context, userID string, chainID int64, address string) error {
	if f.records == nil {
		f.records = map[string]bool{}
	}
	f.records[delegationKey(userID, chainID, address)] = true
	return nil
}

func signingAddress(t *testing.T) string {
	t.Helper()

	seeds := &seedManagerFake{}
	buf, err := seeds.GetSeed(context.Background(), "tester")
	require.NoError(t, err)
	defer buf.Wipe()

	privateKey, wipe, err := account.ECDSAKey(buf, 0)
	require.NoError(t, err)
	defer wipe()

	return crypto.PubkeyToAddress(privateKey.PublicKey).Hex()
}

func testService(t *testing.T) (signer.Service, *seedManagerFake, *delegationFake, string) {
	t.Helper()

	seeds := &seedManagerFake{}
	delegations := &delegationFake{}
	address := signingAddress(t)

	require.NoError(t, delegations.Create(context.Background(), "user-1", 1, address))

	svc := signer.NewService(seeds, delegations, account.Params{
		DelegateAddress: common.HexToAddress("0x63c0c19a282a1B52b07dD5a65b58948A07DAE32B"),
	}, nil)

	return svc, seeds, delegations, address
}

func TestSignMessageChecksOwnershipBeforeSeedRetrieval(t *testing.T) {
	svc, seeds, delegations, _ := testService(t)

	_, err := svc.SignMessage(context.Background(), "user-1", 1, "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed", []byte("hello"))
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindOwnershipMismatch))

	assert.Equal(t, 1, delegations.hasCalls)
	assert.Equal(t, 0, seeds.getSeedCalls, "seed must not be fetched for unauthorized requests")
}

func TestSignMessageRejectsUnsupportedChainID(t *testing.T) {
	svc, seeds, delegations, address := testService(t)

	_, err := svc.SignMessage(context.Background(), "user-1", 424242, address, []byte("hello"))
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindUnsupportedChain))
	assert.Equal(t, 0, delegations.hasCalls)
	assert.Equal(t, 0, seeds.getSeedCalls)
}

func TestSignMessage(t *testing.T) {
	svc, seeds, _, address := testService(t)

	message := []byte("hello world")
	signature, err := svc.SignMessage(context.Background(), "user-1", 1, address, message)
	require.NoError(t, err)
	assert.Equal(t, 1, seeds.getSeedCalls)

	sigBytes, err := hex.DecodeString(strings.TrimPrefix(signature, "0x"))
	require.NoError(t, err)
	require.Len(t, sigBytes, crypto.SignatureLength)
	assert.Contains(t, []byte{27, 28}, sigBytes[crypto.RecoveryIDOffset])

	// recover and compare against the claimed address
	sigBytes[crypto.RecoveryIDOffset] -= 27
	publicKey, err := crypto.SigToPub(accounts.TextHash(message), sigBytes)
	require.NoError(t, err)
	assert.Equal(t, address, crypto.PubkeyToAddress(*publicKey).Hex())
}

func TestSignMessageRejectsForeignDelegatedAddress(t *testing.T) {
	svc, seeds, delegations, _ := testService(t)

	// delegation record exists but for an address the key does not control
	foreign := "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"
	require.NoError(t, delegations.Create(context.Background(), "user-1", 1, foreign))

	_, err := svc.SignMessage(context.Background(), "user-1", 1, foreign, []byte("hello"))
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindOwnershipMismatch))
	assert.Equal(t, 1, seeds.getSeedCalls)
}

func TestSignTransaction(t *testing.T) {
	svc, _, _, address := testService(t)

	req := &signer.TransactionRequest{
		To:                   "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed",
		Value:                "1000000000000000000",
		GasLimit:             21000,
		MaxFeePerGas:         "30000000000",
		MaxPriorityFeePerGas: "1000000000",
		Nonce:                7,
	}

	signed, err := svc.SignTransaction(context.Background(), "user-1", 1, address, req)
	require.NoError(t, err)
	require.NotEmpty(t, signed.RawTransaction)
	assert.True(t, strings.HasPrefix(signed.TxHash, "0x"))

	// EIP-1559 typed transaction envelope
	assert.Equal(t, byte(0x02), signed.RawTransaction[0])
}

func TestSignTransactionWithDelegationAuthorization(t *testing.T) {
	svc, _, _, address := testService(t)

	authNonce := uint64(8)
	req := &signer.TransactionRequest{
		To:                   "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed",
		Value:                "0",
		GasLimit:             100000,
		MaxFeePerGas:         "30000000000",
		MaxPriorityFeePerGas: "1000000000",
		Nonce:                7,
		AuthorizationNonce:   &authNonce,
	}

	signed, err := svc.SignTransaction(context.Background(), "user-1", 1, address, req)
	require.NoError(t, err)

	// EIP-7702 set-code transaction envelope
	assert.Equal(t, byte(0x04), signed.RawTransaction[0])
}

func TestSignTransactionRejectsMalformedRequest(t *testing.T) {
	svc, _, _, address := testService(t)

	_, err := svc.SignTransaction(context.Background(), "user-1", 1, address, &signer.TransactionRequest{
		To:                   "not-an-address",
		Value:                "0",
		MaxFeePerGas:         "1",
		MaxPriorityFeePerGas: "1",
	})
	require.Error(t, err)

	_, err = svc.SignTransaction(context.Background(), "user-1", 1, address, &signer.TransactionRequest{
		To:                   "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed",
		Value:                "one ether",
		MaxFeePerGas:         "1",
		MaxPriorityFeePerGas: "1",
	})
	require.Error(t, err)
}

func TestSignTypedData(t *testing.T) {
	svc, _, _, address := testService(t)

	typedData := apitypes.TypedData{
		Types: apitypes.Types{
			"EIP712Domain": []apitypes.Type{
				{Name: "name", Type: "string"},
				{Name: "chainId", Type: "uint256"},
			},
			"Mail": []apitypes.Type{
				{Name: "contents", Type: "string"},
			},
		},
		PrimaryType: "Mail",
		Domain: apitypes.TypedDataDomain{
			Name:    "Accounts",
			ChainId: math.NewHexOrDecimal256(1),
		},
		Message: apitypes.TypedDataMessage{
			"contents": "hello",
		},
	}

	signature, err := svc.SignTypedData(context.Background(), "user-1", 1, address, typedData)
	require.NoError(t, err)

	sigBytes, err := hex.DecodeString(strings.TrimPrefix(signature, "0x"))
	require.NoError(t, err)
	require.Len(t, sigBytes, crypto.SignatureLength)

	sigBytes[crypto.RecoveryIDOffset] -= 27
	digest, _, err := apitypes.TypedDataAndHash(typedData)
	require.NoError(t, err)

	publicKey, err := crypto.SigToPub(digest, sigBytes)
	require.NoError(t, err)
	assert.Equal(t, address, crypto.PubkeyToAddress(*publicKey).Hex())
}
