package wallet_test

import (
	"context"
	"strconv"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tyler-smith/go-bip39"
	"github/chapool/go-accounts/internal/apperrors"
	"github/chapool/go-accounts/internal/wallet"
	"github/chapool/go-accounts/internal/wallet/account"
	"github/chapool/go-accounts/internal/wallet/secret"
	"github/chapool/go-accounts/internal/wallet/smartaccount"
)

const testMnemonic = "legal winner thank year wave sausage worth useful legal winner thank yellow"

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

// cacheFake is an in-memory stand-in for the persisted address cache.
type cacheFake struct {
	rows      map[string]string
	saveCalls int
}

func newCacheFake() *cacheFake {
	return &cacheFake{rows: map[string]string{}}
}

func (f *cacheFake) key(userID string, chain string) string {
	return userID + "|" + chain
}

func (f *cacheFake) Get(_ context.Context, userID string, chain string) (string, bool, error) {
	address, ok := f.rows[f.key(userID, chain)]
	return address, ok, nil
}

func (f *cacheFake) Save(_ context.Context, userID string, chain string, address string) error {
	f.saveCalls++
	f.rows[f.key(userID, chain)] = address
	return nil
}

func (f *cacheFake) SaveAll(_ context.Context, userID string, addresses map[string]string) error {
	for chain, address := range addresses {
		f.rows[f.key(userID, chain)] = address
	}
	return nil
}

func (f *cacheFake) Clear(_ context.Context, userID string) error {
	for key := range f.rows {
		if len(key) > len(userID) && key[:len(userID)+1] == userID+"|" {
			delete(f.rows, key)
		}
	}
	return nil
}

// smartAccountsFake records upserts keyed by (user, chain id).
type smartAccountsFake struct {
	records map[string]*smartaccount.Record
}

func (f *smartAccountsFake) key(userID string, chainID int64) string {
	return userID + "|" + strconv.FormatInt(chainID, 10)
}

func (f *smartAccountsFake) Get(_ context.Context, userID string, chainID int64) (*smartaccount.Record, bool, error) {
	record, ok := f.records[f.key(userID, chainID)]
	return record, ok, nil
}

func (f *smartAccountsFake) Upsert(_ context.Context, record *smartaccount.Record) error {
	if f.records == nil {
		f.records = map[string]*smartaccount.Record{}
	}
	f.records[f.key(record.UserID, record.ChainID)] = record
	return nil
}

func (f *smartAccountsFake) MarkDeployed(_ context.Context, userID string, chainID int64, userOpHash string) error {
	if record, ok := f.records[f.key(userID, chainID)]; ok && !record.Deployed {
		record.Deployed = true
		record.LastUserOpHash = userOpHash
	}
	return nil
}

func testEngine(t *testing.T) (wallet.Service, *seedManagerFake, *cacheFake, *smartAccountsFake) {
	t.Helper()

	seeds := &seedManagerFake{}
	cache := newCacheFake()
	smartAccounts := &smartAccountsFake{}

	engine, err := wallet.NewService(seeds, cache, smartAccounts, account.Params{
		EntryPointAddress: common.HexToAddress("0x0000000071727De22E5E9d8BAf0edAc6f37da032"),
		FactoryAddress:    common.HexToAddress("0x91E60e0613810449d098b0b5Ec8b51A0FE8c8985"),
		DelegateAddress:   common.HexToAddress("0x63c0c19a282a1B52b07dD5a65b58948A07DAE32B"),
	}, nil)
	require.NoError(t, err)

	return engine, seeds, cache, smartAccounts
}

func TestCreateAccount(t *testing.T) {
	engine, seeds, cache, _ := testEngine(t)
	ctx := context.Background()

	derived, err := engine.CreateAccount(ctx, "user-1", "base", account.TypeEOA, 0, false)
	require.NoError(t, err)
	assert.Equal(t, "base", derived.Chain)
	assert.Equal(t, 1, seeds.getSeedCalls)

	cached, ok, err := engine.GetCachedAddress(ctx, "user-1", "base")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, derived.Address, cached)

	// repeated creation is deterministic and does not rewrite the cache
	again, err := engine.CreateAccount(ctx, "user-1", "base", account.TypeEOA, 0, false)
	require.NoError(t, err)
	assert.Equal(t, derived, again)
	assert.Equal(t, 1, cache.saveCalls)
}

func TestCreateAccountCachesPerRequestedKey(t *testing.T) {
	engine, _, _, _ := testEngine(t)
	ctx := context.Background()

	eoa, err := engine.CreateAccount(ctx, "user-1", "base", account.TypeEOA, 0, false)
	require.NoError(t, err)

	smart, err := engine.CreateAccount(ctx, "user-1", "baseErc4337", account.TypeErc4337, 0, false)
	require.NoError(t, err)
	require.NotEqual(t, eoa.Address, smart.Address)

	// the two account models keep separate cache rows on the same chain
	cachedEOA, ok, err := engine.GetCachedAddress(ctx, "user-1", "base")
	require.NoError(t, err)
	require.True(t, ok)

	cachedSmart, ok, err := engine.GetCachedAddress(ctx, "user-1", "baseErc4337")
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, eoa.Address, cachedEOA)
	assert.Equal(t, smart.Address, cachedSmart)
}

func TestCreateAccountRejectsBadRequestsWithoutSeedAccess(t *testing.T) {
	engine, seeds, _, _ := testEngine(t)
	ctx := context.Background()

	_, err := engine.CreateAccount(ctx, "user-1", "dogecoin", account.TypeEOA, 0, false)
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindUnsupportedChain))

	_, err = engine.CreateAccount(ctx, "user-1", "base", account.TypeEOA, -1, false)
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidIndex))

	_, err = engine.CreateAccount(ctx, "user-1", "base", account.Type("multisig"), 0, false)
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindUnsupportedChain))

	assert.Equal(t, 0, seeds.getSeedCalls, "rejected requests must not touch the seed")
}

func TestCreateErc4337AccountStoresRecord(t *testing.T) {
	engine, _, _, smartAccounts := testEngine(t)
	ctx := context.Background()

	derived, err := engine.CreateAccount(ctx, "user-1", "base", account.TypeErc4337, 0, false)
	require.NoError(t, err)

	record, ok, err := smartAccounts.Get(ctx, "user-1", 8453)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, derived.Address, record.Address)
	assert.False(t, record.Deployed)
	assert.Equal(t, "0x0000000071727De22E5E9d8BAf0edAc6f37da032", record.EntryPointAddress)
}

func TestGetCachedAddressMiss(t *testing.T) {
	engine, _, _, _ := testEngine(t)

	_, ok, err := engine.GetCachedAddress(context.Background(), "user-1", "base")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSaveAddressesNormalizesKeys(t *testing.T) {
	engine, _, cache, _ := testEngine(t)
	ctx := context.Background()

	err := engine.SaveAddresses(ctx, "user-1", map[string]string{
		"BASE ":       "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed",
		"baseErc4337": "0x1111111111111111111111111111111111111111",
	})
	require.NoError(t, err)

	assert.Equal(t, "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed", cache.rows["user-1|base"])
	assert.Equal(t, "0x1111111111111111111111111111111111111111", cache.rows["user-1|baseerc4337"])
}

func TestClearAddresses(t *testing.T) {
	engine, _, _, _ := testEngine(t)
	ctx := context.Background()

	_, err := engine.CreateAccount(ctx, "user-1", "base", account.TypeEOA, 0, false)
	require.NoError(t, err)
	_, err = engine.CreateAccount(ctx, "user-2", "base", account.TypeEOA, 0, false)
	require.NoError(t, err)

	require.NoError(t, engine.ClearAddresses(ctx, "user-1"))

	_, ok, err := engine.GetCachedAddress(ctx, "user-1", "base")
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = engine.GetCachedAddress(ctx, "user-2", "base")
	require.NoError(t, err)
	assert.True(t, ok)
}
