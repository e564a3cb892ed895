package account

import (
	"context"
	"encoding/hex"
	"sync"

	"github.com/pkg/errors"
	"github.com/vedhavyas/go-subkey/v2"
	"github.com/vedhavyas/go-subkey/v2/sr25519"
	"github/chapool/go-accounts/internal/apperrors"
	"github/chapool/go-accounts/internal/wallet/addrcheck"
	"github/chapool/go-accounts/internal/wallet/chains"
	"github/chapool/go-accounts/internal/wallet/derivation"
	"github/chapool/go-accounts/internal/wallet/secret"
)

// miniSecretLength is the SR25519 mini-secret size taken from the seed.
const miniSecretLength = 32

// cryptoReady gates all SR25519 operations behind a one-time self-test of
// the schnorrkel runtime. Concurrent callers all block on the same Once and
// proceed together once it has run; initialization happens exactly once.
//
//nolint:gochecknoglobals // process-wide one-shot readiness gate
var cryptoReady struct {
	once sync.Once
	err  error
}

// awaitCryptoReady runs the one-shot readiness probe: a throwaway hard
// derivation that exercises the full SR25519 path.
func awaitCryptoReady() error {
	cryptoReady.once.Do(func() {
		probe := make([]byte, miniSecretLength)
		probe[0] = 1

		uri := "0x" + hex.EncodeToString(probe) + "//probe"
		if _, err := subkey.DeriveKeyPair(sr25519.Scheme{}, uri); err != nil {
			cryptoReady.err = errors.Wrap(err, "sr25519 runtime self-test failed")
		}
	})

	return cryptoReady.err
}

// substrateFactory derives SR25519 accounts and SS58-encodes their
// addresses with the chain's configured network prefix.
type substrateFactory struct{}

func (f *substrateFactory) DeriveAccount(_ context.Context, seedBuf *secret.Buffer, chainKey string, accountIndex int, useTestnet bool) (*Account, error) {
	cfg, err := chains.Get(chainKey, useTestnet)
	if err != nil {
		return nil, err
	}
	if cfg.Kind != chains.KindSubstrate {
		return nil, apperrors.Newf(apperrors.KindUnsupportedChain, "chain %q is not a Substrate chain", chainKey)
	}

	if err := awaitCryptoReady(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.KindInternal, "crypto runtime not ready").
			WithDetail("chain", cfg.Key).
			WithDetail("account_index", accountIndex)
	}

	keyPair, err := SR25519KeyPair(seedBuf, accountIndex)
	if err != nil {
		return nil, err
	}

	address := subkey.SS58Encode(keyPair.Public(), cfg.SS58Prefix)

	// Two independent post-conditions. Either failure is a derivation
	// defect and must surface with full context, never be swallowed.
	if !addrcheck.ValidateChecksum(address) {
		return nil, apperrors.New(apperrors.KindAddressValidation, "derived SS58 address failed checksum validation").
			WithDetail("chain", cfg.Key).
			WithDetail("account_index", accountIndex)
	}
	if !addrcheck.ValidateWithPrefix(address, cfg.SS58Prefix) {
		var decodedPrefix uint16
		if _, prefix, decodeErr := addrcheck.Decode(address); decodeErr == nil {
			decodedPrefix = prefix
		}
		return nil, apperrors.New(apperrors.KindAddressValidation, "derived SS58 address carries wrong network prefix").
			WithDetail("chain", cfg.Key).
			WithDetail("account_index", accountIndex).
			WithDetail("expected_prefix", cfg.SS58Prefix).
			WithDetail("actual_prefix", decodedPrefix)
	}

	return &Account{
		Address:      address,
		PublicKey:    "0x" + hex.EncodeToString(keyPair.Public()),
		Chain:        cfg.Key,
		AccountType:  TypeSubstrate,
		AccountIndex: accountIndex,
	}, nil
}

// SR25519KeyPair derives the SR25519 key pair for an account index by
// joining the seed's mini-secret with the canonical hard-junction path.
// The derivation URI is built in a wipeable scratch buffer; the key pair
// itself is consumed within the caller's operation scope.
//
// subkey accepts the URI only as a string, so one immutable copy of the
// hex-encoded mini-secret exists for the duration of the call and is left
// to the garbage collector; the scratch buffer covers every other copy.
//
//nolint:ireturn // subkey exposes key pairs behind its interface
func SR25519KeyPair(seedBuf *secret.Buffer, accountIndex int) (subkey.KeyPair, error) {
	path, err := derivation.BuildPath(accountIndex)
	if err != nil {
		return nil, err
	}

	seedBytes := seedBuf.Bytes()
	if len(seedBytes) < miniSecretLength {
		return nil, apperrors.New(apperrors.KindSeedRetrieval, "seed material too short for sr25519 derivation")
	}

	scratch := make([]byte, 0, 2+miniSecretLength*2+len(path))
	scratch = append(scratch, "0x"...)
	scratch = hex.AppendEncode(scratch, seedBytes[:miniSecretLength])
	scratch = append(scratch, path...)
	defer secret.Zeroize(scratch)

	keyPair, err := subkey.DeriveKeyPair(sr25519.Scheme{}, string(scratch))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to derive sr25519 key pair at index %d", accountIndex)
	}

	return keyPair, nil
}
