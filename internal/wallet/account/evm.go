package account

import (
	"crypto/ecdsa"
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
	"github.com/tyler-smith/go-bip32"
	"github/chapool/go-accounts/internal/wallet/derivation"
	"github/chapool/go-accounts/internal/wallet/secret"
)

// hardenedOffset marks hardened child indices in BIP-32 derivation.
const hardenedOffset uint32 = 0x80000000

// ECDSAKey derives the controlling secp256k1 key for an account index. All
// EVM account models share this key: the EOA owns it directly, ERC-4337
// accounts use it as owner/signer, EIP-7702 accounts as the delegating key.
// The returned wipe function must be called on every exit path.
func ECDSAKey(seedBuf *secret.Buffer, accountIndex int) (*ecdsa.PrivateKey, func(), error) {
	path, err := derivation.EVMPath(accountIndex)
	if err != nil {
		return nil, nil, err
	}

	keyBytes, err := derivePrivateKeyBytes(seedBuf.Bytes(), path)
	if err != nil {
		return nil, nil, err
	}

	privateKey, err := crypto.ToECDSA(keyBytes)
	if err != nil {
		secret.Zeroize(keyBytes)
		return nil, nil, errors.Wrap(err, "failed to convert derived key to ECDSA")
	}

	wipe := func() {
		secret.Zeroize(keyBytes)
		// big.Int words are not addressable for overwrite; dropping the
		// reference is the best the ecdsa API allows here.
		privateKey.D.SetInt64(0)
	}

	return privateKey, wipe, nil
}

// derivePrivateKeyBytes walks the BIP-44 path from the master key. The
// caller owns the returned 32 bytes and must zeroize them.
func derivePrivateKeyBytes(seedBytes []byte, path string) ([]byte, error) {
	masterKey, err := bip32.NewMasterKey(seedBytes)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create master key")
	}

	indices, err := parseBIP44Path(path)
	if err != nil {
		return nil, err
	}

	key := masterKey
	for _, index := range indices {
		key, err = key.NewChildKey(index)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to derive child key at index %d", index)
		}
	}

	keyBytes := make([]byte, len(key.Key))
	copy(keyBytes, key.Key)

	return keyBytes, nil
}

// parseBIP44Path parses "m/44'/60'/0'/0/{index}" into child indices,
// applying the hardened offset for apostrophe-marked segments.
func parseBIP44Path(path string) ([]uint32, error) {
	rest, ok := strings.CutPrefix(path, "m/")
	if !ok {
		return nil, errors.Errorf("invalid BIP-44 path: %s", path)
	}

	parts := strings.Split(rest, "/")
	indices := make([]uint32, 0, len(parts))

	for _, part := range parts {
		segment, hardened := strings.CutSuffix(part, "'")

		index, err := strconv.ParseUint(segment, 10, 32)
		if err != nil || uint32(index) >= hardenedOffset {
			return nil, errors.Errorf("invalid path segment: %s", part)
		}

		if hardened {
			index += uint64(hardenedOffset)
		}

		indices = append(indices, uint32(index))
	}

	return indices, nil
}

// compressedPublicKeyHex renders the compressed secp256k1 public key.
func compressedPublicKeyHex(privateKey *ecdsa.PrivateKey) string {
	return "0x" + hex.EncodeToString(crypto.CompressPubkey(&privateKey.PublicKey))
}
