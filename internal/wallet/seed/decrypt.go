package seed

import (
	"crypto/subtle"
	"encoding/hex"

	"github.com/pkg/errors"
	"golang.org/x/crypto/scrypt"
)

// decryptMnemonic decrypts a keystore v3 payload back into mnemonic bytes.
// The caller owns the returned bytes and must zeroize them.
func decryptMnemonic(ks *keystoreJSON, passphrase string) ([]byte, error) {
	salt, err := hex.DecodeString(ks.Crypto.KDFParams.Salt)
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode salt")
	}

	iv, err := hex.DecodeString(ks.Crypto.CipherParams.IV)
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode IV")
	}

	ciphertext, err := hex.DecodeString(ks.Crypto.Ciphertext)
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode ciphertext")
	}

	expectedMAC, err := hex.DecodeString(ks.Crypto.MAC)
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode MAC")
	}

	// a truncated derived key cannot carry both the cipher and MAC halves
	if ks.Crypto.KDFParams.DKLen < 2*aesKeySize {
		return nil, errors.Errorf("invalid scrypt dklen %d", ks.Crypto.KDFParams.DKLen)
	}

	derivedKey, err := scrypt.Key(
		[]byte(passphrase),
		salt,
		ks.Crypto.KDFParams.N,
		ks.Crypto.KDFParams.R,
		ks.Crypto.KDFParams.P,
		ks.Crypto.KDFParams.DKLen,
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to derive decryption key")
	}

	mac := keystoreMAC(derivedKey[aesKeySize:], ciphertext)
	if subtle.ConstantTimeCompare(mac, expectedMAC) != 1 {
		return nil, errors.New("MAC mismatch")
	}

	return applyAESCTR(derivedKey[:aesKeySize], iv, ciphertext)
}
