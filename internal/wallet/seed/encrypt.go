package seed

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/crypto/scrypt"
)

// keystoreVersion is the Ethereum keystore v3 version number.
const keystoreVersion = 3

const (
	saltLength = 32
	ivLength   = 16 // AES-128-CTR block size
	aesKeySize = 16
)

// encryptMnemonic encrypts a mnemonic into keystore v3 form under the
// service passphrase.
func encryptMnemonic(mnemonic []byte, passphrase string) (*keystoreJSON, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return nil, errors.Wrap(err, "failed to generate salt")
	}

	iv := make([]byte, ivLength)
	if _, err := rand.Read(iv); err != nil {
		return nil, errors.Wrap(err, "failed to generate IV")
	}

	return encryptMnemonicWith(mnemonic, passphrase, salt, iv, defaultScryptParams())
}

// encryptMnemonicWith encrypts with explicit salt, IV and KDF parameters.
func encryptMnemonicWith(mnemonic []byte, passphrase string, salt []byte, iv []byte, params scryptParams) (*keystoreJSON, error) {
	derivedKey, err := scrypt.Key([]byte(passphrase), salt, params.N, params.R, params.P, params.DKLen)
	if err != nil {
		return nil, errors.Wrap(err, "failed to derive encryption key")
	}

	ciphertext, err := applyAESCTR(derivedKey[:aesKeySize], iv, mnemonic)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encrypt mnemonic")
	}

	mac := keystoreMAC(derivedKey[aesKeySize:], ciphertext)

	ks := &keystoreJSON{
		Version: keystoreVersion,
		ID:      uuid.New().String(),
	}
	ks.Crypto.Ciphertext = hex.EncodeToString(ciphertext)
	ks.Crypto.CipherParams.IV = hex.EncodeToString(iv)
	ks.Crypto.Cipher = "aes-128-ctr"
	ks.Crypto.KDF = "scrypt"
	ks.Crypto.KDFParams.DKLen = params.DKLen
	ks.Crypto.KDFParams.Salt = hex.EncodeToString(salt)
	ks.Crypto.KDFParams.N = params.N
	ks.Crypto.KDFParams.R = params.R
	ks.Crypto.KDFParams.P = params.P
	ks.Crypto.MAC = hex.EncodeToString(mac)

	return ks, nil
}

// applyAESCTR runs AES-128-CTR over data; CTR mode is symmetric so the same
// function encrypts and decrypts.
func applyAESCTR(key []byte, iv []byte, data []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create cipher")
	}

	out := make([]byte, len(data))
	stream := cipher.NewCTR(block, iv)
	stream.XORKeyStream(out, data)

	return out, nil
}

// keystoreMAC computes SHA-256(derivedKey[16:32] || ciphertext).
func keystoreMAC(key []byte, ciphertext []byte) []byte {
	hasher := sha256.New()
	hasher.Write(key)
	hasher.Write(ciphertext)
	return hasher.Sum(nil)
}
