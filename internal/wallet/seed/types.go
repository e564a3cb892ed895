package seed

import (
	"context"

	"github/chapool/go-accounts/internal/wallet/secret"
)

// Manager is the only authorized path from a user identifier to seed bytes.
// Callers must request the seed immediately before use, keep it out of any
// field with lifetime beyond the current call, and Wipe the returned buffer
// on every exit path.
type Manager interface {
	// GetSeed resolves and decrypts the seed for a user, scoped to the
	// lifetime of one derivation or signing call.
	GetSeed(ctx context.Context, userID string) (*secret.Buffer, error)

	// Provision generates and stores an encrypted keystore for a user that
	// has none yet. The returned mnemonic is shown to the user exactly once
	// for backup and is not retained in plain form.
	Provision(ctx context.Context, userID string) (string, error)
}

// keystoreJSON is the Ethereum keystore v3 JSON structure the encrypted
// mnemonic is stored in.
type keystoreJSON struct {
	Version int    `json:"version"`
	ID      string `json:"id"`
	Crypto  struct {
		Ciphertext   string `json:"ciphertext"`
		CipherParams struct {
			IV string `json:"iv"`
		} `json:"cipherparams"`
		Cipher    string `json:"cipher"`
		KDF       string `json:"kdf"`
		KDFParams struct {
			DKLen int    `json:"dklen"`
			Salt  string `json:"salt"`
			N     int    `json:"n"`
			R     int    `json:"r"`
			P     int    `json:"p"`
		} `json:"kdfparams"`
		MAC string `json:"mac"`
	} `json:"crypto"`
}

// scryptParams defines the scrypt KDF parameters used for keystore
// encryption.
type scryptParams struct {
	DKLen int
	N     int
	R     int
	P     int
}

// defaultScryptParams returns the standard keystore v3 scrypt parameters.
func defaultScryptParams() scryptParams {
	const (
		scryptDKLen = 32
		scryptN     = 262144 // 2^18
		scryptR     = 8
		scryptP     = 1
	)

	return scryptParams{DKLen: scryptDKLen, N: scryptN, R: scryptR, P: scryptP}
}
