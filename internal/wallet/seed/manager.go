package seed

import (
	"context"
	"crypto/sha512"
	"database/sql"
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/tyler-smith/go-bip39"
	"golang.org/x/crypto/pbkdf2"
	"github/chapool/go-accounts/internal/apperrors"
	"github/chapool/go-accounts/internal/util"
	"github/chapool/go-accounts/internal/wallet/secret"
)

// BIP-39 seed stretching parameters: seed = PBKDF2-SHA512(mnemonic,
// "mnemonic"+passphrase, 2048, 64).
const (
	pbkdf2Iterations = 2048
	pbkdf2KeyLength  = 64
)

type manager struct {
	db         *sql.DB
	passphrase string
}

// NewManager creates a Manager backed by per-user encrypted keystore rows.
// The service passphrase unlocks keystores and stretches mnemonics to seeds.
//
//nolint:ireturn // Returning interface is intentional for dependency injection
func NewManager(db *sql.DB, servicePassphrase string) Manager {
	return &manager{
		db:         db,
		passphrase: servicePassphrase,
	}
}

// GetSeed decrypts the user keystore and stretches the mnemonic into seed
// bytes. Everything secret that this function touches is wiped before it
// returns; only the returned buffer carries key material out, owned by the
// caller.
func (m *manager) GetSeed(ctx context.Context, userID string) (*secret.Buffer, error) {
	var raw []byte
	err := m.db.QueryRowContext(ctx,
		`SELECT keystore_data FROM user_keystores WHERE user_id = $1`, userID,
	).Scan(&raw)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.Newf(apperrors.KindSeedRetrieval, "no provisioned seed for user %s", userID)
		}
		return nil, apperrors.Wrap(err, apperrors.KindSeedRetrieval, "failed to load user keystore")
	}

	var ks keystoreJSON
	if err := json.Unmarshal(raw, &ks); err != nil {
		return nil, apperrors.Wrap(err, apperrors.KindSeedRetrieval, "failed to unmarshal user keystore")
	}

	mnemonic, err := decryptMnemonic(&ks, m.passphrase)
	if err != nil {
		util.LogFromContext(ctx).Error().Str("user_id", userID).Err(err).Msg("Failed to decrypt user keystore")
		return nil, apperrors.Wrap(err, apperrors.KindSeedRetrieval, "failed to decrypt user keystore")
	}
	defer secret.Zeroize(mnemonic)

	seedBytes := pbkdf2.Key(mnemonic, []byte("mnemonic"+m.passphrase), pbkdf2Iterations, pbkdf2KeyLength, sha512.New)
	defer secret.Zeroize(seedBytes)

	return secret.FromBytes(seedBytes), nil
}

// Provision generates a 24-word mnemonic, encrypts it under the service
// passphrase and inserts the keystore row. Provisioning the same user twice
// is an error; re-keying goes through credential migration, not here.
func (m *manager) Provision(ctx context.Context, userID string) (string, error) {
	log := util.LogFromContext(ctx).With().Str("user_id", userID).Logger()

	const entropyBits = 256
	entropy, err := bip39.NewEntropy(entropyBits)
	if err != nil {
		return "", errors.Wrap(err, "failed to generate entropy")
	}

	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return "", errors.Wrap(err, "failed to generate mnemonic")
	}
	secret.Zeroize(entropy)

	ks, err := encryptMnemonic([]byte(mnemonic), m.passphrase)
	if err != nil {
		return "", errors.Wrap(err, "failed to encrypt mnemonic")
	}

	data, err := json.Marshal(ks)
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal keystore JSON")
	}

	result, err := m.db.ExecContext(ctx, `
		INSERT INTO user_keystores (user_id, keystore_data, version, cipher, kdf)
		VALUES ($1, $2, $3, 'aes-128-ctr', 'scrypt')
		ON CONFLICT (user_id) DO NOTHING
	`, userID, data, keystoreVersion)
	if err != nil {
		log.Error().Err(err).Msg("Failed to insert user keystore")
		return "", errors.Wrap(err, "failed to insert user keystore")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return "", errors.Wrap(err, "failed to read insert result")
	}
	if rows == 0 {
		return "", errors.New("user keystore already provisioned")
	}

	log.Info().Msg("User keystore provisioned")

	return mnemonic, nil
}
