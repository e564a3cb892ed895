// Package smartaccount persists ERC-4337 account records per (user, chain
// id): the counterfactual address, its factory parameters and whether the
// account has been deployed on-chain yet.
package smartaccount

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github/chapool/go-accounts/internal/util"
)

// Record is one persisted ERC-4337 account.
type Record struct {
	UserID            string
	ChainID           int64
	Address           string
	EntryPointAddress string
	FactoryAddress    string
	Deployed          bool
	LastUserOpHash    string
	UpdatedAt         time.Time
}

// Service provides smart-account record access. The deployed flag moves
// false -> true exactly once, driven by the external confirmation source;
// derivation never touches it.
type Service interface {
	// Get returns the record for (userID, chainID), ok=false when absent.
	Get(ctx context.Context, userID string, chainID int64) (*Record, bool, error)

	// Upsert stores the counterfactual account parameters. The deployed
	// flag of an existing row is preserved, never reset.
	Upsert(ctx context.Context, record *Record) error

	// MarkDeployed flips deployed to true and records the confirming user
	// operation hash. Idempotent: repeated confirmations (at-least-once
	// delivery) leave the row deployed with the first-observed hash.
	MarkDeployed(ctx context.Context, userID string, chainID int64, userOpHash string) error
}

type service struct {
	db *sql.DB
}

// NewService creates a new smart-account record service.
//
//nolint:ireturn // Returning interface is intentional for dependency injection
func NewService(database *sql.DB) Service {
	return &service{db: database}
}

func (s *service) Get(ctx context.Context, userID string, chainID int64) (*Record, bool, error) {
	record := &Record{UserID: userID, ChainID: chainID}

	var lastUserOpHash sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT address, entry_point_address, factory_address, deployed, last_user_op_hash, updated_at
		FROM erc4337_accounts
		WHERE user_id = $1 AND chain_id = $2
	`, userID, chainID).Scan(
		&record.Address,
		&record.EntryPointAddress,
		&record.FactoryAddress,
		&record.Deployed,
		&lastUserOpHash,
		&record.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, errors.Wrap(err, "failed to read smart-account record")
	}

	record.LastUserOpHash = lastUserOpHash.String

	return record, true, nil
}

func (s *service) Upsert(ctx context.Context, record *Record) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO erc4337_accounts (user_id, chain_id, address, entry_point_address, factory_address, deployed)
		VALUES ($1, $2, $3, $4, $5, FALSE)
		ON CONFLICT (user_id, chain_id) DO UPDATE
		SET address = EXCLUDED.address,
		    entry_point_address = EXCLUDED.entry_point_address,
		    factory_address = EXCLUDED.factory_address,
		    updated_at = NOW()
	`, record.UserID, record.ChainID, strings.ToLower(record.Address), record.EntryPointAddress, record.FactoryAddress)
	if err != nil {
		return errors.Wrap(err, "failed to upsert smart-account record")
	}

	return nil
}

func (s *service) MarkDeployed(ctx context.Context, userID string, chainID int64, userOpHash string) error {
	// deployed is monotonic: the WHERE clause guarantees the hash is only
	// written by the first confirmation, later deliveries are no-ops.
	result, err := s.db.ExecContext(ctx, `
		UPDATE erc4337_accounts
		SET deployed = TRUE, last_user_op_hash = $3, updated_at = NOW()
		WHERE user_id = $1 AND chain_id = $2 AND deployed = FALSE
	`, userID, chainID, userOpHash)
	if err != nil {
		return errors.Wrap(err, "failed to mark smart account deployed")
	}

	if rows, rowsErr := result.RowsAffected(); rowsErr == nil && rows > 0 {
		util.LogFromContext(ctx).Info().
			Str("user_id", userID).
			Int64("chain_id", chainID).
			Str("user_op_hash", userOpHash).
			Msg("Smart account marked deployed")
	}

	return nil
}
