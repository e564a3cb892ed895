// Package delegation persists the ownership proofs that authorize signing.
// A record's existence for (user, chain id, address) is the sole proof that
// the user may sign with that address on that chain.
package delegation

import (
	"context"
	"database/sql"
	"strings"

	"github.com/pkg/errors"
	"github/chapool/go-accounts/internal/util"
)

// Service provides delegation record lookups and creation. Records are
// immutable once created; teardown is owned by external account lifecycle
// management, not by this store.
type Service interface {
	// Has reports whether a delegation record exists. Addresses are keyed
	// lowercased, matching how records are created.
	Has(ctx context.Context, userID string, chainID int64, address string) (bool, error)

	// Create records a delegation once. Creating the same record twice is
	// a no-op.
	Create(ctx context.Context, userID string, chainID int64, address string) error
}

type service struct {
	db *sql.DB
}

// NewService creates a new delegation record service.
//
//nolint:ireturn // Returning interface is intentional for dependency injection
func NewService(database *sql.DB) Service {
	return &service{db: database}
}

func (s *service) Has(ctx context.Context, userID string, chainID int64, address string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM delegation_records
			WHERE user_id = $1 AND chain_id = $2 AND address = $3
		)
	`, userID, chainID, strings.ToLower(address)).Scan(&exists)
	if err != nil {
		return false, errors.Wrap(err, "failed to look up delegation record")
	}

	return exists, nil
}

func (s *service) Create(ctx context.Context, userID string, chainID int64, address string) error {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO delegation_records (user_id, chain_id, address)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, chain_id, address) DO NOTHING
	`, userID, chainID, strings.ToLower(address))
	if err != nil {
		return errors.Wrap(err, "failed to create delegation record")
	}

	if rows, rowsErr := result.RowsAffected(); rowsErr == nil && rows > 0 {
		util.LogFromContext(ctx).Info().
			Str("user_id", userID).
			Int64("chain_id", chainID).
			Str("address", strings.ToLower(address)).
			Msg("Delegation record created")
	}

	return nil
}
