// Package addresscache persists derived addresses per (user, chain) so
// reads can skip re-derivation. The cache is an accelerator only: every
// value traces back to a factory derivation and a stale row loses to a
// fresh derivation, never the other way round.
package addresscache

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
	"github/chapool/go-accounts/internal/util"
	"github/chapool/go-accounts/internal/util/db"
)

// Service provides address cache reads and writes.
type Service interface {
	// Get returns the cached address for (userID, chain), ok=false when
	// no row exists.
	Get(ctx context.Context, userID string, chain string) (string, bool, error)

	// Save upserts a single (userID, chain) -> address row.
	Save(ctx context.Context, userID string, chain string, address string) error

	// SaveAll applies the whole mapping atomically: afterwards either all
	// entries are visible or none are, also under concurrent writers.
	SaveAll(ctx context.Context, userID string, addresses map[string]string) error

	// Clear removes all rows for a user, used after credential migration.
	Clear(ctx context.Context, userID string) error
}

type service struct {
	db *sql.DB
}

// NewService creates a new address cache service.
//
//nolint:ireturn // Returning interface is intentional for dependency injection
func NewService(database *sql.DB) Service {
	return &service{db: database}
}

func (s *service) Get(ctx context.Context, userID string, chain string) (string, bool, error) {
	var address string
	err := s.db.QueryRowContext(ctx,
		`SELECT address FROM cached_addresses WHERE user_id = $1 AND chain = $2`,
		userID, chain,
	).Scan(&address)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, errors.Wrap(err, "failed to read cached address")
	}

	return address, true, nil
}

func (s *service) Save(ctx context.Context, userID string, chain string, address string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO cached_addresses (user_id, chain, address)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, chain) DO UPDATE
		SET address = EXCLUDED.address, updated_at = NOW()
	`, userID, chain, address)
	if err != nil {
		return errors.Wrap(err, "failed to upsert cached address")
	}

	return nil
}

func (s *service) SaveAll(ctx context.Context, userID string, addresses map[string]string) error {
	if len(addresses) == 0 {
		return nil
	}

	err := db.WithTransaction(ctx, s.db, func(tx *sql.Tx) error {
		for chain, address := range addresses {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO cached_addresses (user_id, chain, address)
				VALUES ($1, $2, $3)
				ON CONFLICT (user_id, chain) DO UPDATE
				SET address = EXCLUDED.address, updated_at = NOW()
			`, userID, chain, address); err != nil {
				return errors.Wrapf(err, "failed to upsert cached address for chain %s", chain)
			}
		}
		return nil
	})
	if err != nil {
		util.LogFromContext(ctx).Error().Str("user_id", userID).Err(err).Msg("Failed to save address mapping")
		return err
	}

	return nil
}

func (s *service) Clear(ctx context.Context, userID string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM cached_addresses WHERE user_id = $1`, userID)
	if err != nil {
		return errors.Wrap(err, "failed to clear cached addresses")
	}

	return nil
}
