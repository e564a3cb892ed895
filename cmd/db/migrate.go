package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	_ "github.com/lib/pq"
	migrate "github.com/rubenv/sql-migrate"
	"github.com/spf13/cobra"
	"github/chapool/go-accounts/internal/config"
	"github/chapool/go-accounts/internal/util"
	"github/chapool/go-accounts/internal/util/command"
)

func newMigrate() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Executes all migrations which are not yet applied.",
		Run: func(cmd *cobra.Command, _ []string) {
			if err := runMigrate(cmd.Context()); err != nil {
				fmt.Printf("Error while running migrate: %v\n", err)
				os.Exit(1)
			}
		},
	}
}

func runMigrate(ctx context.Context) error {
	serviceConfig := config.DefaultServiceConfigFromEnv()

	return command.WithDatabase(ctx, serviceConfig, func(ctx context.Context, db *sql.DB) error {
		log := util.LogFromContext(ctx)

		migrations := &migrate.FileMigrationSource{Dir: "migrations"}

		n, err := migrate.ExecContext(ctx, db, "postgres", migrations, migrate.Up)
		if err != nil {
			return fmt.Errorf("failed to apply migrations: %w", err)
		}

		log.Info().Int("applied", n).Msg("Applied migrations")

		return nil
	})
}
