package command

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github/chapool/go-accounts/internal/config"
)

// NewSubcommandGroup returns a cobra command that only exists to group its
// subcommands and prints usage when called directly.
func NewSubcommandGroup(use string, subcommands ...*cobra.Command) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: fmt.Sprintf("%v related subcommands", use),
		Run: func(cmd *cobra.Command, _ []string) {
			if err := cmd.Help(); err != nil {
				fmt.Printf("Failed to print help: %v\n", err)
				os.Exit(1)
			}

			os.Exit(0)
		},
	}

	cmd.AddCommand(subcommands...)

	return cmd
}

// WithDatabase opens the configured database, runs fn and closes the
// connection afterwards. Intended for one-shot CLI commands.
func WithDatabase(ctx context.Context, serviceConfig config.Server, fn func(ctx context.Context, db *sql.DB) error) error {
	db, err := sql.Open("postgres", serviceConfig.Database.ConnectionString())
	if err != nil {
		return fmt.Errorf("failed to open database connection: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	return fn(ctx, db)
}
