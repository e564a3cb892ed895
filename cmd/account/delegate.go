package account

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	_ "github.com/lib/pq"
	"github.com/spf13/cobra"
	"github/chapool/go-accounts/internal/config"
	"github/chapool/go-accounts/internal/util/command"
	"github/chapool/go-accounts/internal/wallet/addrcheck"
	"github/chapool/go-accounts/internal/wallet/delegation"
)

const (
	chainIDFlag string = "chain-id"
	addressFlag string = "address"
)

func newDelegate() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delegate",
		Short: "Records a confirmed delegation for (user, chain id, address).",
		Long: `Registers the ownership proof that authorizes signing with an address.
Run this after the on-chain delegation has been confirmed.`,
		Run: func(cmd *cobra.Command, _ []string) {
			userID, err := cmd.Flags().GetString(userIDFlag)
			if err != nil || userID == "" {
				fmt.Println("--user-id is required")
				os.Exit(1)
			}

			chainID, _ := cmd.Flags().GetInt64(chainIDFlag)
			address, _ := cmd.Flags().GetString(addressFlag)

			if err := runDelegate(cmd.Context(), userID, chainID, address); err != nil {
				fmt.Printf("Error while recording delegation: %v\n", err)
				os.Exit(1)
			}
		},
	}

	cmd.Flags().String(userIDFlag, "", "User the delegation belongs to")
	cmd.Flags().Int64(chainIDFlag, 1, "Numeric EVM chain ID")
	cmd.Flags().String(addressFlag, "", "Delegated account address")

	return cmd
}

func runDelegate(ctx context.Context, userID string, chainID int64, address string) error {
	if !addrcheck.ValidateEVM(address) {
		return fmt.Errorf("%q is not a valid EVM address", address)
	}

	serviceConfig := config.DefaultServiceConfigFromEnv()

	return command.WithDatabase(ctx, serviceConfig, func(ctx context.Context, db *sql.DB) error {
		return delegation.NewService(db).Create(ctx, userID, chainID, address)
	})
}
