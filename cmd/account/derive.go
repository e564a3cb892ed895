package account

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/common"
	_ "github.com/lib/pq"
	"github.com/spf13/cobra"
	"github/chapool/go-accounts/internal/config"
	"github/chapool/go-accounts/internal/util/command"
	"github/chapool/go-accounts/internal/wallet"
	"github/chapool/go-accounts/internal/wallet/account"
	"github/chapool/go-accounts/internal/wallet/addresscache"
	"github/chapool/go-accounts/internal/wallet/seed"
	"github/chapool/go-accounts/internal/wallet/smartaccount"
)

const (
	chainFlag       string = "chain"
	accountTypeFlag string = "type"
	indexFlag       string = "index"
)

func newDerive() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "derive",
		Short: "Derives an account for a user and prints it as JSON.",
		Run: func(cmd *cobra.Command, _ []string) {
			userID, err := cmd.Flags().GetString(userIDFlag)
			if err != nil || userID == "" {
				fmt.Println("--user-id is required")
				os.Exit(1)
			}

			chainKey, _ := cmd.Flags().GetString(chainFlag)
			rawType, _ := cmd.Flags().GetString(accountTypeFlag)
			accountIndex, _ := cmd.Flags().GetInt(indexFlag)

			if err := runDerive(cmd.Context(), userID, chainKey, rawType, accountIndex); err != nil {
				fmt.Printf("Error while deriving account: %v\n", err)
				os.Exit(1)
			}
		},
	}

	cmd.Flags().String(userIDFlag, "", "User to derive an account for")
	cmd.Flags().String(chainFlag, "ethereum", "Chain key, e.g. ethereum, base, polkadot")
	cmd.Flags().String(accountTypeFlag, string(account.TypeEOA), "Account type: eoa, erc4337, eip7702 or substrate")
	cmd.Flags().Int(indexFlag, 0, "Account index within the user's derivation space")

	return cmd
}

func runDerive(ctx context.Context, userID string, chainKey string, rawType string, accountIndex int) error {
	serviceConfig := config.DefaultServiceConfigFromEnv()

	accountType, err := account.ParseType(rawType)
	if err != nil {
		return err
	}

	return command.WithDatabase(ctx, serviceConfig, func(ctx context.Context, db *sql.DB) error {
		engine, err := wallet.NewService(
			seed.NewManager(db, serviceConfig.Wallet.ServicePassphrase),
			addresscache.NewService(db),
			smartaccount.NewService(db),
			account.Params{
				EntryPointAddress: common.HexToAddress(serviceConfig.Wallet.EntryPointAddress),
				FactoryAddress:    common.HexToAddress(serviceConfig.Wallet.FactoryAddress),
				DelegateAddress:   common.HexToAddress(serviceConfig.Wallet.DelegateAddress),
			},
			nil,
		)
		if err != nil {
			return err
		}

		derived, err := engine.CreateAccount(ctx, userID, chainKey, accountType, accountIndex, serviceConfig.Wallet.UseTestnet)
		if err != nil {
			return err
		}

		out, err := json.MarshalIndent(derived, "", "  ")
		if err != nil {
			return err
		}

		fmt.Println(string(out))

		return nil
	})
}
