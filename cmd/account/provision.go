package account

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"syscall"

	_ "github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/term"
	"github/chapool/go-accounts/internal/config"
	"github/chapool/go-accounts/internal/util/command"
	"github/chapool/go-accounts/internal/wallet/seed"
)

const (
	userIDFlag        string = "user-id"
	minPassphraseRune int    = 8
)

func newProvision() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "provision",
		Short: "Creates an encrypted keystore for a user.",
		Long: `Generates a fresh mnemonic, encrypts it with the service passphrase
and stores the resulting keystore. Fails if the user already has one.`,
		Run: func(cmd *cobra.Command, _ []string) {
			userID, err := cmd.Flags().GetString(userIDFlag)
			if err != nil || userID == "" {
				fmt.Println("--user-id is required")
				os.Exit(1)
			}

			if err := runProvision(cmd.Context(), userID); err != nil {
				fmt.Printf("Error while provisioning keystore: %v\n", err)
				os.Exit(1)
			}
		},
	}

	cmd.Flags().String(userIDFlag, "", "User to provision a keystore for")

	return cmd
}

func runProvision(ctx context.Context, userID string) error {
	serviceConfig := config.DefaultServiceConfigFromEnv()

	passphrase, err := resolvePassphrase(serviceConfig)
	if err != nil {
		return err
	}

	return command.WithDatabase(ctx, serviceConfig, func(ctx context.Context, db *sql.DB) error {
		seedManager := seed.NewManager(db, passphrase)

		mnemonic, err := seedManager.Provision(ctx, userID)
		if err != nil {
			return err
		}

		// The mnemonic is shown exactly once, for offline backup.
		//nolint:forbidigo // Recovery phrase output requires direct terminal I/O
		fmt.Printf("Keystore created for %s.\nRecovery phrase (write it down, it will not be shown again):\n\n%s\n", userID, mnemonic)

		return nil
	})
}

// resolvePassphrase uses the configured service passphrase and falls back to
// an interactive terminal prompt when it is unset.
func resolvePassphrase(serviceConfig config.Server) (string, error) {
	if serviceConfig.Wallet.ServicePassphrase != "" {
		return serviceConfig.Wallet.ServicePassphrase, nil
	}

	passphrase, err := promptPassphrase("Enter service passphrase (min 8 characters): ")
	if err != nil {
		return "", err
	}

	if len(passphrase) < minPassphraseRune {
		return "", errors.New("passphrase must be at least 8 characters")
	}

	confirm, err := promptPassphrase("Confirm passphrase: ")
	if err != nil {
		return "", err
	}

	if passphrase != confirm {
		return "", errors.New("passphrases do not match")
	}

	return passphrase, nil
}

// promptPassphrase prompts for passphrase input (hides input)
//
//nolint:forbidigo // Passphrase input requires direct terminal I/O
func promptPassphrase(prompt string) (string, error) {
	//nolint:forbidigo // Passphrase input requires direct terminal I/O
	fmt.Print(prompt)

	passphraseBytes, err := term.ReadPassword(syscall.Stdin)
	if err != nil {
		return "", errors.Wrap(err, "failed to read passphrase from terminal")
	}

	//nolint:forbidigo // Passphrase input requires direct terminal I/O
	fmt.Println()

	return string(passphraseBytes), nil
}
