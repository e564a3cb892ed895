package account

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"github/chapool/go-accounts/internal/wallet/derivation"
)

func newPath() *cobra.Command {
	return &cobra.Command{
		Use:   "path [index|path]",
		Short: "Builds or parses a Substrate derivation path.",
		Long: `With a numeric argument, prints the derivation path for that account
index. With a path argument, prints the account index it encodes.`,
		Args: cobra.ExactArgs(1),
		Run: func(_ *cobra.Command, args []string) {
			if err := runPath(args[0]); err != nil {
				fmt.Printf("Error: %v\n", err)
				os.Exit(1)
			}
		},
	}
}

func runPath(arg string) error {
	if accountIndex, err := strconv.Atoi(arg); err == nil {
		path, err := derivation.BuildPath(accountIndex)
		if err != nil {
			return err
		}

		fmt.Println(path)

		return nil
	}

	accountIndex, ok := derivation.ParsePath(arg)
	if !ok {
		return fmt.Errorf("%q is not a valid derivation path", arg)
	}

	fmt.Println(accountIndex)

	return nil
}
