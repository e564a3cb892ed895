package env

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github/chapool/go-accounts/internal/config"
)

func New() *cobra.Command {
	return &cobra.Command{
		Use:   "env",
		Short: "Prints the effective server environment",
		Long:  `Prints the resolved service configuration with sensitive values redacted.`,
		Run: func(_ *cobra.Command, _ []string) {
			runEnv()
		},
	}
}

func runEnv() {
	cfg := config.DefaultServiceConfigFromEnv()

	c, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		fmt.Printf("Failed to marshal config: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(string(c))
}
