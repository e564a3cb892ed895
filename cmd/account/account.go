package account

import (
	"github.com/spf13/cobra"
	"github/chapool/go-accounts/internal/util/command"
)

func New() *cobra.Command {
	return command.NewSubcommandGroup("account",
		newProvision(),
		newDerive(),
		newDelegate(),
		newPath(),
	)
}
