package config

import "fmt"

// ModuleName is the name of this module, used by the root command.
const ModuleName = "github/chapool/go-accounts"

// The following vars are automatically injected via -ldflags.
//
//nolint:gochecknoglobals
var (
	Commit    = "unknown"
	BuildDate = "unknown"
)

// GetFormattedBuildArgs returns the build arguments as "<commit> (<date>)".
func GetFormattedBuildArgs() string {
	return fmt.Sprintf("%v @ %v", Commit, BuildDate)
}
