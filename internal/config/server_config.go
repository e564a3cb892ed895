package config

import (
	"fmt"

	"github.com/subosito/gotenv"
	"github/chapool/go-accounts/internal/util"
)

// Database holds the PostgreSQL connection settings for the persisted
// address-cache, delegation and smart-account stores.
type Database struct {
	Host     string
	Port     int
	Username string
	Password string `json:"-"` // sensitive
	Database string
	SSLMode  string
}

// ConnectionString builds a lib/pq DSN from the parts.
func (d Database) ConnectionString() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.Username, d.Password, d.Database, d.SSLMode)
}

// Logger holds zerolog settings.
type Logger struct {
	Level              string
	PrettyPrintConsole bool
}

// Wallet holds the account-engine settings: the service passphrase that
// unlocks per-user keystores and the contract addresses the smart-account
// factories are parameterized with.
type Wallet struct {
	ServicePassphrase string `json:"-"` // sensitive
	EntryPointAddress string
	FactoryAddress    string
	DelegateAddress   string
	UseTestnet        bool
}

// Server is the central, env-driven service configuration.
type Server struct {
	Database Database
	Logger   Logger
	Wallet   Wallet
}

// DefaultServiceConfigFromEnv returns the server config as defined by its
// ENV variables, loading an optional .env.local first.
func DefaultServiceConfigFromEnv() Server {
	// optional local override file, ignored when absent
	_ = gotenv.Load(".env.local")

	return Server{
		Database: Database{
			Host:     util.GetEnv("PGHOST", "postgres"),
			Port:     util.GetEnvAsInt("PGPORT", 5432),
			Username: util.GetEnv("PGUSER", "dbuser"),
			Password: util.GetEnv("PGPASSWORD", ""),
			Database: util.GetEnv("PGDATABASE", "accounts"),
			SSLMode:  util.GetEnv("PGSSLMODE", "disable"),
		},
		Logger: Logger{
			Level:              util.GetEnv("SERVER_LOGGER_LEVEL", "debug"),
			PrettyPrintConsole: util.GetEnvAsBool("SERVER_LOGGER_PRETTY_PRINT_CONSOLE", false),
		},
		Wallet: Wallet{
			ServicePassphrase: util.GetEnv("SERVER_WALLET_SERVICE_PASSPHRASE", ""),
			EntryPointAddress: util.GetEnv("SERVER_WALLET_ENTRY_POINT_ADDRESS", "0x0000000071727De22E5E9d8BAf0edAc6f37da032"),
			FactoryAddress:    util.GetEnv("SERVER_WALLET_FACTORY_ADDRESS", "0x91E60e0613810449d098b0b5Ec8b51A0FE8c8985"),
			DelegateAddress:   util.GetEnv("SERVER_WALLET_DELEGATE_ADDRESS", "0x63c0c19a282a1B52b07dD5a65b58948A07DAE32B"),
			UseTestnet:        util.GetEnvAsBool("SERVER_WALLET_USE_TESTNET", false),
		},
	}
}
