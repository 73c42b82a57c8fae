package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

// Environment selects the marketplace deployment the scripts talk to.
type Environment string

const (
	EnvironmentSandbox    Environment = "sandbox"
	EnvironmentProduction Environment = "production"
)

const (
	sandboxBaseURL    = "https://api.sandbox.immutable.com"
	productionBaseURL = "https://api.immutable.com"

	sandboxChainName    = "imtbl-zkevm-testnet"
	productionChainName = "imtbl-zkevm-mainnet"

	sandboxChainID    int64 = 13473
	productionChainID int64 = 13371

	DefaultDerivationPath = "m/44'/60'/0'/0/0"
	defaultHTTPTimeout    = 30 * time.Second
	defaultDataDir        = "dataio"
	defaultFiltersFile    = "config/filters.toml"
)

var (
	ErrMissingSigner         = errors.New("PRIVATE_KEY or MNEMONIC must be set")
	ErrMissingRPCURL         = errors.New("RPC_URL must be set")
	ErrMissingPublishableKey = errors.New("PUBLISHABLE_KEY must be set")
	ErrInvalidEnvironment    = errors.New("ENVIRONMENT must be sandbox or production")
)

type Logger struct {
	Level              zerolog.Level `json:"level"`
	PrettyPrintConsole bool          `json:"prettyPrintConsole"`
}

type Chain struct {
	// RPCURLs 按顺序用于故障转移
	RPCURLs []string `json:"rpcUrls"`
	// ChainID defaults to the chain of the selected environment.
	ChainID int64 `json:"chainId"`
}

type Wallet struct {
	PrivateKey       string `json:"-"`
	Mnemonic         string `json:"-"`
	MnemonicPassword string `json:"-"`
	DerivationPath   string `json:"derivationPath"`
}

type Marketplace struct {
	Environment    Environment   `json:"environment"`
	PublishableKey string        `json:"-"`
	BaseURL        string        `json:"baseUrl"`
	ChainName      string        `json:"chainName"`
	SeaportAddress string        `json:"seaportAddress"`
	ZoneAddress    string        `json:"zoneAddress"`
	HTTPTimeout    time.Duration `json:"httpTimeout"`
}

type Paths struct {
	DataDir     string `json:"dataDir"`
	FiltersFile string `json:"filtersFile"`
}

// Config is the complete runtime configuration of every script.
type Config struct {
	Logger      Logger      `json:"logger"`
	Chain       Chain       `json:"chain"`
	Wallet      Wallet      `json:"wallet"`
	Marketplace Marketplace `json:"marketplace"`
	Paths       Paths       `json:"paths"`
}

// LoadDotEnv loads KEY=VALUE pairs from the given file into the process
// environment. Variables that are already set keep their value and a missing
// file is not an error.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}

	if err := gotenv.Load(path); err != nil {
		return errors.Wrapf(err, "failed to load env file %s", path)
	}

	return nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("LOG_LEVEL", zerolog.InfoLevel.String())
	v.SetDefault("LOG_PRETTY", true)
	v.SetDefault("ENVIRONMENT", string(EnvironmentSandbox))
	v.SetDefault("DERIVATION_PATH", DefaultDerivationPath)
	v.SetDefault("HTTP_TIMEOUT", defaultHTTPTimeout)
	v.SetDefault("DATA_DIR", defaultDataDir)
	v.SetDefault("FILTERS_FILE", defaultFiltersFile)

	return v
}

// DefaultConfigFromEnv builds the configuration from the environment. Values
// that depend on the selected environment (base URL, chain) are filled in
// unless explicitly overridden.
func DefaultConfigFromEnv() Config {
	v := newViper()

	level, err := zerolog.ParseLevel(strings.ToLower(v.GetString("LOG_LEVEL")))
	if err != nil {
		level = zerolog.InfoLevel
	}

	env := Environment(strings.ToLower(v.GetString("ENVIRONMENT")))

	cfg := Config{
		Logger: Logger{
			Level:              level,
			PrettyPrintConsole: v.GetBool("LOG_PRETTY"),
		},
		Chain: Chain{
			RPCURLs: splitList(v.GetString("RPC_URL")),
			ChainID: v.GetInt64("CHAIN_ID"),
		},
		Wallet: Wallet{
			PrivateKey:       v.GetString("PRIVATE_KEY"),
			Mnemonic:         v.GetString("MNEMONIC"),
			MnemonicPassword: v.GetString("MNEMONIC_PASSWORD"),
			DerivationPath:   v.GetString("DERIVATION_PATH"),
		},
		Marketplace: Marketplace{
			Environment:    env,
			PublishableKey: v.GetString("PUBLISHABLE_KEY"),
			BaseURL:        v.GetString("API_BASE_URL"),
			ChainName:      v.GetString("CHAIN_NAME"),
			SeaportAddress: v.GetString("SEAPORT_ADDRESS"),
			ZoneAddress:    v.GetString("ZONE_ADDRESS"),
			HTTPTimeout:    v.GetDuration("HTTP_TIMEOUT"),
		},
		Paths: Paths{
			DataDir:     v.GetString("DATA_DIR"),
			FiltersFile: v.GetString("FILTERS_FILE"),
		},
	}

	cfg.applyEnvironmentDefaults()

	return cfg
}

func (c *Config) applyEnvironmentDefaults() {
	switch c.Marketplace.Environment {
	case EnvironmentProduction:
		if c.Marketplace.BaseURL == "" {
			c.Marketplace.BaseURL = productionBaseURL
		}
		if c.Marketplace.ChainName == "" {
			c.Marketplace.ChainName = productionChainName
		}
		if c.Chain.ChainID == 0 {
			c.Chain.ChainID = productionChainID
		}
	case EnvironmentSandbox:
		if c.Marketplace.BaseURL == "" {
			c.Marketplace.BaseURL = sandboxBaseURL
		}
		if c.Marketplace.ChainName == "" {
			c.Marketplace.ChainName = sandboxChainName
		}
		if c.Chain.ChainID == 0 {
			c.Chain.ChainID = sandboxChainID
		}
	}
}

// ValidateMarketplace checks what every marketplace API call needs.
func (c Config) ValidateMarketplace() error {
	switch c.Marketplace.Environment {
	case EnvironmentSandbox, EnvironmentProduction:
	default:
		return errors.Wrapf(ErrInvalidEnvironment, "got %q", c.Marketplace.Environment)
	}

	if c.Marketplace.PublishableKey == "" {
		return ErrMissingPublishableKey
	}

	return nil
}

// ValidateSigner checks what every command that signs or submits needs.
func (c Config) ValidateSigner() error {
	if c.Wallet.PrivateKey == "" && c.Wallet.Mnemonic == "" {
		return ErrMissingSigner
	}

	if len(c.Chain.RPCURLs) == 0 {
		return ErrMissingRPCURL
	}

	return nil
}

// ValidateOrderContracts checks the contract addresses needed to build
// Seaport orders and cancellations.
func (c Config) ValidateOrderContracts() error {
	if !common.IsHexAddress(c.Marketplace.SeaportAddress) {
		return errors.Errorf("SEAPORT_ADDRESS is not a valid address: %q", c.Marketplace.SeaportAddress)
	}

	if !common.IsHexAddress(c.Marketplace.ZoneAddress) {
		return errors.Errorf("ZONE_ADDRESS is not a valid address: %q", c.Marketplace.ZoneAddress)
	}

	return nil
}

// DataFile resolves a file name inside the data directory.
func (c Config) DataFile(name string) string {
	return filepath.Join(c.Paths.DataDir, name)
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}

	return out
}
