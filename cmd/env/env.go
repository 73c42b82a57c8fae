package env

import (
	"fmt"

	"github.com/spf13/cobra"
	"github/chapool/orderbook-scripts/internal/config"
	"github/chapool/orderbook-scripts/internal/util"
)

type effectiveConfig struct {
	config.Config

	HasPrivateKey     bool           `json:"hasPrivateKey"`
	HasMnemonic       bool           `json:"hasMnemonic"`
	HasPublishableKey bool           `json:"hasPublishableKey"`
	Filters           config.Filters `json:"filters"`
}

func New() *cobra.Command {
	return &cobra.Command{
		Use:   "env",
		Short: "Prints the effective configuration as JSON",
		Long: `Prints the effective configuration as JSON.
Secrets are never printed, only whether they are set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.DefaultConfigFromEnv()

			filters, err := config.LoadFilters(cfg.Paths.FiltersFile)
			if err != nil {
				return err
			}

			out := effectiveConfig{
				Config:            cfg,
				HasPrivateKey:     cfg.Wallet.PrivateKey != "",
				HasMnemonic:       cfg.Wallet.Mnemonic != "",
				HasPublishableKey: cfg.Marketplace.PublishableKey != "",
				Filters:           filters,
			}

			fmt.Fprintln(cmd.OutOrStdout(), util.PrettyJSON(out))

			return nil
		},
	}
}
