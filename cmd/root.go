package cmd

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github/chapool/orderbook-scripts/cmd/actions"
	"github/chapool/orderbook-scripts/cmd/env"
	"github/chapool/orderbook-scripts/cmd/gas"
	"github/chapool/orderbook-scripts/cmd/inventory"
	"github/chapool/orderbook-scripts/cmd/orders"
	"github/chapool/orderbook-scripts/cmd/probe"
	"github/chapool/orderbook-scripts/cmd/tx"
	"github/chapool/orderbook-scripts/internal/config"
)

const envFileFlag = "env-file"

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Version: config.GetFormattedBuildArgs(),
	Use:     "app",
	Short:   config.ModuleName,
	Long: fmt.Sprintf(`%v

Scripts to list, cancel and inspect marketplace orders.
Requires configuration through ENV or an .env file.`, config.ModuleName),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		path, err := cmd.Flags().GetString(envFileFlag)
		if err != nil {
			return err
		}
		return config.LoadDotEnv(path)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
	rootCmd.PersistentFlags().String(envFileFlag, ".env", "Path of the env file to load before reading ENV")

	// attach the subcommands
	rootCmd.AddCommand(
		actions.New(),
		env.New(),
		gas.New(),
		inventory.New(),
		orders.New(),
		probe.New(),
		tx.New(),
	)

	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("Failed to execute root command")
		os.Exit(1)
	}
}
