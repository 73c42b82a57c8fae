package probe

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github/chapool/orderbook-scripts/internal/config"
	"github/chapool/orderbook-scripts/internal/marketplace"
	"github/chapool/orderbook-scripts/internal/util/command"
)

func newAPI() *cobra.Command {
	return &cobra.Command{
		Use:   "api",
		Short: "Checks that the marketplace API accepts the publishable key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			verbose, err := cmd.Flags().GetBool(verboseFlag)
			if err != nil {
				return err
			}

			cfg := config.DefaultConfigFromEnv()

			return command.WithRuntime(cmd.Context(), cfg, command.NeedsAPI, func(ctx context.Context, rt *command.Runtime) error {
				res, err := rt.Marketplace.ListListings(ctx, marketplace.ListListingsParams{PageSize: 1})
				if err != nil {
					return err
				}

				if verbose {
					fmt.Fprintf(cmd.OutOrStdout(), "API: %s\nChain: %s\nListings on first page: %d\n",
						cfg.Marketplace.BaseURL, rt.Marketplace.ChainName(), len(res.Result))
				}

				rt.Logger.Info().Str("chain", rt.Marketplace.ChainName()).Msg("API probe succeeded")

				return nil
			})
		},
	}
}
