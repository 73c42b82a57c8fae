package probe

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github/chapool/orderbook-scripts/internal/config"
	"github/chapool/orderbook-scripts/internal/util/command"
)

func newRPC() *cobra.Command {
	return &cobra.Command{
		Use:   "rpc",
		Short: "Checks that the RPC node answers and serves the configured chain",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			verbose, err := cmd.Flags().GetBool(verboseFlag)
			if err != nil {
				return err
			}

			cfg := config.DefaultConfigFromEnv()

			return command.WithRuntime(cmd.Context(), cfg, command.NeedsChain, func(ctx context.Context, rt *command.Runtime) error {
				chainID, err := rt.Chain.ChainID(ctx)
				if err != nil {
					return err
				}

				if chainID.Int64() != cfg.Chain.ChainID {
					return errors.Errorf("RPC node serves chain %s, expected %d", chainID, cfg.Chain.ChainID)
				}

				block, err := rt.Chain.BlockNumber(ctx)
				if err != nil {
					return err
				}

				if verbose {
					fmt.Fprintf(cmd.OutOrStdout(), "Chain ID: %s\nLatest block: %d\n", chainID, block)
				}

				rt.Logger.Info().Str("chain_id", chainID.String()).Uint64("block", block).Msg("RPC probe succeeded")

				return nil
			})
		},
	}
}
