package orders

import (
	"context"

	"github.com/spf13/cobra"
	"github/chapool/orderbook-scripts/internal/config"
	"github/chapool/orderbook-scripts/internal/util/command"
)

func newGet() *cobra.Command {
	return &cobra.Command{
		Use:   "get <order-id>",
		Short: "Prints the details of one listing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.DefaultConfigFromEnv()

			return command.WithRuntime(cmd.Context(), cfg, command.NeedsAPI, func(ctx context.Context, rt *command.Runtime) error {
				_, err := rt.Orders.GetListing(ctx, args[0])
				return err
			})
		},
	}
}
