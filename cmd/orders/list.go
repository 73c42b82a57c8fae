package orders

import (
	"context"

	"github.com/spf13/cobra"
	"github/chapool/orderbook-scripts/internal/config"
	"github/chapool/orderbook-scripts/internal/orders"
	"github/chapool/orderbook-scripts/internal/report"
	"github/chapool/orderbook-scripts/internal/util"
	"github/chapool/orderbook-scripts/internal/util/command"
)

func newList() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Creates listings for the items in " + orders.FileInputListOrders,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.DefaultConfigFromEnv()
			req := command.NeedsAPI | command.NeedsSigner | command.NeedsOrderContracts

			return command.WithRuntime(cmd.Context(), cfg, req, func(ctx context.Context, rt *command.Runtime) error {
				params, err := orders.ReadListingParams(cfg.DataFile(orders.FileInputListOrders))
				if err != nil {
					return err
				}

				res, err := rt.Orders.ListForSale(ctx, params)
				if err != nil {
					return err
				}

				report.CreatedListings(cmd.OutOrStdout(), res)

				return util.WriteJSONFile(cfg.DataFile(orders.FileOutputListOrders), res)
			})
		},
	}
}
