package orders

import (
	"context"

	"github.com/spf13/cobra"
	"github/chapool/orderbook-scripts/internal/action"
	"github/chapool/orderbook-scripts/internal/config"
	"github/chapool/orderbook-scripts/internal/orders"
	"github/chapool/orderbook-scripts/internal/report"
	"github/chapool/orderbook-scripts/internal/util"
	"github/chapool/orderbook-scripts/internal/util/command"
)

func newCancelHard() *cobra.Command {
	return &cobra.Command{
		Use:   "cancel-hard",
		Short: "Cancels the orders in " + orders.FileInputCancelOrdersHard + " on chain",
		Long: `Cancels each order of ` + orders.FileInputCancelOrdersHard + ` with its own
Seaport cancel transaction. A failed order does not stop the others.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.DefaultConfigFromEnv()

			ids, err := orders.ReadOrderIDs(cfg.DataFile(orders.FileInputCancelOrdersHard))
			if err != nil {
				return err
			}

			return command.WithRuntime(cmd.Context(), cfg, command.NeedsAPI|command.NeedsSigner, func(ctx context.Context, rt *command.Runtime) error {
				outcomes, err := rt.Orders.CancelHard(ctx, ids)
				if err != nil {
					return err
				}

				rows := make([]report.Row, 0, len(outcomes))
				for _, o := range outcomes {
					row := report.Row{ID: o.OrderID, Kind: action.TypeTransaction, Status: "CANCELLED", Detail: o.TxHash, Error: o.Error}
					if !o.Success {
						row.Status = "FAILED"
					}
					rows = append(rows, row)
				}
				report.Outcomes(cmd.OutOrStdout(), rows)

				return util.WriteJSONFile(cfg.DataFile(orders.FileOutputCancelOrdersHard), outcomes)
			})
		},
	}
}

func newCancelSoft() *cobra.Command {
	return &cobra.Command{
		Use:   "cancel-soft",
		Short: "Cancels the orders in " + orders.FileInputCancelOrdersSoft + " with a signed gasless request",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.DefaultConfigFromEnv()

			ids, err := orders.ReadOrderIDs(cfg.DataFile(orders.FileInputCancelOrdersSoft))
			if err != nil {
				return err
			}

			return command.WithRuntime(cmd.Context(), cfg, command.NeedsAPI|command.NeedsSigner, func(ctx context.Context, rt *command.Runtime) error {
				res, err := rt.Orders.CancelSoft(ctx, ids)
				if err != nil {
					return err
				}

				return util.WriteJSONFile(cfg.DataFile(orders.FileOutputCancelOrdersSoft), res)
			})
		},
	}
}
