package inventory

import (
	"context"

	"github.com/spf13/cobra"
	"github/chapool/orderbook-scripts/internal/config"
	"github/chapool/orderbook-scripts/internal/orders"
	"github/chapool/orderbook-scripts/internal/report"
	"github/chapool/orderbook-scripts/internal/util"
	"github/chapool/orderbook-scripts/internal/util/command"
)

const (
	chainFlag    = "chain"
	accountFlag  = "account"
	contractFlag = "contract"
	pageSizeFlag = "page-size"
)

func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inventory",
		Short: "Lists the NFTs held by an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.DefaultConfigFromEnv()

			return command.WithRuntime(cmd.Context(), cfg, command.NeedsAPI, func(ctx context.Context, rt *command.Runtime) error {
				filters := rt.Filters.Inventory
				flags := cmd.Flags()

				if flags.Changed(chainFlag) {
					filters.ChainName, _ = flags.GetString(chainFlag)
				}
				if flags.Changed(accountFlag) {
					filters.AccountAddress, _ = flags.GetString(accountFlag)
				}
				if flags.Changed(contractFlag) {
					filters.ContractAddress, _ = flags.GetString(contractFlag)
				}
				if flags.Changed(pageSizeFlag) {
					filters.PageSize, _ = flags.GetInt(pageSizeFlag)
				}

				if err := (config.Filters{Listings: rt.Filters.Listings, Inventory: filters}).Validate(); err != nil {
					return err
				}

				nfts := rt.Orders.Inventory(ctx, filters)
				report.Inventory(cmd.OutOrStdout(), nfts)

				return util.WriteJSONFile(cfg.DataFile(orders.FileOutputInventory), nfts)
			})
		},
	}

	cmd.Flags().String(chainFlag, "", "Chain name, e.g. imtbl-zkevm-testnet")
	cmd.Flags().String(accountFlag, "", "Account address")
	cmd.Flags().String(contractFlag, "", "Only NFTs of this contract")
	cmd.Flags().Int(pageSizeFlag, 0, "Page size (1-200)")

	return cmd
}
