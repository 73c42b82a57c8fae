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

const (
	contractFlag      = "contract"
	accountFlag       = "account"
	statusFlag        = "status"
	pageSizeFlag      = "page-size"
	sortByFlag        = "sort-by"
	sortDirectionFlag = "sort-direction"
	fromUpdatedAtFlag = "from-updated-at"
)

func newListings() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "listings",
		Short: "Lists orders matching the filters file and flags",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.DefaultConfigFromEnv()

			return command.WithRuntime(cmd.Context(), cfg, command.NeedsAPI, func(ctx context.Context, rt *command.Runtime) error {
				filters, err := applyListingFlags(cmd, rt.Filters.Listings)
				if err != nil {
					return err
				}

				listings, err := rt.Orders.Listings(ctx, filters)
				if err != nil {
					return err
				}

				report.Listings(cmd.OutOrStdout(), listings)

				return util.WriteJSONFile(cfg.DataFile(orders.FileOutputListedOrders), orders.IndexByID(listings))
			})
		},
	}

	cmd.Flags().String(contractFlag, "", "Sell item contract address")
	cmd.Flags().String(accountFlag, "", "Maker account address")
	cmd.Flags().String(statusFlag, "", "Order status, e.g. ACTIVE")
	cmd.Flags().Int(pageSizeFlag, 0, "Page size (1-200)")
	cmd.Flags().String(sortByFlag, "", "created_at, updated_at or buy_item_amount")
	cmd.Flags().String(sortDirectionFlag, "", "asc or desc")
	cmd.Flags().String(fromUpdatedAtFlag, "", "Only orders updated since this RFC 3339 time")

	return cmd
}

// applyListingFlags overrides filters with the flags that were set.
func applyListingFlags(cmd *cobra.Command, filters config.ListingFilters) (config.ListingFilters, error) {
	flags := cmd.Flags()

	stringFlags := map[string]*string{
		contractFlag:      &filters.ContractAddress,
		accountFlag:       &filters.AccountAddress,
		statusFlag:        &filters.Status,
		sortByFlag:        &filters.SortBy,
		sortDirectionFlag: &filters.SortDirection,
		fromUpdatedAtFlag: &filters.FromUpdatedAt,
	}
	for name, target := range stringFlags {
		if !flags.Changed(name) {
			continue
		}
		v, err := flags.GetString(name)
		if err != nil {
			return filters, err
		}
		*target = v
	}

	if flags.Changed(pageSizeFlag) {
		v, err := flags.GetInt(pageSizeFlag)
		if err != nil {
			return filters, err
		}
		filters.PageSize = v
	}

	merged := config.Filters{Listings: filters, Inventory: config.DefaultFilters().Inventory}
	if err := merged.Validate(); err != nil {
		return filters, err
	}

	return filters, nil
}
