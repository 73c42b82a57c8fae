package tx

import (
	"context"
	"fmt"
	"io"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github/chapool/orderbook-scripts/internal/config"
	"github/chapool/orderbook-scripts/internal/marketplace"
	"github/chapool/orderbook-scripts/internal/util/command"
)

func New() *cobra.Command {
	return command.NewSubcommandGroup("tx",
		newCheck(),
	)
}

func newCheck() *cobra.Command {
	return &cobra.Command{
		Use:   "check <tx-hash>",
		Short: "Prints the status of a submitted transaction",
		Long: `Prints the status of a submitted transaction.
Seaport cancel transactions also list the cancelled orders.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw := args[0]
			if len(common.FromHex(raw)) != common.HashLength {
				return errors.Errorf("invalid transaction hash %q", raw)
			}
			hash := common.HexToHash(raw)

			cfg := config.DefaultConfigFromEnv()

			return command.WithRuntime(cmd.Context(), cfg, command.NeedsChain, func(ctx context.Context, rt *command.Runtime) error {
				out := cmd.OutOrStdout()

				tx, isPending, err := rt.Chain.TransactionByHash(ctx, hash)
				if errors.Is(err, ethereum.NotFound) {
					return errors.Errorf("transaction %s not found", hash.Hex())
				}
				if err != nil {
					return err
				}

				fmt.Fprintf(out, "Transaction Hash: %s\n", hash.Hex())
				fmt.Fprintf(out, "Chain ID: %d\n", cfg.Chain.ChainID)
				if tx.To() != nil {
					fmt.Fprintf(out, "To: %s\n", tx.To().Hex())
				}
				fmt.Fprintf(out, "Gas Limit: %d\n", tx.Gas())

				if isPending {
					fmt.Fprintln(out, "Status: pending")
					return nil
				}

				receipt, err := rt.Chain.TransactionReceipt(ctx, hash)
				if err != nil {
					return err
				}

				status := "success"
				if receipt.Status == types.ReceiptStatusFailed {
					status = "reverted"
				}

				fmt.Fprintf(out, "Block Number: %s\n", receipt.BlockNumber)
				fmt.Fprintf(out, "Block Hash: %s\n", receipt.BlockHash.Hex())
				fmt.Fprintf(out, "Gas Used: %d\n", receipt.GasUsed)
				fmt.Fprintf(out, "Status: %s\n", status)

				printCancelledOrders(out, tx.Data())

				return nil
			})
		},
	}
}

func printCancelledOrders(out io.Writer, data []byte) {
	orders, err := marketplace.DecodeCancel(data)
	if err != nil {
		return
	}

	fmt.Fprintf(out, "\nSeaport cancel of %d order(s):\n", len(orders))
	for _, order := range orders {
		hash, err := order.Hash()
		if err != nil {
			fmt.Fprintf(out, "  offerer %s salt %s (hash unavailable: %v)\n", order.Offerer.Hex(), order.Salt, err)
			continue
		}
		fmt.Fprintf(out, "  %s offerer %s\n", hash.Hex(), order.Offerer.Hex())
	}
}
