package actions

import (
	"context"
	"path/filepath"

	"github.com/spf13/cobra"
	"github/chapool/orderbook-scripts/internal/config"
	"github/chapool/orderbook-scripts/internal/orders"
	"github/chapool/orderbook-scripts/internal/report"
	"github/chapool/orderbook-scripts/internal/util"
	"github/chapool/orderbook-scripts/internal/util/command"
)

const (
	inputFlag  = "input"
	outputFlag = "output"
)

func New() *cobra.Command {
	return command.NewSubcommandGroup("actions",
		newRun(),
	)
}

func newRun() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Executes a JSON list of pending actions in order",
		Long: `Executes a JSON list of pending actions in order.

TRANSACTION actions are estimated, submitted and awaited, SIGNABLE actions
are signed as EIP-712 typed data. Any other type is reported as unsupported.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.DefaultConfigFromEnv()

			input := dataPath(cmd, cfg, inputFlag)
			output := dataPath(cmd, cfg, outputFlag)

			acts, err := orders.ReadActions(input)
			if err != nil {
				return err
			}

			return command.WithRuntime(cmd.Context(), cfg, command.NeedsSigner, func(ctx context.Context, rt *command.Runtime) error {
				outcomes, err := rt.Orders.RunActions(ctx, acts)
				if err != nil {
					return err
				}

				rows := make([]report.Row, 0, len(outcomes))
				for _, o := range outcomes {
					row := report.Row{ID: o.Purpose, Kind: o.Type, Status: "OK", Detail: util.NonEmptyOr(o.TxHash, o.Signature), Error: o.Error}
					if !o.Success {
						row.Status = "FAILED"
					}
					rows = append(rows, row)
				}
				report.Outcomes(cmd.OutOrStdout(), rows)

				return util.WriteJSONFile(output, outcomes)
			})
		},
	}

	cmd.Flags().String(inputFlag, orders.FileInputActions, "Actions file, relative to the data directory")
	cmd.Flags().String(outputFlag, orders.FileOutputActions, "Outcomes file, relative to the data directory")

	return cmd
}

func dataPath(cmd *cobra.Command, cfg config.Config, flag string) string {
	name, _ := cmd.Flags().GetString(flag)
	if filepath.IsAbs(name) {
		return name
	}
	return cfg.DataFile(name)
}
