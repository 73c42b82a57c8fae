package gas

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github/chapool/orderbook-scripts/internal/config"
	"github/chapool/orderbook-scripts/internal/util"
	"github/chapool/orderbook-scripts/internal/util/command"
)

const (
	toFlag    = "to"
	dataFlag  = "data"
	valueFlag = "value"
)

func New() *cobra.Command {
	return command.NewSubcommandGroup("gas",
		newEstimate(),
	)
}

type estimateOutput struct {
	To       string `json:"to"`
	Raw      uint64 `json:"raw"`
	GasLimit uint64 `json:"gasLimit"`
	Fallback bool   `json:"fallback"`
	Error    string `json:"error,omitempty"`
}

func newEstimate() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "estimate",
		Short: "Prints the buffered gas limit the dispatcher would use for a call",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			toRaw, _ := cmd.Flags().GetString(toFlag)
			dataRaw, _ := cmd.Flags().GetString(dataFlag)
			valueRaw, _ := cmd.Flags().GetString(valueFlag)

			if !common.IsHexAddress(toRaw) {
				return errors.Errorf("--%s is not a valid address: %q", toFlag, toRaw)
			}
			to := common.HexToAddress(toRaw)

			data, err := hexutil.Decode(dataRaw)
			if err != nil {
				return errors.Wrapf(err, "invalid --%s", dataFlag)
			}

			value, ok := math.ParseBig256(valueRaw)
			if !ok {
				return errors.Errorf("invalid --%s %q", valueFlag, valueRaw)
			}

			cfg := config.DefaultConfigFromEnv()

			return command.WithRuntime(cmd.Context(), cfg, command.NeedsChain, func(ctx context.Context, rt *command.Runtime) error {
				estimate := rt.Estimator.Estimate(ctx, to, data, value)

				out := estimateOutput{
					To:       to.Hex(),
					Raw:      estimate.Raw,
					GasLimit: estimate.GasLimit,
					Fallback: estimate.Fallback(),
				}
				if estimate.Err != nil {
					out.Error = estimate.Err.Error()
				}

				fmt.Fprintln(cmd.OutOrStdout(), util.PrettyJSON(out))

				return nil
			})
		},
	}

	cmd.Flags().String(toFlag, "", "Recipient address (required)")
	cmd.Flags().String(dataFlag, "0x", "Hex encoded calldata")
	cmd.Flags().String(valueFlag, "0", "Value in wei, decimal or 0x hex")
	_ = cmd.MarkFlagRequired(toFlag)

	return cmd
}
