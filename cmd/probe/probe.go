package probe

import (
	"github.com/spf13/cobra"
	"github/chapool/orderbook-scripts/internal/util/command"
)

const (
	verboseFlag string = "verbose"
)

func New() *cobra.Command {
	cmd := command.NewSubcommandGroup("probe",
		newRPC(),
		newAPI(),
	)
	cmd.PersistentFlags().BoolP(verboseFlag, "v", false, "Show verbose output.")

	return cmd
}
