package orders

import (
	"github.com/spf13/cobra"
	"github/chapool/orderbook-scripts/internal/util/command"
)

func New() *cobra.Command {
	return command.NewSubcommandGroup("orders",
		newList(),
		newCancelHard(),
		newCancelSoft(),
		newListings(),
		newGet(),
	)
}
