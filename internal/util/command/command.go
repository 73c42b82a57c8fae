package command

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github/chapool/orderbook-scripts/internal/action"
	"github/chapool/orderbook-scripts/internal/chain"
	"github/chapool/orderbook-scripts/internal/config"
	"github/chapool/orderbook-scripts/internal/gas"
	"github/chapool/orderbook-scripts/internal/marketplace"
	"github/chapool/orderbook-scripts/internal/orders"
	"github/chapool/orderbook-scripts/internal/signer"
)

// NewSubcommandGroup returns a command that only groups subcommands and prints
// its help when run on its own.
func NewSubcommandGroup(use string, subcommands ...*cobra.Command) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: use + " related subcommands",
		Run: func(cmd *cobra.Command, _ []string) {
			if err := cmd.Help(); err != nil {
				log.Error().Err(err).Msg("Failed to print help")
			}
		},
	}

	cmd.AddCommand(subcommands...)

	return cmd
}

// SetupLogger configures the global zerolog logger and returns it.
func SetupLogger(cfg config.Logger) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	zerolog.SetGlobalLevel(cfg.Level)

	if cfg.PrettyPrintConsole {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})
	} else {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	return log.Logger
}

// Requirements selects what WithRuntime has to build for a command.
type Requirements uint8

const (
	// NeedsAPI builds the marketplace client and orderbook.
	NeedsAPI Requirements = 1 << iota
	// NeedsChain connects to the RPC nodes and builds the dispatcher.
	NeedsChain
	// NeedsSigner loads the key and implies NeedsChain.
	NeedsSigner
	// NeedsOrderContracts validates the Seaport and zone addresses.
	NeedsOrderContracts
)

func (r Requirements) has(flag Requirements) bool {
	return r&flag != 0
}

// Runtime holds everything a command needs. Fields for requirements that
// were not requested stay nil.
type Runtime struct {
	Config  config.Config
	Logger  zerolog.Logger
	Filters config.Filters

	Chain      *chain.RPCClient
	Estimator  *gas.Estimator
	Dispatcher *action.Dispatcher
	Wallet     *signer.Wallet

	Marketplace *marketplace.Client
	Orderbook   *marketplace.Orderbook
	Orders      *orders.Service
}

// WithRuntime validates cfg, builds the runtime for req and runs fn with a
// context that is cancelled on SIGINT or SIGTERM. Connections and key
// material are released once fn returns.
func WithRuntime(ctx context.Context, cfg config.Config, req Requirements, fn func(ctx context.Context, rt *Runtime) error) error {
	logger := SetupLogger(cfg.Logger)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if req.has(NeedsSigner) {
		req |= NeedsChain
		if err := cfg.ValidateSigner(); err != nil {
			return err
		}
	}

	if req.has(NeedsChain) && len(cfg.Chain.RPCURLs) == 0 {
		return config.ErrMissingRPCURL
	}

	if req.has(NeedsAPI) {
		if err := cfg.ValidateMarketplace(); err != nil {
			return err
		}
	}

	if req.has(NeedsOrderContracts) {
		if err := cfg.ValidateOrderContracts(); err != nil {
			return err
		}
	}

	filters, err := config.LoadFilters(cfg.Paths.FiltersFile)
	if err != nil {
		return err
	}

	var (
		rt      *Runtime
		cleanup func()
	)
	switch {
	case req.has(NeedsAPI) && req.has(NeedsSigner):
		rt, cleanup, err = InitFullRuntime(ctx, cfg, filters, logger)
	case req.has(NeedsAPI) && req.has(NeedsChain):
		return errors.New("a command that needs the API and the chain must also need the signer")
	case req.has(NeedsSigner):
		rt, cleanup, err = InitSignerRuntime(ctx, cfg, filters, logger)
	case req.has(NeedsChain):
		rt, cleanup, err = InitChainRuntime(ctx, cfg, filters, logger)
	case req.has(NeedsAPI):
		rt, cleanup, err = InitAPIRuntime(cfg, filters, logger)
	default:
		return errors.New("no runtime requirements given")
	}
	if err != nil {
		return err
	}
	defer cleanup()

	return fn(ctx, rt)
}
