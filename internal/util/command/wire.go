//go:build wireinject

package command

import (
	"context"

	"github.com/google/wire"
	"github.com/rs/zerolog"
	"github/chapool/orderbook-scripts/internal/action"
	"github/chapool/orderbook-scripts/internal/chain"
	"github/chapool/orderbook-scripts/internal/config"
	"github/chapool/orderbook-scripts/internal/gas"
	"github/chapool/orderbook-scripts/internal/marketplace"
	"github/chapool/orderbook-scripts/internal/orders"
	"github/chapool/orderbook-scripts/internal/signer"
)

// INJECTORS - https://github.com/google/wire/blob/main/docs/guide.md#injectors

// chainSet connects to the RPC nodes and builds the estimator and dispatcher on top.
var chainSet = wire.NewSet(
	provideRPCClient,
	gas.NewEstimator,
	action.NewDispatcher,
	wire.Bind(new(gas.Caller), new(*chain.RPCClient)),
	wire.Bind(new(action.GasEstimator), new(*gas.Estimator)),
	wire.Bind(new(action.Confirmer), new(*chain.RPCClient)),
	wire.Bind(new(orders.Dispatcher), new(*action.Dispatcher)),
)

var signerSet = wire.NewSet(
	provideWallet,
	wire.Bind(new(signer.Backend), new(*chain.RPCClient)),
	wire.Bind(new(signer.Signer), new(*signer.Wallet)),
)

var apiSet = wire.NewSet(
	provideMarketplaceClient,
	provideContracts,
	provideOrderbook,
	wire.Bind(new(marketplace.API), new(*marketplace.Client)),
	wire.Bind(new(orders.Orderbook), new(*marketplace.Orderbook)),
)

// InitChainRuntime returns a runtime that can estimate and submit
// transactions but holds no key and no marketplace client.
func InitChainRuntime(
	_ context.Context,
	_ config.Config,
	_ config.Filters,
	_ zerolog.Logger,
) (*Runtime, func(), error) {
	wire.Build(
		chainSet,
		noOrderbook,
		noSigner,
		orders.NewService,
		wire.Struct(new(Runtime), "Config", "Logger", "Filters", "Chain", "Estimator", "Dispatcher", "Orders"),
	)
	return new(Runtime), nil, nil
}

// InitSignerRuntime returns a chain runtime with the signing key loaded.
func InitSignerRuntime(
	_ context.Context,
	_ config.Config,
	_ config.Filters,
	_ zerolog.Logger,
) (*Runtime, func(), error) {
	wire.Build(
		chainSet,
		signerSet,
		noOrderbook,
		orders.NewService,
		wire.Struct(new(Runtime), "Config", "Logger", "Filters", "Chain", "Estimator", "Dispatcher", "Wallet", "Orders"),
	)
	return new(Runtime), nil, nil
}

// InitAPIRuntime returns a runtime that only talks to the marketplace API.
// The orderbook gets no contract caller, so nothing that reads chain state
// may be called on it.
func InitAPIRuntime(
	_ config.Config,
	_ config.Filters,
	_ zerolog.Logger,
) (*Runtime, func(), error) {
	wire.Build(
		apiSet,
		noContractCaller,
		noDispatcher,
		noSigner,
		orders.NewService,
		wire.Struct(new(Runtime), "Config", "Logger", "Filters", "Marketplace", "Orderbook", "Orders"),
	)
	return new(Runtime), nil, nil
}

// InitFullRuntime returns a runtime with the chain, the signing key and the
// marketplace API all wired together.
func InitFullRuntime(
	_ context.Context,
	_ config.Config,
	_ config.Filters,
	_ zerolog.Logger,
) (*Runtime, func(), error) {
	wire.Build(
		chainSet,
		signerSet,
		apiSet,
		wire.Bind(new(marketplace.ContractCaller), new(*chain.RPCClient)),
		orders.NewService,
		wire.Struct(new(Runtime), "*"),
	)
	return new(Runtime), nil, nil
}
