package command

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github/chapool/orderbook-scripts/internal/chain"
	"github/chapool/orderbook-scripts/internal/config"
	"github/chapool/orderbook-scripts/internal/keys"
	"github/chapool/orderbook-scripts/internal/marketplace"
	"github/chapool/orderbook-scripts/internal/orders"
	"github/chapool/orderbook-scripts/internal/signer"
)

// PROVIDERS - https://github.com/google/wire/blob/main/docs/guide.md#defining-providers

func provideRPCClient(ctx context.Context, cfg config.Config, logger zerolog.Logger) (*chain.RPCClient, func(), error) {
	client, err := chain.NewRPCClient(ctx, cfg.Chain.RPCURLs, logger)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to create RPC client")
	}

	return client, client.Close, nil
}

func provideWallet(cfg config.Config, backend signer.Backend, logger zerolog.Logger) (*signer.Wallet, func(), error) {
	key, err := keys.Load(cfg.Wallet)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to load signing key")
	}

	wallet := signer.NewWallet(key, backend, logger)
	logger.Info().Str("address", wallet.Address().Hex()).Msg("Signer loaded")

	return wallet, wallet.Close, nil
}

func provideMarketplaceClient(cfg config.Config, logger zerolog.Logger) *marketplace.Client {
	return marketplace.NewClient(cfg.Marketplace, logger)
}

func provideContracts(cfg config.Config) marketplace.Contracts {
	return marketplace.Contracts{
		ChainID: big.NewInt(cfg.Chain.ChainID),
		Seaport: common.HexToAddress(cfg.Marketplace.SeaportAddress),
		Zone:    common.HexToAddress(cfg.Marketplace.ZoneAddress),
	}
}

func provideOrderbook(api marketplace.API, caller marketplace.ContractCaller, contracts marketplace.Contracts, logger zerolog.Logger) *marketplace.Orderbook {
	return marketplace.NewOrderbook(api, caller, contracts, logger)
}

// 以下 provider 为未请求的依赖返回真正的 nil 接口，而不是包装了 nil 指针的接口

func noContractCaller() marketplace.ContractCaller { return nil }

func noOrderbook() orders.Orderbook { return nil }

func noDispatcher() orders.Dispatcher { return nil }

func noSigner() signer.Signer { return nil }
