package orders_test

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"github.com/stretchr/testify/mock"
	"github/chapool/orderbook-scripts/internal/action"
	"github/chapool/orderbook-scripts/internal/gas"
	"github/chapool/orderbook-scripts/internal/marketplace"
	"github/chapool/orderbook-scripts/internal/signer"
)

var maker = common.HexToAddress("0x00000000000000000000000000000000000000aa")

type mockOrderbook struct {
	mock.Mock
}

func (m *mockOrderbook) ChainName() string {
	return "imtbl-zkevm-testnet"
}

func (m *mockOrderbook) ListListings(ctx context.Context, params marketplace.ListListingsParams) (*marketplace.ListListingsResult, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*marketplace.ListListingsResult), args.Error(1)
}

func (m *mockOrderbook) GetListing(ctx context.Context, id string) (*marketplace.Listing, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*marketplace.Listing), args.Error(1)
}

func (m *mockOrderbook) CreateListing(ctx context.Context, req marketplace.CreateListingRequest) (*marketplace.Listing, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*marketplace.Listing), args.Error(1)
}

func (m *mockOrderbook) CancelOrders(ctx context.Context, orderIDs []string, accountAddress string, signature string) (*marketplace.CancelOrdersResponse, error) {
	args := m.Called(ctx, orderIDs, accountAddress, signature)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*marketplace.CancelOrdersResponse), args.Error(1)
}

func (m *mockOrderbook) ListNFTsByAccountAddress(ctx context.Context, params marketplace.ListNFTsParams) (*marketplace.ListNFTsResult, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*marketplace.ListNFTsResult), args.Error(1)
}

func (m *mockOrderbook) PrepareBulkListings(ctx context.Context, maker common.Address, params []marketplace.ListingParams) (*marketplace.PreparedListings, error) {
	args := m.Called(ctx, maker, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*marketplace.PreparedListings), args.Error(1)
}

func (m *mockOrderbook) CompleteListings(ctx context.Context, prepared *marketplace.PreparedListings, signatures []string) (*marketplace.BulkListingsResult, error) {
	args := m.Called(ctx, prepared, signatures)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*marketplace.BulkListingsResult), args.Error(1)
}

func (m *mockOrderbook) CancelOrdersOnChain(ctx context.Context, orderIDs []string, account common.Address) (*action.TransactionAction, error) {
	args := m.Called(ctx, orderIDs, account)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*action.TransactionAction), args.Error(1)
}

func (m *mockOrderbook) PrepareOrderCancellations(orderIDs []string) (*action.SignableAction, error) {
	args := m.Called(orderIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*action.SignableAction), args.Error(1)
}

type mockDispatcher struct {
	mock.Mock
}

func (m *mockDispatcher) Dispatch(ctx context.Context, s signer.Signer, act action.PendingAction, overrides *gas.Overrides) action.Result {
	args := m.Called(ctx, s, act, overrides)
	return args.Get(0).(action.Result)
}

// stubSigner is never called directly: the dispatcher mock stands in for it.
type stubSigner struct{}

func (stubSigner) Address() common.Address { return maker }

func (stubSigner) SendTransaction(context.Context, signer.TxRequest) (*types.Transaction, error) {
	panic("unexpected SendTransaction")
}

func (stubSigner) SignTypedData(context.Context, apitypes.TypedDataDomain, apitypes.Types, apitypes.TypedDataMessage) (string, error) {
	panic("unexpected SignTypedData")
}
