package marketplace_test

import (
	"bytes"
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/mock"
	"github/chapool/orderbook-scripts/internal/marketplace"
)

type mockAPI struct {
	mock.Mock
}

func (m *mockAPI) ChainName() string {
	return "imtbl-zkevm-testnet"
}

func (m *mockAPI) ListListings(ctx context.Context, params marketplace.ListListingsParams) (*marketplace.ListListingsResult, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*marketplace.ListListingsResult), args.Error(1)
}

func (m *mockAPI) GetListing(ctx context.Context, id string) (*marketplace.Listing, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*marketplace.Listing), args.Error(1)
}

func (m *mockAPI) CreateListing(ctx context.Context, req marketplace.CreateListingRequest) (*marketplace.Listing, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*marketplace.Listing), args.Error(1)
}

func (m *mockAPI) CancelOrders(ctx context.Context, orderIDs []string, accountAddress string, signature string) (*marketplace.CancelOrdersResponse, error) {
	args := m.Called(ctx, orderIDs, accountAddress, signature)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*marketplace.CancelOrdersResponse), args.Error(1)
}

func (m *mockAPI) ListNFTsByAccountAddress(ctx context.Context, params marketplace.ListNFTsParams) (*marketplace.ListNFTsResult, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*marketplace.ListNFTsResult), args.Error(1)
}

// fakeChain answers isApprovedForAll and getCounter calls.
type fakeChain struct {
	approved map[common.Address]bool
	counter  *big.Int
	calls    []ethereum.CallMsg
}

var (
	isApprovedForAllSelector = crypto.Keccak256([]byte("isApprovedForAll(address,address)"))[:4]
	getCounterSelector       = crypto.Keccak256([]byte("getCounter(address)"))[:4]
)

func (f *fakeChain) CallContract(_ context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	f.calls = append(f.calls, msg)

	switch {
	case bytes.HasPrefix(msg.Data, isApprovedForAllSelector):
		out := make([]byte, 32)
		if f.approved[*msg.To] {
			out[31] = 1
		}
		return out, nil
	case bytes.HasPrefix(msg.Data, getCounterSelector):
		return common.LeftPadBytes(f.counter.Bytes(), 32), nil
	default:
		return nil, ethereum.NotFound
	}
}
