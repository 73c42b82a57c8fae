package action_test

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"github.com/stretchr/testify/mock"
	"github/chapool/orderbook-scripts/internal/gas"
	"github/chapool/orderbook-scripts/internal/signer"
)

// calls records the order in which collaborators were used.
type calls []string

func (c *calls) add(name string) { *c = append(*c, name) }

type mockEstimator struct {
	mock.Mock
	log *calls
}

func (m *mockEstimator) Estimate(ctx context.Context, to common.Address, data []byte, value *big.Int) gas.Estimate {
	m.log.add("estimate")
	args := m.Called(ctx, to, data, value)
	return args.Get(0).(gas.Estimate)
}

type mockConfirmer struct {
	mock.Mock
	log *calls
}

func (m *mockConfirmer) WaitMined(ctx context.Context, tx *types.Transaction) (*types.Receipt, error) {
	m.log.add("wait")
	args := m.Called(ctx, tx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Receipt), args.Error(1)
}

type mockSigner struct {
	mock.Mock
	log *calls
}

func (m *mockSigner) Address() common.Address {
	return common.HexToAddress("0x00000000000000000000000000000000000000aa")
}

func (m *mockSigner) SendTransaction(ctx context.Context, req signer.TxRequest) (*types.Transaction, error) {
	m.log.add("send")
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Transaction), args.Error(1)
}

func (m *mockSigner) SignTypedData(ctx context.Context, domain apitypes.TypedDataDomain, typeDefs apitypes.Types, message apitypes.TypedDataMessage) (string, error) {
	m.log.add("sign")
	args := m.Called(ctx, domain, typeDefs, message)
	return args.String(0), args.Error(1)
}

type fixture struct {
	log       *calls
	estimator *mockEstimator
	confirmer *mockConfirmer
	signer    *mockSigner
}

func newFixture() *fixture {
	log := &calls{}
	return &fixture{
		log:       log,
		estimator: &mockEstimator{log: log},
		confirmer: &mockConfirmer{log: log},
		signer:    &mockSigner{log: log},
	}
}
