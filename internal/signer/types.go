package signer

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"github/chapool/orderbook-scripts/internal/gas"
)

// Signer is the wallet identity the scripts act as.
type Signer interface {
	Address() common.Address
	// SendTransaction fills in nonce, fees and chain ID, signs and submits.
	SendTransaction(ctx context.Context, req TxRequest) (*types.Transaction, error)
	// SignTypedData returns a 0x-prefixed 65 byte EIP-712 signature with v in {27, 28}.
	SignTypedData(ctx context.Context, domain apitypes.TypedDataDomain, typeDefs apitypes.Types, message apitypes.TypedDataMessage) (string, error)
}

// Backend is the chain access a Wallet needs to send transactions.
type Backend interface {
	ChainID(ctx context.Context) (*big.Int, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasTipCap(ctx context.Context) (*big.Int, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error)
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
}

// TxRequest is a transaction before nonce and fees are known. Zero GasLimit
// and nil fee fields are filled in from the node.
type TxRequest struct {
	To                   common.Address
	Data                 []byte
	Value                *big.Int
	GasLimit             uint64
	MaxFeePerGas         *big.Int
	MaxPriorityFeePerGas *big.Int
}

// Overrides returns the overridable fields currently set on the request.
func (r TxRequest) Overrides() gas.Overrides {
	return gas.Overrides{
		GasLimit:             r.GasLimit,
		MaxFeePerGas:         r.MaxFeePerGas,
		MaxPriorityFeePerGas: r.MaxPriorityFeePerGas,
	}
}

// WithOverrides replaces the overridable fields with o.
func (r TxRequest) WithOverrides(o gas.Overrides) TxRequest {
	r.GasLimit = o.GasLimit
	r.MaxFeePerGas = o.MaxFeePerGas
	r.MaxPriorityFeePerGas = o.MaxPriorityFeePerGas

	return r
}
