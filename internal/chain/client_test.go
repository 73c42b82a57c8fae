package chain_test

import (
	"context"
	"encoding/json"
	"math/big"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/orderbook-scripts/internal/chain"
)

func newClient(t *testing.T, urls ...string) *chain.RPCClient {
	t.Helper()

	client, err := chain.NewRPCClient(t.Context(), urls, zerolog.Nop(), chain.WithPollInterval(10*time.Millisecond))
	require.NoError(t, err)
	t.Cleanup(client.Close)

	return client
}

func testTx() *types.Transaction {
	to := common.HexToAddress("0x00000000000000ADc04C56Bf30aC9d3c0aAF14dC")
	return types.NewTx(&types.LegacyTx{Nonce: 7, To: &to, Value: big.NewInt(0), Gas: 21000, GasPrice: big.NewInt(1)})
}

func TestNewRPCClientRequiresURL(t *testing.T) {
	_, err := chain.NewRPCClient(t.Context(), nil, zerolog.Nop())
	require.ErrorIs(t, err, chain.ErrNoRPCURL)
}

func TestCallContextRaw(t *testing.T) {
	node := newFakeNode(t)
	node.handle("eth_estimateGas", func(params json.RawMessage) (interface{}, *rpcError) {
		var args []json.RawMessage
		if err := json.Unmarshal(params, &args); err != nil || len(args) != 2 {
			return nil, &rpcError{Code: -32602, Message: "invalid params"}
		}
		return "0x186a0", nil
	})

	client := newClient(t, node.URL())

	var result string
	err := client.CallContext(t.Context(), &result, "eth_estimateGas", map[string]string{"to": "0xabc"}, "latest")
	require.NoError(t, err)
	assert.Equal(t, "0x186a0", result)
}

func TestCallContextKeepsRPCErrorCode(t *testing.T) {
	node := newFakeNode(t)
	node.handle("eth_estimateGas", func(json.RawMessage) (interface{}, *rpcError) {
		return nil, &rpcError{Code: 3, Message: "execution reverted"}
	})

	client := newClient(t, node.URL())

	var result string
	err := client.CallContext(t.Context(), &result, "eth_estimateGas", map[string]string{}, "latest")
	require.Error(t, err)

	var rpcErr rpc.Error
	require.True(t, errors.As(err, &rpcErr))
	assert.Equal(t, 3, rpcErr.ErrorCode())
}

func TestFailoverToNextNode(t *testing.T) {
	broken := newFakeNode(t)
	broken.handle("eth_chainId", func(json.RawMessage) (interface{}, *rpcError) {
		return nil, &rpcError{Code: -32000, Message: "node syncing"}
	})
	broken.handle("eth_blockNumber", func(json.RawMessage) (interface{}, *rpcError) {
		return nil, &rpcError{Code: -32000, Message: "node syncing"}
	})

	healthy := newFakeNode(t)
	healthy.handle("eth_blockNumber", func(json.RawMessage) (interface{}, *rpcError) { return "0x2a", nil })

	client := newClient(t, broken.URL(), healthy.URL())

	// the first request goes to the first node exactly once and is not replayed
	_, err := client.BlockNumber(t.Context())
	require.Error(t, err)
	assert.Equal(t, 1, broken.count("eth_blockNumber"))
	assert.Equal(t, 0, healthy.count("eth_blockNumber"))

	number, err := client.BlockNumber(t.Context())
	require.NoError(t, err)
	assert.Equal(t, uint64(42), number)
	assert.Equal(t, 1, broken.count("eth_blockNumber"))
}

func TestWaitMined(t *testing.T) {
	tx := testTx()

	var polls atomic.Int32
	node := newFakeNode(t)
	node.handle("eth_getTransactionReceipt", func(json.RawMessage) (interface{}, *rpcError) {
		if polls.Add(1) < 3 {
			return nil, nil
		}
		return receiptJSON(tx.Hash().Hex(), "0x1"), nil
	})

	client := newClient(t, node.URL())

	receipt, err := client.WaitMined(t.Context(), tx)
	require.NoError(t, err)
	assert.Equal(t, tx.Hash(), receipt.TxHash)
	assert.Equal(t, types.ReceiptStatusSuccessful, receipt.Status)
	assert.Equal(t, int32(3), polls.Load())
}

func TestWaitMinedReverted(t *testing.T) {
	tx := testTx()

	node := newFakeNode(t)
	node.handle("eth_getTransactionReceipt", func(json.RawMessage) (interface{}, *rpcError) {
		return receiptJSON(tx.Hash().Hex(), "0x0"), nil
	})

	client := newClient(t, node.URL())

	receipt, err := client.WaitMined(t.Context(), tx)
	require.ErrorIs(t, err, chain.ErrTransactionFailed)
	require.NotNil(t, receipt)
	assert.Equal(t, types.ReceiptStatusFailed, receipt.Status)
}

func TestWaitMinedStopsOnCancel(t *testing.T) {
	node := newFakeNode(t)
	node.handle("eth_getTransactionReceipt", func(json.RawMessage) (interface{}, *rpcError) { return nil, nil })

	client := newClient(t, node.URL())

	ctx, cancel := context.WithTimeout(t.Context(), 50*time.Millisecond)
	defer cancel()

	_, err := client.WaitMined(ctx, testTx())
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestWaitMinedStopsWhenNoNodeIsReachable(t *testing.T) {
	node := newFakeNode(t)
	node.handle("eth_getTransactionReceipt", func(json.RawMessage) (interface{}, *rpcError) {
		return nil, &rpcError{Code: -32000, Message: "backend gone"}
	})
	node.handle("eth_chainId", func(json.RawMessage) (interface{}, *rpcError) {
		return nil, &rpcError{Code: -32000, Message: "backend gone"}
	})

	client := newClient(t, node.URL())

	ctx, cancel := context.WithTimeout(t.Context(), 5*time.Second)
	defer cancel()

	_, err := client.WaitMined(ctx, testTx())
	require.ErrorIs(t, err, chain.ErrAllRPCUnavailable)
	require.NoError(t, ctx.Err())
	assert.Equal(t, 1, node.count("eth_getTransactionReceipt"))
}
