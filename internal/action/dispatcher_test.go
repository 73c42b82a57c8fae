package action_test

import (
	"bytes"
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github/chapool/orderbook-scripts/internal/action"
	"github/chapool/orderbook-scripts/internal/gas"
	"github/chapool/orderbook-scripts/internal/signer"
)

var seaport = common.HexToAddress("0x00000000000000ADc04C56Bf30aC9d3c0aAF14dC")

type rpcError struct {
	code int
}

func (e rpcError) Error() string  { return "execution reverted" }
func (e rpcError) ErrorCode() int { return e.code }

func isZero(v *big.Int) bool {
	return v != nil && v.Sign() == 0
}

func newTx() *types.Transaction {
	return types.NewTx(&types.DynamicFeeTx{Nonce: 1, To: &seaport, Gas: 120000})
}

func TestDispatchTransaction(t *testing.T) {
	var buf bytes.Buffer
	f := newFixture()
	tx := newTx()
	receipt := &types.Receipt{Status: types.ReceiptStatusSuccessful, TxHash: tx.Hash()}

	f.estimator.On("Estimate", mock.Anything, seaport, []byte{0xfd, 0x9f}, mock.MatchedBy(isZero)).
		Return(gas.FromRaw(100000))
	f.signer.On("SendTransaction", mock.Anything, mock.Anything).Return(tx, nil)
	f.confirmer.On("WaitMined", mock.Anything, tx).Return(receipt, nil)

	dispatcher := action.NewDispatcher(f.estimator, f.confirmer, zerolog.New(&buf))
	res := dispatcher.Dispatch(t.Context(), f.signer, &action.TransactionAction{
		To:      seaport,
		Data:    []byte{0xfd, 0x9f},
		Purpose: "CANCEL",
	}, nil)

	require.True(t, res.OK())
	assert.Same(t, receipt, res.Receipt)
	assert.Equal(t, tx.Hash(), res.TxHash())
	assert.Empty(t, res.Signature)
	assert.Equal(t, action.TypeTransaction, res.Type)
	assert.Equal(t, calls{"estimate", "send", "wait"}, *f.log)

	req := f.signer.Calls[0].Arguments.Get(1).(signer.TxRequest)
	assert.Equal(t, seaport, req.To)
	assert.Equal(t, []byte{0xfd, 0x9f}, req.Data)
	assert.Equal(t, 0, req.Value.Sign())
	assert.Equal(t, uint64(120000), req.GasLimit)
	assert.Nil(t, req.MaxFeePerGas)

	assert.Contains(t, buf.String(), "Submitting CANCEL transaction")
	assert.Contains(t, buf.String(), "Transaction successful: "+tx.Hash().Hex())

	f.signer.AssertNotCalled(t, "SignTypedData", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestDispatchTransactionDefaultsDataAndValue(t *testing.T) {
	f := newFixture()
	tx := newTx()

	f.estimator.On("Estimate", mock.Anything, seaport, []byte{}, mock.MatchedBy(isZero)).Return(gas.FromRaw(21000))
	f.signer.On("SendTransaction", mock.Anything, mock.Anything).Return(tx, nil)
	f.confirmer.On("WaitMined", mock.Anything, tx).Return(&types.Receipt{Status: types.ReceiptStatusSuccessful}, nil)

	res := action.NewDispatcher(f.estimator, f.confirmer, zerolog.Nop()).
		Dispatch(t.Context(), f.signer, &action.TransactionAction{To: seaport}, nil)

	require.True(t, res.OK())
	f.estimator.AssertExpectations(t)
}

func TestDispatchEstimateOverridesCallerGasLimit(t *testing.T) {
	f := newFixture()
	tx := newTx()

	f.estimator.On("Estimate", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(gas.FromRaw(100000))
	f.signer.On("SendTransaction", mock.Anything, mock.Anything).Return(tx, nil)
	f.confirmer.On("WaitMined", mock.Anything, tx).Return(&types.Receipt{Status: types.ReceiptStatusSuccessful}, nil)

	overrides := &gas.Overrides{
		GasLimit:             1_000_000,
		MaxFeePerGas:         big.NewInt(50),
		MaxPriorityFeePerGas: big.NewInt(2),
	}

	res := action.NewDispatcher(f.estimator, f.confirmer, zerolog.Nop()).
		Dispatch(t.Context(), f.signer, &action.TransactionAction{To: seaport}, overrides)
	require.True(t, res.OK())

	req := f.signer.Calls[0].Arguments.Get(1).(signer.TxRequest)
	assert.Equal(t, uint64(120000), req.GasLimit)
	assert.Equal(t, big.NewInt(50), req.MaxFeePerGas)
	assert.Equal(t, big.NewInt(2), req.MaxPriorityFeePerGas)

	// caller overrides are not modified
	assert.Equal(t, uint64(1_000_000), overrides.GasLimit)
}

func TestDispatchTransactionUsesFallbackEstimate(t *testing.T) {
	f := newFixture()
	tx := newTx()

	f.estimator.On("Estimate", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(gas.Fallback(errors.New("boom")))
	f.signer.On("SendTransaction", mock.Anything, mock.MatchedBy(func(req signer.TxRequest) bool {
		return req.GasLimit == gas.DefaultGasLimit
	})).Return(tx, nil)
	f.confirmer.On("WaitMined", mock.Anything, tx).Return(&types.Receipt{Status: types.ReceiptStatusSuccessful}, nil)

	res := action.NewDispatcher(f.estimator, f.confirmer, zerolog.Nop()).
		Dispatch(t.Context(), f.signer, &action.TransactionAction{To: seaport}, nil)

	require.True(t, res.OK())
	require.NotNil(t, res.Estimate)
	assert.True(t, res.Estimate.Fallback())
}

func TestDispatchSubmissionFailure(t *testing.T) {
	var buf bytes.Buffer
	f := newFixture()

	f.estimator.On("Estimate", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(gas.FromRaw(1))
	f.signer.On("SendTransaction", mock.Anything, mock.Anything).
		Return(nil, errors.Wrap(rpcError{code: 3}, "failed to send transaction"))

	res := action.NewDispatcher(f.estimator, f.confirmer, zerolog.New(&buf)).
		Dispatch(t.Context(), f.signer, &action.TransactionAction{To: seaport, Purpose: "APPROVAL"}, nil)

	require.False(t, res.OK())
	require.ErrorIs(t, res.Err, action.ErrSubmission)
	assert.NotErrorIs(t, res.Err, action.ErrSigning)

	var coded rpcError
	require.ErrorAs(t, res.Err, &coded)
	assert.Equal(t, 3, coded.code)

	assert.Contains(t, buf.String(), `"cause":"rpc"`)
	assert.Contains(t, buf.String(), `"rpc_code":3`)
	f.confirmer.AssertNotCalled(t, "WaitMined", mock.Anything, mock.Anything)
}

func TestDispatchRevertedReceipt(t *testing.T) {
	var buf bytes.Buffer
	f := newFixture()
	tx := newTx()
	receipt := &types.Receipt{Status: types.ReceiptStatusFailed, TxHash: tx.Hash()}

	f.estimator.On("Estimate", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(gas.FromRaw(1))
	f.signer.On("SendTransaction", mock.Anything, mock.Anything).Return(tx, nil)
	f.confirmer.On("WaitMined", mock.Anything, tx).Return(receipt, nil)

	res := action.NewDispatcher(f.estimator, f.confirmer, zerolog.New(&buf)).
		Dispatch(t.Context(), f.signer, &action.TransactionAction{To: seaport}, nil)

	require.ErrorIs(t, res.Err, action.ErrSubmission)
	require.ErrorIs(t, res.Err, action.ErrReverted)
	assert.Same(t, receipt, res.Receipt)
	assert.Contains(t, buf.String(), `"cause":"unknown"`)
}

func TestDispatchWaitInterrupted(t *testing.T) {
	f := newFixture()
	tx := newTx()

	f.estimator.On("Estimate", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(gas.FromRaw(1))
	f.signer.On("SendTransaction", mock.Anything, mock.Anything).Return(tx, nil)
	f.confirmer.On("WaitMined", mock.Anything, tx).Return(nil, errors.Wrap(context.Canceled, "stopped waiting"))

	res := action.NewDispatcher(f.estimator, f.confirmer, zerolog.Nop()).
		Dispatch(t.Context(), f.signer, &action.TransactionAction{To: seaport}, nil)

	require.ErrorIs(t, res.Err, action.ErrSubmission)
	require.ErrorIs(t, res.Err, context.Canceled)
	assert.Nil(t, res.Receipt)
}

func TestDispatchSignable(t *testing.T) {
	var buf bytes.Buffer
	f := newFixture()

	message := action.TypedMessage{
		Domain: apitypes.TypedDataDomain{Name: "imtbl-order-book"},
		Types:  apitypes.Types{"Payload": {{Name: "a", Type: "uint256"}}},
		Value:  apitypes.TypedDataMessage{"a": 1},
	}
	f.signer.On("SignTypedData", mock.Anything, message.Domain, message.Types, message.Value).Return("0xSIG", nil)

	res := action.NewDispatcher(f.estimator, f.confirmer, zerolog.New(&buf)).
		Dispatch(t.Context(), f.signer, &action.SignableAction{Purpose: "CANCEL", Message: message}, nil)

	require.True(t, res.OK())
	assert.Equal(t, "0xSIG", res.Signature)
	assert.Nil(t, res.Receipt)
	assert.Equal(t, calls{"sign"}, *f.log)
	assert.Contains(t, buf.String(), "Action signed successfully.")
}

func TestDispatchSigningFailure(t *testing.T) {
	f := newFixture()
	f.signer.On("SignTypedData", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return("", errors.New("user rejected"))

	res := action.NewDispatcher(f.estimator, f.confirmer, zerolog.Nop()).
		Dispatch(t.Context(), f.signer, &action.SignableAction{}, nil)

	require.ErrorIs(t, res.Err, action.ErrSigning)
	assert.Empty(t, res.Signature)
	assert.Equal(t, calls{"sign"}, *f.log)
}

func TestDispatchUnsupported(t *testing.T) {
	var buf bytes.Buffer
	f := newFixture()

	act, err := action.Decode([]byte(`{"type":"UNKNOWN","foo":"bar"}`))
	require.NoError(t, err)

	res := action.NewDispatcher(f.estimator, f.confirmer, zerolog.New(&buf)).
		Dispatch(t.Context(), f.signer, act, nil)

	require.False(t, res.OK())
	require.ErrorIs(t, res.Err, action.ErrUnsupportedAction)
	assert.Empty(t, *f.log)
	assert.Contains(t, buf.String(), "Unsupported action type: UNKNOWN")

	res = action.NewDispatcher(f.estimator, f.confirmer, zerolog.Nop()).Dispatch(t.Context(), f.signer, nil, nil)
	require.ErrorIs(t, res.Err, action.ErrUnsupportedAction)
	assert.Empty(t, *f.log)
}

func TestDispatchTypedNilActions(t *testing.T) {
	f := newFixture()
	dispatcher := action.NewDispatcher(f.estimator, f.confirmer, zerolog.Nop())

	for _, act := range []action.PendingAction{
		(*action.TransactionAction)(nil),
		(*action.SignableAction)(nil),
		(*action.UnrecognizedAction)(nil),
	} {
		var res action.Result
		require.NotPanics(t, func() {
			res = dispatcher.Dispatch(t.Context(), f.signer, act, nil)
		})
		require.ErrorIs(t, res.Err, action.ErrUnsupportedAction)
		assert.Equal(t, "<nil>", res.Type)
	}

	assert.Empty(t, *f.log)
}
