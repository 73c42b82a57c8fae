package signer_test

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github/chapool/orderbook-scripts/internal/signer"
)

const gwei = 1_000_000_000

var target = common.HexToAddress("0x00000000000000ADc04C56Bf30aC9d3c0aAF14dC")

func newTestWallet(t *testing.T, backend signer.Backend) *signer.Wallet {
	t.Helper()

	key := crypto.Keccak256([]byte("cow"))
	privateKey, err := crypto.ToECDSA(key)
	require.NoError(t, err)

	return signer.NewWallet(privateKey, backend, zerolog.Nop())
}

func TestSendTransactionDynamicFee(t *testing.T) {
	backend := &mockBackend{}
	wallet := newTestWallet(t, backend)
	chainID := big.NewInt(13473)

	var sent *types.Transaction
	backend.On("ChainID", mock.Anything).Return(chainID, nil).Once()
	backend.On("PendingNonceAt", mock.Anything, wallet.Address()).Return(uint64(7), nil)
	backend.On("HeaderByNumber", mock.Anything, (*big.Int)(nil)).Return(&types.Header{BaseFee: big.NewInt(10 * gwei)}, nil)
	backend.On("SuggestGasTipCap", mock.Anything).Return(big.NewInt(2*gwei), nil)
	backend.On("SendTransaction", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { sent = args.Get(1).(*types.Transaction) }).
		Return(nil)

	tx, err := wallet.SendTransaction(t.Context(), signer.TxRequest{
		To:       target,
		Data:     []byte{0x01, 0x02},
		GasLimit: 120000,
	})
	require.NoError(t, err)
	require.Same(t, sent, tx)

	assert.Equal(t, uint8(types.DynamicFeeTxType), tx.Type())
	assert.Equal(t, uint64(7), tx.Nonce())
	assert.Equal(t, uint64(120000), tx.Gas())
	assert.Equal(t, big.NewInt(2*gwei), tx.GasTipCap())
	assert.Equal(t, big.NewInt(22*gwei), tx.GasFeeCap())
	assert.Equal(t, target, *tx.To())
	assert.Equal(t, 0, tx.Value().Sign())

	from, err := types.Sender(types.NewLondonSigner(chainID), tx)
	require.NoError(t, err)
	assert.Equal(t, wallet.Address(), from)

	backend.AssertNotCalled(t, "EstimateGas", mock.Anything, mock.Anything)

	// chain ID is fetched once
	_, err = wallet.SendTransaction(t.Context(), signer.TxRequest{To: target, GasLimit: 21000})
	require.NoError(t, err)
	backend.AssertNumberOfCalls(t, "ChainID", 1)
}

func TestSendTransactionKeepsCallerFeeCaps(t *testing.T) {
	backend := &mockBackend{}
	wallet := newTestWallet(t, backend)

	backend.On("ChainID", mock.Anything).Return(big.NewInt(1), nil)
	backend.On("PendingNonceAt", mock.Anything, mock.Anything).Return(uint64(0), nil)
	backend.On("HeaderByNumber", mock.Anything, mock.Anything).Return(&types.Header{BaseFee: big.NewInt(gwei)}, nil)
	backend.On("EstimateGas", mock.Anything, mock.Anything).Return(uint64(50000), nil)
	backend.On("SendTransaction", mock.Anything, mock.Anything).Return(nil)

	tx, err := wallet.SendTransaction(t.Context(), signer.TxRequest{
		To:                   target,
		Value:                big.NewInt(5),
		MaxFeePerGas:         big.NewInt(100 * gwei),
		MaxPriorityFeePerGas: big.NewInt(3 * gwei),
	})
	require.NoError(t, err)

	assert.Equal(t, big.NewInt(100*gwei), tx.GasFeeCap())
	assert.Equal(t, big.NewInt(3*gwei), tx.GasTipCap())
	assert.Equal(t, uint64(50000), tx.Gas())
	assert.Equal(t, big.NewInt(5), tx.Value())
	backend.AssertNotCalled(t, "SuggestGasTipCap", mock.Anything)
}

func TestSendTransactionRejectsFeeCapBelowTip(t *testing.T) {
	backend := &mockBackend{}
	wallet := newTestWallet(t, backend)

	backend.On("ChainID", mock.Anything).Return(big.NewInt(1), nil)
	backend.On("PendingNonceAt", mock.Anything, mock.Anything).Return(uint64(0), nil)
	backend.On("HeaderByNumber", mock.Anything, mock.Anything).Return(&types.Header{BaseFee: big.NewInt(gwei)}, nil)

	_, err := wallet.SendTransaction(t.Context(), signer.TxRequest{
		To:                   target,
		GasLimit:             21000,
		MaxFeePerGas:         big.NewInt(1),
		MaxPriorityFeePerGas: big.NewInt(2),
	})
	require.ErrorIs(t, err, signer.ErrFeeCapTooLow)
	backend.AssertNotCalled(t, "SendTransaction", mock.Anything, mock.Anything)
}

func TestSendTransactionLegacyWithoutBaseFee(t *testing.T) {
	backend := &mockBackend{}
	wallet := newTestWallet(t, backend)

	backend.On("ChainID", mock.Anything).Return(big.NewInt(1337), nil)
	backend.On("PendingNonceAt", mock.Anything, mock.Anything).Return(uint64(3), nil)
	backend.On("HeaderByNumber", mock.Anything, mock.Anything).Return(&types.Header{}, nil)
	backend.On("SuggestGasPrice", mock.Anything).Return(big.NewInt(5*gwei), nil)
	backend.On("SendTransaction", mock.Anything, mock.Anything).Return(nil)

	tx, err := wallet.SendTransaction(t.Context(), signer.TxRequest{To: target, GasLimit: 21000})
	require.NoError(t, err)

	assert.Equal(t, uint8(types.LegacyTxType), tx.Type())
	assert.Equal(t, big.NewInt(5*gwei), tx.GasPrice())
	assert.Equal(t, big.NewInt(1337), tx.ChainId())
}

func TestSendTransactionPropagatesNodeErrors(t *testing.T) {
	backend := &mockBackend{}
	wallet := newTestWallet(t, backend)

	backend.On("ChainID", mock.Anything).Return(big.NewInt(1), nil)
	backend.On("PendingNonceAt", mock.Anything, mock.Anything).Return(uint64(0), nil)
	backend.On("HeaderByNumber", mock.Anything, mock.Anything).Return(&types.Header{BaseFee: big.NewInt(1)}, nil)
	backend.On("SuggestGasTipCap", mock.Anything).Return(big.NewInt(1), nil)
	backend.On("SendTransaction", mock.Anything, mock.Anything).Return(errors.New("nonce too low"))

	_, err := wallet.SendTransaction(t.Context(), signer.TxRequest{To: target, GasLimit: 21000})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nonce too low")
}

func TestSendTransactionWithoutBackend(t *testing.T) {
	wallet := newTestWallet(t, nil)

	_, err := wallet.SendTransaction(t.Context(), signer.TxRequest{To: target})
	require.Error(t, err)
}

func mailTypedData() (apitypes.TypedDataDomain, apitypes.Types, apitypes.TypedDataMessage) {
	domain := apitypes.TypedDataDomain{
		Name:              "Ether Mail",
		Version:           "1",
		ChainId:           math.NewHexOrDecimal256(1),
		VerifyingContract: "0xCcCCccccCCCCcCCCCCCcCcCccCcCCCcCcccccccC",
	}
	typeDefs := apitypes.Types{
		"Person": {
			{Name: "name", Type: "string"},
			{Name: "wallet", Type: "address"},
		},
		"Mail": {
			{Name: "from", Type: "Person"},
			{Name: "to", Type: "Person"},
			{Name: "contents", Type: "string"},
		},
	}
	message := apitypes.TypedDataMessage{
		"from": map[string]interface{}{
			"name":   "Cow",
			"wallet": "0xCD2a3d9F938E13CD947Ec05AbC7FE734Df8DD826",
		},
		"to": map[string]interface{}{
			"name":   "Bob",
			"wallet": "0xbBbBBBBbbBBBbbbBbbBbbbbBBbBbbbbBbBbbBBbB",
		},
		"contents": "Hello, Bob!",
	}

	return domain, typeDefs, message
}

func TestTypedDataHashMatchesReferenceVector(t *testing.T) {
	domain, typeDefs, message := mailTypedData()

	hash, err := signer.TypedDataHash(domain, typeDefs, message)
	require.NoError(t, err)
	assert.Equal(t, "0xbe609aee343fb3c4b28e1df9e632fca64fcfaede20f02e86244efddf30957bd2", hash.Hex())

	_, hasDomain := typeDefs["EIP712Domain"]
	assert.False(t, hasDomain)
}

func TestSignTypedDataRecoversSigner(t *testing.T) {
	wallet := newTestWallet(t, nil)
	domain, typeDefs, message := mailTypedData()

	assert.Equal(t, common.HexToAddress("0xCD2a3d9F938E13CD947Ec05AbC7FE734Df8DD826"), wallet.Address())

	sig, err := wallet.SignTypedData(t.Context(), domain, typeDefs, message)
	require.NoError(t, err)

	raw, err := hexutil.Decode(sig)
	require.NoError(t, err)
	require.Len(t, raw, crypto.SignatureLength)
	assert.Contains(t, []byte{27, 28}, raw[crypto.RecoveryIDOffset])

	hash, err := signer.TypedDataHash(domain, typeDefs, message)
	require.NoError(t, err)

	raw[crypto.RecoveryIDOffset] -= 27
	pub, err := crypto.SigToPub(hash.Bytes(), raw)
	require.NoError(t, err)
	assert.Equal(t, wallet.Address(), crypto.PubkeyToAddress(*pub))
}

func TestSignTypedDataRejectsAmbiguousPrimaryType(t *testing.T) {
	wallet := newTestWallet(t, nil)

	typeDefs := apitypes.Types{
		"A": {{Name: "a", Type: "uint256"}},
		"B": {{Name: "b", Type: "uint256"}},
	}

	_, err := wallet.SignTypedData(t.Context(), apitypes.TypedDataDomain{Name: "x"}, typeDefs, apitypes.TypedDataMessage{"a": "1"})
	require.ErrorIs(t, err, signer.ErrAmbiguousPrimaryType)
}

func TestPrimaryType(t *testing.T) {
	tests := []struct {
		name     string
		typeDefs apitypes.Types
		want     string
		wantErr  error
	}{
		{
			name:     "single",
			typeDefs: apitypes.Types{"CancelPayload": {{Name: "orders", Type: "string[]"}}},
			want:     "CancelPayload",
		},
		{
			name: "array reference",
			typeDefs: apitypes.Types{
				"OrderComponents": {{Name: "offer", Type: "OfferItem[]"}},
				"OfferItem":       {{Name: "token", Type: "address"}},
				"EIP712Domain":    {{Name: "name", Type: "string"}},
			},
			want: "OrderComponents",
		},
		{
			name:     "empty",
			typeDefs: apitypes.Types{},
			wantErr:  signer.ErrNoPrimaryType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := signer.PrimaryType(tt.typeDefs)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDomainTypeOnlyListsSetFields(t *testing.T) {
	fields := signer.DomainType(apitypes.TypedDataDomain{
		Name:    "imtbl-order-book",
		ChainId: math.NewHexOrDecimal256(13473),
	})

	assert.Equal(t, []apitypes.Type{
		{Name: "name", Type: "string"},
		{Name: "chainId", Type: "uint256"},
	}, fields)
}

func TestCloseClearsKey(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)

	wallet := signer.NewWallet(key, nil, zerolog.Nop())
	wallet.Close()

	assert.Equal(t, 0, key.D.Sign())
}
