package signer

import (
	"context"
	"crypto/ecdsa"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

var ErrFeeCapTooLow = errors.New("max fee per gas is below max priority fee per gas")

// Wallet signs with a single private key held in memory.
type Wallet struct {
	key     *ecdsa.PrivateKey
	address common.Address
	backend Backend
	logger  zerolog.Logger

	mu      sync.Mutex
	chainID *big.Int
}

var _ Signer = (*Wallet)(nil)

// NewWallet creates a wallet for key. backend may be nil for wallets that
// only sign typed data.
func NewWallet(key *ecdsa.PrivateKey, backend Backend, logger zerolog.Logger) *Wallet {
	address := crypto.PubkeyToAddress(key.PublicKey)

	return &Wallet{
		key:     key,
		address: address,
		backend: backend,
		logger:  logger.With().Str("component", "signer").Str("address", address.Hex()).Logger(),
	}
}

func (w *Wallet) Address() common.Address {
	return w.address
}

// Close 清除内存中的私钥
func (w *Wallet) Close() {
	if w.key == nil || w.key.D == nil {
		return
	}

	words := w.key.D.Bits()
	for i := range words {
		words[i] = 0
	}
	w.key.D.SetInt64(0)
}

func (w *Wallet) SendTransaction(ctx context.Context, req TxRequest) (*types.Transaction, error) {
	if w.backend == nil {
		return nil, errors.New("wallet has no chain backend")
	}

	chainID, err := w.getChainID(ctx)
	if err != nil {
		return nil, err
	}

	nonce, err := w.backend.PendingNonceAt(ctx, w.address)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get nonce")
	}

	value := req.Value
	if value == nil {
		value = new(big.Int)
	}

	gasLimit := req.GasLimit
	if gasLimit == 0 {
		to := req.To
		gasLimit, err = w.backend.EstimateGas(ctx, ethereum.CallMsg{
			From:  w.address,
			To:    &to,
			Value: value,
			Data:  req.Data,
		})
		if err != nil {
			return nil, errors.Wrap(err, "failed to estimate gas")
		}
	}

	header, err := w.backend.HeaderByNumber(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get latest header")
	}

	var tx *types.Transaction
	if header.BaseFee != nil {
		tx, err = w.dynamicFeeTx(ctx, chainID, nonce, gasLimit, value, header.BaseFee, req)
	} else {
		tx, err = w.legacyTx(ctx, nonce, gasLimit, value, req)
	}
	if err != nil {
		return nil, err
	}

	signedTx, err := types.SignTx(tx, types.NewLondonSigner(chainID), w.key)
	if err != nil {
		return nil, errors.Wrap(err, "failed to sign transaction")
	}

	if err := w.backend.SendTransaction(ctx, signedTx); err != nil {
		return nil, errors.Wrap(err, "failed to send transaction")
	}

	w.logger.Debug().
		Str("tx_hash", signedTx.Hash().Hex()).
		Uint64("nonce", nonce).
		Uint64("gas_limit", gasLimit).
		Msg("Transaction sent")

	return signedTx, nil
}

// dynamicFeeTx builds an EIP-1559 transaction. Without a caller fee cap the
// cap is 2 * baseFee + tip.
func (w *Wallet) dynamicFeeTx(ctx context.Context, chainID *big.Int, nonce, gasLimit uint64, value, baseFee *big.Int, req TxRequest) (*types.Transaction, error) {
	tip := req.MaxPriorityFeePerGas
	if tip == nil {
		suggested, err := w.backend.SuggestGasTipCap(ctx)
		if err != nil {
			return nil, errors.Wrap(err, "failed to suggest gas tip cap")
		}
		tip = suggested
	}

	feeCap := req.MaxFeePerGas
	if feeCap == nil {
		feeCap = new(big.Int).Add(new(big.Int).Mul(baseFee, big.NewInt(2)), tip)
	}

	if feeCap.Cmp(tip) < 0 {
		return nil, errors.Wrapf(ErrFeeCapTooLow, "max fee %s, tip %s", feeCap, tip)
	}

	to := req.To

	return types.NewTx(&types.DynamicFeeTx{
		ChainID:   chainID,
		Nonce:     nonce,
		GasTipCap: tip,
		GasFeeCap: feeCap,
		Gas:       gasLimit,
		To:        &to,
		Value:     value,
		Data:      req.Data,
	}), nil
}

// legacyTx is used on chains whose blocks carry no base fee. A caller max fee
// is taken as the gas price.
func (w *Wallet) legacyTx(ctx context.Context, nonce, gasLimit uint64, value *big.Int, req TxRequest) (*types.Transaction, error) {
	gasPrice := req.MaxFeePerGas
	if gasPrice == nil {
		suggested, err := w.backend.SuggestGasPrice(ctx)
		if err != nil {
			return nil, errors.Wrap(err, "failed to suggest gas price")
		}
		gasPrice = suggested
	}

	to := req.To

	return types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		GasPrice: gasPrice,
		Gas:      gasLimit,
		To:       &to,
		Value:    value,
		Data:     req.Data,
	}), nil
}

// getChainID 缓存链 ID，失败时下次重新获取
func (w *Wallet) getChainID(ctx context.Context) (*big.Int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.chainID != nil {
		return w.chainID, nil
	}

	chainID, err := w.backend.ChainID(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get chain ID")
	}
	w.chainID = chainID

	return chainID, nil
}

func (w *Wallet) SignTypedData(_ context.Context, domain apitypes.TypedDataDomain, typeDefs apitypes.Types, message apitypes.TypedDataMessage) (string, error) {
	hash, err := TypedDataHash(domain, typeDefs, message)
	if err != nil {
		return "", err
	}

	sig, err := crypto.Sign(hash.Bytes(), w.key)
	if err != nil {
		return "", errors.Wrap(err, "failed to sign typed data")
	}
	sig[crypto.RecoveryIDOffset] += 27

	return hexutil.Encode(sig), nil
}
