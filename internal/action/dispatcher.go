package action

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github/chapool/orderbook-scripts/internal/gas"
	"github/chapool/orderbook-scripts/internal/signer"
)

// GasEstimator produces a fresh gas estimate for every submission.
type GasEstimator interface {
	Estimate(ctx context.Context, to common.Address, data []byte, value *big.Int) gas.Estimate
}

// Confirmer blocks until a transaction is mined.
type Confirmer interface {
	WaitMined(ctx context.Context, tx *types.Transaction) (*types.Receipt, error)
}

// Result is the outcome of one dispatch. On success exactly one of Receipt
// (transactions) or Signature (signables) is set.
type Result struct {
	Type      string
	Purpose   string
	Receipt   *types.Receipt
	Signature string
	Estimate  *gas.Estimate
	Err       error
}

func (r Result) OK() bool {
	return r.Err == nil
}

// TxHash returns the mined transaction hash, or the zero hash.
func (r Result) TxHash() common.Hash {
	if r.Receipt == nil {
		return common.Hash{}
	}
	return r.Receipt.TxHash
}

const nilTag = "<nil>"

// Dispatcher executes pending actions one at a time.
type Dispatcher struct {
	estimator GasEstimator
	confirmer Confirmer
	logger    zerolog.Logger
}

func NewDispatcher(estimator GasEstimator, confirmer Confirmer, logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		estimator: estimator,
		confirmer: confirmer,
		logger:    logger.With().Str("component", "dispatcher").Logger(),
	}
}

// Dispatch submits a transaction or signs a message depending on the action
// type. It never returns an error directly: failures are logged and carried
// in Result.Err as ErrSubmission, ErrSigning or ErrUnsupportedAction.
//
// For transactions the caller overrides are applied over the built request
// and the fresh gas estimate is applied last, so the estimated gas limit
// always wins while caller fee caps are kept.
func (d *Dispatcher) Dispatch(ctx context.Context, s signer.Signer, act PendingAction, overrides *gas.Overrides) Result {
	switch a := act.(type) {
	case *TransactionAction:
		if a == nil {
			return d.unsupported(nilTag)
		}
		return d.submit(ctx, s, a, overrides)
	case *SignableAction:
		if a == nil {
			return d.unsupported(nilTag)
		}
		return d.sign(ctx, s, a)
	case *UnrecognizedAction:
		if a == nil {
			return d.unsupported(nilTag)
		}
		return d.unsupported(a.Tag)
	case nil:
		return d.unsupported(nilTag)
	default:
		return d.unsupported(act.Type())
	}
}

func (d *Dispatcher) submit(ctx context.Context, s signer.Signer, a *TransactionAction, overrides *gas.Overrides) Result {
	res := Result{Type: TypeTransaction, Purpose: a.Purpose}

	req := signer.TxRequest{
		To:    a.To,
		Data:  a.Data,
		Value: a.Value,
	}
	if req.Data == nil {
		req.Data = []byte{}
	}
	if req.Value == nil {
		req.Value = new(big.Int)
	}

	d.logger.Info().Str("purpose", a.Purpose).Msgf("Submitting %s transaction", a.Purpose)

	estimate := d.estimator.Estimate(ctx, req.To, req.Data, req.Value)
	res.Estimate = &estimate

	fresh := estimate.Overrides()
	merged := req.Overrides().Merge(overrides).Merge(&fresh)
	req = req.WithOverrides(merged)

	tx, err := s.SendTransaction(ctx, req)
	if err != nil {
		res.Err = d.failure(ErrSubmission, a.Purpose, err)
		return res
	}

	receipt, err := d.confirmer.WaitMined(ctx, tx)
	res.Receipt = receipt
	if err == nil && receipt != nil && receipt.Status == types.ReceiptStatusFailed {
		err = errors.Wrapf(ErrReverted, "tx %s", tx.Hash().Hex())
	}
	if err != nil {
		res.Err = d.failure(ErrSubmission, a.Purpose, err)
		return res
	}

	d.logger.Info().
		Str("purpose", a.Purpose).
		Str("tx_hash", receipt.TxHash.Hex()).
		Uint64("gas_used", receipt.GasUsed).
		Msgf("Transaction successful: %s", receipt.TxHash.Hex())

	return res
}

func (d *Dispatcher) sign(ctx context.Context, s signer.Signer, a *SignableAction) Result {
	res := Result{Type: TypeSignable, Purpose: a.Purpose}

	sig, err := s.SignTypedData(ctx, a.Message.Domain, a.Message.Types, a.Message.Value)
	if err != nil {
		res.Err = d.failure(ErrSigning, a.Purpose, err)
		return res
	}

	d.logger.Info().Str("purpose", a.Purpose).Msg("Action signed successfully.")
	res.Signature = sig

	return res
}

func (d *Dispatcher) unsupported(tag string) Result {
	d.logger.Error().Str("type", tag).Msgf("Unsupported action type: %s", tag)

	return Result{
		Type: tag,
		Err:  &Error{Kind: ErrUnsupportedAction, Cause: errors.Errorf("type %q", tag)},
	}
}

// failure logs err with its root cause and wraps it into kind.
func (d *Dispatcher) failure(kind error, purpose string, err error) error {
	event := d.logger.Error().Err(err).Str("purpose", purpose)

	var rpcErr rpc.Error
	var dataErr rpc.DataError
	switch {
	case errors.As(err, &rpcErr):
		event = event.Str("cause", "rpc").Int("rpc_code", rpcErr.ErrorCode())
		if errors.As(err, &dataErr) {
			event = event.Interface("rpc_data", dataErr.ErrorData())
		}
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		event = event.Str("cause", "interrupted")
	default:
		event = event.Str("cause", "unknown")
	}
	event.Msg(kind.Error())

	return &Error{Kind: kind, Purpose: purpose, Cause: err}
}
