package gas

import (
	"context"
	"math/big"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Estimator asks the node for eth_estimateGas and pads the answer.
type Estimator struct {
	caller Caller
	logger zerolog.Logger
}

func NewEstimator(caller Caller, logger zerolog.Logger) *Estimator {
	return &Estimator{
		caller: caller,
		logger: logger.With().Str("component", "gas_estimator").Logger(),
	}
}

type callArgs struct {
	To    string `json:"to"`
	Data  string `json:"data"`
	Value string `json:"value"`
}

// Estimate never fails: on any error it logs and returns Fallback.
// A nil or empty data is sent as "0x" and a nil value as "0x0".
func (e *Estimator) Estimate(ctx context.Context, to common.Address, data []byte, value *big.Int) Estimate {
	if to == (common.Address{}) {
		return e.fallback(to, ErrMissingRecipient)
	}

	if value == nil {
		value = new(big.Int)
	}

	args := callArgs{
		To:    to.Hex(),
		Data:  hexutil.Encode(data),
		Value: hexutil.EncodeBig(value),
	}

	var result string
	if err := e.caller.CallContext(ctx, &result, "eth_estimateGas", args, "latest"); err != nil {
		return e.fallback(to, err)
	}

	raw, err := parseQuantity(result)
	if err != nil {
		return e.fallback(to, err)
	}

	estimate := FromRaw(raw)

	e.logger.Debug().
		Str("to", to.Hex()).
		Uint64("raw", raw).
		Uint64("gas_limit", estimate.GasLimit).
		Msg("Estimated gas")

	return estimate
}

func (e *Estimator) fallback(to common.Address, err error) Estimate {
	e.logger.Error().
		Err(err).
		Str("to", to.Hex()).
		Uint64("gas_limit", DefaultGasLimit).
		Msg("Error estimating gas, using default gas limit")

	return Fallback(err)
}

// parseQuantity accepts a 0x-prefixed hex quantity or a plain decimal string.
func parseQuantity(s string) (uint64, error) {
	s = strings.TrimSpace(s)

	var (
		raw uint64
		err error
	)
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		raw, err = strconv.ParseUint(s[2:], 16, 64)
	} else {
		raw, err = strconv.ParseUint(s, 10, 64)
	}
	if err != nil {
		return 0, errors.Wrapf(ErrInvalidEstimate, "cannot parse %q", s)
	}

	if raw == 0 {
		return 0, errors.Wrap(ErrInvalidEstimate, "node returned zero gas")
	}

	if raw > MaxEstimate {
		return 0, errors.Wrapf(ErrInvalidEstimate, "estimate %d is out of range", raw)
	}

	return raw, nil
}
