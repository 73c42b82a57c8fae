package gas

import (
	"context"
	"math"
	"math/big"

	"github.com/pkg/errors"
)

const (
	// DefaultGasLimit is used whenever the node cannot produce an estimate.
	DefaultGasLimit uint64 = 200000

	// The estimate is scaled by bufferNumerator/bufferDenominator (1.2).
	bufferNumerator   uint64 = 6
	bufferDenominator uint64 = 5

	// MaxEstimate is the largest node estimate whose buffered value fits in
	// a uint64.
	MaxEstimate uint64 = math.MaxUint64 / bufferNumerator * bufferDenominator
)

var (
	ErrMissingRecipient = errors.New("recipient address is required")
	ErrInvalidEstimate  = errors.New("invalid gas estimate")
)

// Caller is the raw JSON-RPC surface the estimator needs.
type Caller interface {
	CallContext(ctx context.Context, result interface{}, method string, args ...interface{}) error
}

// Overrides are transaction fields a caller may force. Zero values are unset.
type Overrides struct {
	GasLimit             uint64
	MaxFeePerGas         *big.Int
	MaxPriorityFeePerGas *big.Int
}

// Merge returns o with every field that is set in next replacing its
// counterpart, so later overrides win on collision.
func (o Overrides) Merge(next *Overrides) Overrides {
	if next == nil {
		return o
	}

	merged := o
	if next.GasLimit != 0 {
		merged.GasLimit = next.GasLimit
	}
	if next.MaxFeePerGas != nil {
		merged.MaxFeePerGas = new(big.Int).Set(next.MaxFeePerGas)
	}
	if next.MaxPriorityFeePerGas != nil {
		merged.MaxPriorityFeePerGas = new(big.Int).Set(next.MaxPriorityFeePerGas)
	}

	return merged
}

// Estimate is the outcome of a gas estimation. It always carries a usable
// GasLimit: either the buffered node estimate or DefaultGasLimit, in which
// case Err holds the reason the estimate could not be used.
type Estimate struct {
	GasLimit uint64
	Raw      uint64
	Err      error
}

// FromRaw applies the safety buffer to a node estimate.
func FromRaw(raw uint64) Estimate {
	return Estimate{GasLimit: Buffered(raw), Raw: raw}
}

// Fallback builds the estimate used when estimation failed.
func Fallback(err error) Estimate {
	return Estimate{GasLimit: DefaultGasLimit, Err: err}
}

// Fallback reports whether the default gas limit was used.
func (e Estimate) Fallback() bool {
	return e.Err != nil
}

func (e Estimate) Overrides() Overrides {
	return Overrides{GasLimit: e.GasLimit}
}

// Buffered returns ceil(raw * 1.2) without floating point rounding. Values
// above MaxEstimate saturate at math.MaxUint64.
func Buffered(raw uint64) uint64 {
	if raw > MaxEstimate {
		return math.MaxUint64
	}
	q, r := raw/bufferDenominator, raw%bufferDenominator
	return q*bufferNumerator + (r*bufferNumerator+bufferDenominator-1)/bufferDenominator
}
