package orders

import (
	"context"

	"github/chapool/orderbook-scripts/internal/action"
)

// ActionOutcome is the result of dispatching one action from a batch.
type ActionOutcome struct {
	Index     int    `json:"index"`
	Type      string `json:"type"`
	Purpose   string `json:"purpose,omitempty"`
	Success   bool   `json:"success"`
	TxHash    string `json:"txHash,omitempty"`
	Signature string `json:"signature,omitempty"`
	GasLimit  uint64 `json:"gasLimit,omitempty"`
	Error     string `json:"error,omitempty"`
}

// RunActions dispatches acts in order. Failures are recorded and do not stop
// the batch. An empty batch is an error.
func (s *Service) RunActions(ctx context.Context, acts []action.PendingAction) ([]ActionOutcome, error) {
	if len(acts) == 0 {
		return nil, ErrNoActions
	}

	if _, err := s.account(); err != nil {
		return nil, err
	}

	outcomes := make([]ActionOutcome, 0, len(acts))
	for i, act := range acts {
		res := s.dispatcher.Dispatch(ctx, s.signer, act, nil)

		outcome := ActionOutcome{
			Index:     i,
			Type:      res.Type,
			Purpose:   res.Purpose,
			Success:   res.OK(),
			Signature: res.Signature,
		}
		if res.Receipt != nil {
			outcome.TxHash = res.TxHash().Hex()
		}
		if res.Estimate != nil {
			outcome.GasLimit = res.Estimate.GasLimit
		}
		if res.Err != nil {
			outcome.Error = res.Err.Error()
		}

		outcomes = append(outcomes, outcome)
	}

	return outcomes, nil
}
