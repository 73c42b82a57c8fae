package action

import (
	"encoding/json"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/pkg/errors"
)

var ErrInvalidAction = errors.New("invalid action")

// envelope is the JSON form shared by all actions, e.g.
//
//	{"type":"TRANSACTION","purpose":"APPROVAL","to":"0x..","data":"0x..","value":"0x0"}
//	{"type":"SIGNABLE","purpose":"CREATE_LISTING","message":{"domain":{..},"types":{..},"value":{..}}}
type envelope struct {
	Type    string        `json:"type"`
	Purpose string        `json:"purpose,omitempty"`
	To      string        `json:"to,omitempty"`
	Data    string        `json:"data,omitempty"`
	Value   string        `json:"value,omitempty"`
	Message *TypedMessage `json:"message,omitempty"`
}

func (a *TransactionAction) MarshalJSON() ([]byte, error) {
	value := "0x0"
	if a.Value != nil {
		value = hexutil.EncodeBig(a.Value)
	}

	return json.Marshal(envelope{
		Type:    TypeTransaction,
		Purpose: a.Purpose,
		To:      a.To.Hex(),
		Data:    hexutil.Encode(a.Data),
		Value:   value,
	})
}

func (a *SignableAction) MarshalJSON() ([]byte, error) {
	message := a.Message

	return json.Marshal(envelope{
		Type:    TypeSignable,
		Purpose: a.Purpose,
		Message: &message,
	})
}

func (a *UnrecognizedAction) MarshalJSON() ([]byte, error) {
	if len(a.Raw) > 0 {
		return a.Raw, nil
	}

	return json.Marshal(envelope{Type: a.Tag})
}

// Decode parses one action. Unknown type tags are not an error: they decode
// into an UnrecognizedAction so that dispatching can report them.
func Decode(raw []byte) (PendingAction, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, errors.Wrap(err, "failed to decode action")
	}

	switch env.Type {
	case TypeTransaction:
		return decodeTransaction(env)
	case TypeSignable:
		if env.Message == nil {
			return nil, errors.Wrap(ErrInvalidAction, "signable action without message")
		}
		return &SignableAction{Purpose: env.Purpose, Message: *env.Message}, nil
	default:
		return &UnrecognizedAction{Tag: env.Type, Raw: append(json.RawMessage(nil), raw...)}, nil
	}
}

// DecodeList parses a JSON array of actions.
func DecodeList(raw []byte) ([]PendingAction, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, errors.Wrap(err, "failed to decode action list")
	}

	actions := make([]PendingAction, 0, len(items))
	for i, item := range items {
		act, err := Decode(item)
		if err != nil {
			return nil, errors.Wrapf(err, "action %d", i)
		}
		actions = append(actions, act)
	}

	return actions, nil
}

func decodeTransaction(env envelope) (*TransactionAction, error) {
	if !common.IsHexAddress(env.To) {
		return nil, errors.Wrapf(ErrInvalidAction, "invalid to address %q", env.To)
	}

	act := &TransactionAction{
		To:      common.HexToAddress(env.To),
		Purpose: env.Purpose,
	}

	if env.Data != "" {
		data, err := hexutil.Decode(env.Data)
		if err != nil {
			return nil, errors.Wrapf(ErrInvalidAction, "invalid data: %v", err)
		}
		act.Data = data
	}

	if env.Value != "" {
		value, ok := math.ParseBig256(env.Value)
		if !ok {
			return nil, errors.Wrapf(ErrInvalidAction, "invalid value %q", env.Value)
		}
		act.Value = value
	}

	return act, nil
}
