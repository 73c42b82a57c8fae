package action

import (
	"encoding/json"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
)

// Action type tags as they appear in JSON.
const (
	TypeTransaction = "TRANSACTION"
	TypeSignable    = "SIGNABLE"
)

// PendingAction is either a transaction to submit or a message to sign.
// The set of implementations is closed.
type PendingAction interface {
	Type() string
	Description() string
	pendingAction()
}

// TransactionAction is an on-chain call prepared by the marketplace.
type TransactionAction struct {
	To      common.Address
	Data    []byte
	Value   *big.Int
	Purpose string
}

// SignableAction is an EIP-712 payload that must be signed off-chain.
type SignableAction struct {
	Purpose string
	Message TypedMessage
}

// TypedMessage is passed through to the signer untouched.
type TypedMessage struct {
	Domain apitypes.TypedDataDomain  `json:"domain"`
	Types  apitypes.Types            `json:"types"`
	Value  apitypes.TypedDataMessage `json:"value"`
}

// UnrecognizedAction carries an action whose type tag is unknown.
type UnrecognizedAction struct {
	Tag string
	Raw json.RawMessage
}

func (*TransactionAction) Type() string { return TypeTransaction }
func (*SignableAction) Type() string    { return TypeSignable }
func (a *UnrecognizedAction) Type() string {
	return a.Tag
}

func (a *TransactionAction) Description() string { return a.Purpose }
func (a *SignableAction) Description() string    { return a.Purpose }
func (a *UnrecognizedAction) Description() string {
	return ""
}

func (*TransactionAction) pendingAction()  {}
func (*SignableAction) pendingAction()     {}
func (*UnrecognizedAction) pendingAction() {}
