package signer

import (
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"github.com/pkg/errors"
)

const domainTypeName = "EIP712Domain"

var (
	ErrNoPrimaryType        = errors.New("typed data has no primary type")
	ErrAmbiguousPrimaryType = errors.New("typed data has more than one primary type")
)

// NewTypedData assembles a complete EIP-712 document. The EIP712Domain type
// is derived from the domain fields that are set unless typeDefs already
// declares it, and the primary type is the only type no other type refers to.
// typeDefs is not modified.
func NewTypedData(domain apitypes.TypedDataDomain, typeDefs apitypes.Types, message apitypes.TypedDataMessage) (apitypes.TypedData, error) {
	primaryType, err := PrimaryType(typeDefs)
	if err != nil {
		return apitypes.TypedData{}, err
	}

	all := make(apitypes.Types, len(typeDefs)+1)
	for name, fields := range typeDefs {
		all[name] = fields
	}
	if _, ok := all[domainTypeName]; !ok {
		all[domainTypeName] = DomainType(domain)
	}

	return apitypes.TypedData{
		Types:       all,
		PrimaryType: primaryType,
		Domain:      domain,
		Message:     message,
	}, nil
}

// TypedDataHash returns the EIP-712 digest that gets signed.
func TypedDataHash(domain apitypes.TypedDataDomain, typeDefs apitypes.Types, message apitypes.TypedDataMessage) (common.Hash, error) {
	typedData, err := NewTypedData(domain, typeDefs, message)
	if err != nil {
		return common.Hash{}, err
	}

	hash, _, err := apitypes.TypedDataAndHash(typedData)
	if err != nil {
		return common.Hash{}, errors.Wrap(err, "failed to hash typed data")
	}

	return common.BytesToHash(hash), nil
}

// DomainType lists the domain fields in canonical order, keeping only those
// that are set.
func DomainType(domain apitypes.TypedDataDomain) []apitypes.Type {
	fields := make([]apitypes.Type, 0, 5)
	if domain.Name != "" {
		fields = append(fields, apitypes.Type{Name: "name", Type: "string"})
	}
	if domain.Version != "" {
		fields = append(fields, apitypes.Type{Name: "version", Type: "string"})
	}
	if domain.ChainId != nil {
		fields = append(fields, apitypes.Type{Name: "chainId", Type: "uint256"})
	}
	if domain.VerifyingContract != "" {
		fields = append(fields, apitypes.Type{Name: "verifyingContract", Type: "address"})
	}
	if domain.Salt != "" {
		fields = append(fields, apitypes.Type{Name: "salt", Type: "bytes32"})
	}

	return fields
}

// PrimaryType finds the struct type that no other type references.
func PrimaryType(typeDefs apitypes.Types) (string, error) {
	referenced := make(map[string]bool)
	for name, fields := range typeDefs {
		if name == domainTypeName {
			continue
		}
		for _, field := range fields {
			base := field.Type
			if i := strings.Index(base, "["); i >= 0 {
				base = base[:i]
			}
			if base != name {
				referenced[base] = true
			}
		}
	}

	candidates := make([]string, 0, 1)
	for name := range typeDefs {
		if name == domainTypeName || referenced[name] {
			continue
		}
		candidates = append(candidates, name)
	}

	switch len(candidates) {
	case 0:
		return "", ErrNoPrimaryType
	case 1:
		return candidates[0], nil
	default:
		sort.Strings(candidates)
		return "", errors.Wrapf(ErrAmbiguousPrimaryType, "candidates %s", strings.Join(candidates, ", "))
	}
}
