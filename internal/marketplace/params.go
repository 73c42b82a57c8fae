package marketplace

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
)

// Normalize fills in defaults: a missing makerFees list becomes empty.
func (p ListingParams) Normalize() ListingParams {
	if p.MakerFees == nil {
		p.MakerFees = []FeeValue{}
	}
	return p
}

func (p ListingParams) Validate() error {
	switch p.Sell.Type {
	case ItemTypeERC721:
	case ItemTypeERC1155:
		if _, err := parseAmount(p.Sell.Amount); err != nil {
			return errors.Wrap(err, "sell.amount")
		}
	default:
		return errors.Wrapf(ErrInvalidListingParam, "sell.type must be ERC721 or ERC1155, got %q", p.Sell.Type)
	}

	if !common.IsHexAddress(p.Sell.ContractAddress) {
		return errors.Wrapf(ErrInvalidListingParam, "sell.contractAddress %q", p.Sell.ContractAddress)
	}
	if _, ok := new(big.Int).SetString(p.Sell.TokenID, 10); !ok {
		return errors.Wrapf(ErrInvalidListingParam, "sell.tokenId %q", p.Sell.TokenID)
	}

	switch p.Buy.Type {
	case ItemTypeNative:
	case ItemTypeERC20:
		if !common.IsHexAddress(p.Buy.ContractAddress) {
			return errors.Wrapf(ErrInvalidListingParam, "buy.contractAddress %q", p.Buy.ContractAddress)
		}
	default:
		return errors.Wrapf(ErrInvalidListingParam, "buy.type must be NATIVE or ERC20, got %q", p.Buy.Type)
	}
	if _, err := parseAmount(p.Buy.Amount); err != nil {
		return errors.Wrap(err, "buy.amount")
	}

	for i, fee := range p.MakerFees {
		if _, err := parseAmount(fee.Amount); err != nil {
			return errors.Wrapf(err, "makerFees[%d].amount", i)
		}
		if !common.IsHexAddress(fee.RecipientAddress) {
			return errors.Wrapf(ErrInvalidListingParam, "makerFees[%d].recipientAddress %q", i, fee.RecipientAddress)
		}
	}

	return nil
}

// parseAmount parses a positive base 10 integer.
func parseAmount(s string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok || v.Sign() <= 0 {
		return nil, errors.Wrapf(ErrInvalidListingParam, "amount must be a positive integer, got %q", s)
	}
	return v, nil
}
