package config

import (
	"os"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

const (
	defaultFilterAccountAddress  = "0xD509997AB62fDA51c32E64E69Fb090DF8894105e"
	defaultInventoryContract     = "0x04d022f51c96d21d276417c69a14349c9a3667db"
	defaultFilterPageSize        = 200
	maxFilterPageSize            = 200
	defaultListingsSortBy        = "created_at"
	defaultListingsSortDirection = "asc"
	defaultListingsStatus        = "ACTIVE"
	defaultInventoryChainName    = sandboxChainName
)

// ListingFilters are the query parameters of "orders listings".
type ListingFilters struct {
	ContractAddress string `toml:"contract_address" json:"contractAddress,omitempty"`
	AccountAddress  string `toml:"account_address" json:"accountAddress,omitempty"`
	FromUpdatedAt   string `toml:"from_updated_at" json:"fromUpdatedAt,omitempty"`
	SortBy          string `toml:"sort_by" json:"sortBy"`
	SortDirection   string `toml:"sort_direction" json:"sortDirection"`
	PageSize        int    `toml:"page_size" json:"pageSize"`
	Status          string `toml:"status" json:"status"`
}

// InventoryFilters are the query parameters of "inventory".
type InventoryFilters struct {
	ChainName       string `toml:"chain_name" json:"chainName"`
	AccountAddress  string `toml:"account_address" json:"accountAddress"`
	ContractAddress string `toml:"contract_address" json:"contractAddress,omitempty"`
	PageSize        int    `toml:"page_size" json:"pageSize"`
}

type Filters struct {
	Listings  ListingFilters   `toml:"listings" json:"listings"`
	Inventory InventoryFilters `toml:"inventory" json:"inventory"`
}

// DefaultFilters returns the filters used when no filters file is present.
func DefaultFilters() Filters {
	return Filters{
		Listings: ListingFilters{
			AccountAddress: defaultFilterAccountAddress,
			SortBy:         defaultListingsSortBy,
			SortDirection:  defaultListingsSortDirection,
			PageSize:       defaultFilterPageSize,
			Status:         defaultListingsStatus,
		},
		Inventory: InventoryFilters{
			ChainName:       defaultInventoryChainName,
			AccountAddress:  defaultFilterAccountAddress,
			ContractAddress: defaultInventoryContract,
			PageSize:        defaultFilterPageSize,
		},
	}
}

// LoadFilters decodes a TOML filters file on top of DefaultFilters. Keys that
// are absent from the file keep their default value; a missing file yields
// the defaults.
func LoadFilters(path string) (Filters, error) {
	filters := DefaultFilters()

	if path == "" {
		return filters, nil
	}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return filters, nil
	}

	if _, err := toml.DecodeFile(path, &filters); err != nil {
		return Filters{}, errors.Wrapf(err, "failed to decode filters file %s", path)
	}

	if err := filters.Validate(); err != nil {
		return Filters{}, err
	}

	return filters, nil
}

func (f Filters) Validate() error {
	switch f.Listings.SortBy {
	case "created_at", "updated_at", "buy_item_amount":
	default:
		return errors.Errorf("invalid listings sort_by %q", f.Listings.SortBy)
	}

	switch f.Listings.SortDirection {
	case "asc", "desc":
	default:
		return errors.Errorf("invalid listings sort_direction %q", f.Listings.SortDirection)
	}

	if f.Listings.PageSize < 1 || f.Listings.PageSize > maxFilterPageSize {
		return errors.Errorf("listings page_size must be between 1 and %d", maxFilterPageSize)
	}

	if f.Inventory.PageSize < 1 || f.Inventory.PageSize > maxFilterPageSize {
		return errors.Errorf("inventory page_size must be between 1 and %d", maxFilterPageSize)
	}

	if f.Inventory.AccountAddress == "" {
		return errors.New("inventory account_address is required")
	}

	return nil
}
