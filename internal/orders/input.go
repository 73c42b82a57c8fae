package orders

import (
	"encoding/json"

	"github.com/pkg/errors"
	"github/chapool/orderbook-scripts/internal/action"
	"github/chapool/orderbook-scripts/internal/marketplace"
	"github/chapool/orderbook-scripts/internal/util"
)

// Input and output file names inside the data directory.
const (
	FileInputListOrders        = "inputListOrders.json"
	FileOutputListOrders       = "outputListOrders.json"
	FileInputCancelOrdersHard  = "inputCancelOrdersHard.json"
	FileOutputCancelOrdersHard = "outputCancelOrdersHard.json"
	FileInputCancelOrdersSoft  = "inputCancelOrdersSoft.json"
	FileOutputCancelOrdersSoft = "outputCancelOrdersSoft.json"
	FileOutputListedOrders     = "outputListedOrders.json"
	FileOutputInventory        = "outputInventory.json"
	FileInputActions           = "inputActions.json"
	FileOutputActions          = "outputActions.json"
)

// OrderIDsInput is the content of the cancellation input files.
type OrderIDsInput struct {
	OrderIDs []string `json:"orderIds"`
}

// ReadOrderIDs reads {"orderIds": [...]} from path. An empty list is an
// error.
func ReadOrderIDs(path string) ([]string, error) {
	var in OrderIDsInput
	if err := util.ReadJSONFile(path, &in); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(in.OrderIDs))
	for _, id := range in.OrderIDs {
		if id != "" {
			ids = append(ids, id)
		}
	}

	if len(ids) == 0 {
		return nil, errors.Wrapf(ErrNoOrders, "in %s", path)
	}

	return ids, nil
}

// ReadListingParams reads the listings to create from path.
func ReadListingParams(path string) ([]marketplace.ListingParams, error) {
	var params []marketplace.ListingParams
	if err := util.ReadJSONFile(path, &params); err != nil {
		return nil, err
	}

	for i := range params {
		params[i] = params[i].Normalize()
	}

	return params, nil
}

// ReadActions reads a JSON array of pending actions from path. An empty
// array is an error.
func ReadActions(path string) ([]action.PendingAction, error) {
	var raw json.RawMessage
	if err := util.ReadJSONFile(path, &raw); err != nil {
		return nil, err
	}

	acts, err := action.DecodeList(raw)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to decode actions in %s", path)
	}

	if len(acts) == 0 {
		return nil, errors.Wrapf(ErrNoActions, "in %s", path)
	}

	return acts, nil
}
