package orders

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github/chapool/orderbook-scripts/internal/action"
	"github/chapool/orderbook-scripts/internal/config"
	"github/chapool/orderbook-scripts/internal/gas"
	"github/chapool/orderbook-scripts/internal/marketplace"
	"github/chapool/orderbook-scripts/internal/signer"
	"github/chapool/orderbook-scripts/internal/util"
)

var (
	ErrNoSigner  = errors.New("a signer is required for this operation")
	ErrNoOrders  = errors.New("no order ids provided")
	ErrNoActions = errors.New("no actions provided")
)

// Orderbook is the marketplace surface used by the order scripts.
type Orderbook interface {
	marketplace.API
	PrepareBulkListings(ctx context.Context, maker common.Address, params []marketplace.ListingParams) (*marketplace.PreparedListings, error)
	CompleteListings(ctx context.Context, prepared *marketplace.PreparedListings, signatures []string) (*marketplace.BulkListingsResult, error)
	CancelOrdersOnChain(ctx context.Context, orderIDs []string, account common.Address) (*action.TransactionAction, error)
	PrepareOrderCancellations(orderIDs []string) (*action.SignableAction, error)
}

type Dispatcher interface {
	Dispatch(ctx context.Context, s signer.Signer, act action.PendingAction, overrides *gas.Overrides) action.Result
}

// Service runs the order scripts. Actions are always executed one after the
// other, in the order they were prepared.
type Service struct {
	orderbook  Orderbook
	dispatcher Dispatcher
	signer     signer.Signer
	logger     zerolog.Logger
}

// NewService creates the service. s may be nil for read-only use.
func NewService(orderbook Orderbook, dispatcher Dispatcher, s signer.Signer, logger zerolog.Logger) *Service {
	return &Service{
		orderbook:  orderbook,
		dispatcher: dispatcher,
		signer:     s,
		logger:     logger.With().Str("component", "orders").Logger(),
	}
}

func (s *Service) account() (common.Address, error) {
	if s.signer == nil {
		return common.Address{}, ErrNoSigner
	}
	return s.signer.Address(), nil
}

// ListForSale prepares the listings, executes every action and publishes the
// signed orders. The first failed action aborts the whole batch.
func (s *Service) ListForSale(ctx context.Context, params []marketplace.ListingParams) (*marketplace.BulkListingsResult, error) {
	maker, err := s.account()
	if err != nil {
		return nil, err
	}

	prepared, err := s.orderbook.PrepareBulkListings(ctx, maker, params)
	if err != nil {
		return nil, errors.Wrap(err, "failed to prepare listings")
	}

	signatures := make([]string, 0, len(prepared.Orders))
	for i, act := range prepared.Actions {
		res := s.dispatcher.Dispatch(ctx, s.signer, act, nil)
		if !res.OK() {
			return nil, errors.Wrapf(res.Err, "action %d of %d (%s)", i+1, len(prepared.Actions), act.Description())
		}

		if _, ok := act.(*action.SignableAction); ok {
			signatures = append(signatures, res.Signature)
		}
	}

	result, err := s.orderbook.CompleteListings(ctx, prepared, signatures)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create listings")
	}

	return result, nil
}

// CancelOutcome is the result of cancelling a single order on chain.
type CancelOutcome struct {
	OrderID string `json:"orderId"`
	Success bool   `json:"success"`
	TxHash  string `json:"txHash,omitempty"`
	Error   string `json:"error,omitempty"`
}

// CancelHard cancels each order with its own Seaport transaction. A failing
// order is logged and recorded, the remaining ones are still processed.
func (s *Service) CancelHard(ctx context.Context, orderIDs []string) ([]CancelOutcome, error) {
	if len(orderIDs) == 0 {
		return nil, ErrNoOrders
	}

	account, err := s.account()
	if err != nil {
		return nil, err
	}

	outcomes := make([]CancelOutcome, 0, len(orderIDs))
	for _, id := range orderIDs {
		outcome := CancelOutcome{OrderID: id}

		if err := s.cancelHard(ctx, id, account, &outcome); err != nil {
			s.logger.Error().Err(err).Str("order_id", id).Msgf("Failed to send transaction for order %s.", id)
			outcome.Error = err.Error()
		} else {
			s.logger.Info().Str("order_id", id).Str("tx_hash", outcome.TxHash).Msgf("Order %s has been successfully hard cancelled.", id)
			outcome.Success = true
		}

		outcomes = append(outcomes, outcome)
	}

	return outcomes, nil
}

func (s *Service) cancelHard(ctx context.Context, id string, account common.Address, outcome *CancelOutcome) error {
	act, err := s.orderbook.CancelOrdersOnChain(ctx, []string{id}, account)
	if err != nil {
		return errors.Wrap(err, "failed to build cancel transaction")
	}

	res := s.dispatcher.Dispatch(ctx, s.signer, act, nil)
	if res.Receipt != nil {
		outcome.TxHash = res.TxHash().Hex()
	}

	return res.Err
}

// CancelSoft signs the gasless cancellation of orderIDs and submits it to the
// orderbook.
func (s *Service) CancelSoft(ctx context.Context, orderIDs []string) (*marketplace.CancelOrdersResponse, error) {
	if len(orderIDs) == 0 {
		return nil, ErrNoOrders
	}

	account, err := s.account()
	if err != nil {
		return nil, err
	}

	act, err := s.orderbook.PrepareOrderCancellations(orderIDs)
	if err != nil {
		return nil, errors.Wrap(err, "failed to prepare cancellation")
	}

	res := s.dispatcher.Dispatch(ctx, s.signer, act, nil)
	if !res.OK() {
		return nil, res.Err
	}

	resp, err := s.orderbook.CancelOrders(ctx, orderIDs, account.Hex(), res.Signature)
	if err != nil {
		return nil, errors.Wrap(err, "failed to cancel orders")
	}

	s.logger.Info().Msgf("Cancellation Result: %s", util.PrettyJSON(resp))

	return resp, nil
}

// Listings fetches one page of listings matching filters.
func (s *Service) Listings(ctx context.Context, filters config.ListingFilters) ([]marketplace.Listing, error) {
	params := marketplace.ListListingsParams{
		Status:                  marketplace.OrderStatus(filters.Status),
		SellItemContractAddress: filters.ContractAddress,
		AccountAddress:          filters.AccountAddress,
		SortBy:                  filters.SortBy,
		SortDirection:           filters.SortDirection,
		PageSize:                filters.PageSize,
	}

	if filters.FromUpdatedAt != "" {
		from, err := time.Parse(time.RFC3339, filters.FromUpdatedAt)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid from_updated_at %q", filters.FromUpdatedAt)
		}
		params.FromUpdatedAt = &from
	}

	res, err := s.orderbook.ListListings(ctx, params)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list listings")
	}

	s.logger.Debug().Int("count", len(res.Result)).Msg("Fetched listings")

	return res.Result, nil
}

// IndexByID keys listings by order id. Later duplicates replace earlier ones.
func IndexByID(listings []marketplace.Listing) map[string]marketplace.Listing {
	byID := make(map[string]marketplace.Listing, len(listings))
	for _, l := range listings {
		byID[l.ID] = l
	}
	return byID
}

// GetListing fetches a single listing and logs it.
func (s *Service) GetListing(ctx context.Context, id string) (*marketplace.Listing, error) {
	listing, err := s.orderbook.GetListing(ctx, id)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get listing %s", id)
	}

	s.logger.Info().Msgf("Listing Details: %s", util.PrettyJSON(listing))

	return listing, nil
}

// Inventory walks every page of NFTs matching filters. A failed page is
// logged and yields an empty inventory.
func (s *Service) Inventory(ctx context.Context, filters config.InventoryFilters) []marketplace.NFT {
	nfts := make([]marketplace.NFT, 0)

	params := marketplace.ListNFTsParams{
		ChainName:       filters.ChainName,
		AccountAddress:  filters.AccountAddress,
		ContractAddress: filters.ContractAddress,
		PageSize:        filters.PageSize,
	}

	for {
		res, err := s.orderbook.ListNFTsByAccountAddress(ctx, params)
		if err != nil {
			s.logger.Error().Err(err).Str("account", filters.AccountAddress).Msg("Failed to fetch inventory")
			return make([]marketplace.NFT, 0)
		}

		nfts = append(nfts, res.Result...)

		if res.Page.NextCursor == "" || res.Page.NextCursor == params.PageCursor {
			break
		}
		params.PageCursor = res.Page.NextCursor
	}

	s.logger.Debug().Int("count", len(nfts)).Msg("Fetched inventory")

	return nfts
}
