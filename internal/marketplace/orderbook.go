package marketplace

import (
	"context"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github/chapool/orderbook-scripts/internal/action"
)

// Action purposes.
const (
	PurposeApproval             = "APPROVAL"
	PurposeCancel               = "CANCEL"
	PurposeCreateListing        = "CREATE_LISTING"
	PurposeOffChainCancellation = "OFF_CHAIN_CANCELLATION"
)

const (
	cancellationDomainName    = "imtbl-order-book"
	cancellationDomainVersion = "1"
	cancellationType          = "CancelPayload"

	defaultListingDuration = 2 * 365 * 24 * time.Hour
)

var (
	ErrNotOfferer          = errors.New("account is not the offerer of the order")
	ErrNoOrders            = errors.New("at least one order id is required")
	ErrSignatureMismatch   = errors.New("number of signatures does not match prepared listings")
	ErrInvalidListingParam = errors.New("invalid listing parameters")
)

// API is the REST surface of the marketplace.
type API interface {
	ChainName() string
	ListListings(ctx context.Context, params ListListingsParams) (*ListListingsResult, error)
	GetListing(ctx context.Context, id string) (*Listing, error)
	CreateListing(ctx context.Context, req CreateListingRequest) (*Listing, error)
	CancelOrders(ctx context.Context, orderIDs []string, accountAddress string, signature string) (*CancelOrdersResponse, error)
	ListNFTsByAccountAddress(ctx context.Context, params ListNFTsParams) (*ListNFTsResult, error)
}

// ContractCaller runs read-only contract calls.
type ContractCaller interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

type Contracts struct {
	ChainID *big.Int
	Seaport common.Address
	Zone    common.Address
}

// Orderbook prepares the actions needed to create and cancel orders and
// exposes the REST API alongside.
type Orderbook struct {
	API

	caller    ContractCaller
	contracts Contracts
	now       func() time.Time
	newSalt   func() *big.Int
	logger    zerolog.Logger
}

type OrderbookOption func(*Orderbook)

// WithClock replaces time.Now for listing start and expiry times.
func WithClock(now func() time.Time) OrderbookOption {
	return func(o *Orderbook) {
		o.now = now
	}
}

func WithSaltSource(newSalt func() *big.Int) OrderbookOption {
	return func(o *Orderbook) {
		o.newSalt = newSalt
	}
}

func NewOrderbook(api API, caller ContractCaller, contracts Contracts, logger zerolog.Logger, opts ...OrderbookOption) *Orderbook {
	o := &Orderbook{
		API:       api,
		caller:    caller,
		contracts: contracts,
		now:       time.Now,
		newSalt:   randomSalt,
		logger:    logger.With().Str("component", "orderbook").Logger(),
	}
	for _, opt := range opts {
		opt(o)
	}

	return o
}

// randomSalt 使用 UUID v4 的 128 位作为订单 salt
func randomSalt() *big.Int {
	id := uuid.New()
	return new(big.Int).SetBytes(id[:])
}

// PreparedOrder is a listing waiting for its signature.
type PreparedOrder struct {
	Params     ListingParams
	Components OrderComponents
	OrderHash  common.Hash
}

// PreparedListings holds the actions to execute in order: approvals first,
// then one signable per listing, aligned with Orders.
type PreparedListings struct {
	Maker   common.Address
	Actions []action.PendingAction
	Orders  []PreparedOrder
}

// PrepareBulkListings builds the orders for params and the actions needed to
// publish them.
func (o *Orderbook) PrepareBulkListings(ctx context.Context, maker common.Address, params []ListingParams) (*PreparedListings, error) {
	if len(params) == 0 {
		return nil, errors.Wrap(ErrInvalidListingParam, "no listings given")
	}

	normalized := make([]ListingParams, len(params))
	for i, p := range params {
		normalized[i] = p.Normalize()
		if err := normalized[i].Validate(); err != nil {
			return nil, errors.Wrapf(err, "listing %d", i)
		}
	}
	params = normalized

	prepared := &PreparedListings{Maker: maker}

	approvals, err := o.approvalActions(ctx, maker, params)
	if err != nil {
		return nil, err
	}
	prepared.Actions = append(prepared.Actions, approvals...)

	counter, err := o.counter(ctx, maker)
	if err != nil {
		return nil, err
	}

	domain := SeaportDomain(o.contracts.ChainID, o.contracts.Seaport)
	start := o.now().UTC().Truncate(time.Second)

	for i, p := range params {
		end := start.Add(defaultListingDuration)
		if p.OrderExpiry != nil {
			end = p.OrderExpiry.UTC().Truncate(time.Second)
		}
		if !end.After(start) {
			return nil, errors.Wrapf(ErrInvalidListingParam, "listing %d expires before it starts", i)
		}

		components, err := o.buildComponents(maker, p, counter, start, end)
		if err != nil {
			return nil, errors.Wrapf(err, "listing %d", i)
		}

		hash, err := components.Hash()
		if err != nil {
			return nil, errors.Wrapf(err, "listing %d", i)
		}

		prepared.Orders = append(prepared.Orders, PreparedOrder{
			Params:     p,
			Components: components,
			OrderHash:  hash,
		})
		prepared.Actions = append(prepared.Actions, &action.SignableAction{
			Purpose: PurposeCreateListing,
			Message: action.TypedMessage{
				Domain: domain,
				Types:  OrderComponentsTypes(),
				Value:  components.Message(),
			},
		})
	}

	o.logger.Debug().
		Int("listings", len(prepared.Orders)).
		Int("approvals", len(approvals)).
		Msg("Prepared bulk listings")

	return prepared, nil
}

// CompleteListings submits each prepared order with its signature. A listing
// rejected by the API is reported in its result entry and does not stop the
// others.
func (o *Orderbook) CompleteListings(ctx context.Context, prepared *PreparedListings, signatures []string) (*BulkListingsResult, error) {
	if len(signatures) != len(prepared.Orders) {
		return nil, errors.Wrapf(ErrSignatureMismatch, "%d signatures for %d listings", len(signatures), len(prepared.Orders))
	}

	result := &BulkListingsResult{Result: make([]CreatedListing, 0, len(prepared.Orders))}
	for i, order := range prepared.Orders {
		req := o.createListingRequest(prepared.Maker, order, signatures[i])

		listing, err := o.CreateListing(ctx, req)
		if err != nil {
			o.logger.Error().Err(err).Str("order_hash", req.OrderHash).Msg("Failed to create listing")
			result.Result = append(result.Result, CreatedListing{OrderHash: req.OrderHash, Error: err.Error()})
			continue
		}

		result.Result = append(result.Result, CreatedListing{Success: true, OrderHash: req.OrderHash, Order: listing})
	}

	return result, nil
}

// CancelOrdersOnChain builds the Seaport cancel transaction for orders owned
// by account.
func (o *Orderbook) CancelOrdersOnChain(ctx context.Context, orderIDs []string, account common.Address) (*action.TransactionAction, error) {
	if len(orderIDs) == 0 {
		return nil, ErrNoOrders
	}

	seaport := o.contracts.Seaport
	orders := make([]OrderComponents, 0, len(orderIDs))
	for _, id := range orderIDs {
		listing, err := o.GetListing(ctx, id)
		if err != nil {
			return nil, err
		}

		if !strings.EqualFold(listing.AccountAddress, account.Hex()) {
			return nil, errors.Wrapf(ErrNotOfferer, "order %s belongs to %s", id, listing.AccountAddress)
		}

		components, err := componentsFromListing(*listing)
		if err != nil {
			return nil, errors.Wrapf(err, "order %s", id)
		}
		orders = append(orders, components)

		if common.IsHexAddress(listing.ProtocolData.SeaportAddress) {
			seaport = common.HexToAddress(listing.ProtocolData.SeaportAddress)
		}
	}

	data, err := packCancel(orders)
	if err != nil {
		return nil, err
	}

	return &action.TransactionAction{
		To:      seaport,
		Data:    data,
		Value:   new(big.Int),
		Purpose: PurposeCancel,
	}, nil
}

// PrepareOrderCancellations builds the gasless cancellation payload to sign.
func (o *Orderbook) PrepareOrderCancellations(orderIDs []string) (*action.SignableAction, error) {
	if len(orderIDs) == 0 {
		return nil, ErrNoOrders
	}

	ids := make([]interface{}, 0, len(orderIDs))
	for _, id := range orderIDs {
		ids = append(ids, id)
	}

	return &action.SignableAction{
		Purpose: PurposeOffChainCancellation,
		Message: action.TypedMessage{
			Domain: apitypes.TypedDataDomain{
				Name:    cancellationDomainName,
				Version: cancellationDomainVersion,
				ChainId: (*math.HexOrDecimal256)(new(big.Int).Set(o.contracts.ChainID)),
			},
			Types: apitypes.Types{
				cancellationType: {{Name: "orders", Type: "string[]"}},
			},
			Value: apitypes.TypedDataMessage{"orders": ids},
		},
	}, nil
}

// approvalActions returns one setApprovalForAll per sell collection that has
// not approved Seaport yet.
func (o *Orderbook) approvalActions(ctx context.Context, maker common.Address, params []ListingParams) ([]action.PendingAction, error) {
	seen := make(map[common.Address]bool)
	actions := make([]action.PendingAction, 0)

	for _, p := range params {
		collection := common.HexToAddress(p.Sell.ContractAddress)
		if seen[collection] {
			continue
		}
		seen[collection] = true

		input, err := packIsApprovedForAll(maker, o.contracts.Seaport)
		if err != nil {
			return nil, err
		}

		out, err := o.caller.CallContract(ctx, ethereum.CallMsg{To: &collection, Data: input}, nil)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to check approval of %s", collection.Hex())
		}

		approved, err := unpackIsApprovedForAll(out)
		if err != nil {
			return nil, err
		}
		if approved {
			continue
		}

		data, err := packSetApprovalForAll(o.contracts.Seaport)
		if err != nil {
			return nil, err
		}

		actions = append(actions, &action.TransactionAction{
			To:      collection,
			Data:    data,
			Value:   new(big.Int),
			Purpose: PurposeApproval,
		})
	}

	return actions, nil
}

func (o *Orderbook) counter(ctx context.Context, offerer common.Address) (*big.Int, error) {
	input, err := packGetCounter(offerer)
	if err != nil {
		return nil, err
	}

	seaport := o.contracts.Seaport
	out, err := o.caller.CallContract(ctx, ethereum.CallMsg{To: &seaport, Data: input}, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get Seaport counter")
	}

	return unpackGetCounter(out)
}

func (o *Orderbook) buildComponents(maker common.Address, p ListingParams, counter *big.Int, start, end time.Time) (OrderComponents, error) {
	sellType, err := seaportItemType(p.Sell.Type)
	if err != nil {
		return OrderComponents{}, err
	}
	buyType, err := seaportItemType(p.Buy.Type)
	if err != nil {
		return OrderComponents{}, err
	}

	tokenID, _ := new(big.Int).SetString(p.Sell.TokenID, 10)
	sellAmount := big.NewInt(1)
	orderType := OrderTypeFullRestricted
	if p.Sell.Type == ItemTypeERC1155 {
		sellAmount, _ = parseAmount(p.Sell.Amount)
		orderType = OrderTypePartialRestricted
	}

	buyToken := common.Address{}
	if p.Buy.Type == ItemTypeERC20 {
		buyToken = common.HexToAddress(p.Buy.ContractAddress)
	}
	buyAmount, _ := parseAmount(p.Buy.Amount)

	consideration := []ConsiderationItem{considerationItem(buyType, buyToken, buyAmount, maker)}
	for _, fee := range p.MakerFees {
		amount, _ := parseAmount(fee.Amount)
		consideration = append(consideration, considerationItem(buyType, buyToken, amount, common.HexToAddress(fee.RecipientAddress)))
	}

	return OrderComponents{
		Offerer: maker,
		Zone:    o.contracts.Zone,
		Offer: []OfferItem{{
			ItemType:             sellType,
			Token:                common.HexToAddress(p.Sell.ContractAddress),
			IdentifierOrCriteria: tokenID,
			StartAmount:          sellAmount,
			EndAmount:            new(big.Int).Set(sellAmount),
		}},
		Consideration: consideration,
		OrderType:     orderType,
		StartTime:     big.NewInt(start.Unix()),
		EndTime:       big.NewInt(end.Unix()),
		Salt:          o.newSalt(),
		Counter:       new(big.Int).Set(counter),
	}, nil
}

func (o *Orderbook) createListingRequest(maker common.Address, order PreparedOrder, signature string) CreateListingRequest {
	p := order.Params
	c := order.Components

	sell := Item{Type: p.Sell.Type, ContractAddress: strings.ToLower(p.Sell.ContractAddress), TokenID: p.Sell.TokenID}
	if p.Sell.Type == ItemTypeERC1155 {
		sell.Amount = p.Sell.Amount
	}

	buy := Item{Type: p.Buy.Type, Amount: p.Buy.Amount}
	if p.Buy.Type == ItemTypeERC20 {
		buy.ContractAddress = strings.ToLower(p.Buy.ContractAddress)
	}

	fees := make([]Fee, 0, len(p.MakerFees))
	for _, fee := range p.MakerFees {
		fees = append(fees, Fee{
			Type:             FeeTypeMakerEcosystem,
			Amount:           fee.Amount,
			RecipientAddress: strings.ToLower(fee.RecipientAddress),
		})
	}

	return CreateListingRequest{
		AccountAddress: strings.ToLower(maker.Hex()),
		OrderHash:      order.OrderHash.Hex(),
		Buy:            []Item{buy},
		Sell:           []Item{sell},
		Fees:           fees,
		StartAt:        time.Unix(c.StartTime.Int64(), 0).UTC(),
		EndAt:          time.Unix(c.EndTime.Int64(), 0).UTC(),
		ProtocolData: ProtocolData{
			OrderType:      orderTypeName(c.OrderType),
			Counter:        c.Counter.String(),
			ZoneAddress:    strings.ToLower(c.Zone.Hex()),
			SeaportAddress: strings.ToLower(o.contracts.Seaport.Hex()),
			SeaportVersion: SeaportVersion,
		},
		Salt:      c.Salt.String(),
		Signature: signature,
	}
}

// componentsFromListing rebuilds the signed order of a listing. Only maker
// fees are part of the signed consideration.
func componentsFromListing(l Listing) (OrderComponents, error) {
	if len(l.Sell) == 0 || len(l.Buy) == 0 {
		return OrderComponents{}, errors.New("listing has no sell or buy item")
	}
	if !common.IsHexAddress(l.AccountAddress) {
		return OrderComponents{}, errors.Errorf("invalid offerer %q", l.AccountAddress)
	}

	offerer := common.HexToAddress(l.AccountAddress)

	sell := l.Sell[0]
	sellType, err := seaportItemType(sell.Type)
	if err != nil {
		return OrderComponents{}, err
	}
	tokenID, ok := math.ParseBig256(sell.TokenID)
	if !ok {
		return OrderComponents{}, errors.Errorf("invalid token id %q", sell.TokenID)
	}
	sellAmount := big.NewInt(1)
	if sell.Amount != "" {
		if sellAmount, ok = math.ParseBig256(sell.Amount); !ok {
			return OrderComponents{}, errors.Errorf("invalid sell amount %q", sell.Amount)
		}
	}

	buy := l.Buy[0]
	buyType, err := seaportItemType(buy.Type)
	if err != nil {
		return OrderComponents{}, err
	}
	buyAmount, ok := math.ParseBig256(buy.Amount)
	if !ok {
		return OrderComponents{}, errors.Errorf("invalid buy amount %q", buy.Amount)
	}
	buyToken := common.Address{}
	if buy.ContractAddress != "" {
		buyToken = common.HexToAddress(buy.ContractAddress)
	}

	consideration := []ConsiderationItem{considerationItem(buyType, buyToken, buyAmount, offerer)}
	for _, fee := range l.Fees {
		if fee.Type != FeeTypeMakerEcosystem {
			continue
		}
		amount, ok := math.ParseBig256(fee.Amount)
		if !ok {
			return OrderComponents{}, errors.Errorf("invalid fee amount %q", fee.Amount)
		}
		consideration = append(consideration, considerationItem(buyType, buyToken, amount, common.HexToAddress(fee.RecipientAddress)))
	}

	orderType, err := parseOrderType(l.ProtocolData.OrderType)
	if err != nil {
		return OrderComponents{}, err
	}

	salt, ok := math.ParseBig256(l.Salt)
	if !ok {
		return OrderComponents{}, errors.Errorf("invalid salt %q", l.Salt)
	}

	counter := new(big.Int)
	if l.ProtocolData.Counter != "" {
		if counter, ok = math.ParseBig256(l.ProtocolData.Counter); !ok {
			return OrderComponents{}, errors.Errorf("invalid counter %q", l.ProtocolData.Counter)
		}
	}

	return OrderComponents{
		Offerer: offerer,
		Zone:    common.HexToAddress(l.ProtocolData.ZoneAddress),
		Offer: []OfferItem{{
			ItemType:             sellType,
			Token:                common.HexToAddress(sell.ContractAddress),
			IdentifierOrCriteria: tokenID,
			StartAmount:          sellAmount,
			EndAmount:            new(big.Int).Set(sellAmount),
		}},
		Consideration: consideration,
		OrderType:     orderType,
		StartTime:     big.NewInt(l.StartAt.Unix()),
		EndTime:       big.NewInt(l.EndAt.Unix()),
		Salt:          salt,
		Counter:       counter,
	}, nil
}

func considerationItem(itemType uint8, token common.Address, amount *big.Int, recipient common.Address) ConsiderationItem {
	return ConsiderationItem{
		ItemType:             itemType,
		Token:                token,
		IdentifierOrCriteria: new(big.Int),
		StartAmount:          amount,
		EndAmount:            new(big.Int).Set(amount),
		Recipient:            recipient,
	}
}
