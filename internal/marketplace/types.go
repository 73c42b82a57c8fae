package marketplace

import (
	"encoding/json"
	"time"
)

// ItemType is the asset kind of a sell, buy or fee item.
type ItemType string

const (
	ItemTypeNative  ItemType = "NATIVE"
	ItemTypeERC20   ItemType = "ERC20"
	ItemTypeERC721  ItemType = "ERC721"
	ItemTypeERC1155 ItemType = "ERC1155"
)

// OrderStatus is the lifecycle state reported by the orderbook.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusActive    OrderStatus = "ACTIVE"
	OrderStatusInactive  OrderStatus = "INACTIVE"
	OrderStatusFilled    OrderStatus = "FILLED"
	OrderStatusExpired   OrderStatus = "EXPIRED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

const (
	FeeTypeMakerEcosystem = "MAKER_ECOSYSTEM"
	FeeTypeTakerEcosystem = "TAKER_ECOSYSTEM"
	FeeTypeProtocol       = "PROTOCOL"
)

// Item is an asset as returned by the orderbook API.
type Item struct {
	Type            ItemType `json:"type"`
	ContractAddress string   `json:"contract_address,omitempty"`
	TokenID         string   `json:"token_id,omitempty"`
	Amount          string   `json:"amount,omitempty"`
}

type Fee struct {
	Type             string `json:"type"`
	Amount           string `json:"amount"`
	RecipientAddress string `json:"recipient_address"`
}

type Chain struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Status struct {
	Name OrderStatus `json:"name"`
	// 仅在 INACTIVE 时存在
	SufficientApprovals *bool `json:"sufficient_approvals,omitempty"`
	SufficientBalance   *bool `json:"sufficient_balance,omitempty"`
	// 仅在 CANCELLED 时存在
	Pending          *bool  `json:"pending,omitempty"`
	CancellationType string `json:"cancellation_type,omitempty"`
}

type FillStatus struct {
	Numerator   string `json:"numerator"`
	Denominator string `json:"denominator"`
}

// ProtocolData holds the Seaport specific fields of an order.
type ProtocolData struct {
	OrderType      string `json:"order_type"`
	Counter        string `json:"counter"`
	ZoneAddress    string `json:"zone_address"`
	SeaportAddress string `json:"seaport_address"`
	SeaportVersion string `json:"seaport_version"`
}

// Listing is a sell order.
type Listing struct {
	ID             string       `json:"id"`
	Type           string       `json:"type"`
	AccountAddress string       `json:"account_address"`
	Buy            []Item       `json:"buy"`
	Sell           []Item       `json:"sell"`
	Fees           []Fee        `json:"fees"`
	Chain          Chain        `json:"chain"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
	StartAt        time.Time    `json:"start_at"`
	EndAt          time.Time    `json:"end_at"`
	OrderHash      string       `json:"order_hash"`
	ProtocolData   ProtocolData `json:"protocol_data"`
	Salt           string       `json:"salt"`
	Signature      string       `json:"signature"`
	Status         Status       `json:"status"`
	FillStatus     FillStatus   `json:"fill_status"`
}

type Page struct {
	PreviousCursor string `json:"previous_cursor,omitempty"`
	NextCursor     string `json:"next_cursor,omitempty"`
}

type ListListingsResult struct {
	Page   Page      `json:"page"`
	Result []Listing `json:"result"`
}

type ListingResult struct {
	Result Listing `json:"result"`
}

// ListListingsParams filters GET /orders/listings. Empty fields are omitted.
type ListListingsParams struct {
	Status                  OrderStatus
	SellItemContractAddress string
	SellItemTokenID         string
	BuyItemType             ItemType
	BuyItemContractAddress  string
	AccountAddress          string
	FromUpdatedAt           *time.Time
	SortBy                  string
	SortDirection           string
	PageSize                int
	PageCursor              string
}

// CreateListingRequest is the body of POST /orders/listings.
type CreateListingRequest struct {
	AccountAddress string       `json:"account_address"`
	OrderHash      string       `json:"order_hash"`
	Buy            []Item       `json:"buy"`
	Sell           []Item       `json:"sell"`
	Fees           []Fee        `json:"fees"`
	StartAt        time.Time    `json:"start_at"`
	EndAt          time.Time    `json:"end_at"`
	ProtocolData   ProtocolData `json:"protocol_data"`
	Salt           string       `json:"salt"`
	Signature      string       `json:"signature"`
}

type cancelOrdersRequest struct {
	AccountAddress string   `json:"account_address"`
	Orders         []string `json:"orders"`
	Signature      string   `json:"signature"`
}

type FailedCancellation struct {
	Order      string `json:"order"`
	ReasonCode string `json:"reason_code"`
}

type CancelOrdersResult struct {
	SuccessfulCancellations []string             `json:"successful_cancellations"`
	PendingCancellations    []string             `json:"pending_cancellations"`
	FailedCancellations     []FailedCancellation `json:"failed_cancellations"`
}

type CancelOrdersResponse struct {
	Result CancelOrdersResult `json:"result"`
}

// NFT is a token held by an account.
type NFT struct {
	Chain            Chain           `json:"chain"`
	TokenID          string          `json:"token_id"`
	ContractAddress  string          `json:"contract_address"`
	ContractType     string          `json:"contract_type"`
	IndexedAt        time.Time       `json:"indexed_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
	MetadataSyncedAt *time.Time      `json:"metadata_synced_at"`
	MetadataID       string          `json:"metadata_id,omitempty"`
	Name             string          `json:"name"`
	Description      string          `json:"description"`
	Image            string          `json:"image"`
	ExternalLink     string          `json:"external_link"`
	AnimationURL     string          `json:"animation_url"`
	YoutubeURL       string          `json:"youtube_url"`
	Attributes       json.RawMessage `json:"attributes,omitempty"`
	Balance          string          `json:"balance"`
}

// ListNFTsParams filters the NFTs of an account. An empty ChainName uses the
// client's chain.
type ListNFTsParams struct {
	ChainName       string
	AccountAddress  string
	ContractAddress string
	PageSize        int
	PageCursor      string
}

type ListNFTsResult struct {
	Page   Page  `json:"page"`
	Result []NFT `json:"result"`
}

// SellItem is the asset offered by a new listing.
type SellItem struct {
	Type            ItemType `json:"type"`
	ContractAddress string   `json:"contractAddress"`
	TokenID         string   `json:"tokenId"`
	Amount          string   `json:"amount,omitempty"`
}

// BuyItem is the asset requested in exchange.
type BuyItem struct {
	Type            ItemType `json:"type"`
	ContractAddress string   `json:"contractAddress,omitempty"`
	Amount          string   `json:"amount"`
}

type FeeValue struct {
	Amount           string `json:"amount"`
	RecipientAddress string `json:"recipientAddress"`
}

// ListingParams describes a listing to create, as read from input files.
type ListingParams struct {
	Sell        SellItem   `json:"sell"`
	Buy         BuyItem    `json:"buy"`
	MakerFees   []FeeValue `json:"makerFees"`
	OrderExpiry *time.Time `json:"orderExpiry,omitempty"`
}

// CreatedListing is the outcome of creating one prepared listing.
type CreatedListing struct {
	Success   bool     `json:"success"`
	OrderHash string   `json:"orderHash"`
	Order     *Listing `json:"order,omitempty"`
	Error     string   `json:"error,omitempty"`
}

type BulkListingsResult struct {
	Result []CreatedListing `json:"result"`
}
