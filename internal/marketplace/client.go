package marketplace

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github/chapool/orderbook-scripts/internal/config"
)

const publishableKeyHeader = "x-immutable-publishable-key"

var ErrNotFound = errors.New("not found")

// APIError is a non 2xx answer from the marketplace API.
type APIError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`
	TraceID    string `json:"trace_id"`
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("marketplace API returned %d", e.StatusCode)
	if e.Code != "" {
		msg += " " + e.Code
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.TraceID != "" {
		msg += " (trace " + e.TraceID + ")"
	}
	return msg
}

func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

// maxResponseBytes caps how much of a response body is read into memory.
const maxResponseBytes = 16 << 20

// Client talks to the orderbook and indexer REST API of one chain.
type Client struct {
	rest      *resty.Client
	chainName string
	logger    zerolog.Logger
}

type ClientOption func(*Client)

// WithResponseBodyLimit overrides the response size cap. Bodies larger than
// limit fail with resty.ErrResponseBodyTooLarge.
func WithResponseBodyLimit(limit int) ClientOption {
	return func(c *Client) {
		c.rest.SetResponseBodyLimit(limit)
	}
}

func NewClient(cfg config.Marketplace, logger zerolog.Logger, opts ...ClientOption) *Client {
	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	c := &Client{
		chainName: cfg.ChainName,
		logger:    logger.With().Str("component", "marketplace_client").Logger(),
	}

	c.rest = resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetHeader("Accept", "application/json").
		SetTimeout(timeout).
		SetResponseBodyLimit(maxResponseBytes).
		SetLogger(restyLogger{logger: c.logger}).
		OnAfterResponse(func(_ *resty.Client, res *resty.Response) error {
			c.logger.Debug().
				Str("method", res.Request.Method).
				Str("url", res.Request.URL).
				Int("status", res.StatusCode()).
				Dur("duration", res.Time()).
				Msg("Marketplace request")
			return nil
		})
	if cfg.PublishableKey != "" {
		c.rest.SetHeader(publishableKeyHeader, cfg.PublishableKey)
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

func (c *Client) ChainName() string {
	return c.chainName
}

// ListListings returns one page of listings.
func (c *Client) ListListings(ctx context.Context, params ListListingsParams) (*ListListingsResult, error) {
	query := map[string]string{}
	setQuery(query, "status", string(params.Status))
	setQuery(query, "sell_item_contract_address", params.SellItemContractAddress)
	setQuery(query, "sell_item_token_id", params.SellItemTokenID)
	setQuery(query, "buy_item_type", string(params.BuyItemType))
	setQuery(query, "buy_item_contract_address", params.BuyItemContractAddress)
	setQuery(query, "account_address", params.AccountAddress)
	if params.FromUpdatedAt != nil {
		setQuery(query, "from_updated_at", params.FromUpdatedAt.UTC().Format(time.RFC3339Nano))
	}
	setQuery(query, "sort_by", params.SortBy)
	setQuery(query, "sort_direction", params.SortDirection)
	if params.PageSize > 0 {
		setQuery(query, "page_size", strconv.Itoa(params.PageSize))
	}
	setQuery(query, "page_cursor", params.PageCursor)

	var out ListListingsResult
	if err := c.do(ctx, http.MethodGet, c.chainPath("orders", "listings"), query, nil, &out); err != nil {
		return nil, errors.Wrap(err, "failed to list listings")
	}

	return &out, nil
}

func (c *Client) GetListing(ctx context.Context, id string) (*Listing, error) {
	if id == "" {
		return nil, errors.New("listing id is required")
	}

	var out ListingResult
	if err := c.do(ctx, http.MethodGet, c.chainPath("orders", "listings", id), nil, nil, &out); err != nil {
		return nil, errors.Wrapf(err, "failed to get listing %s", id)
	}

	return &out.Result, nil
}

func (c *Client) CreateListing(ctx context.Context, req CreateListingRequest) (*Listing, error) {
	var out ListingResult
	if err := c.do(ctx, http.MethodPost, c.chainPath("orders", "listings"), nil, req, &out); err != nil {
		return nil, errors.Wrap(err, "failed to create listing")
	}

	return &out.Result, nil
}

// CancelOrders cancels orders off-chain with a signed cancellation payload.
func (c *Client) CancelOrders(ctx context.Context, orderIDs []string, accountAddress string, signature string) (*CancelOrdersResponse, error) {
	body := cancelOrdersRequest{
		AccountAddress: strings.ToLower(accountAddress),
		Orders:         orderIDs,
		Signature:      signature,
	}

	var out CancelOrdersResponse
	if err := c.do(ctx, http.MethodPost, c.chainPath("orders", "cancel"), nil, body, &out); err != nil {
		return nil, errors.Wrap(err, "failed to cancel orders")
	}

	return &out, nil
}

// ListNFTsByAccountAddress returns one page of NFTs owned by an account.
func (c *Client) ListNFTsByAccountAddress(ctx context.Context, params ListNFTsParams) (*ListNFTsResult, error) {
	if params.AccountAddress == "" {
		return nil, errors.New("account address is required")
	}

	query := map[string]string{}
	setQuery(query, "contract_address", params.ContractAddress)
	if params.PageSize > 0 {
		setQuery(query, "page_size", strconv.Itoa(params.PageSize))
	}
	setQuery(query, "page_cursor", params.PageCursor)

	chainName := params.ChainName
	if chainName == "" {
		chainName = c.chainName
	}

	var out ListNFTsResult
	if err := c.do(ctx, http.MethodGet, chainPath(chainName, "accounts", params.AccountAddress, "nfts"), query, nil, &out); err != nil {
		return nil, errors.Wrap(err, "failed to list NFTs")
	}

	return &out, nil
}

func (c *Client) chainPath(segments ...string) string {
	return chainPath(c.chainName, segments...)
}

func chainPath(chainName string, segments ...string) string {
	parts := make([]string, 0, len(segments)+3)
	parts = append(parts, "v1", "chains", url.PathEscape(chainName))
	for _, s := range segments {
		parts = append(parts, url.PathEscape(s))
	}

	return "/" + strings.Join(parts, "/")
}

func (c *Client) do(ctx context.Context, method, path string, query map[string]string, body interface{}, out interface{}) error {
	req := c.rest.R().
		SetContext(ctx).
		SetQueryParams(query).
		SetError(&APIError{}).
		ForceContentType("application/json")
	if body != nil {
		req.SetBody(body)
	}
	if out != nil {
		req.SetResult(out)
	}

	res, err := req.Execute(method, path)
	if err != nil {
		return errors.Wrapf(err, "%s %s", method, path)
	}

	if res.IsError() {
		apiErr, ok := res.Error().(*APIError)
		if !ok || apiErr == nil {
			apiErr = &APIError{}
		}
		apiErr.StatusCode = res.StatusCode()
		if apiErr.Message == "" {
			apiErr.Message = res.String()
		}
		return apiErr
	}

	return nil
}

func setQuery(query map[string]string, key, value string) {
	if value != "" {
		query[key] = value
	}
}

// restyLogger routes resty's own diagnostics into zerolog.
type restyLogger struct {
	logger zerolog.Logger
}

func (l restyLogger) Errorf(format string, v ...interface{}) {
	l.logger.Error().Msgf(strings.TrimSpace(format), v...)
}

func (l restyLogger) Warnf(format string, v ...interface{}) {
	l.logger.Warn().Msgf(strings.TrimSpace(format), v...)
}

func (l restyLogger) Debugf(format string, v ...interface{}) {
	l.logger.Debug().Msgf(strings.TrimSpace(format), v...)
}
