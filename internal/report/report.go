package report

import (
	"io"
	"math/big"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/shopspring/decimal"
	"github/chapool/orderbook-scripts/internal/marketplace"
	"github/chapool/orderbook-scripts/internal/util"
)

const (
	notAvailable = "N/A"

	// NATIVE and ERC20 prices are shown in whole units.
	tokenDecimals int32 = 18
)

func newTable(w io.Writer, header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)

	return table
}

// CreatedListings prints the listings that were created successfully.
func CreatedListings(w io.Writer, res *marketplace.BulkListingsResult) {
	table := newTable(w, "Created At", "Order ID", "Contract Address", "Token ID")

	for _, created := range res.Result {
		if !created.Success || created.Order == nil {
			continue
		}

		order := created.Order
		createdAt := notAvailable
		if !order.CreatedAt.IsZero() {
			createdAt = order.CreatedAt.UTC().Format("2006-01-02T15:04:05.000Z")
		}

		sell, _ := util.FirstOr(order.Sell)
		table.Append([]string{
			createdAt,
			util.NonEmptyOr(order.ID, notAvailable),
			util.NonEmptyOr(sell.ContractAddress, notAvailable),
			util.NonEmptyOr(sell.TokenID, notAvailable),
		})
	}

	table.Render()
}

// Listings prints a summary line per listing.
func Listings(w io.Writer, listings []marketplace.Listing) {
	table := newTable(w, "Order ID", "Status", "Sell Contract Address", "Sell Token ID", "Price")

	for _, listing := range listings {
		sell, _ := util.FirstOr(listing.Sell)
		buy, _ := util.FirstOr(listing.Buy)

		table.Append([]string{
			listing.ID,
			string(listing.Status.Name),
			util.NonEmptyOr(sell.ContractAddress, notAvailable),
			util.NonEmptyOr(sell.TokenID, notAvailable),
			Price(buy),
		})
	}

	table.Render()
}

// Inventory prints the NFTs held by an account.
func Inventory(w io.Writer, nfts []marketplace.NFT) {
	table := newTable(w, "Type", "Contract Address", "Token ID", "Name")

	for _, nft := range nfts {
		table.Append([]string{
			nft.ContractType,
			nft.ContractAddress,
			nft.TokenID,
			util.NonEmptyOr(nft.Name, notAvailable),
		})
	}

	table.Render()
}

// Row is one line of a generic outcome table.
type Row struct {
	ID     string
	Kind   string
	Status string
	Detail string
	Error  string
}

// Outcomes prints per item results of a batch.
func Outcomes(w io.Writer, rows []Row) {
	table := newTable(w, "#", "ID", "Type", "Status", "Result", "Error")

	for i, row := range rows {
		table.Append([]string{
			strconv.Itoa(i + 1),
			util.NonEmptyOr(row.ID, "-"),
			util.NonEmptyOr(row.Kind, "-"),
			row.Status,
			util.NonEmptyOr(row.Detail, "-"),
			util.NonEmptyOr(row.Error, "-"),
		})
	}

	table.Render()
}

// Price formats a buy item amount in whole units, e.g. "1.5 NATIVE".
func Price(item marketplace.Item) string {
	amount, ok := new(big.Int).SetString(item.Amount, 10)
	if !ok {
		return notAvailable
	}

	formatted := decimal.NewFromBigInt(amount, -tokenDecimals).String()
	if item.Type == marketplace.ItemTypeERC20 && item.ContractAddress != "" {
		return formatted + " " + item.ContractAddress
	}

	return formatted + " " + string(item.Type)
}
