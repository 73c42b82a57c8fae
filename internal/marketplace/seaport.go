package marketplace

import (
	"math/big"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"github.com/pkg/errors"
)

const (
	SeaportDomainName = "ImmutableSeaport"
	SeaportVersion    = "1.5"

	orderComponentsType = "OrderComponents"
)

// Seaport item types.
const (
	seaportNative uint8 = iota
	seaportERC20
	seaportERC721
	seaportERC1155
)

// Seaport order types.
const (
	OrderTypeFullOpen uint8 = iota
	OrderTypePartialOpen
	OrderTypeFullRestricted
	OrderTypePartialRestricted
)

var orderTypeNames = map[uint8]string{
	OrderTypeFullOpen:          "FULL_OPEN",
	OrderTypePartialOpen:       "PARTIAL_OPEN",
	OrderTypeFullRestricted:    "FULL_RESTRICTED",
	OrderTypePartialRestricted: "PARTIAL_RESTRICTED",
}

const offerItemComponents = `{"name":"itemType","type":"uint8"},{"name":"token","type":"address"},{"name":"identifierOrCriteria","type":"uint256"},{"name":"startAmount","type":"uint256"},{"name":"endAmount","type":"uint256"}`

const seaportABIJSON = `[
{"type":"function","name":"getCounter","stateMutability":"view",
 "inputs":[{"name":"offerer","type":"address"}],
 "outputs":[{"name":"counter","type":"uint256"}]},
{"type":"function","name":"cancel","stateMutability":"nonpayable",
 "inputs":[{"name":"orders","type":"tuple[]","components":[
  {"name":"offerer","type":"address"},
  {"name":"zone","type":"address"},
  {"name":"offer","type":"tuple[]","components":[` + offerItemComponents + `]},
  {"name":"consideration","type":"tuple[]","components":[` + offerItemComponents + `,{"name":"recipient","type":"address"}]},
  {"name":"orderType","type":"uint8"},
  {"name":"startTime","type":"uint256"},
  {"name":"endTime","type":"uint256"},
  {"name":"zoneHash","type":"bytes32"},
  {"name":"salt","type":"uint256"},
  {"name":"conduitKey","type":"bytes32"},
  {"name":"counter","type":"uint256"}]}],
 "outputs":[{"name":"cancelled","type":"bool"}]}
]`

// ERC721 and ERC1155 share the operator approval functions.
const approvalABIJSON = `[
{"type":"function","name":"isApprovedForAll","stateMutability":"view",
 "inputs":[{"name":"owner","type":"address"},{"name":"operator","type":"address"}],
 "outputs":[{"name":"","type":"bool"}]},
{"type":"function","name":"setApprovalForAll","stateMutability":"nonpayable",
 "inputs":[{"name":"operator","type":"address"},{"name":"approved","type":"bool"}],
 "outputs":[]}
]`

var (
	seaportABI  = mustParseABI(seaportABIJSON)
	approvalABI = mustParseABI(approvalABIJSON)
)

func mustParseABI(raw string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(raw))
	if err != nil {
		panic(err)
	}
	return parsed
}

type OfferItem struct {
	ItemType             uint8
	Token                common.Address
	IdentifierOrCriteria *big.Int
	StartAmount          *big.Int
	EndAmount            *big.Int
}

type ConsiderationItem struct {
	ItemType             uint8
	Token                common.Address
	IdentifierOrCriteria *big.Int
	StartAmount          *big.Int
	EndAmount            *big.Int
	Recipient            common.Address
}

// OrderComponents is the signed body of a Seaport order. Field names map to
// the ABI tuple components.
type OrderComponents struct {
	Offerer       common.Address
	Zone          common.Address
	Offer         []OfferItem
	Consideration []ConsiderationItem
	OrderType     uint8
	StartTime     *big.Int
	EndTime       *big.Int
	ZoneHash      [32]byte
	Salt          *big.Int
	ConduitKey    [32]byte
	Counter       *big.Int
}

// OrderComponentsTypes returns the EIP-712 types of a Seaport order.
func OrderComponentsTypes() apitypes.Types {
	item := []apitypes.Type{
		{Name: "itemType", Type: "uint8"},
		{Name: "token", Type: "address"},
		{Name: "identifierOrCriteria", Type: "uint256"},
		{Name: "startAmount", Type: "uint256"},
		{Name: "endAmount", Type: "uint256"},
	}

	consideration := append(append([]apitypes.Type{}, item...), apitypes.Type{Name: "recipient", Type: "address"})

	return apitypes.Types{
		orderComponentsType: {
			{Name: "offerer", Type: "address"},
			{Name: "zone", Type: "address"},
			{Name: "offer", Type: "OfferItem[]"},
			{Name: "consideration", Type: "ConsiderationItem[]"},
			{Name: "orderType", Type: "uint8"},
			{Name: "startTime", Type: "uint256"},
			{Name: "endTime", Type: "uint256"},
			{Name: "zoneHash", Type: "bytes32"},
			{Name: "salt", Type: "uint256"},
			{Name: "conduitKey", Type: "bytes32"},
			{Name: "counter", Type: "uint256"},
		},
		"OfferItem":         item,
		"ConsiderationItem": consideration,
	}
}

// SeaportDomain is the EIP-712 domain orders are signed under.
func SeaportDomain(chainID *big.Int, seaport common.Address) apitypes.TypedDataDomain {
	return apitypes.TypedDataDomain{
		Name:              SeaportDomainName,
		Version:           SeaportVersion,
		ChainId:           (*math.HexOrDecimal256)(new(big.Int).Set(chainID)),
		VerifyingContract: seaport.Hex(),
	}
}

// Message renders the order as an EIP-712 message. Integers are decimal
// strings so that no precision is lost.
func (o OrderComponents) Message() apitypes.TypedDataMessage {
	offer := make([]interface{}, 0, len(o.Offer))
	for _, item := range o.Offer {
		offer = append(offer, map[string]interface{}{
			"itemType":             strconv.Itoa(int(item.ItemType)),
			"token":                item.Token.Hex(),
			"identifierOrCriteria": bigString(item.IdentifierOrCriteria),
			"startAmount":          bigString(item.StartAmount),
			"endAmount":            bigString(item.EndAmount),
		})
	}

	consideration := make([]interface{}, 0, len(o.Consideration))
	for _, item := range o.Consideration {
		consideration = append(consideration, map[string]interface{}{
			"itemType":             strconv.Itoa(int(item.ItemType)),
			"token":                item.Token.Hex(),
			"identifierOrCriteria": bigString(item.IdentifierOrCriteria),
			"startAmount":          bigString(item.StartAmount),
			"endAmount":            bigString(item.EndAmount),
			"recipient":            item.Recipient.Hex(),
		})
	}

	return apitypes.TypedDataMessage{
		"offerer":       o.Offerer.Hex(),
		"zone":          o.Zone.Hex(),
		"offer":         offer,
		"consideration": consideration,
		"orderType":     strconv.Itoa(int(o.OrderType)),
		"startTime":     bigString(o.StartTime),
		"endTime":       bigString(o.EndTime),
		"zoneHash":      hexutil.Encode(o.ZoneHash[:]),
		"salt":          bigString(o.Salt),
		"conduitKey":    hexutil.Encode(o.ConduitKey[:]),
		"counter":       bigString(o.Counter),
	}
}

// Hash is the Seaport order hash, the EIP-712 struct hash of the components.
func (o OrderComponents) Hash() (common.Hash, error) {
	typedData := apitypes.TypedData{
		Types:       OrderComponentsTypes(),
		PrimaryType: orderComponentsType,
		Message:     o.Message(),
	}

	hash, err := typedData.HashStruct(orderComponentsType, typedData.Message)
	if err != nil {
		return common.Hash{}, errors.Wrap(err, "failed to hash order components")
	}

	return common.BytesToHash(hash), nil
}

func packCancel(orders []OrderComponents) ([]byte, error) {
	data, err := seaportABI.Pack("cancel", orders)
	if err != nil {
		return nil, errors.Wrap(err, "failed to pack cancel")
	}
	return data, nil
}

// DecodeCancel returns the orders of Seaport cancel calldata.
func DecodeCancel(data []byte) ([]OrderComponents, error) {
	if len(data) < 4 {
		return nil, errors.New("calldata too short")
	}

	method, err := seaportABI.MethodById(data[:4])
	if err != nil {
		return nil, errors.Wrap(err, "unknown Seaport method")
	}
	if method.Name != "cancel" {
		return nil, errors.Errorf("calldata is %s, not cancel", method.Name)
	}

	values, err := method.Inputs.Unpack(data[4:])
	if err != nil {
		return nil, errors.Wrap(err, "failed to unpack cancel")
	}

	var orders []OrderComponents
	if err := method.Inputs.Copy(&orders, values); err != nil {
		return nil, errors.Wrap(err, "failed to convert cancel arguments")
	}

	return orders, nil
}

func packGetCounter(offerer common.Address) ([]byte, error) {
	data, err := seaportABI.Pack("getCounter", offerer)
	if err != nil {
		return nil, errors.Wrap(err, "failed to pack getCounter")
	}
	return data, nil
}

func unpackGetCounter(out []byte) (*big.Int, error) {
	values, err := seaportABI.Unpack("getCounter", out)
	if err != nil {
		return nil, errors.Wrap(err, "failed to unpack getCounter")
	}

	counter, ok := values[0].(*big.Int)
	if !ok {
		return nil, errors.Errorf("unexpected getCounter result %T", values[0])
	}

	return counter, nil
}

func packIsApprovedForAll(owner, operator common.Address) ([]byte, error) {
	data, err := approvalABI.Pack("isApprovedForAll", owner, operator)
	if err != nil {
		return nil, errors.Wrap(err, "failed to pack isApprovedForAll")
	}
	return data, nil
}

func unpackIsApprovedForAll(out []byte) (bool, error) {
	values, err := approvalABI.Unpack("isApprovedForAll", out)
	if err != nil {
		return false, errors.Wrap(err, "failed to unpack isApprovedForAll")
	}

	approved, ok := values[0].(bool)
	if !ok {
		return false, errors.Errorf("unexpected isApprovedForAll result %T", values[0])
	}

	return approved, nil
}

func packSetApprovalForAll(operator common.Address) ([]byte, error) {
	data, err := approvalABI.Pack("setApprovalForAll", operator, true)
	if err != nil {
		return nil, errors.Wrap(err, "failed to pack setApprovalForAll")
	}
	return data, nil
}

func seaportItemType(t ItemType) (uint8, error) {
	switch t {
	case ItemTypeNative:
		return seaportNative, nil
	case ItemTypeERC20:
		return seaportERC20, nil
	case ItemTypeERC721:
		return seaportERC721, nil
	case ItemTypeERC1155:
		return seaportERC1155, nil
	default:
		return 0, errors.Errorf("unknown item type %q", t)
	}
}

func orderTypeName(t uint8) string {
	return orderTypeNames[t]
}

func parseOrderType(name string) (uint8, error) {
	for t, n := range orderTypeNames {
		if strings.EqualFold(n, name) {
			return t, nil
		}
	}
	return 0, errors.Errorf("unknown order type %q", name)
}

func bigString(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}
