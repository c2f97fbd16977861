// backend/src/models/records.go
package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// BillSource says which Hotcake ledger a bill row came from.
type BillSource string

const (
	BillSourceService BillSource = "service"
	BillSourceTopup   BillSource = "topup"
)

// BillRecord is one settled bill from the Hotcake bill ledger.
// Amount is the cash collected for the bill; a blank cell in the export
// is kept as an absent NullDecimal, which is not the same thing as a
// zero amount. A row may legitimately lack OrderID or Amount, but a row
// lacking both is not a bill and never reaches this type.
type BillRecord struct {
	Store      string              `json:"store"`
	BillID     string              `json:"billId"`
	OrderID    string              `json:"orderId,omitempty"`
	Master     string              `json:"master,omitempty"`
	Item       string              `json:"item,omitempty"`
	Amount     decimal.NullDecimal `json:"amount"`
	OrderTime  time.Time           `json:"orderTime"`
	SettleTime time.Time           `json:"settleTime,omitempty"`
	Source     BillSource          `json:"source"`
}

// OrderStatus is the canonical booking state. Exports spell these many
// ways (已報到, arrived, checked-in, ...); ParseOrderStatus folds them.
type OrderStatus string

const (
	OrderStatusArrived   OrderStatus = "arrived"
	OrderStatusCancelled OrderStatus = "cancelled"
	OrderStatusOther     OrderStatus = "other"
)

var orderStatusAliases = map[string]OrderStatus{
	"已報到":       OrderStatusArrived,
	"報到":        OrderStatusArrived,
	"arrived":   OrderStatusArrived,
	"checkedin": OrderStatusArrived,
	"checkin":   OrderStatusArrived,
	"已取消":       OrderStatusCancelled,
	"取消":        OrderStatusCancelled,
	"未到":        OrderStatusCancelled,
	"cancelled": OrderStatusCancelled,
	"canceled":  OrderStatusCancelled,
	"noshow":    OrderStatusCancelled,
	"no-show":   OrderStatusCancelled,
}

// ParseOrderStatus maps a raw export status to its canonical value.
// Unrecognized statuses become OrderStatusOther; those bookings are
// neither expected to bill nor flagged as missing.
func ParseOrderStatus(raw string) OrderStatus {
	key := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(raw), " ", ""))
	if s, ok := orderStatusAliases[key]; ok {
		return s
	}
	return OrderStatusOther
}

// OrderRecord is one booking from the Hotcake order report. OrderID is
// the join key to BillRecord and is required; source data does not
// guarantee it unique.
type OrderRecord struct {
	Store       string      `json:"store"`
	OrderID     string      `json:"orderId"`
	Master      string      `json:"master,omitempty"`
	Item        string      `json:"item,omitempty"`
	Member      string      `json:"member,omitempty"`
	Phone       string      `json:"phone,omitempty"`
	OrderTime   time.Time   `json:"orderTime"`
	CheckinTime *time.Time  `json:"checkinTime,omitempty"`
	Status      OrderStatus `json:"status"`
	RawStatus   string      `json:"rawStatus,omitempty"`
}

// TopupRecord is a stored-value top-up. Its timestamp is the checkout
// operation time, not an order time; the window filter must use it.
type TopupRecord struct {
	Store      string          `json:"store"`
	BillID     string          `json:"billId"`
	OrderID    string          `json:"orderId,omitempty"`
	Master     string          `json:"master,omitempty"`
	Item       string          `json:"item,omitempty"`
	Amount     decimal.Decimal `json:"amount"`
	SettleTime time.Time       `json:"settleTime"`
}

// PosTransaction is one cashier-register row, used only for the single
// aggregate cash comparison. POS exports report dates at day
// granularity.
type PosTransaction struct {
	Store     string          `json:"store"`
	TxnID     string          `json:"txnId,omitempty"`
	Product   string          `json:"product,omitempty"`
	Date      time.Time       `json:"date"`
	Cash      decimal.Decimal `json:"cash"`
	PayMethod string          `json:"payMethod,omitempty"`
	PayStatus string          `json:"payStatus,omitempty"`
}
