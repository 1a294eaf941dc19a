package db_models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusConfirmed  OrderStatus = "confirmed"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusSuccess PaymentStatus = "success"
	PaymentStatusFailed  PaymentStatus = "failed"
)

type PaymentMethod string

const (
	PaymentMethodOnline PaymentMethod = "online"
	PaymentMethodCOD    PaymentMethod = "cod"
)

// SettleableStatuses lists the order statuses a reconciliation path may move
// out of. Anything else is either settled or owned by fulfilment.
var SettleableStatuses = []OrderStatus{OrderStatusPending}

// StatePair is the (status, payment_status) combination of an order.
type StatePair struct {
	Status        OrderStatus
	PaymentStatus PaymentStatus
}

var (
	StatePending   = StatePair{OrderStatusPending, PaymentStatusPending}
	StateCOD       = StatePair{OrderStatusProcessing, PaymentStatusPending}
	StateConfirmed = StatePair{OrderStatusConfirmed, PaymentStatusSuccess}
	StateCancelled = StatePair{OrderStatusCancelled, PaymentStatusFailed}
)

// ValidStatePair reports whether p is one of the reachable combinations.
func ValidStatePair(p StatePair) bool {
	switch p {
	case StatePending, StateCOD, StateConfirmed, StateCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether p is a settlement outcome.
func (p StatePair) IsTerminal() bool {
	return p == StateConfirmed || p == StateCancelled
}

type OrderItem struct {
	ProductID uint64          `json:"product_id"`
	Name      string          `json:"name,omitempty"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
}

type Order struct {
	ID            uint64                        `gorm:"primaryKey;autoIncrement" json:"id"`
	CustomerEmail string                        `gorm:"size:255;index;not null" json:"customer_email"`
	CustomerName  string                        `gorm:"size:255" json:"customer_name"`
	CustomerPhone string                        `gorm:"size:32" json:"customer_phone"`
	Items         datatypes.JSONSlice[OrderItem] `json:"items"`

	Subtotal       decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"subtotal"`
	ShippingCharge decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"shipping_charge"`
	TotalAmount    decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total_amount"`

	PaymentMethod    PaymentMethod `gorm:"size:16;not null" json:"payment_method"`
	PaymentSessionID string        `gorm:"size:128;index" json:"payment_session_id"`
	PaymentID        *string       `gorm:"size:128;index" json:"payment_id"`
	Status           OrderStatus   `gorm:"size:32;index;not null" json:"status"`
	PaymentStatus    PaymentStatus `gorm:"size:32;index;not null" json:"payment_status"`

	// Append-only audit trail written by reconciliation.
	Notes string `gorm:"type:text" json:"notes"`

	ShippingAddress datatypes.JSON `json:"shipping_address"`
	TrackingNumber  string         `gorm:"size:128" json:"tracking_number"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Order) TableName() string { return "orders" }

func (o *Order) State() StatePair {
	return StatePair{Status: o.Status, PaymentStatus: o.PaymentStatus}
}

// IsPaid replaces any client-side "payment completed" flag.
func (o *Order) IsPaid() bool {
	return o.PaymentStatus == PaymentStatusSuccess
}

func (o *Order) IsSettled() bool {
	return o.State().IsTerminal()
}
