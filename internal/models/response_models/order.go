package response_models

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderItemResponse struct {
	ProductID uint64          `json:"product_id"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
}

type OrderResponse struct {
	ID               uint64              `json:"id"`
	CustomerEmail    string              `json:"customer_email"`
	Items            []OrderItemResponse `json:"items"`
	Subtotal         decimal.Decimal     `json:"subtotal"`
	ShippingCharge   decimal.Decimal     `json:"shipping_charge"`
	TotalAmount      decimal.Decimal     `json:"total_amount"`
	PaymentMethod    string              `json:"payment_method"`
	PaymentSessionID string              `json:"payments_session_id,omitempty"`
	Status           string              `json:"status"`
	PaymentStatus    string              `json:"payment_status"`
	IsPaid           bool                `json:"is_paid"`
	TrackingNumber   string              `json:"tracking_number,omitempty"`
	CreatedAt        time.Time           `json:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at"`
}
