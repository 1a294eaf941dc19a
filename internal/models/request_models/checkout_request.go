package request_models

import "github.com/shopspring/decimal"

// CartItem carries no price. Prices always come from the catalog.
type CartItem struct {
	ProductID uint64 `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
}

type Address struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"required,email"`
	Phone   string `json:"phone" binding:"required"`
	Line1   string `json:"line1" binding:"required"`
	Line2   string `json:"line2"`
	City    string `json:"city" binding:"required"`
	State   string `json:"state" binding:"required"`
	Pincode string `json:"pincode" binding:"required"`
}

type InitiateSessionRequest struct {
	Items          []CartItem      `json:"items" binding:"required,min=1,dive"`
	ShippingCharge decimal.Decimal `json:"shipping_charge"`
	Address        Address         `json:"address" binding:"required"`
}

type PlaceOrderRequest struct {
	Items            []CartItem      `json:"items" binding:"required,min=1,dive"`
	ShippingCharge   decimal.Decimal `json:"shipping_charge"`
	Address          Address         `json:"address" binding:"required"`
	PaymentMethod    string          `json:"payment_method" binding:"required,oneof=online cod"`
	PaymentSessionID string          `json:"payments_session_id"`
}
