package response_models

import "github.com/shopspring/decimal"

type InitiateSessionResponse struct {
	PaymentsSessionID string          `json:"payments_session_id"`
	Amount            decimal.Decimal `json:"amount"`
	Subtotal          decimal.Decimal `json:"subtotal"`
	ShippingCharge    decimal.Decimal `json:"shipping_charge"`
	Currency          string          `json:"currency"`
	ReferenceNumber   string          `json:"reference_number"`
}

type VerifyPaymentResponse struct {
	OrderID        uint64 `json:"order_id"`
	Status         string `json:"status"`
	PaymentStatus  string `json:"payment_status"`
	IsSuccess      bool   `json:"is_success"`
	IsFailed       bool   `json:"is_failed"`
	AlreadySettled bool   `json:"already_settled"`
}

type WebhookResult struct {
	Outcome string  `json:"outcome"`
	OrderID *uint64 `json:"order_id,omitempty"`
}

type WebhookHealth struct {
	Status          string `json:"status"`
	Database        bool   `json:"database"`
	WebhookLogTable bool   `json:"webhook_log_table"`
}
