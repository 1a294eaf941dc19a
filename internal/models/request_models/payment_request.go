package request_models

// VerifyPaymentRequest identifies the gateway payment by id, or by session
// when the widget did not return a payment id.
type VerifyPaymentRequest struct {
	OrderID   uint64 `json:"order_id" binding:"required"`
	PaymentID string `json:"payment_id"`
	SessionID string `json:"payments_session_id"`
}

// WebhookEvent is the gateway callback body.
type WebhookEvent struct {
	EventType        string `json:"event_type"`
	PaymentID        string `json:"payment_id"`
	PaymentSessionID string `json:"payments_session_id"`
	Status           string `json:"status"`
	// Amount arrives as a number or a string depending on the gateway version.
	Amount          any    `json:"amount"`
	Currency        string `json:"currency"`
	ReferenceNumber string `json:"reference_number"`
}

type ReconcileRequest struct {
	Reason string `json:"reason"`
}
