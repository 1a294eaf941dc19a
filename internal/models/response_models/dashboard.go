package response_models

import (
	"time"

	"github.com/shopspring/decimal"
)

type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

type StateCount struct {
	Status        string `json:"status"`
	PaymentStatus string `json:"payment_status"`
	Count         int64  `json:"count"`
}

type OutcomeCount struct {
	Outcome string `json:"outcome"`
	Count   int64  `json:"count"`
}

type Settlement struct {
	OrderID       uint64          `json:"order_id"`
	CustomerEmail string          `json:"customer_email"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	Status        string          `json:"status"`
	PaymentStatus string          `json:"payment_status"`
	PaymentID     string          `json:"payment_id,omitempty"`
	SettledAt     string          `json:"settled_at"`
}

type ReconciliationSummary struct {
	Range            TimeRange       `json:"range"`
	Orders           []StateCount    `json:"orders"`
	Webhooks         []OutcomeCount  `json:"webhooks"`
	StalePending     int64           `json:"stale_pending"`
	ConfirmedRevenue decimal.Decimal `json:"confirmed_revenue"`
	Currency         string          `json:"currency"`
	Recent           []Settlement    `json:"recent"`
}

type ReconcileResult struct {
	OrderID       uint64 `json:"order_id"`
	Outcome       string `json:"outcome"`
	Applied       bool   `json:"applied"`
	Status        string `json:"status"`
	PaymentStatus string `json:"payment_status"`
}

type SweepReport struct {
	Scanned   int `json:"scanned"`
	Confirmed int `json:"confirmed"`
	Cancelled int `json:"cancelled"`
	Untouched int `json:"untouched"`
	Errors    int `json:"errors"`
}

type GatewayConnectResponse struct {
	AuthorizationURL string `json:"authorization_url"`
}
