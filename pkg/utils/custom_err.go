package utils

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidRequest        = errors.New("invalid request")
	ErrDatabaseError         = errors.New("database error")
	ErrProductNotFound       = errors.New("product not found")
	ErrOutOfStock            = errors.New("out of stock")
	ErrShippingMismatch      = errors.New("shipping charge mismatch")
	ErrGatewayAuthRequired   = errors.New("gateway authorization required")
	ErrGatewayError          = errors.New("gateway error")
	ErrInvalidSignature      = errors.New("invalid webhook signature")
	ErrInvalidWebhookPayload = errors.New("invalid webhook payload")
	ErrOrderNotFound         = errors.New("order not found")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrPaymentIndeterminate  = errors.New("payment status indeterminate")
	ErrPaymentMismatch       = errors.New("payment does not belong to order")
	ErrInvalidTransition     = errors.New("invalid order state transition")
	ErrInvalidOAuthState     = errors.New("invalid or expired oauth state")
)

// GatewayAuthRequiredError is returned when the service credential for the
// gateway is missing or can no longer be refreshed. ReauthURL is where an
// operator re-authorizes the integration.
type GatewayAuthRequiredError struct {
	ReauthURL string
	Cause     error
}

func (e *GatewayAuthRequiredError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", ErrGatewayAuthRequired, e.Cause)
	}
	return ErrGatewayAuthRequired.Error()
}

func (e *GatewayAuthRequiredError) Is(target error) bool { return target == ErrGatewayAuthRequired }

func (e *GatewayAuthRequiredError) Unwrap() error { return e.Cause }

type OutOfStockError struct {
	ProductID uint64
	Requested int
	Available int
}

func (e *OutOfStockError) Error() string {
	return fmt.Sprintf("%s: product %d requested %d available %d", ErrOutOfStock, e.ProductID, e.Requested, e.Available)
}

func (e *OutOfStockError) Is(target error) bool { return target == ErrOutOfStock }
