package notifier

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var ErrQueueFull = errors.New("notification queue full")

// OrderConfirmedEvent is emitted once per order, by whichever reconciliation
// path applied the confirmation.
type OrderConfirmedEvent struct {
	OrderID       uint64          `json:"order_id"`
	CustomerEmail string          `json:"customer_email"`
	CustomerName  string          `json:"customer_name"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	Currency      string          `json:"currency"`
	PaymentID     string          `json:"payment_id"`
	Path          string          `json:"path"`
	ConfirmedAt   time.Time       `json:"confirmed_at"`
}

type Publisher interface {
	Publish(ctx context.Context, evt OrderConfirmedEvent) error
}

// Handler delivers an event, typically by sending the confirmation email.
type Handler func(ctx context.Context, evt OrderConfirmedEvent) error

const publishTimeout = 5 * time.Second

// PublishAsync hands the event to the publisher off the request goroutine.
// Failures are logged and never returned.
func PublishAsync(pub Publisher, log *zap.Logger, evt OrderConfirmedEvent) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()

		if err := pub.Publish(ctx, evt); err != nil {
			log.Warn("publish order confirmation failed",
				zap.Uint64("order_id", evt.OrderID),
				zap.String("path", evt.Path),
				zap.Error(err))
		}
	}()
}
