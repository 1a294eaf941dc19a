package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"storefront/internal/gateway"
	dbm "storefront/internal/models/db_models"
	"storefront/internal/notifier"
	"storefront/internal/repositories"
	"storefront/pkg/utils"
)

// settler applies a gateway outcome to an order through the conditional
// transition and emits the confirmation event when it wins.
type settler struct {
	orders    repositories.OrderRepository
	publisher notifier.Publisher
	currency  string
	now       func() time.Time
	log       *zap.Logger
}

type settleInput struct {
	Order     *dbm.Order
	Outcome   gateway.Outcome
	PaymentID string
	// GuardEmail is added to the update guard when set.
	GuardEmail string
	Path       string
	Message    string
}

type settleResult struct {
	Applied bool
	// State is the order's state after the attempt.
	State dbm.StatePair
}

func targetFor(outcome gateway.Outcome) (dbm.StatePair, bool) {
	switch outcome {
	case gateway.Succeeded:
		return dbm.StateConfirmed, true
	case gateway.Failed:
		return dbm.StateCancelled, true
	}
	return dbm.StatePair{}, false
}

func (s *settler) settle(ctx context.Context, in settleInput) (*settleResult, error) {
	target, ok := targetFor(in.Outcome)
	if !ok {
		return nil, utils.ErrPaymentIndeterminate
	}

	at := s.now()
	applied, err := s.orders.Transition(ctx, repositories.TransitionInput{
		OrderID:       in.Order.ID,
		CustomerEmail: in.GuardEmail,
		Target:        target,
		PaymentID:     in.PaymentID,
		Path:          in.Path,
		Message:       in.Message,
		At:            at,
	})
	if err != nil {
		return nil, err
	}

	if applied {
		s.log.Info("order settled",
			zap.Uint64("order_id", in.Order.ID),
			zap.String("status", string(target.Status)),
			zap.String("path", in.Path))
		if target == dbm.StateConfirmed {
			notifier.PublishAsync(s.publisher, s.log, s.confirmationEvent(in.Order, in.PaymentID, in.Path, at))
		}
		return &settleResult{Applied: true, State: target}, nil
	}

	current, err := s.orders.FindByID(ctx, in.Order.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: reload order: %v", utils.ErrDatabaseError, err)
	}
	if current == nil {
		return nil, utils.ErrOrderNotFound
	}
	if !current.IsSettled() {
		return nil, fmt.Errorf("%w: order %d in state %s/%s", utils.ErrInvalidTransition, current.ID, current.Status, current.PaymentStatus)
	}
	if current.State() != target {
		s.log.Warn("order already settled with a different outcome",
			zap.Uint64("order_id", current.ID),
			zap.String("status", string(current.Status)),
			zap.String("reported", in.Outcome.String()),
			zap.String("path", in.Path))
	}
	return &settleResult{Applied: false, State: current.State()}, nil
}

func (s *settler) confirmationEvent(order *dbm.Order, paymentID, path string, at time.Time) notifier.OrderConfirmedEvent {
	return notifier.OrderConfirmedEvent{
		OrderID:       order.ID,
		CustomerEmail: order.CustomerEmail,
		CustomerName:  order.CustomerName,
		TotalAmount:   order.TotalAmount,
		Currency:      s.currency,
		PaymentID:     paymentID,
		Path:          path,
		ConfirmedAt:   at,
	}
}

// gatewayLookupError keeps auth failures typed and collapses everything
// else into ErrGatewayError.
func gatewayLookupError(err error) error {
	var authErr *utils.GatewayAuthRequiredError
	if errors.As(err, &authErr) {
		return authErr
	}
	if errors.Is(err, utils.ErrGatewayError) {
		return err
	}
	return fmt.Errorf("%w: %v", utils.ErrGatewayError, err)
}
