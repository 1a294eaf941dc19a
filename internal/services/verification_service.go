package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"storefront/internal/gateway"
	dbm "storefront/internal/models/db_models"
	req "storefront/internal/models/request_models"
	resp "storefront/internal/models/response_models"
	"storefront/internal/notifier"
	"storefront/internal/repositories"
	"storefront/pkg/utils"
)

type VerificationService interface {
	VerifyPayment(ctx context.Context, caller Caller, in req.VerifyPaymentRequest) (*resp.VerifyPaymentResponse, error)
}

type verificationService struct {
	orders  repositories.OrderRepository
	gateway gateway.Client
	settler *settler
	log     *zap.Logger
}

func NewVerificationService(
	orders repositories.OrderRepository,
	gw gateway.Client,
	publisher notifier.Publisher,
	currency string,
	log *zap.Logger,
) VerificationService {
	return &verificationService{
		orders:  orders,
		gateway: gw,
		settler: &settler{orders: orders, publisher: publisher, currency: currency, now: time.Now, log: log},
		log:     log,
	}
}

// VerifyPayment is the client-side confirmation after the payment widget
// closes. The gateway is the source of truth; the client only names the
// payment.
func (s *verificationService) VerifyPayment(ctx context.Context, caller Caller, in req.VerifyPaymentRequest) (*resp.VerifyPaymentResponse, error) {
	if in.PaymentID == "" && in.SessionID == "" {
		return nil, fmt.Errorf("%w: payment_id or payments_session_id required", utils.ErrInvalidRequest)
	}

	order, err := s.orders.FindByID(ctx, in.OrderID)
	if err != nil {
		return nil, fmt.Errorf("%w: load order: %v", utils.ErrDatabaseError, err)
	}
	if order == nil {
		return nil, utils.ErrOrderNotFound
	}
	if !sameEmail(caller.Email, order.CustomerEmail) {
		s.log.Warn("payment verification by non-owner",
			zap.Uint64("order_id", order.ID),
			zap.String("user_id", caller.UserID))
		return nil, utils.ErrUnauthorized
	}
	if order.PaymentMethod != dbm.PaymentMethodOnline {
		return nil, fmt.Errorf("%w: order %d is not an online payment", utils.ErrInvalidRequest, order.ID)
	}

	if order.IsSettled() {
		return verifyResponse(order.ID, order.State(), true), nil
	}

	outcome, paymentID, err := s.lookup(ctx, order, in)
	if err != nil {
		return nil, err
	}

	result, err := s.settler.settle(ctx, settleInput{
		Order:      order,
		Outcome:    outcome,
		PaymentID:  paymentID,
		GuardEmail: strings.TrimSpace(caller.Email),
		Path:       repositories.PathClient,
		Message:    fmt.Sprintf("payment %s verified by customer", outcome),
	})
	if err != nil {
		return nil, err
	}
	return verifyResponse(order.ID, result.State, !result.Applied), nil
}

func (s *verificationService) lookup(ctx context.Context, order *dbm.Order, in req.VerifyPaymentRequest) (gateway.Outcome, string, error) {
	if in.SessionID != "" && in.SessionID != order.PaymentSessionID {
		s.log.Warn("verify request session does not match order",
			zap.Uint64("order_id", order.ID), zap.String("session_id", in.SessionID))
		return gateway.Indeterminate, "", utils.ErrPaymentMismatch
	}

	if in.PaymentID != "" {
		payment, err := s.gateway.GetPayment(ctx, in.PaymentID)
		if err != nil {
			s.log.Error("gateway payment lookup failed", zap.Uint64("order_id", order.ID), zap.Error(err))
			return gateway.Indeterminate, "", gatewayLookupError(err)
		}
		if payment.SessionID != order.PaymentSessionID {
			s.log.Warn("payment belongs to another session",
				zap.Uint64("order_id", order.ID),
				zap.String("payment_id", in.PaymentID),
				zap.String("payment_session_id", payment.SessionID))
			return gateway.Indeterminate, "", utils.ErrPaymentMismatch
		}
		return payment.Outcome(), payment.PaymentID, nil
	}

	session, err := s.gateway.GetSession(ctx, order.PaymentSessionID)
	if err != nil {
		s.log.Error("gateway session lookup failed", zap.Uint64("order_id", order.ID), zap.Error(err))
		return gateway.Indeterminate, "", gatewayLookupError(err)
	}
	outcome, payment := session.Outcome()
	if payment != nil {
		return outcome, payment.PaymentID, nil
	}
	return outcome, "", nil
}

func verifyResponse(orderID uint64, state dbm.StatePair, alreadySettled bool) *resp.VerifyPaymentResponse {
	return &resp.VerifyPaymentResponse{
		OrderID:        orderID,
		Status:         string(state.Status),
		PaymentStatus:  string(state.PaymentStatus),
		IsSuccess:      state == dbm.StateConfirmed,
		IsFailed:       state == dbm.StateCancelled,
		AlreadySettled: alreadySettled,
	}
}
