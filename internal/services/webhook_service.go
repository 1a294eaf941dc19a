package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"storefront/internal/gateway"
	dbm "storefront/internal/models/db_models"
	req "storefront/internal/models/request_models"
	resp "storefront/internal/models/response_models"
	"storefront/internal/notifier"
	"storefront/internal/repositories"
	"storefront/pkg/utils"
)

// OutcomeDuplicate is reported for redeliveries. It is never written to the
// webhook log.
const OutcomeDuplicate = "duplicate"

var reconcilableEvents = map[string]struct{}{
	"payment.succeeded":  {},
	"payment.authorized": {},
	"payment.captured":   {},
}

type WebhookService interface {
	HandleWebhook(ctx context.Context, rawBody []byte, signature string) (*resp.WebhookResult, error)
	Health(ctx context.Context) resp.WebhookHealth
}

type webhookService struct {
	signer  *gateway.Signer
	orders  repositories.OrderRepository
	logs    repositories.WebhookLogRepository
	settler *settler
	log     *zap.Logger
}

func NewWebhookService(
	signer *gateway.Signer,
	orders repositories.OrderRepository,
	logs repositories.WebhookLogRepository,
	publisher notifier.Publisher,
	currency string,
	log *zap.Logger,
) WebhookService {
	return &webhookService{
		signer:  signer,
		orders:  orders,
		logs:    logs,
		settler: &settler{orders: orders, publisher: publisher, currency: currency, now: time.Now, log: log},
		log:     log,
	}
}

func (s *webhookService) HandleWebhook(ctx context.Context, rawBody []byte, signature string) (*resp.WebhookResult, error) {
	if err := s.signer.Verify(rawBody, signature); err != nil {
		s.log.Warn("webhook signature rejected", zap.Error(err))
		return nil, utils.ErrInvalidSignature
	}

	var evt req.WebhookEvent
	if err := json.Unmarshal(rawBody, &evt); err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrInvalidWebhookPayload, err)
	}
	evt.EventType = strings.TrimSpace(evt.EventType)
	evt.PaymentID = strings.TrimSpace(evt.PaymentID)
	if evt.EventType == "" || evt.PaymentID == "" {
		return nil, fmt.Errorf("%w: event_type and payment_id are required", utils.ErrInvalidWebhookPayload)
	}

	entry := &dbm.WebhookLog{
		PaymentID:        evt.PaymentID,
		EventType:        evt.EventType,
		PaymentSessionID: evt.PaymentSessionID,
		GatewayStatus:    evt.Status,
		Payload:          datatypes.JSON(rawBody),
	}
	logger := s.log.With(
		zap.String("payment_id", evt.PaymentID),
		zap.String("event_type", evt.EventType),
		zap.String("session_id", evt.PaymentSessionID))

	seen, err := s.logs.HasSuccessful(ctx, evt.PaymentID, evt.EventType)
	if err != nil {
		logger.Error("idempotency lookup failed", zap.Error(err))
		return nil, fmt.Errorf("%w: idempotency lookup: %v", utils.ErrDatabaseError, err)
	}
	if seen {
		logger.Info("duplicate webhook delivery")
		return &resp.WebhookResult{Outcome: OutcomeDuplicate}, nil
	}

	if _, ok := reconcilableEvents[evt.EventType]; !ok {
		entry.Outcome = dbm.WebhookOutcomeIgnored
		return s.record(ctx, logger, entry, nil)
	}

	if evt.PaymentSessionID == "" {
		return s.fail(ctx, logger, entry, fmt.Errorf("%w: payments_session_id is required", utils.ErrInvalidWebhookPayload))
	}

	order, err := s.orders.FindSettleableBySession(ctx, evt.PaymentSessionID)
	if err != nil {
		return s.fail(ctx, logger, entry, fmt.Errorf("%w: find order: %v", utils.ErrDatabaseError, err))
	}
	if order == nil {
		return s.unmatched(ctx, logger, entry)
	}
	entry.OrderID = &order.ID

	if err := checkAmount(evt.Amount, order.TotalAmount); err != nil {
		return s.fail(ctx, logger, entry, err)
	}

	result, err := s.settler.settle(ctx, settleInput{
		Order:     order,
		Outcome:   gateway.Succeeded,
		PaymentID: evt.PaymentID,
		Path:      repositories.PathWebhook,
		Message:   "payment confirmed via webhook " + evt.EventType,
	})
	if err != nil {
		return s.fail(ctx, logger, entry, err)
	}

	if result.Applied {
		entry.Outcome = dbm.WebhookOutcomeProcessed
	} else {
		entry.Outcome = dbm.WebhookOutcomeAlreadySettled
		if result.State != dbm.StateConfirmed {
			entry.Error = fmt.Sprintf("order settled as %s/%s", result.State.Status, result.State.PaymentStatus)
		}
	}
	return s.record(ctx, logger, entry, &order.ID)
}

// unmatched handles a delivery with no settleable order. A settled order
// means the other path won; anything else is retried by the gateway.
func (s *webhookService) unmatched(ctx context.Context, logger *zap.Logger, entry *dbm.WebhookLog) (*resp.WebhookResult, error) {
	order, err := s.orders.FindBySession(ctx, entry.PaymentSessionID)
	if err != nil {
		return s.fail(ctx, logger, entry, fmt.Errorf("%w: find order: %v", utils.ErrDatabaseError, err))
	}
	if order == nil || !order.IsSettled() {
		return s.fail(ctx, logger, entry, utils.ErrOrderNotFound)
	}

	entry.OrderID = &order.ID
	entry.Outcome = dbm.WebhookOutcomeAlreadySettled
	if order.State() != dbm.StateConfirmed {
		entry.Error = fmt.Sprintf("order settled as %s/%s", order.Status, order.PaymentStatus)
		logger.Warn("success webhook for an order settled otherwise", zap.Uint64("order_id", order.ID))
	}
	return s.record(ctx, logger, entry, &order.ID)
}

func (s *webhookService) record(ctx context.Context, logger *zap.Logger, entry *dbm.WebhookLog, orderID *uint64) (*resp.WebhookResult, error) {
	if err := s.logs.Insert(ctx, entry); err != nil {
		logger.Error("insert webhook log failed", zap.String("outcome", string(entry.Outcome)), zap.Error(err))
		return nil, fmt.Errorf("%w: insert webhook log: %v", utils.ErrDatabaseError, err)
	}
	logger.Info("webhook handled", zap.String("outcome", string(entry.Outcome)))
	return &resp.WebhookResult{Outcome: string(entry.Outcome), OrderID: orderID}, nil
}

// fail records a failed attempt on a best-effort basis and returns cause.
func (s *webhookService) fail(ctx context.Context, logger *zap.Logger, entry *dbm.WebhookLog, cause error) (*resp.WebhookResult, error) {
	entry.Outcome = dbm.WebhookOutcomeFailed
	entry.Error = cause.Error()
	if err := s.logs.Insert(ctx, entry); err != nil {
		logger.Error("insert failed webhook log", zap.Error(err))
	}

	if errors.Is(cause, utils.ErrDatabaseError) {
		logger.Error("webhook processing failed", zap.Error(cause))
	} else {
		logger.Warn("webhook not applied", zap.Error(cause))
	}
	return nil, cause
}

func (s *webhookService) Health(ctx context.Context) resp.WebhookHealth {
	report := s.logs.Health(ctx)
	status := "ok"
	if !report.Database || !report.WebhookLogTable {
		status = "degraded"
	}
	return resp.WebhookHealth{
		Status:          status,
		Database:        report.Database,
		WebhookLogTable: report.WebhookLogTable,
	}
}

// checkAmount compares a reported amount with the order total. A missing
// amount is accepted.
func checkAmount(reported any, total decimal.Decimal) error {
	if reported == nil {
		return nil
	}
	raw, err := cast.ToStringE(reported)
	if err != nil || strings.TrimSpace(raw) == "" {
		return nil
	}
	amount, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("%w: amount %q", utils.ErrInvalidWebhookPayload, raw)
	}
	if !amount.Sub(total).Abs().LessThanOrEqual(ShippingEpsilon) {
		return fmt.Errorf("%w: amount %s does not match order total %s", utils.ErrPaymentMismatch, amount.StringFixed(2), total.StringFixed(2))
	}
	return nil
}
