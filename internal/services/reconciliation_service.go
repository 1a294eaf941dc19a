package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"storefront/internal/gateway"
	dbm "storefront/internal/models/db_models"
	resp "storefront/internal/models/response_models"
	"storefront/internal/notifier"
	"storefront/internal/repositories"
	"storefront/pkg/utils"
)

const (
	OutcomeConfirmed      = "confirmed"
	OutcomeCancelled      = "cancelled"
	OutcomeAlreadySettled = "already_settled"
	OutcomeIndeterminate  = "indeterminate"
)

type SweepOptions struct {
	Interval time.Duration
	MinAge   time.Duration
	Batch    int
	// AlertTo receives the reauthorization link when the gateway
	// credential stops working. Empty disables the alert.
	AlertTo string
}

// ReconciliationService recovers orders whose webhook never arrived by
// asking the gateway directly.
type ReconciliationService interface {
	SweepStalePending(ctx context.Context) (*resp.SweepReport, error)
	ReconcileOrder(ctx context.Context, id uint64, path string) (*resp.ReconcileResult, error)
	Run(ctx context.Context)
}

type reconciliationService struct {
	orders  repositories.OrderRepository
	gateway gateway.Client
	settler *settler
	mail    IMailService
	opts    SweepOptions
	log     *zap.Logger

	// alerted is only touched by Run.
	alerted bool
}

func NewReconciliationService(
	orders repositories.OrderRepository,
	gw gateway.Client,
	publisher notifier.Publisher,
	mail IMailService,
	currency string,
	opts SweepOptions,
	log *zap.Logger,
) ReconciliationService {
	if opts.Interval <= 0 {
		opts.Interval = 10 * time.Minute
	}
	if opts.MinAge <= 0 {
		opts.MinAge = 15 * time.Minute
	}
	if opts.Batch <= 0 {
		opts.Batch = 50
	}
	return &reconciliationService{
		orders:  orders,
		gateway: gw,
		settler: &settler{orders: orders, publisher: publisher, currency: currency, now: time.Now, log: log},
		mail:    mail,
		opts:    opts,
		log:     log,
	}
}

// Run sweeps on a ticker until ctx is cancelled.
func (s *reconciliationService) Run(ctx context.Context) {
	ticker := time.NewTicker(s.opts.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			report, err := s.SweepStalePending(ctx)
			if errors.Is(err, utils.ErrGatewayAuthRequired) {
				s.alertReauth(ctx, err)
				continue
			}
			if err != nil {
				s.log.Error("stale pending sweep failed", zap.Error(err))
				continue
			}
			s.alerted = false
			if report.Scanned > 0 {
				s.log.Info("stale pending sweep",
					zap.Int("scanned", report.Scanned),
					zap.Int("confirmed", report.Confirmed),
					zap.Int("cancelled", report.Cancelled),
					zap.Int("untouched", report.Untouched),
					zap.Int("errors", report.Errors))
			}
		}
	}
}

// alertReauth mails the operator once per outage; a clean sweep re-arms it.
func (s *reconciliationService) alertReauth(ctx context.Context, err error) {
	s.log.Warn("stale pending sweep paused, gateway authorization required", zap.Error(err))
	if s.alerted || s.mail == nil || s.opts.AlertTo == "" {
		return
	}

	var authErr *utils.GatewayAuthRequiredError
	reauthURL := ""
	if errors.As(err, &authErr) {
		reauthURL = authErr.ReauthURL
	}

	body := "Pending orders are not being reconciled because the payment gateway credential has expired or been revoked. Reconnect the gateway to resume."
	if sendErr := s.mail.SendMailToNotifyUser(ctx, s.opts.AlertTo,
		"Payment gateway needs reauthorization", body, "Reconnect gateway", reauthURL); sendErr != nil {
		s.log.Error("send reauthorization alert failed", zap.Error(sendErr))
		return
	}
	s.alerted = true
}

func (s *reconciliationService) SweepStalePending(ctx context.Context) (*resp.SweepReport, error) {
	cutoff := s.settler.now().Add(-s.opts.MinAge)
	orders, err := s.orders.ListStalePending(ctx, cutoff, s.opts.Batch)
	if err != nil {
		return nil, fmt.Errorf("%w: list stale orders: %v", utils.ErrDatabaseError, err)
	}

	report := &resp.SweepReport{Scanned: len(orders)}
	for i := range orders {
		res, err := s.reconcile(ctx, &orders[i], repositories.PathSweeper)
		if err != nil {
			// Every remaining call would fail the same way.
			if errors.Is(err, utils.ErrGatewayAuthRequired) {
				return report, err
			}
			report.Errors++
			s.log.Warn("reconcile stale order failed", zap.Uint64("order_id", orders[i].ID), zap.Error(err))
			continue
		}
		switch res.Outcome {
		case OutcomeConfirmed:
			report.Confirmed++
		case OutcomeCancelled:
			report.Cancelled++
		default:
			report.Untouched++
		}
	}
	return report, nil
}

func (s *reconciliationService) ReconcileOrder(ctx context.Context, id uint64, path string) (*resp.ReconcileResult, error) {
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: load order: %v", utils.ErrDatabaseError, err)
	}
	if order == nil {
		return nil, utils.ErrOrderNotFound
	}
	if path == "" {
		path = repositories.PathAdmin
	}
	return s.reconcile(ctx, order, path)
}

func (s *reconciliationService) reconcile(ctx context.Context, order *dbm.Order, path string) (*resp.ReconcileResult, error) {
	if order.IsSettled() {
		return reconcileResult(order.ID, OutcomeAlreadySettled, false, order.State()), nil
	}
	if order.PaymentMethod != dbm.PaymentMethodOnline || order.PaymentSessionID == "" {
		return nil, fmt.Errorf("%w: order %d has no payment session", utils.ErrInvalidRequest, order.ID)
	}

	session, err := s.gateway.GetSession(ctx, order.PaymentSessionID)
	if err != nil {
		return nil, gatewayLookupError(err)
	}

	outcome, payment := session.Outcome()
	if outcome == gateway.Indeterminate {
		return reconcileResult(order.ID, OutcomeIndeterminate, false, order.State()), nil
	}

	var paymentID string
	if payment != nil {
		paymentID = payment.PaymentID
	}
	result, err := s.settler.settle(ctx, settleInput{
		Order:     order,
		Outcome:   outcome,
		PaymentID: paymentID,
		Path:      path,
		Message:   fmt.Sprintf("payment %s per gateway session status", outcome),
	})
	if err != nil {
		return nil, err
	}
	if !result.Applied {
		return reconcileResult(order.ID, OutcomeAlreadySettled, false, result.State), nil
	}

	name := OutcomeConfirmed
	if result.State == dbm.StateCancelled {
		name = OutcomeCancelled
	}
	return reconcileResult(order.ID, name, true, result.State), nil
}

func reconcileResult(id uint64, outcome string, applied bool, state dbm.StatePair) *resp.ReconcileResult {
	return &resp.ReconcileResult{
		OrderID:       id,
		Outcome:       outcome,
		Applied:       applied,
		Status:        string(state.Status),
		PaymentStatus: string(state.PaymentStatus),
	}
}
