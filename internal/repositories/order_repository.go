package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	dbm "storefront/internal/models/db_models"
	"storefront/pkg/utils"
)

// Reconciliation paths recorded in the audit note.
const (
	PathClient  = "client"
	PathWebhook = "webhook"
	PathSweeper = "sweeper"
	PathAdmin   = "admin"
)

type TransitionInput struct {
	OrderID uint64
	// CustomerEmail, when set, is part of the update guard. It is compared
	// trimmed and case-insensitively.
	CustomerEmail string
	Target        dbm.StatePair
	PaymentID     string
	Path          string
	Message       string
	At            time.Time
}

type OrderRepository interface {
	Create(ctx context.Context, order *dbm.Order) error
	FindByID(ctx context.Context, id uint64) (*dbm.Order, error)
	FindSettleableBySession(ctx context.Context, sessionID string) (*dbm.Order, error)
	FindBySession(ctx context.Context, sessionID string) (*dbm.Order, error)
	// Transition moves an order out of a settleable state with a single
	// conditional update. applied is false when the guard did not match.
	Transition(ctx context.Context, in TransitionInput) (applied bool, err error)
	ListStalePending(ctx context.Context, createdBefore time.Time, limit int) ([]dbm.Order, error)
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

// Create inserts the order and takes its items out of stock in one
// transaction. Stock is decremented only where enough remains. New orders
// must start in an unsettled state pair.
func (r *orderRepository) Create(ctx context.Context, order *dbm.Order) error {
	if state := order.State(); !dbm.ValidStatePair(state) || state.IsTerminal() {
		return fmt.Errorf("%w: cannot create order in state %s/%s", utils.ErrInvalidTransition, state.Status, state.PaymentStatus)
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, item := range order.Items {
			res := tx.Model(&dbm.Product{}).
				Where("id = ? AND stock >= ?", item.ProductID, item.Quantity).
				UpdateColumn("stock", gorm.Expr("stock - ?", item.Quantity))
			if res.Error != nil {
				return fmt.Errorf("%w: decrement stock: %v", utils.ErrDatabaseError, res.Error)
			}
			if res.RowsAffected == 0 {
				var available int
				tx.Model(&dbm.Product{}).Select("stock").Where("id = ?", item.ProductID).Scan(&available)
				return &utils.OutOfStockError{ProductID: item.ProductID, Requested: item.Quantity, Available: available}
			}
		}

		if err := tx.Create(order).Error; err != nil {
			return fmt.Errorf("%w: create order: %v", utils.ErrDatabaseError, err)
		}
		return nil
	})
}

func (r *orderRepository) FindByID(ctx context.Context, id uint64) (*dbm.Order, error) {
	var order dbm.Order
	err := r.db.WithContext(ctx).First(&order, "id = ?", id).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &order, nil
}

func (r *orderRepository) FindSettleableBySession(ctx context.Context, sessionID string) (*dbm.Order, error) {
	var order dbm.Order
	err := r.db.WithContext(ctx).
		Where("payment_session_id = ? AND status IN ? AND payment_status = ?",
			sessionID, dbm.SettleableStatuses, dbm.PaymentStatusPending).
		Order("id DESC").
		First(&order).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &order, nil
}

func (r *orderRepository) FindBySession(ctx context.Context, sessionID string) (*dbm.Order, error) {
	var order dbm.Order
	err := r.db.WithContext(ctx).
		Where("payment_session_id = ?", sessionID).
		Order("id DESC").
		First(&order).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &order, nil
}

func (r *orderRepository) Transition(ctx context.Context, in TransitionInput) (bool, error) {
	if !dbm.ValidStatePair(in.Target) || !in.Target.IsTerminal() {
		return false, fmt.Errorf("%w: target %s/%s", utils.ErrInvalidTransition, in.Target.Status, in.Target.PaymentStatus)
	}

	at := in.At
	if at.IsZero() {
		at = time.Now()
	}
	note := FormatAuditNote(at, in.Path, in.Message)

	updates := map[string]interface{}{
		"status":         in.Target.Status,
		"payment_status": in.Target.PaymentStatus,
		"notes":          gorm.Expr("COALESCE(notes, '') || ?", note),
		"updated_at":     at,
	}
	if in.PaymentID != "" {
		updates["payment_id"] = in.PaymentID
	}

	q := r.db.WithContext(ctx).Model(&dbm.Order{}).
		Where("id = ? AND status IN ? AND payment_status = ?",
			in.OrderID, dbm.SettleableStatuses, dbm.PaymentStatusPending)
	if email := strings.ToLower(strings.TrimSpace(in.CustomerEmail)); email != "" {
		q = q.Where("LOWER(TRIM(customer_email)) = ?", email)
	}

	res := q.Updates(updates)
	if res.Error != nil {
		return false, fmt.Errorf("%w: transition order %d: %v", utils.ErrDatabaseError, in.OrderID, res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *orderRepository) ListStalePending(ctx context.Context, createdBefore time.Time, limit int) ([]dbm.Order, error) {
	if limit <= 0 {
		limit = 50
	}
	var orders []dbm.Order
	err := r.db.WithContext(ctx).
		Where("status IN ? AND payment_status = ? AND payment_method = ? AND payment_session_id <> '' AND created_at < ?",
			dbm.SettleableStatuses, dbm.PaymentStatusPending, dbm.PaymentMethodOnline, createdBefore).
		Order("created_at ASC").
		Limit(limit).
		Find(&orders).Error
	return orders, err
}

// FormatAuditNote renders one line of the order's audit trail.
func FormatAuditNote(at time.Time, path, message string) string {
	return fmt.Sprintf("[%s] %s: %s\n", at.UTC().Format(time.RFC3339), path, message)
}
