package repositories

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	dbm "storefront/internal/models/db_models"
)

// DashboardRepository backs the admin reconciliation summary.
type DashboardRepository interface {
	// Counts
	CountOrdersByState(ctx context.Context) ([]StateCount, error)
	CountStalePending(ctx context.Context, createdBefore time.Time) (int64, error)
	CountWebhooksByOutcome(ctx context.Context, since time.Time) ([]OutcomeCount, error)

	// Money
	ConfirmedRevenue(ctx context.Context, start, end time.Time) (decimal.Decimal, error)

	// Recent settlements
	RecentSettlements(ctx context.Context, limit int) ([]SettlementRow, error)
}

type dashboardRepository struct {
	db *gorm.DB
}

func NewDashboardRepository(db *gorm.DB) DashboardRepository {
	return &dashboardRepository{db: db}
}

// ---------- Row helpers ----------
type StateCount struct {
	Status        dbm.OrderStatus   `gorm:"column:status" json:"status"`
	PaymentStatus dbm.PaymentStatus `gorm:"column:payment_status" json:"payment_status"`
	Count         int64             `gorm:"column:count" json:"count"`
}

type OutcomeCount struct {
	Outcome dbm.WebhookOutcome `gorm:"column:outcome" json:"outcome"`
	Count   int64              `gorm:"column:count" json:"count"`
}

type SettlementRow struct {
	ID            uint64            `gorm:"column:id"`
	CustomerEmail string            `gorm:"column:customer_email"`
	TotalAmount   decimal.Decimal   `gorm:"column:total_amount"`
	Status        dbm.OrderStatus   `gorm:"column:status"`
	PaymentStatus dbm.PaymentStatus `gorm:"column:payment_status"`
	PaymentID     *string           `gorm:"column:payment_id"`
	UpdatedAt     time.Time         `gorm:"column:updated_at"`
}

// ---------- Counts ----------
func (r *dashboardRepository) CountOrdersByState(ctx context.Context) ([]StateCount, error) {
	var rows []StateCount
	err := r.db.WithContext(ctx).Model(&dbm.Order{}).
		Select("status, payment_status, COUNT(*) AS count").
		Group("status, payment_status").
		Order("status, payment_status").
		Scan(&rows).Error
	return rows, err
}

func (r *dashboardRepository) CountStalePending(ctx context.Context, createdBefore time.Time) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&dbm.Order{}).
		Where("status IN ? AND payment_status = ? AND payment_method = ?",
			dbm.SettleableStatuses, dbm.PaymentStatusPending, dbm.PaymentMethodOnline).
		Where("created_at < ?", createdBefore).
		Count(&n).Error
	return n, err
}

func (r *dashboardRepository) CountWebhooksByOutcome(ctx context.Context, since time.Time) ([]OutcomeCount, error) {
	var rows []OutcomeCount
	err := r.db.WithContext(ctx).Model(&dbm.WebhookLog{}).
		Select("outcome, COUNT(*) AS count").
		Where("created_at >= ?", since.Unix()).
		Group("outcome").
		Order("outcome").
		Scan(&rows).Error
	return rows, err
}

// ---------- Money ----------
func (r *dashboardRepository) ConfirmedRevenue(ctx context.Context, start, end time.Time) (decimal.Decimal, error) {
	var totals []decimal.Decimal
	err := r.db.WithContext(ctx).
		Model(&dbm.Order{}).
		Where("status = ? AND payment_status = ?", dbm.OrderStatusConfirmed, dbm.PaymentStatusSuccess).
		Where("updated_at BETWEEN ? AND ?", start, end).
		Pluck("total_amount", &totals).Error
	if err != nil {
		return decimal.Zero, err
	}

	sum := decimal.Zero
	for _, t := range totals {
		sum = sum.Add(t)
	}
	return sum, nil
}

// ---------- Recent settlements ----------
func (r *dashboardRepository) RecentSettlements(ctx context.Context, limit int) ([]SettlementRow, error) {
	if limit <= 0 {
		limit = 10
	}
	var rows []SettlementRow
	err := r.db.WithContext(ctx).
		Model(&dbm.Order{}).
		Select("id, customer_email, total_amount, status, payment_status, payment_id, updated_at").
		Where("payment_method = ? AND payment_status IN ?",
			dbm.PaymentMethodOnline, []dbm.PaymentStatus{dbm.PaymentStatusSuccess, dbm.PaymentStatusFailed}).
		Order("updated_at DESC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}
