package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"
	dbm "storefront/internal/models/db_models"
)

type HealthReport struct {
	Database        bool `json:"database"`
	WebhookLogTable bool `json:"webhook_log_table"`
}

// WebhookLogRepository is insert-and-query only.
type WebhookLogRepository interface {
	Insert(ctx context.Context, entry *dbm.WebhookLog) error
	HasSuccessful(ctx context.Context, paymentID, eventType string) (bool, error)
	List(ctx context.Context, from, to time.Time, limit int) ([]dbm.WebhookLog, error)
	Health(ctx context.Context) HealthReport
}

type webhookLogRepository struct {
	db *gorm.DB
}

func NewWebhookLogRepository(db *gorm.DB) WebhookLogRepository {
	return &webhookLogRepository{db: db}
}

func (w *webhookLogRepository) Insert(ctx context.Context, entry *dbm.WebhookLog) error {
	return w.db.WithContext(ctx).Create(entry).Error
}

func (w *webhookLogRepository) HasSuccessful(ctx context.Context, paymentID, eventType string) (bool, error) {
	var count int64
	err := w.db.WithContext(ctx).Model(&dbm.WebhookLog{}).
		Where("payment_id = ? AND event_type = ? AND outcome IN ?", paymentID, eventType, dbm.SuccessfulOutcomes).
		Count(&count).Error
	return count > 0, err
}

func (w *webhookLogRepository) List(ctx context.Context, from, to time.Time, limit int) ([]dbm.WebhookLog, error) {
	if limit <= 0 || limit > 10000 {
		limit = 10000
	}
	var logs []dbm.WebhookLog
	err := w.db.WithContext(ctx).
		Where("created_at >= ? AND created_at < ?", from.Unix(), to.Unix()).
		Order("created_at ASC").
		Limit(limit).
		Find(&logs).Error
	return logs, err
}

func (w *webhookLogRepository) Health(ctx context.Context) HealthReport {
	var report HealthReport

	sqlDB, err := w.db.DB()
	if err != nil {
		return report
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return report
	}
	report.Database = true
	report.WebhookLogTable = w.db.WithContext(ctx).Migrator().HasTable(&dbm.WebhookLog{})
	return report
}
