package db_models

import (
	"gorm.io/datatypes"
)

type WebhookOutcome string

const (
	WebhookOutcomeProcessed      WebhookOutcome = "processed"
	WebhookOutcomeAlreadySettled WebhookOutcome = "already_settled"
	WebhookOutcomeIgnored        WebhookOutcome = "ignored"
	WebhookOutcomeFailed         WebhookOutcome = "failed"
)

// SuccessfulOutcomes are the outcomes that make a redelivery a no-op.
var SuccessfulOutcomes = []WebhookOutcome{WebhookOutcomeProcessed, WebhookOutcomeAlreadySettled}

// WebhookLog is the append-only ledger of gateway callbacks. Rows are only
// ever inserted.
type WebhookLog struct {
	BaseModel
	PaymentID        string         `gorm:"size:128;not null;index:idx_webhook_logs_payment_event,priority:1" json:"payment_id"`
	EventType        string         `gorm:"size:64;not null;index:idx_webhook_logs_payment_event,priority:2" json:"event_type"`
	PaymentSessionID string         `gorm:"size:128;index" json:"payment_session_id"`
	OrderID          *uint64        `gorm:"index" json:"order_id"`
	Outcome          WebhookOutcome `gorm:"size:32;not null;index" json:"outcome"`
	GatewayStatus    string         `gorm:"size:64" json:"gateway_status"`
	Error            string         `gorm:"type:text" json:"error"`
	Payload          datatypes.JSON `json:"payload"`
}

func (WebhookLog) TableName() string { return "webhook_logs" }
