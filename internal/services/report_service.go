package services

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"storefront/internal/repositories"
	"storefront/pkg/utils"
)

const webhookSheet = "Webhook Logs"

var webhookColumns = []string{
	"Received At", "Payment ID", "Event Type", "Session ID", "Order ID", "Outcome", "Gateway Status", "Error",
}

type ReportService interface {
	ExportWebhookLogs(ctx context.Context, from, to time.Time) ([]byte, error)
}

type reportService struct {
	logs repositories.WebhookLogRepository
}

func NewReportService(logs repositories.WebhookLogRepository) ReportService {
	return &reportService{logs: logs}
}

// ExportWebhookLogs renders the webhook ledger for [from, to) as an XLSX
// workbook.
func (s *reportService) ExportWebhookLogs(ctx context.Context, from, to time.Time) ([]byte, error) {
	rows, err := s.logs.List(ctx, from, to, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: list webhook logs: %v", utils.ErrDatabaseError, err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", webhookSheet); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(webhookSheet, "A1", &webhookColumns); err != nil {
		return nil, err
	}

	for i, r := range rows {
		var orderID any = ""
		if r.OrderID != nil {
			orderID = *r.OrderID
		}
		line := []any{
			utils.FormatDisplayIST(utils.FromUnixSecondsIST(r.CreatedAt)),
			r.PaymentID,
			r.EventType,
			r.PaymentSessionID,
			orderID,
			string(r.Outcome),
			r.GatewayStatus,
			r.Error,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(webhookSheet, cell, &line); err != nil {
			return nil, err
		}
	}

	_ = f.SetColWidth(webhookSheet, "A", "A", 28)
	_ = f.SetColWidth(webhookSheet, "B", "D", 32)
	_ = f.SetColWidth(webhookSheet, "H", "H", 60)
	if err := f.SetPanes(webhookSheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
