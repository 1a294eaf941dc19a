package services

import (
	"context"
	"time"

	resp "storefront/internal/models/response_models"
	"storefront/internal/repositories"
	"storefront/pkg/utils"
)

type DashboardService interface {
	BuildSummary(ctx context.Context, rng resp.TimeRange) (*resp.ReconciliationSummary, error)
}

type dashboardService struct {
	repo     repositories.DashboardRepository
	minAge   time.Duration
	currency string
}

func NewDashboardService(repo repositories.DashboardRepository, staleAfter time.Duration, currency string) DashboardService {
	return &dashboardService{repo: repo, minAge: staleAfter, currency: currency}
}

// normalizeRange ensures sane defaults and ordering
func normalizeRange(r resp.TimeRange) resp.TimeRange {
	out := r
	if out.End.IsZero() {
		out.End = time.Now()
	}
	if out.Start.IsZero() {
		out.Start = out.End.AddDate(0, 0, -7)
	}
	if out.Start.After(out.End) {
		out.Start, out.End = out.End, out.Start
	}
	return out
}

func (s *dashboardService) BuildSummary(ctx context.Context, rng resp.TimeRange) (*resp.ReconciliationSummary, error) {
	rng = normalizeRange(rng)

	// ---------- Counts ----------
	stateRows, err := s.repo.CountOrdersByState(ctx)
	if err != nil {
		return nil, err
	}
	orders := make([]resp.StateCount, 0, len(stateRows))
	for _, r := range stateRows {
		orders = append(orders, resp.StateCount{Status: string(r.Status), PaymentStatus: string(r.PaymentStatus), Count: r.Count})
	}

	outcomeRows, err := s.repo.CountWebhooksByOutcome(ctx, rng.Start)
	if err != nil {
		return nil, err
	}
	webhooks := make([]resp.OutcomeCount, 0, len(outcomeRows))
	for _, r := range outcomeRows {
		webhooks = append(webhooks, resp.OutcomeCount{Outcome: string(r.Outcome), Count: r.Count})
	}

	stale, err := s.repo.CountStalePending(ctx, time.Now().Add(-s.minAge))
	if err != nil {
		return nil, err
	}

	// ---------- Money ----------
	revenue, err := s.repo.ConfirmedRevenue(ctx, rng.Start, rng.End)
	if err != nil {
		return nil, err
	}

	// ---------- Recent ----------
	recentRows, err := s.repo.RecentSettlements(ctx, 10)
	if err != nil {
		return nil, err
	}
	recent := make([]resp.Settlement, 0, len(recentRows))
	for _, r := range recentRows {
		var paymentID string
		if r.PaymentID != nil {
			paymentID = *r.PaymentID
		}
		recent = append(recent, resp.Settlement{
			OrderID:       r.ID,
			CustomerEmail: r.CustomerEmail,
			TotalAmount:   r.TotalAmount,
			Status:        string(r.Status),
			PaymentStatus: string(r.PaymentStatus),
			PaymentID:     paymentID,
			SettledAt:     utils.FormatDisplayIST(r.UpdatedAt),
		})
	}

	return &resp.ReconciliationSummary{
		Range:            rng,
		Orders:           orders,
		Webhooks:         webhooks,
		StalePending:     stale,
		ConfirmedRevenue: revenue,
		Currency:         s.currency,
		Recent:           recent,
	}, nil
}
