package gateway

import (
	"context"

	"github.com/shopspring/decimal"
)

// Client is the narrow surface of the hosted payment gateway used here.
type Client interface {
	CreateSession(ctx context.Context, req SessionRequest) (*Session, error)
	GetPayment(ctx context.Context, paymentID string) (*Payment, error)
	GetSession(ctx context.Context, sessionID string) (*SessionStatus, error)
}

type Customer struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type SessionRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	Description string          `json:"description"`
	Reference   string          `json:"reference_number"`
	Customer    Customer        `json:"customer"`
}

type Session struct {
	ID       string          `json:"payments_session_id"`
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

type Payment struct {
	PaymentID string          `json:"payment_id"`
	SessionID string          `json:"payments_session_id"`
	Status    string          `json:"status"`
	Amount    decimal.Decimal `json:"amount"`
	Currency  string          `json:"currency"`
}

func (p *Payment) Outcome() Outcome { return ParseStatus(p.Status) }

type SessionStatus struct {
	SessionID string    `json:"payments_session_id"`
	Status    string    `json:"status"`
	Payments  []Payment `json:"payments"`
}

// Outcome resolves a session to a single outcome. Any successful payment
// wins; otherwise the latest failed payment, then the session's own status.
func (s *SessionStatus) Outcome() (Outcome, *Payment) {
	for i := range s.Payments {
		if s.Payments[i].Outcome() == Succeeded {
			return Succeeded, &s.Payments[i]
		}
	}
	for i := len(s.Payments) - 1; i >= 0; i-- {
		if s.Payments[i].Outcome() == Failed {
			return Failed, &s.Payments[i]
		}
	}
	return ParseStatus(s.Status), nil
}

type envelope struct {
	Code            int            `json:"code"`
	Message         string         `json:"message"`
	PaymentsSession *SessionStatus `json:"payments_session,omitempty"`
	Payment         *Payment       `json:"payment,omitempty"`
}

type sessionEnvelope struct {
	Code            int      `json:"code"`
	Message         string   `json:"message"`
	PaymentsSession *Session `json:"payments_session,omitempty"`
}
