package services

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"storefront/internal/gateway"
	dbm "storefront/internal/models/db_models"
	"storefront/internal/notifier"
	"storefront/pkg/utils"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&dbm.Product{}, &dbm.Order{}, &dbm.WebhookLog{}, &dbm.GatewayCredential{}))
	return db
}

func seedProduct(t *testing.T, db *gorm.DB, p dbm.Product) {
	t.Helper()
	if p.Name == "" {
		p.Name = fmt.Sprintf("product-%d", p.ID)
	}
	active := p.IsActive
	require.NoError(t, db.Create(&p).Error)
	// is_active defaults to true, so a false value has to be written explicitly.
	if !active {
		require.NoError(t, db.Model(&p).Update("is_active", false).Error)
	}
}

func seedPendingOrder(t *testing.T, db *gorm.DB, sessionID string, mutate func(o *dbm.Order)) *dbm.Order {
	t.Helper()
	o := &dbm.Order{
		CustomerEmail:    "buyer@example.com",
		CustomerName:     "Buyer",
		Subtotal:         dec("850"),
		ShippingCharge:   dec("50"),
		TotalAmount:      dec("900"),
		PaymentMethod:    dbm.PaymentMethodOnline,
		PaymentSessionID: sessionID,
		Status:           dbm.OrderStatusPending,
		PaymentStatus:    dbm.PaymentStatusPending,
	}
	if mutate != nil {
		mutate(o)
	}
	require.NoError(t, db.Create(o).Error)
	return o
}

func reload(t *testing.T, db *gorm.DB, id uint64) *dbm.Order {
	t.Helper()
	var o dbm.Order
	require.NoError(t, db.First(&o, "id = ?", id).Error)
	return &o
}

type fakeGateway struct {
	mu sync.Mutex

	sessionID  string
	createErr  error
	lookupErr  error
	payments   map[string]*gateway.Payment
	sessions   map[string]*gateway.SessionStatus
	lastCreate *gateway.SessionRequest
	calls      int
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		sessionID: "ps_new",
		payments:  map[string]*gateway.Payment{},
		sessions:  map[string]*gateway.SessionStatus{},
	}
}

func (f *fakeGateway) CreateSession(_ context.Context, req gateway.SessionRequest) (*gateway.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.lastCreate = &req
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &gateway.Session{ID: f.sessionID, Amount: req.Amount, Currency: req.Currency}, nil
}

func (f *fakeGateway) GetPayment(_ context.Context, paymentID string) (*gateway.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	p, ok := f.payments[paymentID]
	if !ok {
		return nil, fmt.Errorf("%w: status 404", utils.ErrGatewayError)
	}
	return p, nil
}

func (f *fakeGateway) GetSession(_ context.Context, sessionID string) (*gateway.SessionStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	s, ok := f.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("%w: status 404", utils.ErrGatewayError)
	}
	return s, nil
}

func (f *fakeGateway) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []notifier.OrderConfirmedEvent
}

func (r *recordingPublisher) Publish(_ context.Context, evt notifier.OrderConfirmedEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, evt)
	return nil
}

func (r *recordingPublisher) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

func (r *recordingPublisher) last() notifier.OrderConfirmedEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.events[len(r.events)-1]
}

var testLog = zap.NewNop()

func price(s string) decimal.Decimal { return dec(s) }
