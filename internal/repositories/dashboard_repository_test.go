package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dbm "storefront/internal/models/db_models"
)

func TestDashboardRepository_Summary(t *testing.T) {
	db := newTestDB(t)
	orders := NewOrderRepository(db)
	dash := NewDashboardRepository(db)
	ctx := context.Background()

	paid := seedOrder(t, db, nil)
	seedOrder(t, db, func(o *dbm.Order) { o.CreatedAt = time.Now().Add(-time.Hour) })

	applied, err := orders.Transition(ctx, TransitionInput{OrderID: paid.ID, Target: dbm.StateConfirmed, PaymentID: "pay_9", Path: PathWebhook, Message: "ok"})
	require.NoError(t, err)
	require.True(t, applied)

	counts, err := dash.CountOrdersByState(ctx)
	require.NoError(t, err)
	byState := map[dbm.StatePair]int64{}
	for _, c := range counts {
		byState[dbm.StatePair{Status: c.Status, PaymentStatus: c.PaymentStatus}] = c.Count
	}
	assert.Equal(t, int64(1), byState[dbm.StateConfirmed])
	assert.Equal(t, int64(1), byState[dbm.StatePending])

	stale, err := dash.CountStalePending(ctx, time.Now().Add(-15*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(1), stale)

	revenue, err := dash.ConfirmedRevenue(ctx, time.Now().Add(-time.Hour), time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.True(t, revenue.Equal(decimal.NewFromInt(900)), revenue.String())

	recent, err := dash.RecentSettlements(ctx, 5)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, paid.ID, recent[0].ID)
}
