package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dbm "storefront/internal/models/db_models"
)

func TestWebhookLogRepository_HasSuccessful(t *testing.T) {
	db := newTestDB(t)
	repo := NewWebhookLogRepository(db)
	ctx := context.Background()

	ok, err := repo.HasSuccessful(ctx, "pay_1", "payment.succeeded")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, repo.Insert(ctx, &dbm.WebhookLog{PaymentID: "pay_1", EventType: "payment.succeeded", Outcome: dbm.WebhookOutcomeFailed}))
	ok, err = repo.HasSuccessful(ctx, "pay_1", "payment.succeeded")
	require.NoError(t, err)
	assert.False(t, ok, "failed attempts must not block a retry")

	require.NoError(t, repo.Insert(ctx, &dbm.WebhookLog{PaymentID: "pay_1", EventType: "payment.succeeded", Outcome: dbm.WebhookOutcomeAlreadySettled}))
	ok, err = repo.HasSuccessful(ctx, "pay_1", "payment.succeeded")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.HasSuccessful(ctx, "pay_1", "payment.captured")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestWebhookLogRepository_ListAndHealth(t *testing.T) {
	db := newTestDB(t)
	repo := NewWebhookLogRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Insert(ctx, &dbm.WebhookLog{PaymentID: "pay_1", EventType: "payment.succeeded", Outcome: dbm.WebhookOutcomeProcessed}))
	require.NoError(t, repo.Insert(ctx, &dbm.WebhookLog{PaymentID: "pay_2", EventType: "payment.succeeded", Outcome: dbm.WebhookOutcomeIgnored}))

	logs, err := repo.List(ctx, time.Now().Add(-time.Hour), time.Now().Add(time.Hour), 0)
	require.NoError(t, err)
	assert.Len(t, logs, 2)

	report := repo.Health(ctx)
	assert.True(t, report.Database)
	assert.True(t, report.WebhookLogTable)
}
