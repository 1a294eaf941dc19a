package repositories

import (
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	dbm "storefront/internal/models/db_models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&dbm.Product{}, &dbm.Order{}, &dbm.WebhookLog{}, &dbm.GatewayCredential{}))
	return db
}

func seedProduct(t *testing.T, db *gorm.DB, id uint64, price string, stock int) dbm.Product {
	t.Helper()
	p := dbm.Product{ID: id, Name: fmt.Sprintf("product-%d", id), Price: decimal.RequireFromString(price), Stock: stock, IsActive: true}
	require.NoError(t, db.Create(&p).Error)
	return p
}

func seedOrder(t *testing.T, db *gorm.DB, mutate func(o *dbm.Order)) *dbm.Order {
	t.Helper()
	o := &dbm.Order{
		CustomerEmail:    "buyer@example.com",
		CustomerName:     "Buyer",
		Subtotal:         decimal.RequireFromString("850"),
		ShippingCharge:   decimal.RequireFromString("50"),
		TotalAmount:      decimal.RequireFromString("900"),
		PaymentMethod:    dbm.PaymentMethodOnline,
		PaymentSessionID: "ps_" + uuid.NewString(),
		Status:           dbm.OrderStatusPending,
		PaymentStatus:    dbm.PaymentStatusPending,
	}
	if mutate != nil {
		mutate(o)
	}
	require.NoError(t, db.Create(o).Error)
	return o
}
