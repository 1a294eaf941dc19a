package infra

import (
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	dbm "storefront/internal/models/db_models"
)

func InitPostgresql(dsn string, development bool, log *zap.Logger) (*gorm.DB, error) {
	if dsn == "" {
		return nil, errors.New("POSTGRES_URL is not set")
	}

	level := gormlogger.Warn
	if development {
		level = gormlogger.Info
	}

	connectionPool, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(level),
	})
	if err != nil {
		log.Error("error connecting to database", zap.Error(err))
		return nil, err
	}

	sqlDB, err := connectionPool.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	return connectionPool, nil
}

// Migrate creates or updates the tables the payment flows depend on.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&dbm.Product{},
		&dbm.Order{},
		&dbm.WebhookLog{},
		&dbm.GatewayCredential{},
	)
}

func ClosePostgresql(db *gorm.DB, log *zap.Logger) {
	sqlDB, err := db.DB()
	if err != nil {
		log.Error("error getting database instance", zap.Error(err))
		return
	}

	if err := sqlDB.Close(); err != nil {
		log.Error("error closing database connection", zap.Error(err))
	} else {
		log.Info("postgres connection closed")
	}
}
