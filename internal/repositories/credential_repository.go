package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"
	dbm "storefront/internal/models/db_models"
)

type CredentialRepository interface {
	FindCredential(ctx context.Context, provider string) (*dbm.GatewayCredential, error)
	SaveCredential(ctx context.Context, cred *dbm.GatewayCredential) error
}

type credentialRepository struct {
	db *gorm.DB
}

func NewCredentialRepository(db *gorm.DB) CredentialRepository {
	return &credentialRepository{db: db}
}

func (c *credentialRepository) FindCredential(ctx context.Context, provider string) (*dbm.GatewayCredential, error) {
	var cred dbm.GatewayCredential
	err := c.db.WithContext(ctx).First(&cred, "provider = ?", provider).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &cred, nil
}

func (c *credentialRepository) SaveCredential(ctx context.Context, cred *dbm.GatewayCredential) error {
	return c.db.WithContext(ctx).Save(cred).Error
}
