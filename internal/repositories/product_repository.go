package repositories

import (
	"context"

	"gorm.io/gorm"
	dbm "storefront/internal/models/db_models"
)

// ProductRepository is the read side of the catalog that checkout needs.
type ProductRepository interface {
	FindByIDs(ctx context.Context, ids []uint64) (map[uint64]dbm.Product, error)
}

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (p *productRepository) FindByIDs(ctx context.Context, ids []uint64) (map[uint64]dbm.Product, error) {
	out := make(map[uint64]dbm.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var products []dbm.Product
	if err := p.db.WithContext(ctx).Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, err
	}
	for _, prod := range products {
		out[prod.ID] = prod
	}
	return out, nil
}
