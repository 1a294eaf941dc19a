package db_models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is the catalog row as seen by checkout. The catalog itself is
// managed elsewhere; this service only reads price and stock, and decrements
// stock when an order is placed.
type Product struct {
	ID        uint64          `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string          `gorm:"size:255;not null" json:"name"`
	Price     decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	Stock     int             `gorm:"not null;default:0" json:"stock"`
	IsActive  bool            `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func (Product) TableName() string { return "products" }
