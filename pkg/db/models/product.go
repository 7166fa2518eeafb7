package models

import (
	"time"

	"github.com/google/uuid"
)

// Product is the catalog listing carts price against. The cart subsystem only
// ever reads it; writes go through the catalog service.
type Product struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Name       string    `gorm:"column:name;not null"`
	PriceCents int64     `gorm:"column:price_cents;not null"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName pins the table name for GORM.
func (Product) TableName() string { return "products" }
