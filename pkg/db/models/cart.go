package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/velamart/cart-service/pkg/enums"
)

// Cart is the session-scoped aggregate of line items and a denormalized total.
// TotalPriceCents is recomputed from the line items after every mutation;
// LastInteractionAt drives the abandonment sweep.
type Cart struct {
	ID                uuid.UUID        `gorm:"column:id;type:uuid;primaryKey"`
	Status            enums.CartStatus `gorm:"column:status;not null;default:'active'"`
	TotalPriceCents   int64            `gorm:"column:total_price_cents;not null;default:0"`
	LastInteractionAt time.Time        `gorm:"column:last_interaction_at;not null"`
	Items             []CartItem       `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	CreatedAt         time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName pins the table name for GORM.
func (Cart) TableName() string { return "carts" }
