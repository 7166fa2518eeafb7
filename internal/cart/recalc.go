package cart

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type recalcStore interface {
	SumLineItems(ctx context.Context, tx *gorm.DB, cartID uuid.UUID) (int64, error)
	SetTotal(ctx context.Context, tx *gorm.DB, cartID uuid.UUID, totalCents int64) error
}

// Recalculator re-derives a cart's denormalized total from its line items and
// live catalog prices. It is invoked after every item mutation, inside the same
// transaction, so the stored total never drifts from its inputs.
type Recalculator struct {
	store recalcStore
}

// NewRecalculator builds a recalculator over the cart store.
func NewRecalculator(store recalcStore) (*Recalculator, error) {
	if store == nil {
		return nil, fmt.Errorf("cart store required")
	}
	return &Recalculator{store: store}, nil
}

// Recalculate computes SUM(unit price * quantity) and persists it. An empty
// cart totals zero.
func (r *Recalculator) Recalculate(ctx context.Context, tx *gorm.DB, cartID uuid.UUID) (int64, error) {
	total, err := r.store.SumLineItems(ctx, tx, cartID)
	if err != nil {
		return 0, fmt.Errorf("summing line items: %w", err)
	}
	if err := r.store.SetTotal(ctx, tx, cartID, total); err != nil {
		return 0, fmt.Errorf("storing cart total: %w", err)
	}
	return total, nil
}
