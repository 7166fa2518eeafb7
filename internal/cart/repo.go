package cart

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/velamart/cart-service/internal/repo"
	"github.com/velamart/cart-service/pkg/db/models"
	"github.com/velamart/cart-service/pkg/enums"
)

// Repository owns every write to carts and cart_items. Mutating methods accept
// an optional transaction so the service can group a mutation with its total
// recalculation.
type Repository struct {
	repo.Base
	now func() time.Time
}

// NewRepository constructs a cart repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db), now: time.Now}
}

// Create allocates a fresh active cart with a zero total.
func (r *Repository) Create(ctx context.Context) (*models.Cart, error) {
	cart := &models.Cart{
		ID:                uuid.New(),
		Status:            enums.CartStatusActive,
		TotalPriceCents:   0,
		LastInteractionAt: r.now().UTC(),
	}
	if err := r.DB(ctx).Create(cart).Error; err != nil {
		return nil, err
	}
	return cart, nil
}

// Find loads one cart without its items.
func (r *Repository) Find(ctx context.Context, id uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	if err := r.DB(ctx).Where("id = ?", id).First(&cart).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}

// FindWithItems loads one cart with its line items.
func (r *Repository) FindWithItems(ctx context.Context, id uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	err := r.DB(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Where("id = ?", id).
		First(&cart).Error
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// Touch refreshes last_interaction_at. It also flips an abandoned cart back to
// active: the sweep windows are measured from last_interaction_at, so a touched
// cart that stayed abandoned could never be purged yet would never be re-marked.
func (r *Repository) Touch(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	res := r.Conn(ctx, tx).
		Model(&models.Cart{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"last_interaction_at": r.now().UTC(),
			"status":              enums.CartStatusActive,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// UpsertLineItem inserts the (cart, product) row or accumulates quantity onto
// the existing one. The increment happens inside the storage engine, so
// concurrent adds for the same pair serialize on the row instead of racing a
// read-modify-write.
func (r *Repository) UpsertLineItem(ctx context.Context, tx *gorm.DB, cartID, productID uuid.UUID, quantity int) error {
	item := models.CartItem{
		ID:        uuid.New(),
		CartID:    cartID,
		ProductID: productID,
		Quantity:  quantity,
	}
	return r.Conn(ctx, tx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "cart_id"}, {Name: "product_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"quantity":   gorm.Expr("quantity + excluded.quantity"),
				"updated_at": r.now().UTC(),
			}),
		}).
		Create(&item).Error
}

// DeleteLineItem removes the (cart, product) row entirely; reports whether a
// row was actually deleted so callers can distinguish "not in cart".
func (r *Repository) DeleteLineItem(ctx context.Context, tx *gorm.DB, cartID, productID uuid.UUID) (bool, error) {
	res := r.Conn(ctx, tx).
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		Delete(&models.CartItem{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// ListItems returns the cart's line items.
func (r *Repository) ListItems(ctx context.Context, cartID uuid.UUID) ([]models.CartItem, error) {
	var rows []models.CartItem
	err := r.DB(ctx).
		Where("cart_id = ?", cartID).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// SumLineItems values the cart's items against live catalog prices.
func (r *Repository) SumLineItems(ctx context.Context, tx *gorm.DB, cartID uuid.UUID) (int64, error) {
	var total int64
	err := r.Conn(ctx, tx).
		Raw(`SELECT COALESCE(SUM(products.price_cents * cart_items.quantity), 0)
			FROM cart_items
			JOIN products ON products.id = cart_items.product_id
			WHERE cart_items.cart_id = ?`, cartID).
		Scan(&total).Error
	if err != nil {
		return 0, err
	}
	return total, nil
}

// SetTotal writes the denormalized cart total.
func (r *Repository) SetTotal(ctx context.Context, tx *gorm.DB, cartID uuid.UUID, totalCents int64) error {
	return r.Conn(ctx, tx).
		Model(&models.Cart{}).
		Where("id = ?", cartID).
		Update("total_price_cents", totalCents).Error
}

// BulkMarkAbandoned transitions every active cart whose last interaction is at
// or before the cutoff. One set-based UPDATE; concurrent sweeps and touches
// cannot lose updates through a fetch-then-save loop.
func (r *Repository) BulkMarkAbandoned(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.DB(ctx).
		Model(&models.Cart{}).
		Where("status = ? AND last_interaction_at <= ?", enums.CartStatusActive, cutoff).
		Update("status", enums.CartStatusAbandoned)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

// PurgeAbandonedBefore deletes every abandoned cart whose last interaction is
// at or before the cutoff, line items first. Runs inside the caller's
// transaction so a cart never loses its items without going away itself.
func (r *Repository) PurgeAbandonedBefore(ctx context.Context, tx *gorm.DB, cutoff time.Time) (int64, error) {
	conn := r.Conn(ctx, tx)

	err := conn.Exec(`DELETE FROM cart_items WHERE cart_id IN (
			SELECT id FROM carts WHERE status = ? AND last_interaction_at <= ?
		)`, enums.CartStatusAbandoned, cutoff).Error
	if err != nil {
		return 0, err
	}

	res := conn.
		Where("status = ? AND last_interaction_at <= ?", enums.CartStatusAbandoned, cutoff).
		Delete(&models.Cart{})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
