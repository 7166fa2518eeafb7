package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/velamart/cart-service/internal/catalog"
	"github.com/velamart/cart-service/pkg/db/models"
	"github.com/velamart/cart-service/pkg/enums"
	pkgerrors "github.com/velamart/cart-service/pkg/errors"
)

// Snapshot is the canonical read model of a cart: identity, derived total and
// line items valued at live catalog prices.
type Snapshot struct {
	ID              uuid.UUID
	Status          enums.CartStatus
	TotalPriceCents int64
	Items           []SnapshotItem
}

// SnapshotItem is one cart line valued at the product's current price.
type SnapshotItem struct {
	ProductID      uuid.UUID
	Name           string
	UnitPriceCents int64
	Quantity       int
	LineTotalCents int64
}

// Service exposes the cart operations.
type Service interface {
	CreateCart(ctx context.Context) (*Snapshot, error)
	GetCart(ctx context.Context, cartID uuid.UUID) (*Snapshot, error)
	AddItem(ctx context.Context, cartID, productID uuid.UUID, quantity int) (*Snapshot, error)
	RemoveItem(ctx context.Context, cartID, productID uuid.UUID) (*Snapshot, error)
}

// Store is the persistence surface the service depends on.
type Store interface {
	Create(ctx context.Context) (*models.Cart, error)
	Find(ctx context.Context, id uuid.UUID) (*models.Cart, error)
	Touch(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
	UpsertLineItem(ctx context.Context, tx *gorm.DB, cartID, productID uuid.UUID, quantity int) error
	DeleteLineItem(ctx context.Context, tx *gorm.DB, cartID, productID uuid.UUID) (bool, error)
	ListItems(ctx context.Context, cartID uuid.UUID) ([]models.CartItem, error)
	SumLineItems(ctx context.Context, tx *gorm.DB, cartID uuid.UUID) (int64, error)
	SetTotal(ctx context.Context, tx *gorm.DB, cartID uuid.UUID, totalCents int64) error
}

// ProductCatalog resolves live product data for valuation.
type ProductCatalog interface {
	PriceAndName(ctx context.Context, id uuid.UUID) (*catalog.ProductInfo, error)
}

// TxRunner executes a function inside a database transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// ServiceParams carries the service dependencies.
type ServiceParams struct {
	Store   Store
	Catalog ProductCatalog
	Tx      TxRunner
}

type service struct {
	store   Store
	catalog ProductCatalog
	tx      TxRunner
	recalc  *Recalculator
}

// NewService wires the cart service.
func NewService(params ServiceParams) (Service, error) {
	if params.Store == nil {
		return nil, fmt.Errorf("cart store required")
	}
	if params.Catalog == nil {
		return nil, fmt.Errorf("product catalog required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	recalc, err := NewRecalculator(params.Store)
	if err != nil {
		return nil, err
	}
	return &service{
		store:   params.Store,
		catalog: params.Catalog,
		tx:      params.Tx,
		recalc:  recalc,
	}, nil
}

func (s *service) CreateCart(ctx context.Context) (*Snapshot, error) {
	cart, err := s.store.Create(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating cart: %w", err)
	}
	return &Snapshot{
		ID:              cart.ID,
		Status:          cart.Status,
		TotalPriceCents: cart.TotalPriceCents,
		Items:           []SnapshotItem{},
	}, nil
}

// GetCart counts as an interaction: reading a cart refreshes its
// last_interaction_at before the snapshot is assembled.
func (s *service) GetCart(ctx context.Context, cartID uuid.UUID) (*Snapshot, error) {
	if err := s.store.Touch(ctx, nil, cartID); err != nil {
		return nil, mapCartErr(err)
	}
	return s.snapshot(ctx, cartID)
}

// AddItem merges quantity into the (cart, product) line item. Adding an
// already-present product accumulates; it never creates a second line.
func (s *service) AddItem(ctx context.Context, cartID, productID uuid.UUID, quantity int) (*Snapshot, error) {
	if quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be a positive integer")
	}
	if _, err := s.store.Find(ctx, cartID); err != nil {
		return nil, mapCartErr(err)
	}
	if _, err := s.catalog.PriceAndName(ctx, productID); err != nil {
		return nil, err
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.store.UpsertLineItem(ctx, tx, cartID, productID, quantity); err != nil {
			return fmt.Errorf("upserting line item: %w", err)
		}
		if err := s.store.Touch(ctx, tx, cartID); err != nil {
			return mapCartErr(err)
		}
		if _, err := s.recalc.Recalculate(ctx, tx, cartID); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.snapshot(ctx, cartID)
}

// RemoveItem drops the (cart, product) line entirely regardless of quantity.
// A missing line aborts the transaction, so the cart is not touched.
func (s *service) RemoveItem(ctx context.Context, cartID, productID uuid.UUID) (*Snapshot, error) {
	if _, err := s.store.Find(ctx, cartID); err != nil {
		return nil, mapCartErr(err)
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		removed, err := s.store.DeleteLineItem(ctx, tx, cartID, productID)
		if err != nil {
			return fmt.Errorf("deleting line item: %w", err)
		}
		if !removed {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not in cart")
		}
		if err := s.store.Touch(ctx, tx, cartID); err != nil {
			return mapCartErr(err)
		}
		if _, err := s.recalc.Recalculate(ctx, tx, cartID); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.snapshot(ctx, cartID)
}

func (s *service) snapshot(ctx context.Context, cartID uuid.UUID) (*Snapshot, error) {
	cart, err := s.store.Find(ctx, cartID)
	if err != nil {
		return nil, mapCartErr(err)
	}
	rows, err := s.store.ListItems(ctx, cartID)
	if err != nil {
		return nil, fmt.Errorf("listing cart items: %w", err)
	}

	out := &Snapshot{
		ID:              cart.ID,
		Status:          cart.Status,
		TotalPriceCents: cart.TotalPriceCents,
		Items:           make([]SnapshotItem, 0, len(rows)),
	}
	for _, row := range rows {
		info, err := s.catalog.PriceAndName(ctx, row.ProductID)
		if err != nil {
			return nil, fmt.Errorf("resolving product %s: %w", row.ProductID, err)
		}
		out.Items = append(out.Items, SnapshotItem{
			ProductID:      row.ProductID,
			Name:           info.Name,
			UnitPriceCents: info.PriceCents,
			Quantity:       row.Quantity,
			LineTotalCents: info.PriceCents * int64(row.Quantity),
		})
	}
	return out, nil
}

func mapCartErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "cart not found")
	}
	return err
}
