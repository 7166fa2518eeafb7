package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/velamart/cart-service/pkg/db"
	"github.com/velamart/cart-service/pkg/db/models"
	pkgerrors "github.com/velamart/cart-service/pkg/errors"
)

// ProductInfo is the read surface the cart subsystem consumes: live unit price
// and display name for one catalog item.
type ProductInfo struct {
	ID         uuid.UUID
	Name       string
	PriceCents int64
}

// Service exposes catalog operations.
type Service interface {
	CreateProduct(ctx context.Context, input ProductInput) (*models.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, input ProductInput) (*models.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
	ListProducts(ctx context.Context) ([]models.Product, error)
	PriceAndName(ctx context.Context, id uuid.UUID) (*ProductInfo, error)
}

// ProductInput carries a validated product payload. Price arrives as a decimal
// amount ("12.50") and is stored as cents.
type ProductInput struct {
	Name  string
	Price decimal.Decimal
}

type productRepository interface {
	Create(ctx context.Context, product *models.Product) (*models.Product, error)
	Update(ctx context.Context, product *models.Product) (*models.Product, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	List(ctx context.Context) ([]models.Product, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

type service struct {
	repo productRepository
}

// NewService builds a catalog service backed by the provided repository.
func NewService(repo productRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) CreateProduct(ctx context.Context, input ProductInput) (*models.Product, error) {
	cents, err := priceToCents(input.Price)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name is required")
	}
	product := &models.Product{Name: name, PriceCents: cents}
	created, err := s.repo.Create(ctx, product)
	if err != nil {
		return nil, fmt.Errorf("creating product: %w", err)
	}
	return created, nil
}

func (s *service) UpdateProduct(ctx context.Context, id uuid.UUID, input ProductInput) (*models.Product, error) {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err)
	}
	cents, err := priceToCents(input.Price)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name is required")
	}
	existing.Name = name
	existing.PriceCents = cents
	updated, err := s.repo.Update(ctx, existing)
	if err != nil {
		return nil, fmt.Errorf("updating product: %w", err)
	}
	return updated, nil
}

func (s *service) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	removed, err := s.repo.Delete(ctx, id)
	if err != nil {
		if db.IsForeignKeyViolation(err, "cart_items_product_id_fkey") {
			return pkgerrors.New(pkgerrors.CodeConflict, "product is referenced by a cart")
		}
		return fmt.Errorf("deleting product: %w", err)
	}
	if !removed {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return nil
}

func (s *service) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return product, nil
}

func (s *service) ListProducts(ctx context.Context) ([]models.Product, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	return rows, nil
}

func (s *service) PriceAndName(ctx context.Context, id uuid.UUID) (*ProductInfo, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return &ProductInfo{ID: product.ID, Name: product.Name, PriceCents: product.PriceCents}, nil
}

func priceToCents(price decimal.Decimal) (int64, error) {
	if price.IsNegative() {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative")
	}
	cents := price.Mul(decimal.NewFromInt(100))
	if !cents.Equal(cents.Truncate(0)) {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "price supports at most two decimal places")
	}
	return cents.IntPart(), nil
}

// PriceString renders stored cents back as a decimal amount.
func PriceString(cents int64) string {
	return decimal.NewFromInt(cents).Div(decimal.NewFromInt(100)).StringFixed(2)
}

func mapNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return err
}
