package cart

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/velamart/cart-service/internal/catalog"
	"github.com/velamart/cart-service/pkg/db/models"
	"github.com/velamart/cart-service/pkg/enums"
	pkgerrors "github.com/velamart/cart-service/pkg/errors"
)

type fakeCatalog struct {
	products map[uuid.UUID]catalog.ProductInfo
}

func (f *fakeCatalog) PriceAndName(_ context.Context, id uuid.UUID) (*catalog.ProductInfo, error) {
	info, ok := f.products[id]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return &info, nil
}

func (f *fakeCatalog) add(name string, priceCents int64) uuid.UUID {
	id := uuid.New()
	f.products[id] = catalog.ProductInfo{ID: id, Name: name, PriceCents: priceCents}
	return id
}

type fakeCartStore struct {
	catalog *fakeCatalog
	carts   map[uuid.UUID]*models.Cart
	items   map[uuid.UUID]map[uuid.UUID]int
	order   map[uuid.UUID][]uuid.UUID
	touches int
}

func newFakeCartStore(cat *fakeCatalog) *fakeCartStore {
	return &fakeCartStore{
		catalog: cat,
		carts:   map[uuid.UUID]*models.Cart{},
		items:   map[uuid.UUID]map[uuid.UUID]int{},
		order:   map[uuid.UUID][]uuid.UUID{},
	}
}

func (f *fakeCartStore) Create(_ context.Context) (*models.Cart, error) {
	cart := &models.Cart{ID: uuid.New(), Status: enums.CartStatusActive}
	f.carts[cart.ID] = cart
	return cart, nil
}

func (f *fakeCartStore) Find(_ context.Context, id uuid.UUID) (*models.Cart, error) {
	cart, ok := f.carts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *cart
	return &clone, nil
}

func (f *fakeCartStore) Touch(_ context.Context, _ *gorm.DB, id uuid.UUID) error {
	cart, ok := f.carts[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	cart.Status = enums.CartStatusActive
	f.touches++
	return nil
}

func (f *fakeCartStore) UpsertLineItem(_ context.Context, _ *gorm.DB, cartID, productID uuid.UUID, quantity int) error {
	if f.items[cartID] == nil {
		f.items[cartID] = map[uuid.UUID]int{}
	}
	if _, ok := f.items[cartID][productID]; !ok {
		f.order[cartID] = append(f.order[cartID], productID)
	}
	f.items[cartID][productID] += quantity
	return nil
}

func (f *fakeCartStore) DeleteLineItem(_ context.Context, _ *gorm.DB, cartID, productID uuid.UUID) (bool, error) {
	if _, ok := f.items[cartID][productID]; !ok {
		return false, nil
	}
	delete(f.items[cartID], productID)
	kept := f.order[cartID][:0]
	for _, id := range f.order[cartID] {
		if id != productID {
			kept = append(kept, id)
		}
	}
	f.order[cartID] = kept
	return true, nil
}

func (f *fakeCartStore) ListItems(_ context.Context, cartID uuid.UUID) ([]models.CartItem, error) {
	rows := make([]models.CartItem, 0, len(f.items[cartID]))
	for _, productID := range f.order[cartID] {
		rows = append(rows, models.CartItem{
			ID:        uuid.New(),
			CartID:    cartID,
			ProductID: productID,
			Quantity:  f.items[cartID][productID],
		})
	}
	return rows, nil
}

func (f *fakeCartStore) SumLineItems(_ context.Context, _ *gorm.DB, cartID uuid.UUID) (int64, error) {
	var total int64
	for productID, quantity := range f.items[cartID] {
		total += f.catalog.products[productID].PriceCents * int64(quantity)
	}
	return total, nil
}

func (f *fakeCartStore) SetTotal(_ context.Context, _ *gorm.DB, cartID uuid.UUID, totalCents int64) error {
	cart, ok := f.carts[cartID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	cart.TotalPriceCents = totalCents
	return nil
}

type fakeTxRunner struct{}

func (fakeTxRunner) WithTx(_ context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func newTestCartService(t *testing.T) (Service, *fakeCartStore, *fakeCatalog) {
	t.Helper()
	cat := &fakeCatalog{products: map[uuid.UUID]catalog.ProductInfo{}}
	store := newFakeCartStore(cat)
	svc, err := NewService(ServiceParams{Store: store, Catalog: cat, Tx: fakeTxRunner{}})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc, store, cat
}

func TestAddItemAccumulatesSameProduct(t *testing.T) {
	svc, _, cat := newTestCartService(t)
	ctx := context.Background()
	beans := cat.add("Beans", 2000)

	created, err := svc.CreateCart(ctx)
	if err != nil {
		t.Fatalf("CreateCart: %v", err)
	}

	if _, err := svc.AddItem(ctx, created.ID, beans, 1); err != nil {
		t.Fatalf("first AddItem: %v", err)
	}
	snap, err := svc.AddItem(ctx, created.ID, beans, 1)
	if err != nil {
		t.Fatalf("second AddItem: %v", err)
	}

	if len(snap.Items) != 1 {
		t.Fatalf("expected one merged line item, got %d", len(snap.Items))
	}
	if snap.Items[0].Quantity != 2 {
		t.Fatalf("expected quantity 2, got %d", snap.Items[0].Quantity)
	}
	if snap.Items[0].LineTotalCents != 4000 || snap.TotalPriceCents != 4000 {
		t.Fatalf("expected totals 4000/4000, got %d/%d", snap.Items[0].LineTotalCents, snap.TotalPriceCents)
	}
}

func TestInteractionRepricesAgainstLiveCatalog(t *testing.T) {
	svc, _, cat := newTestCartService(t)
	ctx := context.Background()
	beans := cat.add("Beans", 2000)

	created, err := svc.CreateCart(ctx)
	if err != nil {
		t.Fatalf("CreateCart: %v", err)
	}
	if _, err := svc.AddItem(ctx, created.ID, beans, 2); err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	// Price drop between interactions: the next mutation re-derives the total.
	info := cat.products[beans]
	info.PriceCents = 1000
	cat.products[beans] = info

	filter := cat.add("Filter", 500)
	snap, err := svc.AddItem(ctx, created.ID, filter, 1)
	if err != nil {
		t.Fatalf("AddItem filter: %v", err)
	}
	if snap.TotalPriceCents != 2500 {
		t.Fatalf("expected repriced total 2500, got %d", snap.TotalPriceCents)
	}
	if snap.Items[0].UnitPriceCents != 1000 || snap.Items[0].LineTotalCents != 2000 {
		t.Fatalf("expected repriced line 1000/2000, got %d/%d",
			snap.Items[0].UnitPriceCents, snap.Items[0].LineTotalCents)
	}
}

func TestAddItemRejectsBadInput(t *testing.T) {
	svc, store, cat := newTestCartService(t)
	ctx := context.Background()
	beans := cat.add("Beans", 2000)

	created, err := svc.CreateCart(ctx)
	if err != nil {
		t.Fatalf("CreateCart: %v", err)
	}

	_, err = svc.AddItem(ctx, created.ID, beans, 0)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for zero quantity, got %v", err)
	}

	_, err = svc.AddItem(ctx, uuid.New(), beans, 1)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound || typed.Message() != "cart not found" {
		t.Fatalf("expected cart not found, got %v", err)
	}

	_, err = svc.AddItem(ctx, created.ID, uuid.New(), 1)
	typed = pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound || typed.Message() != "product not found" {
		t.Fatalf("expected product not found, got %v", err)
	}

	if store.touches != 0 {
		t.Fatalf("rejected adds must not register an interaction, saw %d touches", store.touches)
	}
	if len(store.items[created.ID]) != 0 {
		t.Fatalf("rejected adds must not create line items")
	}
}

func TestRemoveItemDropsWholeLine(t *testing.T) {
	svc, _, cat := newTestCartService(t)
	ctx := context.Background()
	beans := cat.add("Beans", 2000)

	created, err := svc.CreateCart(ctx)
	if err != nil {
		t.Fatalf("CreateCart: %v", err)
	}
	if _, err := svc.AddItem(ctx, created.ID, beans, 5); err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	snap, err := svc.RemoveItem(ctx, created.ID, beans)
	if err != nil {
		t.Fatalf("RemoveItem: %v", err)
	}
	if len(snap.Items) != 0 {
		t.Fatalf("expected whole line removed, got %d items", len(snap.Items))
	}
	if snap.TotalPriceCents != 0 {
		t.Fatalf("expected total reset to 0, got %d", snap.TotalPriceCents)
	}
}

func TestRemoveItemMissingLineLeavesCartUntouched(t *testing.T) {
	svc, store, cat := newTestCartService(t)
	ctx := context.Background()
	beans := cat.add("Beans", 2000)

	created, err := svc.CreateCart(ctx)
	if err != nil {
		t.Fatalf("CreateCart: %v", err)
	}

	_, err = svc.RemoveItem(ctx, created.ID, beans)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound || typed.Message() != "product not in cart" {
		t.Fatalf("expected product not in cart, got %v", err)
	}
	if store.touches != 0 {
		t.Fatalf("failed removal must not register an interaction")
	}

	_, err = svc.RemoveItem(ctx, uuid.New(), beans)
	typed = pkgerrors.As(err)
	if typed == nil || typed.Message() != "cart not found" {
		t.Fatalf("expected cart not found, got %v", err)
	}
}

func TestGetCartTouchesAndResurrects(t *testing.T) {
	svc, store, _ := newTestCartService(t)
	ctx := context.Background()

	created, err := svc.CreateCart(ctx)
	if err != nil {
		t.Fatalf("CreateCart: %v", err)
	}
	store.carts[created.ID].Status = enums.CartStatusAbandoned

	snap, err := svc.GetCart(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetCart: %v", err)
	}
	if snap.Status != enums.CartStatusActive {
		t.Fatalf("expected read to resurrect the cart, got %s", snap.Status)
	}
	if store.touches != 1 {
		t.Fatalf("expected one touch, got %d", store.touches)
	}

	_, err = svc.GetCart(ctx, uuid.New())
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}
