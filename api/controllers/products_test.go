package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/velamart/cart-service/internal/catalog"
	"github.com/velamart/cart-service/pkg/db/models"
	pkgerrors "github.com/velamart/cart-service/pkg/errors"
)

type stubCatalogService struct {
	product *models.Product
	err     error
	deleted uuid.UUID
}

func (s *stubCatalogService) CreateProduct(_ context.Context, input catalog.ProductInput) (*models.Product, error) {
	return s.product, s.err
}

func (s *stubCatalogService) UpdateProduct(_ context.Context, _ uuid.UUID, _ catalog.ProductInput) (*models.Product, error) {
	return s.product, s.err
}

func (s *stubCatalogService) DeleteProduct(_ context.Context, id uuid.UUID) error {
	s.deleted = id
	return s.err
}

func (s *stubCatalogService) GetProduct(context.Context, uuid.UUID) (*models.Product, error) {
	return s.product, s.err
}

func (s *stubCatalogService) ListProducts(context.Context) ([]models.Product, error) {
	if s.product == nil {
		return nil, s.err
	}
	return []models.Product{*s.product}, s.err
}

func (s *stubCatalogService) PriceAndName(context.Context, uuid.UUID) (*catalog.ProductInfo, error) {
	return nil, s.err
}

func sampleProduct() *models.Product {
	return &models.Product{ID: uuid.New(), Name: "Beans", PriceCents: 1250}
}

func TestProductCreateRendersPriceString(t *testing.T) {
	svc := &stubCatalogService{product: sampleProduct()}
	body := `{"name":"Beans","price":"12.50"}`

	resp := httptest.NewRecorder()
	ProductCreate(svc, discardLogger()).
		ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/products", strings.NewReader(body)))

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.Code)
	}
	data := decodeData(t, resp)
	if data["price"] != "12.50" || data["price_cents"] != float64(1250) {
		t.Fatalf("unexpected payload %v", data)
	}
}

func TestProductCreateRejectsBadPayloads(t *testing.T) {
	svc := &stubCatalogService{product: sampleProduct()}
	handler := ProductCreate(svc, discardLogger())

	for _, body := range []string{
		`{"price":"12.50"}`,
		`{"name":"Beans"}`,
		`{"name":"Beans","price":"not-a-number"}`,
	} {
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/products", strings.NewReader(body)))
		if resp.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for %s, got %d", body, resp.Code)
		}
	}
}

func TestProductFetchMapsNotFound(t *testing.T) {
	svc := &stubCatalogService{err: pkgerrors.New(pkgerrors.CodeNotFound, "product not found")}
	r := chi.NewRouter()
	r.Get("/products/{productId}", ProductFetch(svc, discardLogger()))

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/products/"+uuid.NewString(), nil))
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}

	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/products/garbage", nil))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad id, got %d", resp.Code)
	}
}

func TestProductDeletePassesID(t *testing.T) {
	svc := &stubCatalogService{}
	productID := uuid.New()
	r := chi.NewRouter()
	r.Delete("/products/{productId}", ProductDelete(svc, discardLogger()))

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodDelete, "/products/"+productID.String(), nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if svc.deleted != productID {
		t.Fatalf("expected delete of %s, got %s", productID, svc.deleted)
	}
}
