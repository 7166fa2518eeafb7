package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/velamart/cart-service/api/middleware"
	"github.com/velamart/cart-service/api/responses"
	"github.com/velamart/cart-service/api/validators"
	"github.com/velamart/cart-service/internal/cart"
	"github.com/velamart/cart-service/internal/catalog"
	"github.com/velamart/cart-service/pkg/config"
	pkgerrors "github.com/velamart/cart-service/pkg/errors"
	"github.com/velamart/cart-service/pkg/logger"
)

// CartFetch returns the session cart with live-priced line items.
func CartFetch(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cartID, ok := middleware.CartIDFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart context missing"))
			return
		}

		snap, err := svc.GetCart(r.Context(), cartID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toCartResponse(snap))
	}
}

// CartCreate explicitly starts a fresh cart and binds it to a new session
// cookie, replacing whatever session the caller had.
func CartCreate(svc cart.Service, tokens middleware.SessionTokens, sessionCfg config.SessionConfig, secure bool, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap, err := svc.CreateCart(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		token, err := tokens.Issue(snap.ID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.Wrap(pkgerrors.CodeInternal, err, "issuing cart session"))
			return
		}
		http.SetCookie(w, &http.Cookie{
			Name:     sessionCfg.CookieName,
			Value:    token,
			Path:     "/",
			MaxAge:   int(tokens.TTL().Seconds()),
			HttpOnly: true,
			Secure:   secure,
			SameSite: http.SameSiteLaxMode,
		})
		responses.WriteSuccessStatus(w, http.StatusCreated, toCartResponse(snap))
	}
}

// CartAddItem merges a quantity of one product into the session cart.
func CartAddItem(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cartID, ok := middleware.CartIDFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart context missing"))
			return
		}

		var payload addItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		productID, err := uuid.Parse(payload.ProductID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id"))
			return
		}

		snap, err := svc.AddItem(r.Context(), cartID, productID, payload.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toCartResponse(snap))
	}
}

// CartRemoveItem drops a product's whole line from the session cart.
func CartRemoveItem(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cartID, ok := middleware.CartIDFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart context missing"))
			return
		}

		productID, err := uuid.Parse(chi.URLParam(r, "productId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id"))
			return
		}

		snap, err := svc.RemoveItem(r.Context(), cartID, productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toCartResponse(snap))
	}
}

type addItemRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
}

type cartItemResponse struct {
	ProductID      string `json:"product_id"`
	Name           string `json:"name"`
	UnitPrice      string `json:"unit_price"`
	UnitPriceCents int64  `json:"unit_price_cents"`
	Quantity       int    `json:"quantity"`
	LineTotalCents int64  `json:"line_total_cents"`
}

type cartResponse struct {
	ID              string             `json:"id"`
	Status          string             `json:"status"`
	TotalPrice      string             `json:"total_price"`
	TotalPriceCents int64              `json:"total_price_cents"`
	Items           []cartItemResponse `json:"items"`
}

func toCartResponse(snap *cart.Snapshot) cartResponse {
	items := make([]cartItemResponse, 0, len(snap.Items))
	for _, item := range snap.Items {
		items = append(items, cartItemResponse{
			ProductID:      item.ProductID.String(),
			Name:           item.Name,
			UnitPrice:      catalog.PriceString(item.UnitPriceCents),
			UnitPriceCents: item.UnitPriceCents,
			Quantity:       item.Quantity,
			LineTotalCents: item.LineTotalCents,
		})
	}
	return cartResponse{
		ID:              snap.ID.String(),
		Status:          snap.Status.String(),
		TotalPrice:      catalog.PriceString(snap.TotalPriceCents),
		TotalPriceCents: snap.TotalPriceCents,
		Items:           items,
	}
}
