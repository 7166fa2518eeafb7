package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/velamart/cart-service/api/responses"
	"github.com/velamart/cart-service/internal/cart"
	"github.com/velamart/cart-service/pkg/db/models"
	pkgerrors "github.com/velamart/cart-service/pkg/errors"
	"github.com/velamart/cart-service/pkg/logger"
)

// SessionTokens signs and verifies the cart session cookie value.
type SessionTokens interface {
	Issue(cartID uuid.UUID) (string, error)
	Verify(raw string) (uuid.UUID, error)
	TTL() time.Duration
}

// CartAllocator creates a cart for visitors without a usable session.
type CartAllocator interface {
	CreateCart(ctx context.Context) (*cart.Snapshot, error)
}

// CartChecker confirms the cart referenced by a session still exists. A valid
// token can outlive its cart: the sweep purges abandoned carts but cannot
// expire cookies.
type CartChecker interface {
	Find(ctx context.Context, id uuid.UUID) (*models.Cart, error)
}

// CartSessionParams configure the session middleware.
type CartSessionParams struct {
	Logger     *logger.Logger
	Tokens     SessionTokens
	Carts      CartAllocator
	Store      CartChecker
	CookieName string
	Secure     bool
}

// CartSession resolves the visitor's cart from the session cookie, minting a
// fresh cart (and cookie) when the cookie is absent, invalid or points at a
// purged cart.
func CartSession(params CartSessionParams) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if cartID, ok := resolveExisting(ctx, params, r); ok {
				serveWithCart(w, r, next, params.Logger, cartID)
				return
			}

			snap, err := params.Carts.CreateCart(ctx)
			if err != nil {
				responses.WriteError(ctx, params.Logger, w, err)
				return
			}
			token, err := params.Tokens.Issue(snap.ID)
			if err != nil {
				responses.WriteError(ctx, params.Logger, w,
					pkgerrors.Wrap(pkgerrors.CodeInternal, err, "issuing cart session"))
				return
			}
			http.SetCookie(w, sessionCookie(params, token))
			serveWithCart(w, r, next, params.Logger, snap.ID)
		})
	}
}

func resolveExisting(ctx context.Context, params CartSessionParams, r *http.Request) (uuid.UUID, bool) {
	cookie, err := r.Cookie(params.CookieName)
	if err != nil || cookie.Value == "" {
		return uuid.Nil, false
	}
	cartID, err := params.Tokens.Verify(cookie.Value)
	if err != nil {
		return uuid.Nil, false
	}
	if _, err := params.Store.Find(ctx, cartID); err != nil {
		return uuid.Nil, false
	}
	return cartID, true
}

func serveWithCart(w http.ResponseWriter, r *http.Request, next http.Handler, logg *logger.Logger, cartID uuid.UUID) {
	ctx := WithCartID(r.Context(), cartID)
	if logg != nil {
		ctx = logg.WithCartID(ctx, cartID.String())
	}
	next.ServeHTTP(w, r.WithContext(ctx))
}

func sessionCookie(params CartSessionParams, token string) *http.Cookie {
	return &http.Cookie{
		Name:     params.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(params.Tokens.TTL().Seconds()),
		HttpOnly: true,
		Secure:   params.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}
