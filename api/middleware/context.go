package middleware

import (
	"context"

	"github.com/google/uuid"
)

type cartIDKey struct{}

// WithCartID stores the resolved cart ID on the request context.
func WithCartID(ctx context.Context, cartID uuid.UUID) context.Context {
	return context.WithValue(ctx, cartIDKey{}, cartID)
}

// CartIDFromContext returns the cart ID resolved by the session middleware.
func CartIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	cartID, ok := ctx.Value(cartIDKey{}).(uuid.UUID)
	return cartID, ok
}
