package session

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/velamart/cart-service/pkg/config"
)

var ErrInvalidToken = errors.New("invalid cart session token")

// Manager issues and verifies the signed tokens that bind an HTTP caller to a
// cart. The token only carries the cart id; cart state itself always lives in
// the database.
type Manager struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

type cartClaims struct {
	CartID string `json:"cart_id"`
	jwt.RegisteredClaims
}

// NewManager builds a session manager from the provided configuration.
func NewManager(cfg config.SessionConfig) (*Manager, error) {
	if strings.TrimSpace(cfg.Secret) == "" {
		return nil, fmt.Errorf("session secret is required")
	}
	if cfg.TTL <= 0 {
		return nil, fmt.Errorf("session ttl must be positive")
	}
	return &Manager{
		secret: []byte(cfg.Secret),
		issuer: cfg.Issuer,
		ttl:    cfg.TTL,
		now:    time.Now,
	}, nil
}

// Issue mints a signed token for the given cart id.
func (m *Manager) Issue(cartID uuid.UUID) (string, error) {
	if cartID == uuid.Nil {
		return "", fmt.Errorf("cart id is required")
	}
	now := m.now().UTC()
	claims := cartClaims{
		CartID: cartID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("signing session token: %w", err)
	}
	return signed, nil
}

// Verify parses a token and returns the cart id it carries.
func (m *Manager) Verify(raw string) (uuid.UUID, error) {
	if strings.TrimSpace(raw) == "" {
		return uuid.Nil, ErrInvalidToken
	}

	var claims cartClaims
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(func() time.Time { return m.now() }),
	)
	token, err := parser.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return uuid.Nil, ErrInvalidToken
	}
	if m.issuer != "" && claims.Issuer != m.issuer {
		return uuid.Nil, ErrInvalidToken
	}

	cartID, err := uuid.Parse(claims.CartID)
	if err != nil || cartID == uuid.Nil {
		return uuid.Nil, ErrInvalidToken
	}
	return cartID, nil
}

// TTL exposes the configured token lifetime for cookie expiry.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}
