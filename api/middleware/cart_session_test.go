package middleware

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/velamart/cart-service/internal/cart"
	"github.com/velamart/cart-service/pkg/db/models"
	"github.com/velamart/cart-service/pkg/logger"
)

const testCookieName = "cart_session"

type fakeTokens struct{}

func (fakeTokens) Issue(cartID uuid.UUID) (string, error) {
	return "tok:" + cartID.String(), nil
}

func (fakeTokens) Verify(raw string) (uuid.UUID, error) {
	value, ok := strings.CutPrefix(raw, "tok:")
	if !ok {
		return uuid.Nil, errors.New("malformed session token")
	}
	return uuid.Parse(value)
}

func (fakeTokens) TTL() time.Duration { return time.Hour }

type fakeAllocator struct {
	created int
	lastID  uuid.UUID
	store   *fakeChecker
}

func (f *fakeAllocator) CreateCart(context.Context) (*cart.Snapshot, error) {
	f.created++
	f.lastID = uuid.New()
	if f.store != nil {
		f.store.ids[f.lastID] = true
	}
	return &cart.Snapshot{ID: f.lastID}, nil
}

type fakeChecker struct {
	ids map[uuid.UUID]bool
}

func (f *fakeChecker) Find(_ context.Context, id uuid.UUID) (*models.Cart, error) {
	if !f.ids[id] {
		return nil, gorm.ErrRecordNotFound
	}
	return &models.Cart{ID: id}, nil
}

func newSessionHarness() (func(http.Handler) http.Handler, *fakeAllocator, *fakeChecker) {
	checker := &fakeChecker{ids: map[uuid.UUID]bool{}}
	allocator := &fakeAllocator{store: checker}
	mw := CartSession(CartSessionParams{
		Logger:     logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
		Tokens:     fakeTokens{},
		Carts:      allocator,
		Store:      checker,
		CookieName: testCookieName,
	})
	return mw, allocator, checker
}

func captureCartID(t *testing.T) (http.Handler, *uuid.UUID) {
	t.Helper()
	var captured uuid.UUID
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cartID, ok := CartIDFromContext(r.Context())
		if !ok {
			t.Fatalf("expected cart id on context")
		}
		captured = cartID
		w.WriteHeader(http.StatusOK)
	})
	return handler, &captured
}

func TestCartSessionMintsCartWithoutCookie(t *testing.T) {
	mw, allocator, _ := newSessionHarness()
	handler, captured := captureCartID(t)

	resp := httptest.NewRecorder()
	mw(handler).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/cart", nil))

	if allocator.created != 1 {
		t.Fatalf("expected one cart created, got %d", allocator.created)
	}
	if *captured != allocator.lastID {
		t.Fatalf("context cart id does not match created cart")
	}

	cookies := resp.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != testCookieName {
		t.Fatalf("expected session cookie to be set, got %v", cookies)
	}
	if !cookies[0].HttpOnly {
		t.Fatalf("session cookie must be http-only")
	}
}

func TestCartSessionReusesValidCookie(t *testing.T) {
	mw, allocator, checker := newSessionHarness()
	existing := uuid.New()
	checker.ids[existing] = true

	handler, captured := captureCartID(t)
	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	req.AddCookie(&http.Cookie{Name: testCookieName, Value: "tok:" + existing.String()})
	resp := httptest.NewRecorder()
	mw(handler).ServeHTTP(resp, req)

	if allocator.created != 0 {
		t.Fatalf("expected no cart created for valid session")
	}
	if *captured != existing {
		t.Fatalf("expected existing cart id, got %s", captured)
	}
	if len(resp.Result().Cookies()) != 0 {
		t.Fatalf("valid sessions should not re-set the cookie")
	}
}

func TestCartSessionReplacesPurgedCart(t *testing.T) {
	mw, allocator, _ := newSessionHarness()
	purged := uuid.New()

	handler, captured := captureCartID(t)
	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	req.AddCookie(&http.Cookie{Name: testCookieName, Value: "tok:" + purged.String()})
	resp := httptest.NewRecorder()
	mw(handler).ServeHTTP(resp, req)

	if allocator.created != 1 {
		t.Fatalf("expected fresh cart when session points at a purged cart")
	}
	if *captured == purged {
		t.Fatalf("must not resolve to the purged cart")
	}
	if len(resp.Result().Cookies()) != 1 {
		t.Fatalf("expected replacement cookie")
	}
}

func TestCartSessionRejectsGarbageToken(t *testing.T) {
	mw, allocator, _ := newSessionHarness()

	handler, _ := captureCartID(t)
	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	req.AddCookie(&http.Cookie{Name: testCookieName, Value: "not-a-token"})
	mw(handler).ServeHTTP(httptest.NewRecorder(), req)

	if allocator.created != 1 {
		t.Fatalf("expected fresh cart for a garbage token")
	}
}
