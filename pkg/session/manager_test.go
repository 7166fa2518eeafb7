package session

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/velamart/cart-service/pkg/config"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	mgr, err := NewManager(config.SessionConfig{
		Secret: "unit-test-secret",
		Issuer: "cart-service",
		TTL:    time.Hour,
	})
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	return mgr
}

func TestIssueAndVerifyRoundTrip(t *testing.T) {
	mgr := newTestManager(t)
	cartID := uuid.New()

	token, err := mgr.Issue(cartID)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	got, err := mgr.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if got != cartID {
		t.Fatalf("expected %s, got %s", cartID, got)
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	mgr := newTestManager(t)

	if _, err := mgr.Verify(""); err == nil {
		t.Fatal("expected error for empty token")
	}
	if _, err := mgr.Verify("not-a-jwt"); err == nil {
		t.Fatal("expected error for malformed token")
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	mgr := newTestManager(t)
	other, err := NewManager(config.SessionConfig{Secret: "different", Issuer: "cart-service", TTL: time.Hour})
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	token, err := other.Issue(uuid.New())
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := mgr.Verify(token); err == nil {
		t.Fatal("expected verification failure across secrets")
	}
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	mgr := newTestManager(t)
	token, err := mgr.Issue(uuid.New())
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	mgr.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	if _, err := mgr.Verify(token); err == nil {
		t.Fatal("expected expired token to fail")
	}
}

func TestNewManagerValidatesConfig(t *testing.T) {
	if _, err := NewManager(config.SessionConfig{TTL: time.Hour}); err == nil {
		t.Fatal("expected error without secret")
	}
	if _, err := NewManager(config.SessionConfig{Secret: "x"}); err == nil {
		t.Fatal("expected error without ttl")
	}
}
