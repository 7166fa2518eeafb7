package controllers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/velamart/cart-service/internal/cart"
)

type stubSweeper struct {
	result cart.Result
	err    error
}

func (s *stubSweeper) Run(context.Context) (cart.Result, error) {
	return s.result, s.err
}

func TestAdminSweepReportsCounts(t *testing.T) {
	sweeper := &stubSweeper{result: cart.Result{Marked: 5, Purged: 2}}

	resp := httptest.NewRecorder()
	AdminSweep(sweeper, discardLogger()).
		ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/sweep", nil))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	data := decodeData(t, resp)
	if data["marked"] != float64(5) || data["purged"] != float64(2) {
		t.Fatalf("unexpected payload %v", data)
	}
}

func TestAdminSweepSurfacesErrors(t *testing.T) {
	sweeper := &stubSweeper{err: errors.New("boom")}

	resp := httptest.NewRecorder()
	AdminSweep(sweeper, discardLogger()).
		ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/sweep", nil))

	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.Code)
	}
}
