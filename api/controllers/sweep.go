package controllers

import (
	"context"
	"net/http"

	"github.com/velamart/cart-service/api/responses"
	"github.com/velamart/cart-service/internal/cart"
	pkgerrors "github.com/velamart/cart-service/pkg/errors"
	"github.com/velamart/cart-service/pkg/logger"
)

// SweepRunner triggers one pass of the cart lifecycle sweep.
type SweepRunner interface {
	Run(ctx context.Context) (cart.Result, error)
}

// AdminSweep runs the abandonment sweep on demand, outside the cron cadence.
func AdminSweep(sweeper SweepRunner, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if sweeper == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "sweeper unavailable"))
			return
		}

		result, err := sweeper.Run(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "cart sweep failed"))
			return
		}
		responses.WriteSuccess(w, map[string]int64{
			"marked": result.Marked,
			"purged": result.Purged,
		})
	}
}
