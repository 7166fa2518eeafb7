package cart

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/velamart/cart-service/pkg/logger"
	"github.com/velamart/cart-service/pkg/metrics"
)

const (
	defaultAbandonAfter = 3 * time.Hour
	defaultPurgeAfter   = 7 * 24 * time.Hour
)

// Result reports how many carts each sweep phase moved.
type Result struct {
	Marked int64
	Purged int64
}

// SweepStore is the persistence surface the sweeper depends on.
type SweepStore interface {
	BulkMarkAbandoned(ctx context.Context, cutoff time.Time) (int64, error)
	PurgeAbandonedBefore(ctx context.Context, tx *gorm.DB, cutoff time.Time) (int64, error)
}

// SweeperParams carries the sweeper dependencies.
type SweeperParams struct {
	Store        SweepStore
	Tx           TxRunner
	Logger       *logger.Logger
	Metrics      *metrics.SweepMetrics
	AbandonAfter time.Duration
	PurgeAfter   time.Duration
}

// Sweeper walks carts through the two-phase lifecycle: active carts idle past
// AbandonAfter are marked abandoned, abandoned carts idle past PurgeAfter are
// deleted. Both windows are measured from the same last_interaction_at, so a
// purged cart has necessarily been abandoned first.
type Sweeper struct {
	store        SweepStore
	tx           TxRunner
	logg         *logger.Logger
	metrics      *metrics.SweepMetrics
	abandonAfter time.Duration
	purgeAfter   time.Duration
	now          func() time.Time
}

// NewSweeper wires a sweeper; zero durations fall back to the defaults.
func NewSweeper(params SweeperParams) (*Sweeper, error) {
	if params.Store == nil {
		return nil, fmt.Errorf("sweep store required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.AbandonAfter < 0 || params.PurgeAfter < 0 {
		return nil, fmt.Errorf("sweep windows must not be negative")
	}
	if params.AbandonAfter == 0 {
		params.AbandonAfter = defaultAbandonAfter
	}
	if params.PurgeAfter == 0 {
		params.PurgeAfter = defaultPurgeAfter
	}
	return &Sweeper{
		store:        params.Store,
		tx:           params.Tx,
		logg:         params.Logger,
		metrics:      params.Metrics,
		abandonAfter: params.AbandonAfter,
		purgeAfter:   params.PurgeAfter,
		now:          time.Now,
	}, nil
}

// Run executes both phases. A mark failure does not skip the purge phase; the
// phase errors are combined. Matching nothing is not an error, and re-running
// immediately finds nothing left to move.
func (s *Sweeper) Run(ctx context.Context) (Result, error) {
	now := s.now().UTC()
	var res Result
	var errs error

	marked, err := s.store.BulkMarkAbandoned(ctx, now.Add(-s.abandonAfter))
	if err != nil {
		errs = multierr.Append(errs, fmt.Errorf("marking abandoned carts: %w", err))
	} else {
		res.Marked = marked
		s.metrics.AddMarked(marked)
	}

	var purged int64
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		var txErr error
		purged, txErr = s.store.PurgeAbandonedBefore(ctx, tx, now.Add(-s.purgeAfter))
		return txErr
	})
	if err != nil {
		errs = multierr.Append(errs, fmt.Errorf("purging abandoned carts: %w", err))
	} else {
		res.Purged = purged
		s.metrics.AddPurged(purged)
	}

	if errs != nil {
		s.logg.Error(ctx, "cart sweep finished with errors", errs)
		return res, errs
	}

	if res.Marked > 0 || res.Purged > 0 {
		fields := map[string]any{"marked": res.Marked, "purged": res.Purged}
		s.logg.Info(s.logg.WithFields(ctx, fields), "cart sweep finished")
	}
	return res, nil
}
