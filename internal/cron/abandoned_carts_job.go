package cron

import (
	"context"
	"fmt"

	"github.com/velamart/cart-service/internal/cart"
	"github.com/velamart/cart-service/pkg/logger"
)

// AbandonedCartsJobParams configure the cart sweep job.
type AbandonedCartsJobParams struct {
	Logger  *logger.Logger
	Sweeper cartSweeper
}

type cartSweeper interface {
	Run(ctx context.Context) (cart.Result, error)
}

// NewAbandonedCartsJob wraps the cart sweeper as a cron job.
func NewAbandonedCartsJob(params AbandonedCartsJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Sweeper == nil {
		return nil, fmt.Errorf("sweeper required")
	}
	return &abandonedCartsJob{
		logg:    params.Logger,
		sweeper: params.Sweeper,
	}, nil
}

type abandonedCartsJob struct {
	logg    *logger.Logger
	sweeper cartSweeper
}

func (j *abandonedCartsJob) Name() string { return "abandoned-carts" }

func (j *abandonedCartsJob) Run(ctx context.Context) error {
	result, err := j.sweeper.Run(ctx)
	if err != nil {
		return fmt.Errorf("cart sweep: %w", err)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"marked": result.Marked,
		"purged": result.Purged,
	})
	j.logg.Info(logCtx, "cart sweep cycle complete")
	return nil
}
