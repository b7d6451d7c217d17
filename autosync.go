package harvestsync

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/agentstation/harvestsync/pkg/errors"
	"github.com/agentstation/harvestsync/pkg/logging"
)

// Every runs Sync now and then on every tick of interval until ctx is done.
// A failed run is logged and the loop waits for the next tick.
func (c *client) Every(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return &errors.ValidationError{
			Field:   "interval",
			Value:   interval,
			Message: "sync interval must be positive",
		}
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if ctx.Err() != nil {
			logging.FromContext(ctx).Info().Msg("Periodic sync stopped")
			return nil
		}
		c.runOnce(ctx)

		select {
		case <-ticker.C:
		case <-ctx.Done():
		}
	}
}

func (c *client) runOnce(ctx context.Context) {
	_, err := c.Sync(ctx)
	if err == nil {
		return
	}
	// The loop exits on its own once the parent context is done
	if ctx.Err() != nil && (stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded)) {
		return
	}
	// Log other errors but continue
	logging.FromContext(ctx).Warn().Err(err).Bool("retryable", errors.IsRetryable(err)).Msg("Periodic sync run failed, retrying on next tick")
}
