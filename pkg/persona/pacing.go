package persona

import (
	"context"
	"time"
)

// Pacer decides how long the second persona waits after the first reply.
type Pacer interface {
	Wait(ctx context.Context) error
}

// FixedInterval pauses for a constant duration.
type FixedInterval time.Duration

func (d FixedInterval) Wait(ctx context.Context) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(time.Duration(d))
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// NoPacing never waits.
var NoPacing Pacer = FixedInterval(0)
