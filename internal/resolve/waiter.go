package resolve

import (
	"context"
	"time"
)

// Waiter abstracts the fixed verification window so tests don't sit through
// real time. The wait ends early on context cancellation.
type Waiter interface {
	Wait(ctx context.Context, d time.Duration)
}

type sleepWaiter struct{}

func (sleepWaiter) Wait(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}
