package engine

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/kutoven/wbreviews/internal/config"
)

// DelayStrategy picks how long to wait for a given range.
type DelayStrategy interface {
	Next(r config.DelayRange) time.Duration
}

// UniformDelay draws uniformly from [Min, Max], both inclusive.
type UniformDelay struct{}

func (UniformDelay) Next(r config.DelayRange) time.Duration {
	if r.Max <= r.Min {
		return r.Min
	}
	return r.Min + rand.N(r.Max-r.Min+1)
}

// NoDelay never waits. Used by tests and by callers that pace elsewhere.
type NoDelay struct{}

func (NoDelay) Next(config.DelayRange) time.Duration { return 0 }

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
