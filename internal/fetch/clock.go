package fetch

import (
	"context"
	"time"

	"github.com/fortuna/hoops/internal/retry"
)

// Clock is the time source used for request pacing and retry backoff.
type Clock interface {
	Now() time.Time
	Sleep(ctx context.Context, d time.Duration) error
}

type realClock struct{}

// RealClock returns the wall clock.
func RealClock() Clock { return realClock{} }

func (realClock) Now() time.Time { return time.Now() }

func (realClock) Sleep(ctx context.Context, d time.Duration) error {
	return retry.TimerSleep(ctx, d)
}
