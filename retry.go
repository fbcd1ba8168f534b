package s3kit

import (
	"context"
	"math/rand"
	"time"
)

const (
	defaultRetryMax = 3

	retryBaseDelay = 100 * time.Millisecond
	retryMaxDelay  = 2 * time.Second
)

// retryBackoff returns the exponential delay before the given retry, with up
// to half the delay in jitter so concurrent clients do not thunder in step.
func retryBackoff(attempt int) time.Duration {
	d := retryBaseDelay << attempt
	if d > retryMaxDelay || d <= 0 {
		d = retryMaxDelay
	}
	return d/2 + time.Duration(rand.Int63n(int64(d/2+1)))
}

// sleepWithContext waits out d unless the context ends first.
func sleepWithContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
