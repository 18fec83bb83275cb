package limiter

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Pacer throttles a sequential traversal. Wait is called once after every
// unit of work and blocks until the next one may start.
type Pacer interface {
	Wait(ctx context.Context) error
}

type PacerFunc func(ctx context.Context) error

func (f PacerFunc) Wait(ctx context.Context) error {
	return f(ctx)
}

// None never blocks.
var None Pacer = PacerFunc(func(ctx context.Context) error {
	return ctx.Err()
})

type delayPacer struct {
	delay time.Duration
}

// Delay pauses for a fixed duration on every call.
func Delay(d time.Duration) Pacer {
	if d <= 0 {
		return None
	}

	return &delayPacer{
		delay: d,
	}
}

func (p *delayPacer) Wait(ctx context.Context) error {
	timer := time.NewTimer(p.delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

type bucketPacer struct {
	limiter *rate.Limiter
}

// Bucket paces with a token bucket: the first burst calls pass immediately,
// the rest are spread at the limiter's rate.
func Bucket(l *rate.Limiter) Pacer {
	if l == nil {
		return None
	}

	return &bucketPacer{
		limiter: l,
	}
}

func (p *bucketPacer) Wait(ctx context.Context) error {
	return p.limiter.Wait(ctx)
}
