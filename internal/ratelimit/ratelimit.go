package ratelimit

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Limiter defines the admission gate acquired before every outbound send.
type Limiter interface {
	Wait(ctx context.Context) error
}

// DualLimiter gates sends behind two independent token buckets: a fast gate
// against the per-chat flood limit and a sustained gate against the per-minute
// aggregate limit. Both must admit a send before it proceeds. The two gates
// are deliberately kept separate even though their steady-state throughput is
// close; the remote endpoint enforces them independently.
type DualLimiter struct {
	fast      *rate.Limiter
	sustained *rate.Limiter
}

// NewDualLimiter creates a limiter admitting at most 1 send per fastEvery and
// at most sustained sends per window.
// Example: NewDualLimiter(3*time.Second, 20, time.Minute) -> 1 send every 3s,
// 20 sends per minute.
func NewDualLimiter(fastEvery time.Duration, sustained int, window time.Duration) *DualLimiter {
	return &DualLimiter{
		fast:      rate.NewLimiter(rate.Every(fastEvery), 1),
		sustained: rate.NewLimiter(rate.Every(window/time.Duration(sustained)), sustained),
	}
}

var _ Limiter = (*DualLimiter)(nil)

// Wait blocks until both gates admit the caller, in admission order. It only
// fails when ctx is cancelled or the deadline cannot accommodate the wait.
func (l *DualLimiter) Wait(ctx context.Context) error {
	if err := l.fast.Wait(ctx); err != nil {
		return err
	}
	return l.sustained.Wait(ctx)
}
