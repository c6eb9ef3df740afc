package policy

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/searchforge/booksearch/obs"
)

// Deadline races a timer against whatever runs under its context. Whichever
// settles first wins: a firing timer cancels the context with
// ErrDeadlineExceeded, and Disarm stops the timer once the call has answered.
type Deadline struct {
	timeout time.Duration
	timer   *time.Timer
	cancel  context.CancelCauseFunc
	fired   atomic.Bool
}

// Arm derives a cancellable context from parent and starts the timer. The
// caller must call Release once the guarded work, including any body reads,
// is done.
func Arm(parent context.Context, timeout time.Duration) (context.Context, *Deadline, error) {
	if parent == nil {
		parent = context.Background()
	}
	if timeout <= 0 {
		return nil, nil, ErrInvalidTimeout
	}

	ctx, cancel := context.WithCancelCause(parent)
	d := &Deadline{
		timeout: timeout,
		cancel:  cancel,
	}
	d.timer = time.AfterFunc(timeout, func() {
		cancel(ErrDeadlineExceeded)
		d.fired.Store(true)
		obs.IncDeadlineHit()
	})
	return ctx, d, nil
}

// Disarm stops the timer. It reports false when the timer had already fired.
func (d *Deadline) Disarm() bool {
	if d == nil {
		return false
	}
	return d.timer.Stop()
}

// Fired reports whether the timer won the race.
func (d *Deadline) Fired() bool {
	if d == nil {
		return false
	}
	return d.fired.Load()
}

// Timeout returns the configured duration.
func (d *Deadline) Timeout() time.Duration {
	if d == nil {
		return 0
	}
	return d.timeout
}

// Release disarms the timer and cancels the derived context.
func (d *Deadline) Release() {
	if d == nil {
		return
	}
	d.timer.Stop()
	d.cancel(context.Canceled)
}
