package record

import (
	"context"
	"errors"
	"sync"
	"time"
)

const DefaultDebounceDelay = 300 * time.Millisecond

// ErrSuperseded is returned by a Debouncer call that a newer call replaced.
var ErrSuperseded = errors.New("superseded by a newer call")

// Debouncer runs only the last of a burst of calls, once input has paused for its delay.
type Debouncer struct {
	delay time.Duration

	mu      sync.Mutex
	seq     uint64
	pending context.CancelCauseFunc
}

func NewDebouncer(delay time.Duration) *Debouncer {
	if delay <= 0 {
		delay = DefaultDebounceDelay
	}
	return &Debouncer{delay: delay}
}

// Do waits for the delay and then runs fn, unless another Do starts first.
// The replaced call returns ErrSuperseded, even when its fn already ran to completion;
// a running fn sees its context cancelled.
func (d *Debouncer) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	d.mu.Lock()
	if d.pending != nil {
		d.pending(ErrSuperseded)
	}
	d.seq++
	seq := d.seq
	d.pending = cancel
	d.mu.Unlock()

	defer func() {
		d.mu.Lock()
		if d.seq == seq {
			d.pending = nil
		}
		d.mu.Unlock()
	}()

	timer := time.NewTimer(d.delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return context.Cause(ctx)
	case <-timer.C:
	}

	err := fn(ctx)
	if errors.Is(context.Cause(ctx), ErrSuperseded) {
		return ErrSuperseded
	}
	return err
}
