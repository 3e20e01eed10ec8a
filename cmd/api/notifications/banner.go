package notifications

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

const DefaultTTL = 3 * time.Second

// Banner keeps the notices currently on display and dismisses each one
// after its time to live.
type Banner struct {
	ttl   time.Duration
	sinks []Notifier

	mu      sync.Mutex
	notices []Notice
	timers  map[uuid.UUID]*time.Timer
	closed  bool
}

func NewBanner(ttl time.Duration, sinks ...Notifier) *Banner {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Banner{
		ttl:    ttl,
		sinks:  sinks,
		timers: map[uuid.UUID]*time.Timer{},
	}
}

/* Shows the notice and forwards it to every sink. Sink errors are joined. */
func (b *Banner) Notify(ctx context.Context, n Notice) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}

	b.mu.Lock()
	if !b.closed {
		b.notices = append(b.notices, n)
		id := n.ID
		b.timers[id] = time.AfterFunc(b.ttl, func() { b.Dismiss(id) })
	}
	b.mu.Unlock()

	var errs []error
	for _, sink := range b.sinks {
		if err := sink.Notify(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Dismiss reports whether the notice was still on display.
func (b *Banner) Dismiss(id uuid.UUID) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if t, ok := b.timers[id]; ok {
		t.Stop()
		delete(b.timers, id)
	}
	for i, n := range b.notices {
		if n.ID == id {
			b.notices = append(b.notices[:i], b.notices[i+1:]...)
			return true
		}
	}
	return false
}

/* Returns a copy of the notices on display, oldest first. */
func (b *Banner) Current() []Notice {
	b.mu.Lock()
	defer b.mu.Unlock()

	current := make([]Notice, len(b.notices))
	copy(current, b.notices)
	return current
}

// Close drops every notice and stops the pending dismissals.
func (b *Banner) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for id, t := range b.timers {
		t.Stop()
		delete(b.timers, id)
	}
	b.notices = nil
	b.closed = true
}
