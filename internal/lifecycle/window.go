package lifecycle

import (
	"context"
	"fmt"
	"time"
)

// DefaultCancellationWindow is how long after creation a customer may self-cancel.
const DefaultCancellationWindow = 5 * time.Minute

// DefaultCountdownTick is the refresh interval of a countdown stream.
const DefaultCountdownTick = time.Second

// Policy is the cancellation window policy. The window is half-open:
// an order is cancelable while elapsed < Window, so at exactly Window
// elapsed it is closed.
type Policy struct {
	Window time.Duration
}

// NewPolicy returns a policy for window, falling back to the default for
// non-positive values.
func NewPolicy(window time.Duration) Policy {
	if window <= 0 {
		window = DefaultCancellationWindow
	}
	return Policy{Window: window}
}

// Elapsed returns now - createdAt, treating a createdAt in the future as zero.
func (p Policy) Elapsed(createdAt, now time.Time) time.Duration {
	elapsed := now.Sub(createdAt)
	if elapsed < 0 {
		return 0
	}
	return elapsed
}

// Deadline returns the instant at which the window closes.
func (p Policy) Deadline(createdAt time.Time) time.Time {
	return createdAt.Add(p.Window)
}

// IsCancelable reports whether a customer may still cancel.
func (p Policy) IsCancelable(createdAt, now time.Time) bool {
	return p.Elapsed(createdAt, now) < p.Window
}

// Remaining returns the time left in the window and whether it is still open.
func (p Policy) Remaining(createdAt, now time.Time) (time.Duration, bool) {
	remaining := p.Window - p.Elapsed(createdAt, now)
	if remaining <= 0 {
		return 0, false
	}
	return remaining, true
}

// FormatRemaining renders d as minutes:seconds with seconds floored.
func FormatRemaining(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	minutes := int(d / time.Minute)
	seconds := int((d % time.Minute) / time.Second)
	return fmt.Sprintf("%d:%02d", minutes, seconds)
}

// Countdown streams the remaining window every tick, sampling clock each
// time. Values never increase. The final value is 0, after which the
// channel is closed; it is also closed when ctx is done.
func (p Policy) Countdown(ctx context.Context, createdAt time.Time, clock Clock, tick time.Duration) <-chan time.Duration {
	if tick <= 0 {
		tick = DefaultCountdownTick
	}

	out := make(chan time.Duration, 1)

	go func() {
		defer close(out)

		ticker := time.NewTicker(tick)
		defer ticker.Stop()

		last := p.Window
		for {
			remaining, open := p.Remaining(createdAt, clock())
			if remaining > last {
				remaining = last
			}
			last = remaining

			select {
			case out <- remaining:
			case <-ctx.Done():
				return
			}

			if !open {
				return
			}

			select {
			case <-ticker.C:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out
}
