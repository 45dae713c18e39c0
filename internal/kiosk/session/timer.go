package session

import (
	"time"

	"github.com/mcoot/qrkiosk/internal/dependencies/clock"
	"github.com/mcoot/qrkiosk/internal/kiosk/loop"
)

// DefaultCompletionDelay is how long a successful registration stays on screen
const DefaultCompletionDelay = 5 * time.Second

// CompletionTimer schedules the reset that follows a successful registration.
// Start and Cancel must run on the event loop; the callback is delivered there too.
type CompletionTimer struct {
	clock    clock.Clock
	dispatch loop.Dispatcher
	delay    time.Duration

	timer      clock.Timer
	generation uint64
}

// NewCompletionTimer creates a stopped timer
func NewCompletionTimer(clk clock.Clock, dispatch loop.Dispatcher, delay time.Duration) *CompletionTimer {
	if delay <= 0 {
		delay = DefaultCompletionDelay
	}
	return &CompletionTimer{clock: clk, dispatch: dispatch, delay: delay}
}

// Start schedules fire after the completion delay, replacing any pending schedule
func (t *CompletionTimer) Start(fire func()) {
	t.Cancel()
	gen := t.generation
	t.timer = t.clock.AfterFunc(t.delay, func() {
		t.dispatch.Post(func() {
			// A Cancel or Start may have raced the underlying timer
			if gen != t.generation || t.timer == nil {
				return
			}
			t.timer = nil
			fire()
		})
	})
}

// Cancel discards the pending schedule, if any
func (t *CompletionTimer) Cancel() {
	t.generation++
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}

// Active reports whether a reset is scheduled
func (t *CompletionTimer) Active() bool {
	return t.timer != nil
}

// Delay returns the configured delay
func (t *CompletionTimer) Delay() time.Duration {
	return t.delay
}
