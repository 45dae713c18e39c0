// Package loop serializes kiosk work onto a single goroutine.
package loop

import (
	"context"
	"log/slog"
	"sync"
)

// Dispatcher accepts work to be run on the event loop, in posting order
type Dispatcher interface {
	Post(fn func())
}

// Loop runs posted functions one at a time on the goroutine calling Run
type Loop struct {
	events  chan func()
	stopped chan struct{}
	once    sync.Once
	logger  *slog.Logger
}

// New creates a Loop with room for buffer pending events before Post blocks
func New(buffer int, logger *slog.Logger) *Loop {
	return &Loop{
		events:  make(chan func(), buffer),
		stopped: make(chan struct{}),
		logger:  logger.With(slog.String("component", "loop")),
	}
}

// Post enqueues fn. It blocks while the buffer is full; once Run has returned fn is dropped.
func (l *Loop) Post(fn func()) {
	select {
	case l.events <- fn:
	case <-l.stopped:
	}
}

// Run processes events until ctx is done
func (l *Loop) Run(ctx context.Context) error {
	l.logger.Debug("event loop started")
	defer l.once.Do(func() { close(l.stopped) })
	for {
		select {
		case fn := <-l.events:
			fn()
		case <-ctx.Done():
			l.logger.Debug("event loop stopped")
			return nil
		}
	}
}

// Manual is a Dispatcher that queues events until Drain is called.
// It gives tests full control over when callbacks run.
type Manual struct {
	mu     sync.Mutex
	queued []func()
}

// Ensure both implement Dispatcher
var (
	_ Dispatcher = (*Loop)(nil)
	_ Dispatcher = (*Manual)(nil)
)

// NewManual creates an empty Manual dispatcher
func NewManual() *Manual {
	return &Manual{}
}

// Post queues fn
func (m *Manual) Post(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queued = append(m.queued, fn)
}

// Drain runs queued events, including any posted while draining, and returns how many ran
func (m *Manual) Drain() int {
	n := 0
	for {
		m.mu.Lock()
		if len(m.queued) == 0 {
			m.mu.Unlock()
			return n
		}
		fn := m.queued[0]
		m.queued = m.queued[1:]
		m.mu.Unlock()

		fn()
		n++
	}
}

// Pending returns the number of queued events
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queued)
}
