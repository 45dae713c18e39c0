// Package rooms provides the staff-side view of the rooms list.
package rooms

import (
	"context"
	"log/slog"
	"time"

	"github.com/mcoot/qrkiosk/internal/api/response"
	"github.com/mcoot/qrkiosk/internal/dependencies/clock"
)

// DefaultInterval is the refresh interval of the rooms table
const DefaultInterval = 10 * time.Second

// Fetcher loads the current rooms list
type Fetcher interface {
	ListRooms(ctx context.Context) ([]response.Room, error)
}

// Snapshot is one refresh of the rooms list
type Snapshot struct {
	Rooms []response.Room
	// FetchedAt is when Rooms was last loaded successfully. Zero if it never was.
	FetchedAt time.Time
	// Err is the error of this refresh. Rooms then holds the last known good list.
	Err error
}

// Stale reports whether the snapshot is a fallback to an earlier list
func (s Snapshot) Stale() bool {
	return s.Err != nil
}

// Poller is a pull-based rooms source that keeps the last known good list
type Poller struct {
	fetcher Fetcher
	clock   clock.Clock
	logger  *slog.Logger

	last      []response.Room
	fetchedAt time.Time
}

// NewPoller creates a Poller
func NewPoller(fetcher Fetcher, clk clock.Clock, logger *slog.Logger) *Poller {
	return &Poller{
		fetcher: fetcher,
		clock:   clk,
		logger:  logger.With(slog.String("component", "rooms_poller")),
	}
}

// Poll fetches once, falling back to the last known good list on failure
func (p *Poller) Poll(ctx context.Context) Snapshot {
	rooms, err := p.fetcher.ListRooms(ctx)
	if err != nil {
		p.logger.Warn("rooms refresh failed, showing last known list",
			slog.String("error", err.Error()),
			slog.Int("rooms", len(p.last)))
		return Snapshot{Rooms: p.last, FetchedAt: p.fetchedAt, Err: err}
	}

	if rooms == nil {
		rooms = []response.Room{}
	}
	p.last = rooms
	p.fetchedAt = p.clock.Now()
	return Snapshot{Rooms: rooms, FetchedAt: p.fetchedAt}
}

// Run polls immediately and then every interval until ctx is done.
// The next poll is scheduled once the previous one has been handled.
func (p *Poller) Run(ctx context.Context, interval time.Duration, fn func(Snapshot)) error {
	if interval <= 0 {
		interval = DefaultInterval
	}

	tick := make(chan struct{}, 1)
	schedule := func() clock.Timer {
		return p.clock.AfterFunc(interval, func() {
			select {
			case tick <- struct{}{}:
			default:
			}
		})
	}

	fn(p.Poll(ctx))
	timer := schedule()

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-tick:
			fn(p.Poll(ctx))
			timer = schedule()
		}
	}
}
