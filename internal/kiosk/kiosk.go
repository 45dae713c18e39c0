// Package kiosk runs a registration terminal: scanner keystrokes in, session display out.
package kiosk

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mcoot/qrkiosk/internal/dependencies/clock"
	"github.com/mcoot/qrkiosk/internal/kiosk/gateway"
	"github.com/mcoot/qrkiosk/internal/kiosk/input"
	"github.com/mcoot/qrkiosk/internal/kiosk/loop"
	"github.com/mcoot/qrkiosk/internal/kiosk/session"
)

// eventBuffer is how many events may queue before producers block
const eventBuffer = 64

// Config holds configuration for a kiosk terminal
type Config struct {
	ServerURL       string
	CompletionDelay time.Duration
	RefocusDelay    time.Duration
	RequestTimeout  time.Duration
	Format          string // FormatText or FormatJSON
	Raw             bool   // Output goes to a raw-mode terminal
}

// DefaultConfig returns the default kiosk configuration
func DefaultConfig() Config {
	gw := gateway.DefaultConfig()
	return Config{
		ServerURL:       gw.BaseURL,
		CompletionDelay: session.DefaultCompletionDelay,
		RefocusDelay:    input.DefaultRefocusDelay,
		RequestTimeout:  gw.Timeout,
		Format:          FormatText,
	}
}

// Deps are the kiosk's collaborators. Nil fields get production defaults.
type Deps struct {
	Out        io.Writer
	Logger     *slog.Logger
	Clock      clock.Clock
	HTTPClient *http.Client
	// Listeners observe every transition alongside the display
	Listeners []session.Listener
}

// Kiosk wires the session machine to a keystroke source and a display
type Kiosk struct {
	cfg  Config
	deps Deps
}

// New creates a Kiosk
func New(cfg Config, deps Deps) *Kiosk {
	if deps.Out == nil {
		deps.Out = io.Discard
	}
	if deps.Logger == nil {
		deps.Logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if deps.Clock == nil {
		deps.Clock = clock.New()
	}
	if deps.HTTPClient == nil {
		deps.HTTPClient = &http.Client{}
	}
	return &Kiosk{cfg: cfg, deps: deps}
}

// Run serves one terminal until ctx is done, Ctrl-C is read, or in is exhausted.
// When in ends, Run first waits for any in-flight submission to resolve.
func (k *Kiosk) Run(ctx context.Context, in io.Reader) error {
	logger := k.deps.Logger.With(slog.String("component", "kiosk"))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	events := loop.New(eventBuffer, k.deps.Logger)
	inputs := input.NewManager(k.deps.Clock, events, input.Config{RefocusDelay: k.cfg.RefocusDelay}, k.deps.Logger)
	gw := gateway.New(gateway.Config{
		BaseURL: k.cfg.ServerURL,
		Timeout: k.cfg.RequestTimeout,
	}, k.deps.HTTPClient, k.deps.Logger)

	machine := session.New(session.Deps{
		Input:     inputs,
		Submitter: gw,
		Clock:     k.deps.Clock,
		Dispatch:  events,
		Logger:    k.deps.Logger,
	}, session.Config{CompletionDelay: k.cfg.CompletionDelay})

	machine.AddListener(NewDisplay(k.deps.Out, k.cfg.Format, k.cfg.Raw))
	for _, l := range k.deps.Listeners {
		machine.AddListener(l)
	}

	// Closed once input has ended and no submission is outstanding
	idle := newIdleWatch()
	machine.AddListener(idle)

	router := NewKeyRouter(machine, inputs, k.deps.Logger)

	keys := make(chan rune)
	readErr := make(chan error, 1)
	// The reader may block past shutdown, so it stays outside the group
	go func() { readErr <- readKeys(in, keys) }()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return events.Run(gctx)
	})

	events.Post(func() { machine.Start(gctx) })
	logger.Info("kiosk started", slog.String("server", k.cfg.ServerURL))

	g.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				return nil
			case r := <-keys:
				events.Post(func() { router.Key(r) })
			case err := <-readErr:
				if errors.Is(err, errInterrupted) {
					logger.Info("interrupted by operator")
					cancel()
					return nil
				}
				if !errors.Is(err, io.EOF) {
					logger.Error("reading keystrokes failed", slog.String("error", err.Error()))
					cancel()
					return err
				}
				logger.Info("input closed, waiting for outstanding submission")
				events.Post(func() { idle.arm(machine.State()) })
				select {
				case <-idle.done:
				case <-gctx.Done():
				}
				cancel()
				return nil
			}
		}
	})

	err := g.Wait()
	logger.Info("kiosk stopped")
	return err
}

// idleWatch closes done once armed and the machine is not submitting
type idleWatch struct {
	armed  bool
	closed bool
	done   chan struct{}
}

func newIdleWatch() *idleWatch {
	return &idleWatch{done: make(chan struct{})}
}

// arm starts watching. Called on the event loop.
func (w *idleWatch) arm(state session.State) {
	w.armed = true
	w.check(state)
}

// SessionChanged implements session.Listener
func (w *idleWatch) SessionChanged(t session.Transition) {
	if w.armed {
		w.check(t.To)
	}
}

func (w *idleWatch) check(state session.State) {
	if w.closed || state == session.StateSubmitting {
		return
	}
	w.closed = true
	close(w.done)
}
