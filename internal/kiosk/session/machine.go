// Package session implements the kiosk's scan, submit, confirm and reset cycle.
package session

import (
	"context"
	"log/slog"
	"time"

	"github.com/mcoot/qrkiosk/internal/dependencies/clock"
	"github.com/mcoot/qrkiosk/internal/kiosk/gateway"
	"github.com/mcoot/qrkiosk/internal/kiosk/input"
	"github.com/mcoot/qrkiosk/internal/kiosk/loop"
	"github.com/mcoot/qrkiosk/internal/kiosk/scan"
)

// Operator-facing texts
const (
	TextReadingQR      = "QR code read. Please scan the 3-digit queue number barcode."
	TextInvalidQR      = "The QR code could not be read. Please scan it again."
	TextSubmitting     = "Registering..."
	TextRegistered     = "Registration complete."
	TextDuplicateFound = "A group with this name already exists. If this group has played before choose yes, otherwise choose no and register with a new group name."
)

// Submitter sends a registration and reports its outcome
type Submitter interface {
	Submit(ctx context.Context, req gateway.Request) gateway.Outcome
}

// Config holds configuration for the session machine
type Config struct {
	CompletionDelay time.Duration
}

// DefaultConfig returns the default session configuration
func DefaultConfig() Config {
	return Config{CompletionDelay: DefaultCompletionDelay}
}

// Deps are the collaborators of a Machine
type Deps struct {
	Input     *input.Manager
	Submitter Submitter
	Clock     clock.Clock
	Dispatch  loop.Dispatcher
	Logger    *slog.Logger

	// Spawn runs a submission off the event loop. Nil means a new goroutine.
	Spawn func(fn func())
}

// Machine is the session state machine. Every method must be called on the event loop.
type Machine struct {
	input     *input.Manager
	submitter Submitter
	dispatch  loop.Dispatcher
	spawn     func(fn func())
	logger    *slog.Logger

	ctx       context.Context
	state     State
	sessionID uint64
	banner    Banner
	listeners []Listener

	// session-scoped data, cleared on every reset
	draft       *scan.Draft
	queueNumber string
	override    bool
	inFlight    bool
	roomID      string
	message     string

	confirm *ConfirmationFlow
	timer   *CompletionTimer
}

// New creates a Machine in the scanning state. Call Start before feeding input.
func New(deps Deps, cfg Config) *Machine {
	spawn := deps.Spawn
	if spawn == nil {
		spawn = func(fn func()) { go fn() }
	}
	m := &Machine{
		input:     deps.Input,
		submitter: deps.Submitter,
		dispatch:  deps.Dispatch,
		spawn:     spawn,
		logger:    deps.Logger.With(slog.String("component", "session")),
		ctx:       context.Background(),
		state:     StateScanning,
		sessionID: 1,
		confirm:   &ConfirmationFlow{},
		timer:     NewCompletionTimer(deps.Clock, deps.Dispatch, cfg.CompletionDelay),
	}
	deps.Input.OnChange(m.handleInput)
	return m
}

// AddListener registers l for transition notifications
func (m *Machine) AddListener(l Listener) {
	m.listeners = append(m.listeners, l)
}

// Start binds submissions to ctx and gives the QR channel focus
func (m *Machine) Start(ctx context.Context) {
	m.ctx = ctx
	m.input.Activate(input.ChannelQR)
	m.logger.Info("session started", slog.Uint64("session_id", m.sessionID))
	m.notify("")
}

// State returns the current state
func (m *Machine) State() State {
	return m.state
}

// Snapshot returns a read-only view of the session
func (m *Machine) Snapshot() Snapshot {
	snap := Snapshot{
		SessionID:   m.sessionID,
		State:       m.state,
		QueueNumber: m.queueNumber,
		RoomID:      m.roomID,
		Message:     m.message,
		Banner:      m.banner,
		Prompt:      m.confirm.Message(),
	}
	if m.draft != nil {
		d := *m.draft
		snap.Draft = &d
	}
	return snap
}

// Confirm answers yes to the duplicate-name prompt
func (m *Machine) Confirm() error {
	return m.confirm.Answer(DecisionConfirm)
}

// Decline answers no to (or dismisses) the duplicate-name prompt
func (m *Machine) Decline() error {
	return m.confirm.Answer(DecisionDecline)
}

// Reset discards the session and returns to scanning.
// Refused while a submission is in flight, since requests cannot be cancelled.
func (m *Machine) Reset() error {
	if m.state == StateSubmitting || m.inFlight {
		return ErrSubmissionInFlight
	}
	m.logger.Info("session reset",
		slog.Uint64("session_id", m.sessionID),
		slog.String("from", string(m.state)))
	m.restart(Banner{})
	return nil
}

func (m *Machine) handleInput(ch input.Channel, buffer string) {
	switch ch {
	case input.ChannelQR:
		if m.state == StateScanning && scan.IsPayloadTerminated(buffer) {
			m.acceptQR(buffer)
		}
	case input.ChannelQueue:
		if m.state != StateAwaitingQueueNumber {
			return
		}
		m.queueNumber = buffer
		if scan.IsQueueNumberComplete(buffer) {
			m.beginSubmission()
		}
	}
}

func (m *Machine) acceptQR(raw string) {
	draft, err := scan.DecodeQR(raw)
	if err != nil {
		m.logger.Warn("invalid QR payload",
			slog.Uint64("session_id", m.sessionID),
			slog.String("error", err.Error()))

		m.input.Clear(input.ChannelQR)
		m.transition(StateInputError, Banner{Severity: SeverityError, Text: TextInvalidQR})
		m.input.Activate(input.ChannelQR)
		m.transition(StateScanning, m.banner)
		return
	}

	m.draft = &draft
	m.queueNumber = ""
	m.input.Clear(input.ChannelQR)
	m.input.Clear(input.ChannelQueue)
	m.input.Activate(input.ChannelQueue)

	m.logger.Info("QR payload accepted",
		slog.Uint64("session_id", m.sessionID),
		slog.String("group", draft.GroupName),
		slog.Int("members", draft.MemberCount),
		slog.Int("difficulty", draft.Difficulty))
	m.transition(StateAwaitingQueueNumber, Banner{Severity: SeverityInfo, Text: TextReadingQR})
}

func (m *Machine) beginSubmission() {
	m.input.Release()
	m.transition(StateSubmitting, Banner{Severity: SeverityInfo, Text: TextSubmitting})
	m.submit()
}

func (m *Machine) submit() {
	if m.inFlight {
		m.logger.Error("submission already in flight", slog.Uint64("session_id", m.sessionID))
		return
	}
	m.inFlight = true

	req := gateway.Request{
		GroupName:   m.draft.GroupName,
		PlayerCount: m.draft.MemberCount,
		Difficulty:  m.draft.Difficulty,
		QueueNumber: m.queueNumber,
		DupCheck:    m.override,
	}
	id := m.sessionID
	ctx := m.ctx

	m.logger.Info("submitting registration",
		slog.Uint64("session_id", id),
		slog.String("group", req.GroupName),
		slog.String("queue_number", req.QueueNumber),
		slog.Bool("dup_check", req.DupCheck))

	m.spawn(func() {
		out := m.submitter.Submit(ctx, req)
		m.dispatch.Post(func() { m.resolve(id, req, out) })
	})
}

func (m *Machine) resolve(id uint64, req gateway.Request, out gateway.Outcome) {
	if id != m.sessionID || m.state != StateSubmitting {
		m.logger.Warn("discarding stale submission outcome",
			slog.Uint64("session_id", id),
			slog.Uint64("current_session_id", m.sessionID),
			slog.String("outcome", string(out.Kind)))
		if id == m.sessionID {
			m.inFlight = false
		}
		return
	}
	m.inFlight = false

	switch out.Kind {
	case gateway.OutcomeSuccess:
		m.roomID = out.RoomID
		m.message = out.Message
		m.logger.Info("registration complete",
			slog.Uint64("session_id", id),
			slog.String("room_id", out.RoomID))
		text := out.Message
		if text == "" {
			text = TextRegistered
		}
		m.transition(StateComplete, Banner{Severity: SeveritySuccess, Text: text})
		m.timer.Start(func() { m.completionElapsed(id) })

	case gateway.OutcomeDuplicateName:
		if req.DupCheck {
			// The override already went through once; never prompt twice
			m.fail(id, out.Message)
			return
		}
		m.message = out.Message
		m.logger.Info("duplicate group name, awaiting operator", slog.Uint64("session_id", id))
		m.confirm.Present(out.Message, m.decide)
		m.transition(StateDuplicateConfirmPending, Banner{Severity: SeverityWarning, Text: TextDuplicateFound})

	default:
		m.fail(id, out.Message)
	}
}

func (m *Machine) fail(id uint64, message string) {
	if message == "" {
		message = gateway.GenericFailureMessage
	}
	m.logger.Warn("registration failed",
		slog.Uint64("session_id", id),
		slog.String("message", message))
	m.restart(Banner{Severity: SeverityError, Text: message})
}

func (m *Machine) decide(d Decision) {
	if m.state != StateDuplicateConfirmPending {
		return
	}
	m.logger.Info("operator decision",
		slog.Uint64("session_id", m.sessionID),
		slog.String("decision", string(d)))

	if d == DecisionConfirm {
		m.override = true
		m.transition(StateSubmitting, Banner{Severity: SeverityInfo, Text: TextSubmitting})
		m.submit()
		return
	}
	m.restart(Banner{})
}

func (m *Machine) completionElapsed(id uint64) {
	if id != m.sessionID || m.state != StateComplete {
		return
	}
	if err := m.Reset(); err != nil {
		m.logger.Error("reset after completion failed", slog.String("error", err.Error()))
	}
}

// restart clears all session-scoped data and begins a new session in scanning
func (m *Machine) restart(banner Banner) {
	m.timer.Cancel()
	m.confirm.dismiss()

	m.draft = nil
	m.queueNumber = ""
	m.override = false
	m.roomID = ""
	m.message = ""
	m.sessionID++

	m.input.Clear(input.ChannelQR)
	m.input.Clear(input.ChannelQueue)
	m.input.Activate(input.ChannelQR)
	m.transition(StateScanning, banner)
}

func (m *Machine) transition(to State, banner Banner) {
	from := m.state
	m.state = to
	m.banner = banner
	m.logger.Debug("state transition",
		slog.String("from", string(from)),
		slog.String("to", string(to)))
	m.notify(from)
}

func (m *Machine) notify(from State) {
	t := Transition{From: from, To: m.state, Snapshot: m.Snapshot()}
	for _, l := range m.listeners {
		l.SessionChanged(t)
	}
}
