package session

import (
	"errors"

	"github.com/mcoot/qrkiosk/internal/kiosk/scan"
)

// State is the single active state of a kiosk session
type State string

const (
	StateScanning                State = "scanning"
	StateAwaitingQueueNumber     State = "awaiting_queue_number"
	StateSubmitting              State = "submitting"
	StateDuplicateConfirmPending State = "duplicate_confirm_pending"
	StateComplete                State = "complete"
	StateInputError              State = "input_error"
)

// String returns the string representation of the state
func (s State) String() string {
	return string(s)
}

// Errors
var (
	ErrSubmissionInFlight    = errors.New("a submission is in flight")
	ErrNoPendingConfirmation = errors.New("no duplicate-name confirmation is pending")
)

// Severity of a banner message
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Banner is the operator-visible message line. The zero value is no banner.
type Banner struct {
	Severity Severity
	Text     string
}

// IsZero reports whether there is no banner
func (b Banner) IsZero() bool {
	return b.Text == ""
}

// Snapshot is a read-only view of the session
type Snapshot struct {
	SessionID   uint64
	State       State
	Draft       *scan.Draft // nil until a QR payload is accepted
	QueueNumber string
	RoomID      string
	Message     string
	Banner      Banner
	Prompt      string // confirmation prompt text while a decision is pending
}

// Transition describes a state change
type Transition struct {
	From     State
	To       State
	Snapshot Snapshot
}

// Listener observes session transitions. Called on the event loop.
type Listener interface {
	SessionChanged(t Transition)
}

// ListenerFunc adapts a function to Listener
type ListenerFunc func(t Transition)

// SessionChanged calls f
func (f ListenerFunc) SessionChanged(t Transition) {
	f(t)
}
