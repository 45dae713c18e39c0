package kiosk

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/mcoot/qrkiosk/internal/kiosk/session"
)

// Display formats
const (
	FormatText = "text"
	FormatJSON = "json"
)

// PromptHint tells the operator how to answer the duplicate-name prompt
const PromptHint = "Press y if this group has played before, n to register under a new name."

// Display renders session transitions to a terminal or a log stream
type Display struct {
	mu     sync.Mutex
	w      io.Writer
	format string
	raw    bool
}

// Ensure Display implements Listener
var _ session.Listener = (*Display)(nil)

// NewDisplay creates a Display. raw terminals need explicit carriage returns.
func NewDisplay(w io.Writer, format string, raw bool) *Display {
	return &Display{w: w, format: format, raw: raw}
}

// SessionChanged renders t
func (d *Display) SessionChanged(t session.Transition) {
	d.mu.Lock()
	defer d.mu.Unlock()

	var out string
	if d.format == FormatJSON {
		out = renderJSON(t)
	} else {
		out = renderText(t.Snapshot)
	}
	if d.raw {
		out = strings.ReplaceAll(out, "\n", "\r\n")
	}
	_, _ = io.WriteString(d.w, out)
}

func renderText(s session.Snapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "== %s (session %d) ==\n", s.State, s.SessionID)

	if !s.Banner.IsZero() {
		fmt.Fprintf(&b, "[%s] %s\n", s.Banner.Severity, s.Banner.Text)
	}

	switch s.State {
	case session.StateScanning:
		b.WriteString("Scan the group QR code.\n")
	case session.StateAwaitingQueueNumber:
		if s.Draft != nil {
			fmt.Fprintf(&b, "Group: %s  Members: %d  Difficulty: %d\n",
				s.Draft.GroupName, s.Draft.MemberCount, s.Draft.Difficulty)
		}
		fmt.Fprintf(&b, "Queue number: %s\n", s.QueueNumber)
	case session.StateDuplicateConfirmPending:
		if s.Prompt != "" {
			fmt.Fprintf(&b, "%s\n", s.Prompt)
		}
		fmt.Fprintf(&b, "%s\n", PromptHint)
	case session.StateComplete:
		fmt.Fprintf(&b, "Room: %s\n", s.RoomID)
		b.WriteString("Press Enter when done.\n")
	}
	return b.String()
}

type draftJSON struct {
	GroupName   string `json:"group_name"`
	MemberCount int    `json:"member_count"`
	Difficulty  int    `json:"difficulty"`
}

type transitionJSON struct {
	From        string     `json:"from"`
	To          string     `json:"to"`
	SessionID   uint64     `json:"session_id"`
	Draft       *draftJSON `json:"draft,omitempty"`
	QueueNumber string     `json:"queue_number,omitempty"`
	RoomID      string     `json:"room_id,omitempty"`
	Message     string     `json:"message,omitempty"`
	Severity    string     `json:"severity,omitempty"`
	Banner      string     `json:"banner,omitempty"`
	Prompt      string     `json:"prompt,omitempty"`
}

func renderJSON(t session.Transition) string {
	s := t.Snapshot
	v := transitionJSON{
		From:        string(t.From),
		To:          string(t.To),
		SessionID:   s.SessionID,
		QueueNumber: s.QueueNumber,
		RoomID:      s.RoomID,
		Message:     s.Message,
		Severity:    string(s.Banner.Severity),
		Banner:      s.Banner.Text,
		Prompt:      s.Prompt,
	}
	if s.Draft != nil {
		v.Draft = &draftJSON{
			GroupName:   s.Draft.GroupName,
			MemberCount: s.Draft.MemberCount,
			Difficulty:  s.Draft.Difficulty,
		}
	}
	data, _ := json.Marshal(v)
	return string(data) + "\n"
}
