// Package input multiplexes scanner keystrokes between the kiosk's capture channels.
package input

import (
	"log/slog"
	"time"
	"unicode"

	"github.com/mcoot/qrkiosk/internal/dependencies/clock"
	"github.com/mcoot/qrkiosk/internal/kiosk/loop"
	"github.com/mcoot/qrkiosk/internal/kiosk/scan"
)

// Channel identifies a virtual capture surface
type Channel string

const (
	ChannelNone  Channel = ""
	ChannelQR    Channel = "qr"
	ChannelQueue Channel = "queue"
)

// DefaultRefocusDelay is how long a blurred owner waits before taking focus back
const DefaultRefocusDelay = 100 * time.Millisecond

// Policy is the accepted-character policy of a channel
type Policy struct {
	Accept    func(r rune) bool
	MaxLength int // 0 means unlimited
}

// ChangeFunc receives the latest buffer of a channel after input
type ChangeFunc func(ch Channel, buffer string)

// Config holds configuration for the Manager
type Config struct {
	RefocusDelay time.Duration
}

// DefaultConfig returns the default input configuration
func DefaultConfig() Config {
	return Config{RefocusDelay: DefaultRefocusDelay}
}

// Manager owns the QR and queue-number channels.
// At most one channel is the focus owner; all methods must run on the event loop.
type Manager struct {
	clock    clock.Clock
	dispatch loop.Dispatcher
	logger   *slog.Logger
	delay    time.Duration

	buffers  map[Channel]string
	policies map[Channel]Policy
	owner    Channel
	focused  Channel
	// generation increments whenever ownership moves, superseding pending re-focus
	generation uint64
	onChange   ChangeFunc
}

// NewManager creates a Manager with no owner
func NewManager(clk clock.Clock, dispatch loop.Dispatcher, cfg Config, logger *slog.Logger) *Manager {
	if cfg.RefocusDelay <= 0 {
		cfg.RefocusDelay = DefaultRefocusDelay
	}
	return &Manager{
		clock:    clk,
		dispatch: dispatch,
		logger:   logger.With(slog.String("component", "input")),
		delay:    cfg.RefocusDelay,
		buffers: map[Channel]string{
			ChannelQR:    "",
			ChannelQueue: "",
		},
		policies: map[Channel]Policy{
			ChannelQR:    {Accept: isNotControl},
			ChannelQueue: {Accept: isASCIIDigit, MaxLength: scan.QueueNumberLength},
		},
	}
}

// isNotControl accepts any rune a scanner can type, including full-width spaces
func isNotControl(r rune) bool {
	return !unicode.IsControl(r)
}

func isASCIIDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

// OnChange sets the change listener
func (m *Manager) OnChange(fn ChangeFunc) {
	m.onChange = fn
}

// Activate makes ch the sole focus owner and gives it focus.
// The previous owner's buffer is left for the caller to clear.
func (m *Manager) Activate(ch Channel) {
	if _, ok := m.buffers[ch]; !ok {
		m.logger.Warn("activate unknown channel", slog.String("channel", string(ch)))
		return
	}
	if m.owner != ch {
		m.generation++
	}
	m.owner = ch
	m.focused = ch
	m.logger.Debug("channel activated", slog.String("channel", string(ch)))
}

// Release leaves no channel with focus, superseding any pending re-focus
func (m *Manager) Release() {
	if m.owner != ChannelNone {
		m.generation++
	}
	m.owner = ChannelNone
	m.focused = ChannelNone
}

// OnBlur handles focus loss. If ch is the owner, focus is re-acquired after the refocus delay
// unless ownership moves first.
func (m *Manager) OnBlur(ch Channel) {
	if ch == ChannelNone || ch != m.owner {
		return
	}
	m.focused = ChannelNone
	gen := m.generation
	m.logger.Debug("owner lost focus, scheduling refocus",
		slog.String("channel", string(ch)),
		slog.Duration("delay", m.delay))

	m.clock.AfterFunc(m.delay, func() {
		m.dispatch.Post(func() { m.refocus(ch, gen) })
	})
}

func (m *Manager) refocus(ch Channel, gen uint64) {
	if gen != m.generation || m.owner != ch {
		m.logger.Debug("refocus superseded", slog.String("channel", string(ch)))
		return
	}
	m.focused = ch
	m.logger.Debug("focus reacquired", slog.String("channel", string(ch)))
}

// OnInput replaces the buffer of ch with text, filtered through the channel's policy,
// and emits a change event. Input to a channel without focus is dropped.
func (m *Manager) OnInput(ch Channel, text string) {
	if ch == ChannelNone || ch != m.focused {
		m.logger.Debug("input dropped, channel not focused", slog.String("channel", string(ch)))
		return
	}

	filtered := m.filter(ch, text)
	m.buffers[ch] = filtered
	if m.onChange != nil {
		m.onChange(ch, filtered)
	}
}

// Keystroke appends r to the focused channel
func (m *Manager) Keystroke(r rune) {
	if m.focused == ChannelNone {
		return
	}
	policy := m.policies[m.focused]
	if policy.Accept != nil && !policy.Accept(r) {
		return
	}
	m.OnInput(m.focused, m.buffers[m.focused]+string(r))
}

func (m *Manager) filter(ch Channel, text string) string {
	policy := m.policies[ch]
	out := make([]rune, 0, len(text))
	for _, r := range text {
		if policy.Accept != nil && !policy.Accept(r) {
			continue
		}
		if policy.MaxLength > 0 && len(out) >= policy.MaxLength {
			break
		}
		out = append(out, r)
	}
	return string(out)
}

// Clear empties the buffer of ch without emitting a change event
func (m *Manager) Clear(ch Channel) {
	if _, ok := m.buffers[ch]; ok {
		m.buffers[ch] = ""
	}
}

// Buffer returns the current buffer of ch
func (m *Manager) Buffer(ch Channel) string {
	return m.buffers[ch]
}

// Owner returns the channel that owns focus, or ChannelNone
func (m *Manager) Owner() Channel {
	return m.owner
}

// Focused returns the channel that currently has focus, or ChannelNone.
// It differs from Owner only while a re-focus is pending.
func (m *Manager) Focused() Channel {
	return m.focused
}
