package kiosk

import (
	"bufio"
	"errors"
	"io"
	"log/slog"

	"github.com/mcoot/qrkiosk/internal/kiosk/input"
	"github.com/mcoot/qrkiosk/internal/kiosk/session"
)

// Control keys the operator may press
const (
	KeyInterrupt = '\x03' // Ctrl-C, delivered as a byte in raw mode
	KeyEscape    = '\x1b'
	KeyReturn    = '\r'
	KeyNewline   = '\n'
)

// errInterrupted ends a run when Ctrl-C arrives as input
var errInterrupted = errors.New("interrupted")

// KeyRouter turns keystrokes into input or operator actions depending on the session state.
// It must be called on the event loop.
type KeyRouter struct {
	machine *session.Machine
	input   *input.Manager
	logger  *slog.Logger
}

// NewKeyRouter creates a KeyRouter
func NewKeyRouter(machine *session.Machine, in *input.Manager, logger *slog.Logger) *KeyRouter {
	return &KeyRouter{
		machine: machine,
		input:   in,
		logger:  logger.With(slog.String("component", "keys")),
	}
}

// Key routes one keystroke
func (k *KeyRouter) Key(r rune) {
	switch k.machine.State() {
	case session.StateDuplicateConfirmPending:
		switch r {
		case 'y', 'Y':
			k.act("confirm", k.machine.Confirm())
		case 'n', 'N', KeyEscape:
			k.act("decline", k.machine.Decline())
		}

	case session.StateComplete:
		switch r {
		case KeyReturn, KeyNewline, 'd', 'D':
			k.act("done", k.machine.Reset())
		}

	case session.StateSubmitting:
		// Nothing to capture until the outcome arrives

	default:
		switch r {
		case KeyEscape:
			k.act("reset", k.machine.Reset())
		case KeyReturn, KeyNewline:
			// Scanners terminate each code with Enter
		default:
			k.input.Keystroke(r)
		}
	}
}

func (k *KeyRouter) act(action string, err error) {
	if err != nil {
		k.logger.Warn("operator action refused",
			slog.String("action", action),
			slog.String("error", err.Error()))
		return
	}
	k.logger.Debug("operator action", slog.String("action", action))
}

// readKeys forwards runes from r until it fails. io.EOF and Ctrl-C are reported as errors.
func readKeys(r io.Reader, keys chan<- rune) error {
	br := bufio.NewReader(r)
	for {
		ch, _, err := br.ReadRune()
		if err != nil {
			return err
		}
		if ch == KeyInterrupt {
			return errInterrupted
		}
		keys <- ch
	}
}
