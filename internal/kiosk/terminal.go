package kiosk

import (
	"os"

	"golang.org/x/term"
)

// MakeRaw switches f to raw mode so each scanner keystroke arrives unbuffered.
// The returned func restores the previous mode. Non-terminals are left as they are.
func MakeRaw(f *os.File) (restore func(), err error) {
	fd := int(f.Fd())
	if !term.IsTerminal(fd) {
		return func() {}, nil
	}
	state, err := term.MakeRaw(fd)
	if err != nil {
		return nil, err
	}
	return func() { _ = term.Restore(fd, state) }, nil
}
