package boot

import (
	"os"

	"golang.org/x/term"
)

// TermKeys reads single keystrokes from the controlling terminal.
// Open puts the terminal into raw mode; Close restores it. When stdin is
// not a terminal (tests, pipes), keys are read byte-wise without raw mode.
type TermKeys struct {
	fd    int
	saved *term.State
}

// NewTermKeys returns a KeySource over stdin.
func NewTermKeys() *TermKeys {
	return &TermKeys{fd: int(os.Stdin.Fd())}
}

// Open switches the terminal to raw mode so keys arrive unbuffered.
func (t *TermKeys) Open() error {
	if !term.IsTerminal(t.fd) {
		return nil
	}
	saved, err := term.MakeRaw(t.fd)
	if err != nil {
		return err
	}
	t.saved = saved
	return nil
}

// Close restores the terminal state saved by Open. Safe to call twice.
func (t *TermKeys) Close() error {
	if t.saved == nil {
		return nil
	}
	saved := t.saved
	t.saved = nil
	return term.Restore(t.fd, saved)
}

// ReadKey blocks until one byte is available on stdin.
func (t *TermKeys) ReadKey() (byte, error) {
	var buf [1]byte
	if _, err := os.Stdin.Read(buf[:]); err != nil {
		return 0, err
	}
	return buf[0], nil
}
