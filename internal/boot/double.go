package boot

import (
	"sync"
	"time"

	"github.com/urbit-tools/shipmate/internal/tmux"
)

// Double is a fake with spy capabilities for the Sessions interface:
// a working in-memory session table (no real tmux subprocess) that records
// the keys sent and sessions killed for verification.
//
// OnLaunch and OnSendKeys hooks let tests play the supervised process,
// appending to the boot log the way a booting ship would.
type Double struct {
	mu       sync.Mutex
	sessions map[string]bool
	sent     []string
	killed   []string

	// LaunchErr, if set, is returned by LaunchSession.
	LaunchErr error

	// SendErr, if set, is returned by SendKeys.
	SendErr error

	// OnLaunch runs after a successful LaunchSession with the log path.
	OnLaunch func(logPath string)

	// OnSendKeys runs after a successful SendKeys with the text sent.
	OnSendKeys func(text string)
}

// Ensure Double implements Sessions.
var _ Sessions = (*Double)(nil)

// NewDouble creates an in-memory Sessions double.
func NewDouble() *Double {
	return &Double{sessions: make(map[string]bool)}
}

// HasSession reports whether the named session is active.
func (d *Double) HasSession(name string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.sessions[name], nil
}

// LaunchSession registers the session and fires OnLaunch.
func (d *Double) LaunchSession(name, dir string, command []string, logPath string, grace time.Duration) error {
	if d.LaunchErr != nil {
		return d.LaunchErr
	}
	d.mu.Lock()
	if d.sessions[name] {
		d.mu.Unlock()
		return tmux.ErrSessionExists
	}
	d.sessions[name] = true
	d.mu.Unlock()

	if d.OnLaunch != nil {
		d.OnLaunch(logPath)
	}
	return nil
}

// SendKeys records the text and fires OnSendKeys.
func (d *Double) SendKeys(name, text string) error {
	if d.SendErr != nil {
		return d.SendErr
	}
	d.mu.Lock()
	if !d.sessions[name] {
		d.mu.Unlock()
		return tmux.ErrSessionNotFound
	}
	d.sent = append(d.sent, text)
	d.mu.Unlock()

	if d.OnSendKeys != nil {
		d.OnSendKeys(text)
	}
	return nil
}

// KillSession removes the session. Idempotent.
func (d *Double) KillSession(name string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.sessions, name)
	d.killed = append(d.killed, name)
	return nil
}

// SetTheme is a no-op for the double.
func (d *Double) SetTheme(name string, theme tmux.Theme) error {
	return nil
}

// Sent returns a copy of the keys sent so far.
func (d *Double) Sent() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.sent...)
}

// Killed returns a copy of the sessions killed so far.
func (d *Double) Killed() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.killed...)
}

// AddSession marks a session active, for duplicate-launch tests.
func (d *Double) AddSession(name string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sessions[name] = true
}
