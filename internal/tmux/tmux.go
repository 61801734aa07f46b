// Package tmux wraps the tmux CLI for managing ship sessions.
package tmux

import (
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// Sentinel errors classified from tmux stderr output.
var (
	// ErrNoServer means no tmux server is running. ListSessions treats
	// this as an empty list rather than a failure.
	ErrNoServer = errors.New("tmux server not running")

	// ErrSessionExists means a session with that name is already active.
	ErrSessionExists = errors.New("session already exists")

	// ErrSessionNotFound means the named session is not active.
	ErrSessionNotFound = errors.New("session not found")
)

// Tmux provides session operations against the local tmux server.
type Tmux struct {
	bin string
}

// NewTmux returns a Tmux using the tmux binary from PATH.
func NewTmux() *Tmux {
	return &Tmux{bin: "tmux"}
}

// run executes a tmux command and returns trimmed stdout.
func (t *Tmux) run(args ...string) (string, error) {
	cmd := exec.Command(t.bin, args...)
	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		return "", t.wrapError(err, stderr.String(), args)
	}
	return strings.TrimRight(stdout.String(), "\n"), nil
}

// wrapError classifies tmux stderr text into sentinel errors.
func (t *Tmux) wrapError(err error, stderr string, args []string) error {
	switch {
	case strings.Contains(stderr, "no server running"),
		strings.Contains(stderr, "error connecting to"):
		return ErrNoServer
	case strings.Contains(stderr, "duplicate session"):
		return ErrSessionExists
	case strings.Contains(stderr, "session not found"),
		strings.Contains(stderr, "can't find session"):
		return ErrSessionNotFound
	}
	msg := strings.TrimSpace(stderr)
	if msg == "" {
		return fmt.Errorf("tmux %s: %w", strings.Join(args, " "), err)
	}
	return fmt.Errorf("tmux %s: %s", strings.Join(args, " "), msg)
}

// ListSessions returns the names of all active sessions.
// Returns an empty list if no server is running.
func (t *Tmux) ListSessions() ([]string, error) {
	out, err := t.run("list-sessions", "-F", "#{session_name}")
	if err != nil {
		if errors.Is(err, ErrNoServer) {
			return nil, nil
		}
		return nil, err
	}
	if out == "" {
		return nil, nil
	}
	return strings.Split(out, "\n"), nil
}

// HasSession checks if a session with the exact name exists.
func (t *Tmux) HasSession(name string) (bool, error) {
	// list-sessions + exact match rather than has-session: has-session
	// matches by prefix, so "urbit-zod" would also match "urbit-zod-old".
	sessions, err := t.ListSessions()
	if err != nil {
		return false, err
	}
	for _, s := range sessions {
		if s == name {
			return true, nil
		}
	}
	return false, nil
}

// NewSession creates a detached session running the default shell.
func (t *Tmux) NewSession(name, dir string) error {
	return t.NewSessionWithCommand(name, dir, nil)
}

// NewSessionWithCommand creates a detached session running command.
// The session ends when the command exits.
func (t *Tmux) NewSessionWithCommand(name, dir string, command []string) error {
	args := []string{"new-session", "-d", "-s", name}
	if dir != "" {
		args = append(args, "-c", dir)
	}
	args = append(args, command...)
	_, err := t.run(args...)
	return err
}

// PipeToFile tees the session's pane output to a file, appending.
// pipe-pane writes through cat with no block buffering, so log content
// is visible to readers as soon as the pane produces it.
func (t *Tmux) PipeToFile(name, path string) error {
	_, err := t.run("pipe-pane", "-o", "-t", name, fmt.Sprintf("cat >> %q", path))
	return err
}

// SendKeys sends literal text to the session followed by Enter.
func (t *Tmux) SendKeys(name, text string) error {
	if _, err := t.run("send-keys", "-t", name, "-l", text); err != nil {
		return err
	}
	_, err := t.run("send-keys", "-t", name, "Enter")
	return err
}

// SendKeysRaw sends a key name (e.g. "C-c", "Enter") to the session.
func (t *Tmux) SendKeysRaw(name, keys string) error {
	_, err := t.run("send-keys", "-t", name, keys)
	return err
}

// CapturePane returns the last lines of the session's visible pane.
func (t *Tmux) CapturePane(name string, lines int) (string, error) {
	return t.run("capture-pane", "-p", "-t", name, "-S", "-"+strconv.Itoa(lines))
}

// KillSession terminates the session and the process tree under it.
// Best-effort: the process may still be shutting down on return.
func (t *Tmux) KillSession(name string) error {
	_, err := t.run("kill-session", "-t", name)
	return err
}

// SetTheme applies pane colors to the session. Cosmetic, best-effort.
func (t *Tmux) SetTheme(name string, theme Theme) error {
	_, err := t.run("set-option", "-t", name, "window-style", theme.Style())
	return err
}

// LaunchSession creates a detached session running command with its pane
// output teed to logPath, then re-checks after grace that the session is
// still alive. A session that vanished within the grace period means the
// command crashed on launch; the caller gets ErrSessionNotFound.
func (t *Tmux) LaunchSession(name, dir string, command []string, logPath string, grace time.Duration) error {
	if err := t.NewSessionWithCommand(name, dir, command); err != nil {
		return err
	}
	if err := t.PipeToFile(name, logPath); err != nil {
		// Pane capture failing means no readiness detection; treat as fatal
		// and don't leave the half-launched session behind.
		_ = t.KillSession(name)
		return fmt.Errorf("attaching log pipe: %w", err)
	}

	if grace > 0 {
		time.Sleep(grace)
	}
	alive, err := t.HasSession(name)
	if err != nil {
		return err
	}
	if !alive {
		return ErrSessionNotFound
	}
	return nil
}
