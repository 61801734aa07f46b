// Package boot drives the ship boot sequence: launch the tmux session,
// wait for the web interface, retrieve the access code, then monitor.
package boot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/atotto/clipboard"
	"github.com/gofrs/flock"
	"github.com/pkg/browser"

	"github.com/urbit-tools/shipmate/internal/config"
	"github.com/urbit-tools/shipmate/internal/deps"
	"github.com/urbit-tools/shipmate/internal/exitcode"
	"github.com/urbit-tools/shipmate/internal/logwatch"
	"github.com/urbit-tools/shipmate/internal/pier"
	"github.com/urbit-tools/shipmate/internal/style"
	"github.com/urbit-tools/shipmate/internal/tmux"
)

// codeCommand is the dojo command that prints the web login code.
const codeCommand = "+code"

// crlfWriter rewrites bare newlines as CRLF for raw-mode terminals.
type crlfWriter struct{ w io.Writer }

func (c crlfWriter) Write(p []byte) (int, error) {
	if _, err := c.w.Write(bytes.ReplaceAll(p, []byte("\n"), []byte("\r\n"))); err != nil {
		return 0, err
	}
	return len(p), nil
}

// livenessInterval is how often the monitor loop re-checks the session.
const livenessInterval = 3 * time.Second

// Sessions is the session control surface the orchestrator drives.
// *tmux.Tmux satisfies it; tests inject a double.
type Sessions interface {
	HasSession(name string) (bool, error)
	LaunchSession(name, dir string, command []string, logPath string, grace time.Duration) error
	SendKeys(name, text string) error
	KillSession(name string) error
	SetTheme(name string, theme tmux.Theme) error
}

// KeySource delivers single keystrokes from the controlling terminal.
type KeySource interface {
	// ReadKey blocks until one key is available.
	ReadKey() (byte, error)
}

// Orchestrator runs the boot state machine for one ship.
type Orchestrator struct {
	cfg      config.Config
	sessions Sessions
	keys     KeySource
	out      io.Writer

	// Seams for the external conveniences, replaced in tests.
	checkDeps func() error
	openURL   func(string) error
	copyText  func(string) error
	liveness  time.Duration
}

// New returns an Orchestrator wired to the real tmux, terminal, clipboard
// and browser. Operator output goes to out.
func New(cfg config.Config, keys KeySource, out io.Writer) *Orchestrator {
	return &Orchestrator{
		cfg:      cfg,
		sessions: tmux.NewTmux(),
		keys:     keys,
		out:      out,
		checkDeps: func() error {
			if err := deps.CheckPlatform(); err != nil {
				return err
			}
			return deps.CheckRequired()
		},
		openURL:  browser.OpenURL,
		copyText: clipboard.WriteAll,
		liveness: livenessInterval,
	}
}

// Run executes the full boot sequence. It blocks until the operator quits
// the monitor loop or a fatal error aborts the run. Whatever background
// watcher is active is stopped on every return path.
func (o *Orchestrator) Run(ctx context.Context) error {
	// Init: environment and target validation, before anything is touched.
	if err := o.checkDeps(); err != nil {
		return err
	}

	target, err := pier.Resolve(o.cfg.Ship, o.cfg.PierPath())
	if err != nil {
		return err
	}

	fileLock := flock.New(o.cfg.LockPath())
	locked, err := fileLock.TryLock()
	if err != nil {
		return fmt.Errorf("acquiring pier lock: %w", err)
	}
	if !locked {
		return exitcode.Newf(exitcode.ErrPierLocked,
			"another shipmate is already managing %s", o.cfg.PierPath())
	}
	defer func() { _ = fileLock.Unlock() }()

	// Duplicate check comes before the log truncation so an aborted
	// duplicate launch leaves the previous run's log intact.
	if active, err := o.sessions.HasSession(o.cfg.SessionName); err != nil {
		return fmt.Errorf("checking for existing session: %w", err)
	} else if active {
		return exitcode.DuplicateSession(o.cfg.SessionName)
	}

	if err := os.WriteFile(o.cfg.LogPath, nil, 0644); err != nil {
		return fmt.Errorf("truncating log %s: %w", o.cfg.LogPath, err)
	}

	status := newStatus(o.cfg, target)
	status.save(o.cfg.StatusPath())

	// Launching: create the session with the boot command.
	fmt.Fprintf(o.out, "%s %s\n", style.Bold.Render("shipmate:"), target.Describe())
	err = o.sessions.LaunchSession(o.cfg.SessionName, o.cfg.PierRoot,
		target.BootCommand(), o.cfg.LogPath, o.cfg.StartGrace)
	switch {
	case errors.Is(err, tmux.ErrSessionExists):
		return exitcode.DuplicateSession(o.cfg.SessionName)
	case errors.Is(err, tmux.ErrSessionNotFound):
		return exitcode.SessionStart(o.cfg.SessionName)
	case err != nil:
		return exitcode.Wrap(exitcode.ErrSessionStart, "launching session", err)
	}
	_ = o.sessions.SetTheme(o.cfg.SessionName, tmux.ShipTheme())

	// The active watcher is stopped on every exit path from here on,
	// fatal and graceful alike. Stop is idempotent, so the deferred
	// guard is safe even after an explicit stop-and-restart.
	marker := style.Accent.Render("[~" + o.cfg.Ship + "]")
	watcher := logwatch.New(o.cfg.LogPath, marker, o.out)
	watcher.Start()
	defer func() { watcher.Stop() }()

	// AwaitingReadiness: block until the web interface is live.
	fmt.Fprintf(o.out, "%s waiting for web interface (up to %s)...\n",
		style.Dim.Render("shipmate:"), o.cfg.ReadyTimeout)
	endpoint, err := logwatch.WaitFor(ctx, o.cfg.LogPath,
		logwatch.ReadyPattern, 1, o.cfg.ReadyTimeout, o.cfg.ReadyPoll)
	if err != nil {
		if errors.Is(err, logwatch.ErrWaitTimeout) {
			return exitcode.Timeout("web interface")
		}
		return err
	}

	// HandingOff: quiet the tail while talking to the operator.
	watcher.Stop()
	status.Endpoint = endpoint
	status.ReadyAt = time.Now()
	status.save(o.cfg.StatusPath())
	fmt.Fprintf(o.out, "\n%s %s\n", style.Success.Render("✓"),
		style.Bold.Render(endpoint))

	o.retrieveCode(ctx, status)

	// Monitoring: endpoint handoff, fresh tail, interactive loop.
	if o.cfg.OpenBrowser {
		_ = o.openURL(endpoint)
	}

	// The monitor terminal is in raw mode, so tail lines need explicit
	// carriage returns; CRLF is harmless in cooked mode too.
	watcher = logwatch.New(o.cfg.LogPath, marker, crlfWriter{o.out})
	watcher.Start()

	fmt.Fprintf(o.out, "\n%s\n", style.Dim.Render("press q to detach (ship keeps running), x to kill the ship"))
	return o.monitor(ctx)
}

// retrieveCode sends +code into the dojo and scans the log for the reply.
// Every failure here is a convenience degradation, never fatal: the
// operator can run +code in the dojo themselves.
func (o *Orchestrator) retrieveCode(ctx context.Context, status *Status) {
	// The dojo needs a moment after the http stack comes up before it
	// accepts input; sending early silently drops the command.
	select {
	case <-ctx.Done():
		return
	case <-time.After(o.cfg.SettleDelay):
	}

	if err := o.sessions.SendKeys(o.cfg.SessionName, codeCommand); err != nil {
		fmt.Fprintf(o.out, "%s could not reach the dojo: %v\n", style.Warning.Render("⚠"), err)
		return
	}

	code, err := logwatch.WaitForCode(ctx, o.cfg.LogPath, o.cfg.CodeTimeout, o.cfg.CodePoll)
	if err != nil {
		fmt.Fprintf(o.out, "%s no access code found; run %s in the dojo to get it\n",
			style.Warning.Render("⚠"), style.Bold.Render(codeCommand))
		return
	}

	status.CodeRetrieved = true
	status.save(o.cfg.StatusPath())
	fmt.Fprintf(o.out, "%s access code: %s", style.Success.Render("✓"), style.Bold.Render(code))
	if o.cfg.CopyCode && o.copyText(code) == nil {
		fmt.Fprintf(o.out, " %s", style.Dim.Render("(copied to clipboard)"))
	}
	fmt.Fprintln(o.out)
}

// monitor is the interactive control loop: one keystroke at a time from
// the controlling terminal, with a background liveness check on the
// session. The tail watcher keeps writing while we wait; interleaving
// with the prompt is accepted.
func (o *Orchestrator) monitor(ctx context.Context) error {
	// Raw mode only for the monitor phase: earlier phases print multi-line
	// output that raw mode would garble.
	if rk, ok := o.keys.(interface {
		Open() error
		Close() error
	}); ok {
		if err := rk.Open(); err == nil {
			defer func() { _ = rk.Close() }()
		}
	}

	keys := make(chan byte)
	readErr := make(chan error, 1)
	go func() {
		for {
			b, err := o.keys.ReadKey()
			if err != nil {
				readErr <- err
				return
			}
			keys <- b
		}
	}()

	ticker := time.NewTicker(o.liveness)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case err := <-readErr:
			if errors.Is(err, io.EOF) {
				// Terminal went away; detach and leave the ship running.
				return nil
			}
			return fmt.Errorf("reading keystrokes: %w", err)

		case b := <-keys:
			switch b {
			case 'q', 0x03: // q or Ctrl-C: detach
				fmt.Fprintf(o.out, "%s detached; ~%s keeps running in session %q\n",
					style.Dim.Render("shipmate:"), o.cfg.Ship, o.cfg.SessionName)
				return nil
			case 'x': // kill the ship
				if err := o.sessions.KillSession(o.cfg.SessionName); err != nil {
					return fmt.Errorf("killing session: %w", err)
				}
				fmt.Fprintf(o.out, "%s ~%s stopped\n", style.Success.Render("✓"), o.cfg.Ship)
				return nil
			}
			// Any other key: ignored.

		case <-ticker.C:
			alive, err := o.sessions.HasSession(o.cfg.SessionName)
			if err == nil && !alive {
				return exitcode.Newf(exitcode.ErrSessionDied,
					"session %q died while monitoring", o.cfg.SessionName)
			}
		}
	}
}
