package boot

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/urbit-tools/shipmate/internal/config"
	"github.com/urbit-tools/shipmate/internal/exitcode"
	"github.com/urbit-tools/shipmate/internal/tmux"
)

const readyLine = "http: web interface live on http://localhost:8080"

// scriptKeys feeds keystrokes to the monitor loop from a channel.
type scriptKeys struct {
	ch chan byte
}

func newScriptKeys() *scriptKeys {
	return &scriptKeys{ch: make(chan byte, 8)}
}

func (s *scriptKeys) ReadKey() (byte, error) {
	b, ok := <-s.ch
	if !ok {
		return 0, io.EOF
	}
	return b, nil
}

// lockedBuffer guards against the watcher goroutine racing test reads.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func appendLog(t *testing.T, path, line string) {
	t.Helper()
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if _, err := f.WriteString(line + "\n"); err != nil {
		t.Fatal(err)
	}
}

func testConfig(t *testing.T) config.Config {
	t.Helper()
	cfg := config.Default("zod")
	cfg.PierRoot = t.TempDir()
	cfg.ReadyTimeout = 3 * time.Second
	cfg.ReadyPoll = 20 * time.Millisecond
	cfg.CodeTimeout = 500 * time.Millisecond
	cfg.CodePoll = 20 * time.Millisecond
	cfg.SettleDelay = 10 * time.Millisecond
	cfg.StartGrace = 0
	if err := cfg.Finalize(); err != nil {
		t.Fatal(err)
	}
	return cfg
}

// newTestOrchestrator wires an Orchestrator to a double and no-op seams.
func newTestOrchestrator(cfg config.Config, sessions Sessions, keys KeySource, out io.Writer) *Orchestrator {
	return &Orchestrator{
		cfg:       cfg,
		sessions:  sessions,
		keys:      keys,
		out:       out,
		checkDeps: func() error { return nil },
		openURL:   func(string) error { return nil },
		copyText:  func(string) error { return nil },
		liveness:  50 * time.Millisecond,
	}
}

func TestRunHappyPath(t *testing.T) {
	cfg := testConfig(t)
	double := NewDouble()
	keys := newScriptKeys()
	var out lockedBuffer

	double.OnLaunch = func(logPath string) {
		appendLog(t, logPath, "boot: home is "+cfg.PierPath())
		appendLog(t, logPath, readyLine)
	}
	double.OnSendKeys = func(text string) {
		if text == "+code" {
			appendLog(t, cfg.LogPath, "~zod:dojo> +code")
			appendLog(t, cfg.LogPath, "lidlut-tabwed-pillex-ridrup")
		}
	}

	var copied string
	o := newTestOrchestrator(cfg, double, keys, &out)
	o.copyText = func(s string) error { copied = s; return nil }

	done := make(chan error, 1)
	go func() { done <- o.Run(context.Background()) }()

	// Once the code has been surfaced, detach.
	waitFor(t, func() bool { return strings.Contains(out.String(), "lidlut-tabwed-pillex-ridrup") })
	keys.ch <- 'z' // ignored
	keys.ch <- 'q'

	if err := <-done; err != nil {
		t.Fatalf("Run: %v", err)
	}

	if got := double.Sent(); len(got) != 1 || got[0] != "+code" {
		t.Errorf("sent keys = %v, want [+code]", got)
	}
	if len(double.Killed()) != 0 {
		t.Errorf("quit must leave the session running, killed %v", double.Killed())
	}
	if copied != "lidlut-tabwed-pillex-ridrup" {
		t.Errorf("clipboard got %q", copied)
	}
	if !strings.Contains(out.String(), "http://localhost:8080") {
		t.Errorf("endpoint not surfaced:\n%s", out.String())
	}
}

func TestRunKillKey(t *testing.T) {
	cfg := testConfig(t)
	double := NewDouble()
	keys := newScriptKeys()
	var out lockedBuffer

	double.OnLaunch = func(logPath string) { appendLog(t, logPath, readyLine) }
	double.OnSendKeys = func(string) { appendLog(t, cfg.LogPath, "lidlut-tabwed-pillex-ridrup") }

	o := newTestOrchestrator(cfg, double, keys, &out)

	done := make(chan error, 1)
	go func() { done <- o.Run(context.Background()) }()

	waitFor(t, func() bool { return strings.Contains(out.String(), "press q to detach") })
	keys.ch <- 'x'

	if err := <-done; err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := double.Killed(); len(got) != 1 || got[0] != cfg.SessionName {
		t.Errorf("killed = %v, want [%s]", got, cfg.SessionName)
	}
}

func TestRunDuplicateSession(t *testing.T) {
	cfg := testConfig(t)
	double := NewDouble()
	double.AddSession(cfg.SessionName)

	// Pre-existing log content from the running session must survive.
	appendLog(t, cfg.LogPath, "boot: earlier run")

	o := newTestOrchestrator(cfg, double, newScriptKeys(), &lockedBuffer{})
	err := o.Run(context.Background())
	if !exitcode.Is(err, exitcode.ErrDuplicateSession) {
		t.Fatalf("err = %v, want duplicate-session code", err)
	}

	data, readErr := os.ReadFile(cfg.LogPath)
	if readErr != nil {
		t.Fatal(readErr)
	}
	if !strings.Contains(string(data), "boot: earlier run") {
		t.Error("duplicate launch truncated the active session's log")
	}
}

func TestRunLaunchCrash(t *testing.T) {
	cfg := testConfig(t)
	double := NewDouble()
	double.LaunchErr = tmux.ErrSessionNotFound

	o := newTestOrchestrator(cfg, double, newScriptKeys(), &lockedBuffer{})
	err := o.Run(context.Background())
	if !exitcode.Is(err, exitcode.ErrSessionStart) {
		t.Fatalf("err = %v, want session-start code", err)
	}
}

func TestRunReadinessTimeout(t *testing.T) {
	cfg := testConfig(t)
	cfg.ReadyTimeout = 200 * time.Millisecond
	double := NewDouble()
	double.OnLaunch = func(logPath string) { appendLog(t, logPath, "boot: stuck forever") }

	o := newTestOrchestrator(cfg, double, newScriptKeys(), &lockedBuffer{})
	err := o.Run(context.Background())
	if !exitcode.Is(err, exitcode.ErrTimeout) {
		t.Fatalf("err = %v, want timeout code", err)
	}
}

func TestRunCodeTimeoutNonFatal(t *testing.T) {
	cfg := testConfig(t)
	double := NewDouble()
	keys := newScriptKeys()
	var out lockedBuffer

	double.OnLaunch = func(logPath string) { appendLog(t, logPath, readyLine) }
	// OnSendKeys deliberately appends nothing: +code never answers.

	o := newTestOrchestrator(cfg, double, keys, &out)

	done := make(chan error, 1)
	go func() { done <- o.Run(context.Background()) }()

	waitFor(t, func() bool { return strings.Contains(out.String(), "press q to detach") })
	keys.ch <- 'q'

	if err := <-done; err != nil {
		t.Fatalf("code timeout must not abort the run: %v", err)
	}
	if !strings.Contains(out.String(), "+code") {
		t.Errorf("operator not told how to retrieve the code manually:\n%s", out.String())
	}
}

func TestRunClipboardFailureSilent(t *testing.T) {
	cfg := testConfig(t)
	double := NewDouble()
	keys := newScriptKeys()
	var out lockedBuffer

	double.OnLaunch = func(logPath string) { appendLog(t, logPath, readyLine) }
	double.OnSendKeys = func(string) { appendLog(t, cfg.LogPath, "lidlut-tabwed-pillex-ridrup") }

	o := newTestOrchestrator(cfg, double, keys, &out)
	o.copyText = func(string) error { return errors.New("no clipboard tool") }
	o.openURL = func(string) error { return errors.New("no browser") }

	done := make(chan error, 1)
	go func() { done <- o.Run(context.Background()) }()

	waitFor(t, func() bool { return strings.Contains(out.String(), "press q to detach") })
	keys.ch <- 'q'

	if err := <-done; err != nil {
		t.Fatalf("clipboard/browser failures must be non-fatal: %v", err)
	}
	if !strings.Contains(out.String(), "lidlut-tabwed-pillex-ridrup") {
		t.Errorf("code not surfaced despite clipboard failure:\n%s", out.String())
	}
}

func TestRunDepCheckFailure(t *testing.T) {
	cfg := testConfig(t)
	double := NewDouble()

	o := newTestOrchestrator(cfg, double, newScriptKeys(), &lockedBuffer{})
	o.checkDeps = func() error { return exitcode.DependencyMissing("tmux", "install tmux") }

	err := o.Run(context.Background())
	if !exitcode.Is(err, exitcode.ErrDependencyMissing) {
		t.Fatalf("err = %v, want dependency-missing code", err)
	}
	if has, _ := double.HasSession(cfg.SessionName); has {
		t.Error("no session should be created when dependencies are missing")
	}
}

func TestRunSessionDiesDuringMonitoring(t *testing.T) {
	cfg := testConfig(t)
	double := NewDouble()
	keys := newScriptKeys()
	var out lockedBuffer

	double.OnLaunch = func(logPath string) { appendLog(t, logPath, readyLine) }
	double.OnSendKeys = func(string) { appendLog(t, cfg.LogPath, "lidlut-tabwed-pillex-ridrup") }

	o := newTestOrchestrator(cfg, double, keys, &out)

	done := make(chan error, 1)
	go func() { done <- o.Run(context.Background()) }()

	waitFor(t, func() bool { return strings.Contains(out.String(), "press q to detach") })
	// The ship crashes out from under the monitor.
	_ = double.KillSession(cfg.SessionName)

	err := <-done
	if !exitcode.Is(err, exitcode.ErrSessionDied) {
		t.Fatalf("err = %v, want session-died code", err)
	}
}

func TestMonitorEOFDetaches(t *testing.T) {
	cfg := testConfig(t)
	double := NewDouble()
	double.AddSession(cfg.SessionName)
	keys := newScriptKeys()

	o := newTestOrchestrator(cfg, double, keys, &lockedBuffer{})
	close(keys.ch) // terminal gone

	if err := o.monitor(context.Background()); err != nil {
		t.Fatalf("EOF should detach cleanly, got %v", err)
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition never became true")
}
