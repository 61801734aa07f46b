package logwatch

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"regexp"
	"sync"
	"time"
)

// defaultPollInterval is how often the tail checks for new log data.
const defaultPollInterval = 250 * time.Millisecond

// Watcher is a cancellable background tail over the boot log. It filters
// lines against the interest patterns, strips control sequences, and
// writes marker-prefixed lines to the sink. Lines that match no pattern
// are dropped so the operator sees a readable digest, not a full mirror.
type Watcher struct {
	path     string
	patterns []*regexp.Regexp
	marker   string
	sink     io.Writer
	interval time.Duration

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	stopped sync.Once
}

// Option adjusts a Watcher before it starts.
type Option func(*Watcher)

// WithPatterns replaces the default interest patterns.
func WithPatterns(patterns []*regexp.Regexp) Option {
	return func(w *Watcher) { w.patterns = patterns }
}

// WithInterval overrides the tail poll interval.
func WithInterval(d time.Duration) Option {
	return func(w *Watcher) { w.interval = d }
}

// New returns a Watcher over path writing to sink. marker is prepended
// to every emitted line (e.g. "[~zod]").
func New(path, marker string, sink io.Writer, opts ...Option) *Watcher {
	w := &Watcher{
		path:     path,
		patterns: InterestPatterns,
		marker:   marker,
		sink:     sink,
		interval: defaultPollInterval,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start launches the tail goroutine. Calling Start on a running watcher
// is a bug; each Watcher runs at most once.
func (w *Watcher) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel
	w.done = make(chan struct{})
	go func() {
		defer close(w.done)
		w.tail(ctx)
	}()
}

// Stop cancels the tail and waits for it to finish. Idempotent: stopping
// twice, or stopping a watcher that was never started, is a no-op.
func (w *Watcher) Stop() {
	w.stopped.Do(func() {
		w.mu.Lock()
		cancel, done := w.cancel, w.done
		w.mu.Unlock()
		if cancel == nil {
			return
		}
		cancel()
		<-done
	})
}

// tail is the producer loop: read new lines from the log, tolerating the
// file not existing yet and the file being truncated underneath us.
func (w *Watcher) tail(ctx context.Context) {
	var offset int64

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		info, err := os.Stat(w.path)
		if err != nil {
			// Not written yet; keep polling.
			if !w.sleep(ctx) {
				return
			}
			continue
		}
		if info.Size() < offset {
			// Truncated or rotated underneath us; start over.
			offset = 0
		}
		if info.Size() == offset {
			if !w.sleep(ctx) {
				return
			}
			continue
		}

		n, err := w.drain(offset)
		if err != nil {
			if !w.sleep(ctx) {
				return
			}
			continue
		}
		offset = n
	}
}

// drain reads complete lines from offset to EOF, emitting matches.
// Returns the new offset (end of the last complete line).
func (w *Watcher) drain(offset int64) (int64, error) {
	f, err := os.Open(w.path)
	if err != nil {
		return offset, err
	}
	defer f.Close()

	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		return offset, err
	}

	reader := bufio.NewReader(f)
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			// Partial line at EOF: leave it for the next pass.
			return offset, nil
		}
		offset += int64(len(line))
		w.emit(line[:len(line)-1])
	}
}

// emit is the transform + consumer stage: strip, filter, format, write.
func (w *Watcher) emit(raw string) {
	line := StripControl(raw)
	if line == "" || !matchesAny(line, w.patterns) {
		return
	}
	fmt.Fprintf(w.sink, "%s %s\n", w.marker, line)
}

// sleep waits one poll interval; returns false if the context ended.
func (w *Watcher) sleep(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(w.interval):
		return true
	}
}
