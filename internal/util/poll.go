package util

import (
	"context"
	"errors"
	"time"
)

// ErrPollTimeout is returned when a poll deadline passes without success.
var ErrPollTimeout = errors.New("poll deadline exceeded")

// PollConfig configures a bounded polling loop.
type PollConfig struct {
	// Timeout is the total time budget (default: 30s).
	Timeout time.Duration

	// Interval is the sleep between attempts (default: 1s).
	Interval time.Duration
}

// Poll calls fn every Interval until it reports done, the Timeout elapses,
// or the context is cancelled. The first attempt runs immediately, so a
// condition that already holds is observed without sleeping.
//
// fn returns (result, done, err). A non-nil err aborts the loop and is
// returned as-is; done=false with err=nil means "not yet, keep polling".
// On deadline the returned error wraps ErrPollTimeout.
func Poll[T any](ctx context.Context, cfg PollConfig, fn func() (T, bool, error)) (T, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Interval <= 0 {
		cfg.Interval = time.Second
	}

	var zero T
	deadline := time.Now().Add(cfg.Timeout)

	for {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		result, done, err := fn()
		if err != nil {
			return zero, err
		}
		if done {
			return result, nil
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return zero, ErrPollTimeout
		}
		sleep := cfg.Interval
		if sleep > remaining {
			sleep = remaining
		}

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(sleep):
		}
	}
}
