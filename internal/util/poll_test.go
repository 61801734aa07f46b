package util

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestPoll_ImmediateSuccess(t *testing.T) {
	calls := 0
	start := time.Now()
	got, err := Poll(context.Background(), PollConfig{Timeout: 5 * time.Second, Interval: time.Second},
		func() (string, bool, error) {
			calls++
			return "ready", true, nil
		})
	if err != nil {
		t.Fatalf("Poll: %v", err)
	}
	if got != "ready" {
		t.Errorf("result = %q, want %q", got, "ready")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Errorf("immediate success took %v, should not sleep", elapsed)
	}
}

func TestPoll_SucceedsAfterRetries(t *testing.T) {
	calls := 0
	got, err := Poll(context.Background(), PollConfig{Timeout: 2 * time.Second, Interval: 10 * time.Millisecond},
		func() (int, bool, error) {
			calls++
			return calls, calls >= 3, nil
		})
	if err != nil {
		t.Fatalf("Poll: %v", err)
	}
	if got != 3 {
		t.Errorf("result = %d, want 3", got)
	}
}

func TestPoll_Timeout(t *testing.T) {
	start := time.Now()
	_, err := Poll(context.Background(), PollConfig{Timeout: 50 * time.Millisecond, Interval: 10 * time.Millisecond},
		func() (string, bool, error) {
			return "", false, nil
		})
	if !errors.Is(err, ErrPollTimeout) {
		t.Fatalf("err = %v, want ErrPollTimeout", err)
	}
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Errorf("timed-out poll ran %v past a 50ms deadline", elapsed)
	}
}

func TestPoll_ErrorAborts(t *testing.T) {
	boom := errors.New("boom")
	calls := 0
	_, err := Poll(context.Background(), PollConfig{Timeout: time.Second, Interval: 10 * time.Millisecond},
		func() (string, bool, error) {
			calls++
			return "", false, boom
		})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1 (errors are not retried)", calls)
	}
}

func TestPoll_ContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Poll(ctx, PollConfig{Timeout: time.Second, Interval: 10 * time.Millisecond},
		func() (string, bool, error) {
			return "", false, nil
		})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestPoll_Defaults(t *testing.T) {
	// Zero config should not panic or spin; success on first call.
	got, err := Poll(context.Background(), PollConfig{}, func() (bool, bool, error) {
		return true, true, nil
	})
	if err != nil || !got {
		t.Fatalf("Poll with defaults: got=%v err=%v", got, err)
	}
}
