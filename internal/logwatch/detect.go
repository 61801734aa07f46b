package logwatch

import (
	"context"
	"errors"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/urbit-tools/shipmate/internal/util"
)

// ErrWaitTimeout is returned when a detection deadline passes with no match.
var ErrWaitTimeout = errors.New("pattern did not appear before deadline")

// WaitFor polls the log file until a line matches pattern, returning the
// captured group from the last matching line in file order, or
// ErrWaitTimeout. The file is re-read in full each poll: the log is
// append-only within a run, so taking the tail match makes last-match-wins
// well-defined without tracking offsets. A missing file counts as no data.
// Success returns as soon as the match is observed; the full timeout is
// only ever spent on failure.
func WaitFor(ctx context.Context, path string, pattern *regexp.Regexp, group int, timeout, poll time.Duration) (string, error) {
	value, err := util.Poll(ctx, util.PollConfig{Timeout: timeout, Interval: poll},
		func() (string, bool, error) {
			data, err := os.ReadFile(path)
			if err != nil {
				if os.IsNotExist(err) {
					return "", false, nil
				}
				return "", false, err
			}
			if v, ok := lastMatch(string(data), pattern, group); ok {
				return v, true, nil
			}
			return "", false, nil
		})
	if errors.Is(err, util.ErrPollTimeout) {
		return "", ErrWaitTimeout
	}
	return value, err
}

// WaitForCode polls the log file for a +code access code, applying the
// ship-name exclusion. Same timing contract as WaitFor.
func WaitForCode(ctx context.Context, path string, timeout, poll time.Duration) (string, error) {
	code, err := util.Poll(ctx, util.PollConfig{Timeout: timeout, Interval: poll},
		func() (string, bool, error) {
			data, err := os.ReadFile(path)
			if err != nil {
				if os.IsNotExist(err) {
					return "", false, nil
				}
				return "", false, err
			}
			c, ok := ExtractCode(StripControl(string(data)))
			return c, ok, nil
		})
	if errors.Is(err, util.ErrPollTimeout) {
		return "", ErrWaitTimeout
	}
	return code, err
}

// lastMatch scans all lines and returns the captured group from the last
// line matching pattern.
func lastMatch(content string, pattern *regexp.Regexp, group int) (string, bool) {
	var value string
	var found bool
	for _, line := range strings.Split(content, "\n") {
		m := pattern.FindStringSubmatch(StripControl(line))
		if m == nil || group >= len(m) {
			continue
		}
		value = m[group]
		found = true
	}
	return value, found
}
