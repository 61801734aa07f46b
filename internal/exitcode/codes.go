// Package exitcode defines structured exit codes for shipmate commands.
// These codes let scripts and supervisors handle specific failure
// conditions programmatically without parsing error messages.
//
// # Exit Code Ranges
//
// Codes are grouped by category for easy identification:
//   - 0: Success
//   - 1-9: General errors (usage, internal)
//   - 10-19: Missing resources (dependency, pier, session)
//   - 20-29: Platform errors
//   - 40-49: Timeout errors
//   - 50-59: Conflict/state errors
package exitcode

import (
	"errors"
	"fmt"
)

// Exit codes for shipmate commands.
const (
	// Success indicates the command completed successfully.
	Success = 0

	// General errors (1-9)
	ErrGeneral  = 1 // General/unknown error
	ErrUsage    = 2 // Invalid arguments or usage
	ErrInternal = 3 // Internal error (bug)

	// Missing resources (10-19)
	ErrDependencyMissing = 10 // Required external tool not installed
	ErrPierNotFound      = 11 // Pier directory not found
	ErrSessionNotFound   = 12 // tmux session not found

	// Platform errors (20-29)
	ErrUnsupportedPlatform = 20 // OS or architecture not supported

	// Timeout errors (40-49)
	ErrTimeout = 40 // Readiness or code detection timed out

	// Conflict/state errors (50-59)
	ErrDuplicateSession = 50 // Session with this name already active
	ErrSessionStart     = 51 // Session died immediately after creation
	ErrSessionDied      = 52 // Session died while being monitored
	ErrPierLocked       = 53 // Another shipmate holds the pier lock
)

// Error wraps an error with a specific exit code.
type Error struct {
	Code    int
	Message string
	Cause   error
}

// Error returns the error message.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new coded error.
func New(code int, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates a new coded error with printf-style formatting.
func Newf(code int, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap wraps an existing error with a code and message.
func Wrap(code int, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// Wrapf wraps an existing error with a code and printf-style message.
func Wrapf(code int, cause error, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// Code extracts the exit code from an error.
// Returns ErrGeneral (1) if the error doesn't have a code.
func Code(err error) int {
	if err == nil {
		return Success
	}
	var coded *Error
	if errors.As(err, &coded) {
		return coded.Code
	}
	return ErrGeneral
}

// Is checks if an error has a specific exit code.
func Is(err error, code int) bool {
	return Code(err) == code
}

// Convenience constructors for common error types.
// These make error creation more readable and ensure correct codes.

// DependencyMissing returns an error for a missing external tool.
// The remedy string tells the operator how to install it.
func DependencyMissing(tool, remedy string) *Error {
	return Newf(ErrDependencyMissing, "%s is not installed\n\n%s", tool, remedy)
}

// UnsupportedPlatform returns an error for an unsupported OS/arch pair.
func UnsupportedPlatform(os, arch string) *Error {
	return Newf(ErrUnsupportedPlatform, "unsupported platform: %s/%s", os, arch)
}

// DuplicateSession returns an error for an already-active session.
func DuplicateSession(name string) *Error {
	return Newf(ErrDuplicateSession,
		"session %q is already running\n\nAttach with: tmux attach -t %s", name, name)
}

// SessionStart returns an error for a session that died right after creation.
func SessionStart(name string) *Error {
	return Newf(ErrSessionStart,
		"session %q died immediately after creation (boot command likely crashed)", name)
}

// Timeout returns a timeout error for a named wait.
func Timeout(operation string) *Error {
	return Newf(ErrTimeout, "timed out waiting for %s", operation)
}
