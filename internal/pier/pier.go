// Package pier resolves the on-disk pier for a ship and the boot command.
package pier

import (
	"fmt"
	"os"
)

// Mode selects between first boot and resume of an existing pier.
type Mode string

const (
	// ModeCreate boots a new pier for the ship.
	ModeCreate Mode = "create"

	// ModeResume restarts an existing pier.
	ModeResume Mode = "resume"
)

// Target is the resolved boot target. Immutable for the run.
type Target struct {
	Ship string
	Path string
	Mode Mode
}

// Resolve inspects the pier path and decides create vs resume.
// A file where the pier directory should be is an error.
func Resolve(ship, path string) (Target, error) {
	info, err := os.Stat(path)
	switch {
	case os.IsNotExist(err):
		return Target{Ship: ship, Path: path, Mode: ModeCreate}, nil
	case err != nil:
		return Target{}, fmt.Errorf("checking pier %s: %w", path, err)
	case !info.IsDir():
		return Target{}, fmt.Errorf("pier path %s exists but is not a directory", path)
	}
	return Target{Ship: ship, Path: path, Mode: ModeResume}, nil
}

// BootCommand returns the urbit invocation for this target.
// Create boots a fresh pier keyed to the ship name; resume points the
// runtime at the existing pier directory.
func (t Target) BootCommand() []string {
	if t.Mode == ModeCreate {
		return []string{"urbit", "-w", t.Ship, "-c", t.Path}
	}
	return []string{"urbit", t.Path}
}

// Describe returns a one-line operator summary of the target.
func (t Target) Describe() string {
	if t.Mode == ModeCreate {
		return fmt.Sprintf("booting new pier for ~%s at %s", t.Ship, t.Path)
	}
	return fmt.Sprintf("resuming ~%s from %s", t.Ship, t.Path)
}
