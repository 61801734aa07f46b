// Package deps checks the external tools shipmate needs at runtime.
package deps

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"github.com/urbit-tools/shipmate/internal/exitcode"
)

// Tool describes one external dependency.
type Tool struct {
	// Name is the binary looked up in PATH.
	Name string

	// Required marks tools whose absence is fatal.
	Required bool

	// Remedy is operator-facing install guidance shown when missing.
	Remedy string
}

// requiredTools are checked before any session work starts.
var requiredTools = []Tool{
	{
		Name:     "tmux",
		Required: true,
		Remedy:   "Install with your package manager, e.g.:\n  macOS:  brew install tmux\n  Debian: apt install tmux",
	},
	{
		Name:     "urbit",
		Required: true,
		Remedy:   "Download the runtime from https://urbit.org/getting-started\nand place the urbit binary on your PATH.",
	},
}

// clipboardTools are the platform clipboard writers probed in order.
// None being present only degrades the access-code handoff.
var clipboardTools = map[string][]string{
	"darwin": {"pbcopy"},
	"linux":  {"xclip", "xsel", "wl-copy"},
}

// Has reports whether a binary is present in PATH.
func Has(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

// CheckPlatform verifies the host OS is one shipmate can drive tmux on.
func CheckPlatform() error {
	switch runtime.GOOS {
	case "linux", "darwin":
		return nil
	default:
		return exitcode.UnsupportedPlatform(runtime.GOOS, runtime.GOARCH)
	}
}

// CheckRequired verifies every required tool is installed.
// Returns a DependencyMissing error naming the first absent tool.
func CheckRequired() error {
	return checkTools(requiredTools)
}

func checkTools(tools []Tool) error {
	for _, tool := range tools {
		if Has(tool.Name) {
			continue
		}
		if tool.Required {
			return exitcode.DependencyMissing(tool.Name, tool.Remedy)
		}
	}
	return nil
}

// ClipboardTool returns the first available clipboard writer for this OS,
// or empty if none is installed.
func ClipboardTool() string {
	for _, name := range clipboardTools[runtime.GOOS] {
		if Has(name) {
			return name
		}
	}
	return ""
}

// Summary returns a human-readable dependency report for diagnostics.
func Summary() string {
	var b strings.Builder
	for _, tool := range requiredTools {
		state := "ok"
		if !Has(tool.Name) {
			state = "missing"
		}
		fmt.Fprintf(&b, "%-8s %s\n", tool.Name, state)
	}
	if cb := ClipboardTool(); cb != "" {
		fmt.Fprintf(&b, "%-8s ok (%s)\n", "clip", cb)
	} else {
		fmt.Fprintf(&b, "%-8s missing (code copy disabled)\n", "clip")
	}
	return b.String()
}
