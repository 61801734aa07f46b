// Package cmd provides CLI commands for the shipmate tool.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/urbit-tools/shipmate/internal/exitcode"
	"github.com/urbit-tools/shipmate/internal/style"
)

var rootCmd = &cobra.Command{
	Use:     "shipmate",
	Short:   "Boot and supervise an Urbit ship in tmux",
	Version: Version,
	Long: `shipmate boots an Urbit ship inside a detached tmux session, watches
the boot log for the web interface and the +code access code, hands both
to you, and then monitors the ship until you detach or kill it.

The ship keeps running in its tmux session after shipmate exits; attach
to it at any time with tmux attach.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Command group IDs - used by subcommands to organize help output
const (
	GroupShip = "ship"
	GroupDiag = "diag"
)

// Execute runs the root command and returns an exit code.
// The caller (main) should call os.Exit with this code.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", style.Error.Render("error:"), err)
		return exitcode.Code(err)
	}
	return exitcode.Success
}

func init() {
	if os.Getenv("NO_COLOR") != "" {
		style.DisableColors()
	}

	rootCmd.AddGroup(
		&cobra.Group{ID: GroupShip, Title: "Ship Management:"},
		&cobra.Group{ID: GroupDiag, Title: "Diagnostics:"},
	)
	rootCmd.SetHelpCommandGroupID(GroupDiag)
	rootCmd.SetCompletionCommandGroupID(GroupDiag)
}
