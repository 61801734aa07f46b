package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/urbit-tools/shipmate/internal/boot"
	"github.com/urbit-tools/shipmate/internal/config"
	"github.com/urbit-tools/shipmate/internal/deps"
	"github.com/urbit-tools/shipmate/internal/style"
	"github.com/urbit-tools/shipmate/internal/tmux"
)

var statusPierRoot string

// statusPaneLines is how much recent pane output status shows.
const statusPaneLines = 10

var statusCmd = &cobra.Command{
	Use:     "status <ship>",
	GroupID: GroupDiag,
	Short:   "Show whether a ship's session is running",
	Long: `Show the state of a ship's tmux session, the last boot run record,
and the most recent pane output.`,
	Args: cobra.ExactArgs(1),
	RunE: runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(".", args[0])
	if err != nil {
		return err
	}
	if statusPierRoot != "" {
		cfg.PierRoot = statusPierRoot
	}
	if err := cfg.Finalize(); err != nil {
		return err
	}

	tm := tmux.NewTmux()
	running, err := tm.HasSession(cfg.SessionName)
	if err != nil {
		return fmt.Errorf("checking session: %w", err)
	}

	fmt.Printf("%s ~%s\n", style.Bold.Render("ship:"), cfg.Ship)
	if running {
		fmt.Printf("%s running in session %q %s\n",
			style.Success.Render("●"), cfg.SessionName,
			style.Dim.Render("(tmux attach -t "+cfg.SessionName+")"))
	} else {
		fmt.Printf("%s not running\n", style.Dim.Render("○"))
	}

	if status, err := boot.LoadStatus(cfg.StatusPath()); err == nil && status != nil {
		fmt.Printf("%s %s boot at %s (run %s)\n", style.Bold.Render("last:"),
			status.Mode, status.StartedAt.Format("2006-01-02 15:04:05"),
			style.Dim.Render(status.RunID))
		if status.Endpoint != "" {
			fmt.Printf("%s %s\n", style.Bold.Render("web: "), status.Endpoint)
		}
	}

	if running {
		if pane, err := tm.CapturePane(cfg.SessionName, statusPaneLines); err == nil && pane != "" {
			fmt.Printf("\n%s\n", style.Dim.Render("recent output:"))
			for _, line := range strings.Split(strings.TrimRight(pane, "\n"), "\n") {
				fmt.Printf("  %s\n", line)
			}
		}
	}
	return nil
}

var depsCmd = &cobra.Command{
	Use:     "deps",
	GroupID: GroupDiag,
	Short:   "Check external tool dependencies",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Print(deps.Summary())
	},
}

func init() {
	statusCmd.Flags().StringVar(&statusPierRoot, "pier-root", "", "directory piers live in (default current directory)")
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(depsCmd)
}
