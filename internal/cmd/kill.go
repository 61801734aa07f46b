package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/urbit-tools/shipmate/internal/config"
	"github.com/urbit-tools/shipmate/internal/exitcode"
	"github.com/urbit-tools/shipmate/internal/style"
	"github.com/urbit-tools/shipmate/internal/tmux"
)

var killPierRoot string

var killCmd = &cobra.Command{
	Use:     "kill <ship>",
	GroupID: GroupShip,
	Short:   "Terminate a ship's tmux session",
	Long: `Kill the tmux session hosting a ship. The runtime checkpoints its
state on shutdown, so the pier can be resumed later with shipmate boot.`,
	Args: cobra.ExactArgs(1),
	RunE: runKill,
}

func runKill(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(".", args[0])
	if err != nil {
		return err
	}
	if killPierRoot != "" {
		cfg.PierRoot = killPierRoot
	}
	if err := cfg.Finalize(); err != nil {
		return err
	}

	tm := tmux.NewTmux()
	running, err := tm.HasSession(cfg.SessionName)
	if err != nil {
		return fmt.Errorf("checking session: %w", err)
	}
	if !running {
		return exitcode.Newf(exitcode.ErrSessionNotFound,
			"no session %q is running", cfg.SessionName)
	}

	if err := tm.KillSession(cfg.SessionName); err != nil {
		return fmt.Errorf("killing session: %w", err)
	}
	fmt.Printf("%s ~%s stopped\n", style.Success.Render("✓"), cfg.Ship)
	return nil
}

func init() {
	killCmd.Flags().StringVar(&killPierRoot, "pier-root", "", "directory piers live in (default current directory)")
	rootCmd.AddCommand(killCmd)
}
