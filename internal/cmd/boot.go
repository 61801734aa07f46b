package cmd

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/urbit-tools/shipmate/internal/boot"
	"github.com/urbit-tools/shipmate/internal/config"
)

var (
	bootPierRoot  string
	bootSession   string
	bootLog       string
	bootReadySecs int
	bootCodeSecs  int
	bootNoBrowser bool
	bootNoCopy    bool
)

var bootCmd = &cobra.Command{
	Use:     "boot <ship>",
	GroupID: GroupShip,
	Short:   "Boot or resume a ship and wait for it to come up",
	Long: `Boot a ship in a detached tmux session and supervise its startup.

If the pier directory already exists the ship is resumed; otherwise a
new pier is created. The boot log is tailed to your terminal (filtered
to the interesting lines), and once the web interface is live the
login code is fetched with +code and copied to the clipboard.

Keys while monitoring:
  q   detach, leave the ship running
  x   detach and kill the ship

Examples:
  shipmate boot zod
  shipmate boot sampel-palnet --pier-root ~/ships
  shipmate boot zod --no-browser --ready-timeout 1200`,
	Args: cobra.ExactArgs(1),
	RunE: runBoot,
}

func runBoot(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(".", args[0])
	if err != nil {
		return err
	}
	if bootPierRoot != "" {
		cfg.PierRoot = bootPierRoot
	}
	if bootSession != "" {
		cfg.SessionName = bootSession
	}
	if bootLog != "" {
		cfg.LogPath = bootLog
	}
	if bootReadySecs > 0 {
		cfg.ReadyTimeout = time.Duration(bootReadySecs) * time.Second
	}
	if bootCodeSecs > 0 {
		cfg.CodeTimeout = time.Duration(bootCodeSecs) * time.Second
	}
	if bootNoBrowser {
		cfg.OpenBrowser = false
	}
	if bootNoCopy {
		cfg.CopyCode = false
	}
	if err := cfg.Finalize(); err != nil {
		return err
	}

	// SIGINT/SIGTERM cancel the run; the orchestrator's cleanup guard
	// stops the background watcher on that path like any other.
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	o := boot.New(cfg, boot.NewTermKeys(), os.Stdout)
	return o.Run(ctx)
}

func init() {
	bootCmd.Flags().StringVar(&bootPierRoot, "pier-root", "", "directory piers live in (default current directory)")
	bootCmd.Flags().StringVar(&bootSession, "session", "", "tmux session name (default urbit-<ship>)")
	bootCmd.Flags().StringVar(&bootLog, "log", "", "boot log path (default <pier>.boot.log)")
	bootCmd.Flags().IntVar(&bootReadySecs, "ready-timeout", 0, "seconds to wait for the web interface (default 600)")
	bootCmd.Flags().IntVar(&bootCodeSecs, "code-timeout", 0, "seconds to wait for the +code reply (default 20)")
	bootCmd.Flags().BoolVar(&bootNoBrowser, "no-browser", false, "do not open the web interface in a browser")
	bootCmd.Flags().BoolVar(&bootNoCopy, "no-copy", false, "do not copy the access code to the clipboard")
	rootCmd.AddCommand(bootCmd)
}
