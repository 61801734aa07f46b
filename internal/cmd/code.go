package cmd

import (
	"errors"
	"fmt"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/urbit-tools/shipmate/internal/config"
	"github.com/urbit-tools/shipmate/internal/exitcode"
	"github.com/urbit-tools/shipmate/internal/logwatch"
	"github.com/urbit-tools/shipmate/internal/style"
	"github.com/urbit-tools/shipmate/internal/tmux"
)

var (
	codePierRoot string
	codeNoCopy   bool
)

var codeCmd = &cobra.Command{
	Use:     "code <ship>",
	GroupID: GroupShip,
	Short:   "Fetch the web login code from a running ship",
	Long: `Send +code to a running ship's dojo and extract the access code from
its boot log. The ship must have been started with shipmate boot so the
log pipe is attached.`,
	Args: cobra.ExactArgs(1),
	RunE: runCode,
}

func runCode(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(".", args[0])
	if err != nil {
		return err
	}
	if codePierRoot != "" {
		cfg.PierRoot = codePierRoot
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
			"no session %q is running; boot the ship first", cfg.SessionName)
	}

	if err := tm.SendKeys(cfg.SessionName, "+code"); err != nil {
		return fmt.Errorf("sending +code: %w", err)
	}

	code, err := logwatch.WaitForCode(cmd.Context(), cfg.LogPath, cfg.CodeTimeout, cfg.CodePoll)
	if err != nil {
		if errors.Is(err, logwatch.ErrWaitTimeout) {
			return exitcode.Timeout("+code reply")
		}
		return err
	}

	fmt.Printf("%s %s", style.Success.Render("✓"), style.Bold.Render(code))
	if !codeNoCopy && clipboard.WriteAll(code) == nil {
		fmt.Printf(" %s", style.Dim.Render("(copied to clipboard)"))
	}
	fmt.Println()
	return nil
}

func init() {
	codeCmd.Flags().StringVar(&codePierRoot, "pier-root", "", "directory piers live in (default current directory)")
	codeCmd.Flags().BoolVar(&codeNoCopy, "no-copy", false, "do not copy the code to the clipboard")
	rootCmd.AddCommand(codeCmd)
}
