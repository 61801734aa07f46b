// shipmate boots and supervises Urbit ships in tmux sessions.
package main

import (
	"os"

	"github.com/urbit-tools/shipmate/internal/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
