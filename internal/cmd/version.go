package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is the shipmate release version.
var Version = "0.4.1"

var versionCmd = &cobra.Command{
	Use:     "version",
	GroupID: GroupDiag,
	Short:   "Print the shipmate version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("shipmate %s\n", Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
