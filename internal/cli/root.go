package cli

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "keepsake",
	Short: "Memory companion backend for dementia care",
	Long:  "Keepsake serves the memory companion API: familiar-faces games, photo reminiscence chat, a simulated biosignal feed, and the adaptive memory trainer.",
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(seedCmd)
}
