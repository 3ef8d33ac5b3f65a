package cli

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "blobsim",
	Short: "Slime-mold colony simulator",
	Long:  "Blobsim spreads a slime-mold-like blob over a grid board, steered by a colony of foraging scouters. Single Go binary.",
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(initCmd)
}
