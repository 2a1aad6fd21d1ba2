// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "top-issues",
	Short: "A CLI tool to rank and label the most popular issues and pull requests.",
	Long: `top-issues ranks the open issues and pull requests of a GitHub repository
by their reaction score, marks the current top items per category with labels
(issues, bugs, feature requests, pull requests and custom categories), and
keeps a single dashboard issue summarizing all rankings up to date.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	// Add a persistent flag for verbose output, available to all commands.
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose/debug logging")
}
