// Package cli implements the Habit King command-line interface using Cobra.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/habit-king/habitking/internal/daemon"
)

var rootCmd = &cobra.Command{
	Use:   "habitking",
	Short: "Habit King: habits, streaks and monthly champions",
	Long: `Habit King scores daily habits, to-dos and monthly goals, keeps streaks,
and crowns one champion per group each month.

Run 'habitking serve' to start the HTTP API.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. Called from main.go.
func Execute(version string) {
	rootCmd.Version = version
	daemon.Version = version

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
