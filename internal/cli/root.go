// Package cli implements the teamdock CLI commands.
package cli

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "teamdock",
	Short: "Multi-team desktop chat client shell",
	Long: `Teamdock hosts one embedded workspace surface per signed-in team
behind a single window, with unified unread badges, a tray icon, and
a live reconciliation core keeping the team list authoritative.`,
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Add subcommands (alphabetical)
	rootCmd.AddCommand(dashCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(settingsCmd)
	rootCmd.AddCommand(teamsCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(versionCmd)
}
