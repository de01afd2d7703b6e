package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the Teamdock shell daemon",
	Long: `Start the shell daemon if it is not already running.

The daemon hosts the team surfaces, the tray icon, and the local
bridge. Use 'teamdock dash' to watch its state live.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		info, err := EnsureDaemon()
		if err != nil {
			fmt.Println(styleError.Render("Failed to start daemon: " + err.Error()))
			return err
		}
		fmt.Println(styleSuccess.Render("Daemon running") +
			styleLabel.Render(" (bridge ") + styleValue.Render(info.BridgeAddr) + styleLabel.Render(")"))
		return nil
	},
}
