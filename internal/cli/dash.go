package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/teamdock-io/teamdock/internal/config"
	"github.com/teamdock-io/teamdock/internal/tui"
)

var dashCmd = &cobra.Command{
	Use:   "dash",
	Short: "Live dashboard of teams, badges, and connection state",
	RunE: func(cmd *cobra.Command, args []string) error {
		running, info, err := config.IsShellRunning()
		if err != nil {
			return fmt.Errorf("failed to check daemon status: %w", err)
		}
		if !running {
			fmt.Println(styleWarning.Render("Daemon is not running."))
			fmt.Println(styleHint.Render("Start it with: teamdock run"))
			return nil
		}
		return tui.Run(info.BridgeAddr)
	},
}
