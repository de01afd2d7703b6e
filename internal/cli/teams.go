package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/teamdock-io/teamdock/internal/config"
	"github.com/teamdock-io/teamdock/internal/keyring"
)

var teamsCmd = &cobra.Command{
	Use:   "teams",
	Short: "List signed-in teams",
	Long: `List the signed-in teams from the persisted team cache.

Badges and connection state are live-only; use 'teamdock dash' for
those.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cache, err := config.LoadTeamCache()
		if err != nil {
			return fmt.Errorf("failed to load team cache: %w", err)
		}

		if len(cache.Teams) == 0 {
			fmt.Println(styleLabel.Render("No teams signed in."))
			return nil
		}

		fmt.Println(styleBrand.Render("Teams"))
		for _, t := range cache.Teams {
			session := styleWarning.Render("no session")
			if _, err := keyring.Token(t.TeamID); err == nil {
				session = styleSuccess.Render("signed in")
			}
			fmt.Printf("  %s %s %s\n",
				styleValue.Render(t.TeamName), styleLabel.Render("("+t.TeamURL+")"), session)
		}
		return nil
	},
}
