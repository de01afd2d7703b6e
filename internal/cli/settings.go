package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/teamdock-io/teamdock/internal/config"
)

var settingsCmd = &cobra.Command{
	Use:     "settings",
	Aliases: []string{"config"},
	Short:   "Configure Teamdock settings",
	Long: `Configure global settings interactively.

This allows you to modify:
  - Download directory
  - Launch on tray
  - Update checking (on startup, frequency)
  - Appearance theme

Press Enter to keep the current value for any setting. A running
daemon picks changes up automatically.`,
	RunE: runSettings,
}

func runSettings(cmd *cobra.Command, args []string) error {
	settings, err := config.LoadSettings()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	reader := bufio.NewReader(os.Stdin)
	changed := false

	// Download directory
	defaultDir, _ := config.DefaultDownloadDir()
	current := settings.DownloadDir
	if current == "" {
		current = defaultDir
	}
	fmt.Printf("Download directory [%s]: ", current)
	dir, _ := reader.ReadString('\n')
	dir = strings.TrimSpace(dir)
	if dir != "" && dir != settings.DownloadDir {
		settings.DownloadDir = dir
		changed = true
	}

	// Launch on tray
	fmt.Printf("Launch on tray (true/false) [%t]: ", settings.LaunchOnTray)
	if v, ok := readBool(reader); ok && v != settings.LaunchOnTray {
		settings.LaunchOnTray = v
		changed = true
	}

	// Update checking
	fmt.Printf("Check for updates on startup (true/false) [%t]: ", settings.Updates.CheckOnStartup)
	if v, ok := readBool(reader); ok && v != settings.Updates.CheckOnStartup {
		settings.Updates.CheckOnStartup = v
		changed = true
	}

	fmt.Printf("Update check frequency (every_launch/daily/weekly) [%s]: ", settings.Updates.CheckFrequency)
	freq, _ := reader.ReadString('\n')
	freq = strings.TrimSpace(freq)
	switch freq {
	case "":
	case "every_launch", "daily", "weekly":
		if freq != settings.Updates.CheckFrequency {
			settings.Updates.CheckFrequency = freq
			changed = true
		}
	default:
		fmt.Println(styleWarning.Render("Invalid frequency, keeping " + settings.Updates.CheckFrequency))
	}

	// Appearance
	fmt.Printf("Theme (system/light/dark) [%s]: ", settings.Appearance.Theme)
	theme, _ := reader.ReadString('\n')
	theme = strings.TrimSpace(theme)
	switch theme {
	case "":
	case "system", "light", "dark":
		if theme != settings.Appearance.Theme {
			settings.Appearance.Theme = theme
			changed = true
		}
	default:
		fmt.Println(styleWarning.Render("Invalid theme, keeping " + settings.Appearance.Theme))
	}

	if !changed {
		fmt.Println(styleLabel.Render("No changes."))
		return nil
	}

	if err := config.SaveSettings(settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	fmt.Println(styleSuccess.Render("Settings saved."))
	return nil
}

func readBool(reader *bufio.Reader) (bool, bool) {
	line, _ := reader.ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "true", "yes", "y":
		return true, true
	case "false", "no", "n":
		return false, true
	default:
		return false, false
	}
}
