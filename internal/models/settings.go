package models

import "time"

// UpdatesConfig holds settings for update checking.
type UpdatesConfig struct {
	CheckOnStartup bool       `yaml:"check_on_startup"`
	CheckFrequency string     `yaml:"check_frequency"` // "every_launch" | "daily" | "weekly"
	LastChecked    *time.Time `yaml:"last_checked,omitempty"`
}

// AppearanceConfig holds appearance settings.
type AppearanceConfig struct {
	Theme string `yaml:"theme"` // "system" | "light" | "dark"
}

// BridgeConfig holds the local bridge listener settings.
type BridgeConfig struct {
	Port int `yaml:"port"` // 0 = dynamic allocation
}

// Settings represents global application settings.
// This corresponds to ~/.teamdock/settings.yaml.
type Settings struct {
	Version      int              `yaml:"version"`
	DevMode      bool             `yaml:"dev_mode"`
	DownloadDir  string           `yaml:"download_dir"`
	LaunchOnTray bool             `yaml:"launch_on_tray"`
	Updates      UpdatesConfig    `yaml:"updates"`
	Appearance   AppearanceConfig `yaml:"appearance"`
	Bridge       BridgeConfig     `yaml:"bridge"`
}

// NewSettings creates settings with default values.
func NewSettings() *Settings {
	return &Settings{
		Version:      1,
		DevMode:      false,
		DownloadDir:  "",
		LaunchOnTray: true,
		Updates: UpdatesConfig{
			CheckOnStartup: true,
			CheckFrequency: "daily",
			LastChecked:    nil,
		},
		Appearance: AppearanceConfig{
			Theme: "system",
		},
		Bridge: BridgeConfig{
			Port: 0,
		},
	}
}
