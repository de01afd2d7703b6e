// Package config handles configuration loading, saving, and path management.
package config

import (
	"os"
	"path/filepath"
)

const (
	// GlobalDirName is the name of the global teamdock directory.
	GlobalDirName = ".teamdock"

	// LogsDirName is the name of the logs directory.
	LogsDirName = "logs"

	// DownloadsDirName is the default downloads directory name.
	DownloadsDirName = "downloads"
)

// File names
const (
	SettingsFileName = "settings.yaml"
	TeamsFileName    = "teams.yaml"
	ShellFileName    = "shell.yaml"
)

// GlobalDir returns the path to the global teamdock directory (~/.teamdock/).
func GlobalDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, GlobalDirName), nil
}

// GlobalSettingsFile returns the path to the settings.yaml file.
func GlobalSettingsFile() (string, error) {
	dir, err := GlobalDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, SettingsFileName), nil
}

// GlobalTeamsFile returns the path to the teams.yaml file.
func GlobalTeamsFile() (string, error) {
	dir, err := GlobalDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, TeamsFileName), nil
}

// GlobalShellFile returns the path to the shell.yaml runtime info file.
func GlobalShellFile() (string, error) {
	dir, err := GlobalDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ShellFileName), nil
}

// GlobalLogsDir returns the path to the logs directory.
func GlobalLogsDir() (string, error) {
	dir, err := GlobalDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, LogsDirName), nil
}

// DefaultDownloadDir returns the default directory for downloads.
func DefaultDownloadDir() (string, error) {
	dir, err := GlobalDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, DownloadsDirName), nil
}

// EnsureGlobalDir creates the global teamdock directory if it doesn't exist.
func EnsureGlobalDir() error {
	dir, err := GlobalDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0o755)
}
