package models

import "time"

// ShellInfo represents the running daemon's connection information.
// This corresponds to ~/.teamdock/shell.yaml.
type ShellInfo struct {
	Version    int       `yaml:"version"`
	BridgeAddr string    `yaml:"bridge_addr"`
	PID        int       `yaml:"pid"`
	StartedAt  time.Time `yaml:"started_at"`
}

// NewShellInfo creates a new shell info with current values.
func NewShellInfo(bridgeAddr string, pid int) *ShellInfo {
	return &ShellInfo{
		Version:    1,
		BridgeAddr: bridgeAddr,
		PID:        pid,
		StartedAt:  time.Now().UTC(),
	}
}
