package cli

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/teamdock-io/teamdock/internal/config"
	"github.com/teamdock-io/teamdock/internal/models"
)

// EnsureDaemon makes sure the shell daemon is running, starting it if
// necessary, and returns its connection info.
func EnsureDaemon() (*models.ShellInfo, error) {
	running, info, err := config.IsShellRunning()
	if err != nil {
		return nil, fmt.Errorf("failed to check daemon status: %w", err)
	}
	if running {
		return info, nil
	}

	// Clean up stale info if it exists
	if info != nil {
		_ = config.RemoveShellInfo()
	}

	return startDaemon()
}

// startDaemon starts the daemon process in the background.
func startDaemon() (*models.ShellInfo, error) {
	daemonPath, err := findDaemonBinary()
	if err != nil {
		return nil, err
	}

	cmd := exec.Command(daemonPath)
	cmd.Stdout = nil
	cmd.Stderr = nil
	cmd.Stdin = nil

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start daemon: %w", err)
	}

	// Wait for daemon to be ready (max 5 seconds)
	for i := 0; i < 50; i++ {
		time.Sleep(100 * time.Millisecond)
		running, info, err := config.IsShellRunning()
		if err == nil && running {
			return info, nil
		}
	}

	return nil, fmt.Errorf("daemon failed to start within timeout")
}

// findDaemonBinary locates the teamdockd binary.
func findDaemonBinary() (string, error) {
	// Try PATH first
	path, err := exec.LookPath("teamdockd")
	if err == nil {
		return path, nil
	}

	// Try relative to current executable
	execPath, err := os.Executable()
	if err == nil && strings.HasSuffix(execPath, "teamdock") {
		daemonPath := execPath + "d"
		if _, err := os.Stat(daemonPath); err == nil {
			return daemonPath, nil
		}
	}

	// Try build directory
	if _, err := os.Stat("./build/teamdockd"); err == nil {
		return "./build/teamdockd", nil
	}

	return "", fmt.Errorf("teamdockd not found. Install or build it first")
}
