package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/teamdock-io/teamdock/internal/config"
	"github.com/teamdock-io/teamdock/internal/updater"
)

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update teamdock to the latest version",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("Checking for updates...")

		client := &updater.Client{}
		check, err := client.Check(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to check for updates: %w", err)
		}

		if !check.Newer {
			fmt.Printf("Already up to date (v%s).\n", check.Current)
			return nil
		}

		fmt.Printf("Update available: v%s → v%s\n", check.Current, check.Latest)
		fmt.Printf("Release: %s\n", check.PageURL)

		if check.Binaries == nil {
			return fmt.Errorf("release v%s has no binaries for this platform", check.Latest)
		}

		// Stop the daemon before swapping its binary out from under it
		daemonWasRunning, daemonInfo, _ := config.IsShellRunning()
		if daemonWasRunning && daemonInfo != nil {
			fmt.Println("Stopping daemon...")
			if err := stopDaemonForUpdate(daemonInfo.PID); err != nil {
				fmt.Printf("Warning: failed to stop daemon: %v\n", err)
			}
		}

		fmt.Printf("Downloading %s...\n", check.Binaries.CLI.Name)
		cliStaged, err := client.Download(cmd.Context(), check.Binaries.CLI)
		if err != nil {
			return fmt.Errorf("failed to download CLI: %w", err)
		}
		defer os.Remove(cliStaged)

		fmt.Printf("Downloading %s...\n", check.Binaries.Daemon.Name)
		daemonStaged, err := client.Download(cmd.Context(), check.Binaries.Daemon)
		if err != nil {
			return fmt.Errorf("failed to download daemon: %w", err)
		}
		defer os.Remove(daemonStaged)

		selfPath, err := os.Executable()
		if err != nil {
			return fmt.Errorf("failed to find self: %w", err)
		}
		selfPath, err = filepath.EvalSymlinks(selfPath)
		if err != nil {
			return fmt.Errorf("failed to resolve self: %w", err)
		}

		fmt.Println("Installing CLI...")
		if err := updater.Install(selfPath, cliStaged); err != nil {
			return fmt.Errorf("failed to install CLI: %w", err)
		}

		// The daemon lives next to the CLI
		fmt.Println("Installing daemon...")
		daemonDest := filepath.Join(filepath.Dir(selfPath), "teamdockd")
		if err := updater.Install(daemonDest, daemonStaged); err != nil {
			return fmt.Errorf("failed to install daemon: %w", err)
		}

		if daemonWasRunning {
			fmt.Println("Restarting daemon...")
			if _, err := startDaemon(); err != nil {
				fmt.Printf("Warning: failed to restart daemon: %v\n", err)
			}
		}

		fmt.Println(styleSuccess.Render(fmt.Sprintf("Updated to v%s.", check.Latest)))
		if notes := strings.TrimSpace(check.Notes); notes != "" {
			fmt.Println()
			fmt.Println(styleBrand.Render("Release notes"))
			fmt.Println(styleLabel.Render(notes))
		}
		return nil
	},
}

// stopDaemonForUpdate asks the daemon to exit and waits for it.
func stopDaemonForUpdate(pid int) error {
	process, err := os.FindProcess(pid)
	if err != nil {
		return err
	}
	if err := process.Signal(syscall.SIGTERM); err != nil {
		return err
	}

	// Wait up to 5 seconds for it to exit
	for i := 0; i < 50; i++ {
		time.Sleep(100 * time.Millisecond)
		if err := process.Signal(syscall.Signal(0)); err != nil {
			return nil
		}
	}
	return fmt.Errorf("daemon did not exit in time")
}
