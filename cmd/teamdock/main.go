// Package main is the entry point for the teamdock CLI.
package main

import (
	"os"

	"github.com/teamdock-io/teamdock/internal/cli"
	"github.com/teamdock-io/teamdock/internal/logger"
)

func main() {
	defer logger.Sync()
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
