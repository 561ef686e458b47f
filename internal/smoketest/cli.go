// Package smoketest runs end-to-end checks against a running fish service.
package smoketest

import (
	"fmt"
	"io"
	"os"

	"github.com/okian/fishery/pkg/logger"
)

// SetupLogging initializes the process logger for the smoke tool.
func SetupLogging(verbose bool) error {
	if err := logger.Init(logger.WithWriter(os.Stdout)); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	if verbose {
		return logger.SetLevelString("debug")
	}
	return nil
}

// ShowHelp prints usage information for the smoke tool.
func ShowHelp(w io.Writer) {
	_, _ = io.WriteString(w, `Fishery Smoke Tool
==================

Runs create, list, update and delete against a running fish endpoint and
checks ordering, validation and method handling. Every fish it creates is
deleted again.

Usage:
  go run ./cmd/fish-smoke [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -path string
        Path of the fish endpoint (default "/fish")
  -timeout duration
        HTTP request timeout (default 30s)
  -batch int
        Number of fish created for the ordering check (default 8)
  -workers int
        Concurrent requests while creating the batch (default 4)
  -verbose
        Enable verbose logging
  -help
        Show this help message

Examples:
  # Check a local server
  go run ./cmd/fish-smoke

  # Check a deployment mounted under /api/fish
  go run ./cmd/fish-smoke -url https://fish.example.com -path /api/fish -verbose
`)
}
