package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okian/fishery/internal/smoketest"
)

const defaultRunTimeout = 5 * time.Minute

func main() {
	var (
		baseURL   = flag.String("url", smoketest.DefaultBaseURL, "Base URL of the service")
		path      = flag.String("path", smoketest.DefaultPath, "Path of the fish endpoint")
		timeout   = flag.Duration("timeout", smoketest.DefaultTimeout, "HTTP request timeout")
		batchSize = flag.Int("batch", smoketest.DefaultBatchSize, "Number of fish created for the ordering check")
		workers   = flag.Int("workers", smoketest.DefaultWorkers, "Concurrent requests while creating the batch")
		verbose   = flag.Bool("verbose", false, "Enable verbose logging")
		help      = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		smoketest.ShowHelp(os.Stdout)
		return
	}

	if err := smoketest.SetupLogging(*verbose); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, defaultRunTimeout)
	defer cancel()

	cfg := &smoketest.Config{
		BaseURL:   *baseURL,
		Path:      *path,
		Timeout:   *timeout,
		BatchSize: *batchSize,
		Workers:   *workers,
		Verbose:   *verbose,
	}

	if _, err := smoketest.Run(ctx, cfg); err != nil {
		os.Stderr.WriteString("Smoke test failed: " + err.Error() + "\n")
		cancel()
		stop()
		os.Exit(1)
	}
}
