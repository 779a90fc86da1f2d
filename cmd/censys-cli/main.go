package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/censys-cli/internal/cli"
	"github.com/censys-cli/internal/config"
	"github.com/censys-cli/internal/logging"
	"github.com/sirupsen/logrus"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.Errorf("Failed to load configuration: %v", err)
		return cli.ExitError
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		logrus.Errorf("Invalid configuration: %v", err)
		return cli.ExitError
	}

	closer, err := logging.Setup(logging.Options{
		Level: cfg.App.LogLevel,
		File:  cfg.App.LogFile,
	})
	if err != nil {
		logrus.Errorf("Failed to set up logging: %v", err)
		return cli.ExitError
	}
	defer closer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return cli.Run(ctx, cfg, os.Args[1:], os.Stdout, os.Stderr)
}
