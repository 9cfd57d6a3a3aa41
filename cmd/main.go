package main

import (
	"context"
	"errors"
	"os"

	"github.com/desertthunder/yttransfer/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		} else {
			logger.Warn("failed to load config.toml, using defaults", "error", err)
		}
	}

	runner := NewRunner(RunnerOpts{
		Config: config,
		Logger: logger,
	})

	app := &cli.Command{
		Name:     "yttransfer",
		Usage:    "Copy subscriptions, liked videos and playlists between YouTube accounts",
		Version:  "0.1.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		if errors.Is(err, shared.ErrQuotaExhausted) {
			logger.Warn("run aborted on quota exhaustion, resume later")
			os.Exit(1)
		}
		logger.Fatalf("application error: %v", err)
	}
}
