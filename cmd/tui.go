package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/yttransfer/internal/shared"
	"github.com/desertthunder/yttransfer/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive picker for selecting and transferring resources.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	engine, err := r.transferEngine(ctx)
	if err != nil {
		return err
	}

	// Redirect logs to a file so they don't interfere with TUI rendering.
	logPath := filepath.Join(os.TempDir(), "yttransfer-tui.log")
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer logFile.Close()
	r.SetLogger(shared.NewLogger(logFile))

	model := ui.NewModel(ctx, r.source, engine)
	p := tea.NewProgram(model)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}

// tuiCommand returns the top-level TUI command for interactive transfers.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch the interactive transfer picker",
		Action:  r.TUI,
	}
}
