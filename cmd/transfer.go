package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/yttransfer/internal/formatter"
	"github.com/desertthunder/yttransfer/internal/models"
	"github.com/desertthunder/yttransfer/internal/shared"
	"github.com/desertthunder/yttransfer/internal/tasks"
	"github.com/urfave/cli/v3"
)

// parseCategories validates and converts category names from the command line.
func parseCategories(names []string) ([]models.Category, error) {
	if len(names) == 0 {
		return []models.Category{models.All}, nil
	}

	categories := make([]models.Category, 0, len(names))
	for _, name := range names {
		switch c := models.Category(name); c {
		case models.Subscriptions, models.LikedVideos, models.Playlists, models.All:
			categories = append(categories, c)
		default:
			return nil, fmt.Errorf("%w: unknown category %q (must be subscriptions, liked_videos, playlists or all)", shared.ErrInvalidArgument, name)
		}
	}
	return categories, nil
}

// TransferRun copies the requested categories from the source account to the target.
func (r *Runner) TransferRun(ctx context.Context, cmd *cli.Command) error {
	categories, err := parseCategories(cmd.StringSlice("category"))
	if err != nil {
		return err
	}

	req := models.TransferRequest{Categories: categories}
	if ids := cmd.StringSlice("select"); len(ids) > 0 {
		if len(categories) != 1 || categories[0] == models.All {
			return fmt.Errorf("%w: --select requires exactly one category other than 'all'", shared.ErrInvalidArgument)
		}
		req.Selection = map[models.Category][]string{categories[0]: ids}
	}

	engine, err := r.transferEngine(ctx)
	if err != nil {
		return err
	}

	r.logger.Info("starting transfer", "categories", categories)
	r.writePlain("Starting transfer: %s → %s\n\n", r.config.Accounts.Source, r.config.Accounts.Target)

	progressCh := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			switch update.Phase {
			case tasks.Enumerate:
				r.writePlain("📥 %s\n", update.Message)
			case tasks.Filter:
				r.writePlain("🔍 %s\n", update.Message)
			case tasks.Mutate, tasks.Skip, tasks.ReplicatePlaylist:
				r.writePlain("   %s\n", update.Message)
			case tasks.Backoff:
				r.writePlain("⏳ %s\n", update.Message)
			case tasks.Summarize:
				r.writePlain("✓ %s\n\n", update.Message)
			}
		}
	}()

	started := time.Now()
	summary, runErr := engine.Run(ctx, progressCh, req)
	close(progressCh)
	<-done

	if summary == nil {
		return runErr
	}

	if !cmd.Bool("no-history") {
		r.recordRun(req, summary, started, runErr)
	}

	r.writePlainHeader("Transfer Summary")
	r.writePlain("%s", formatter.SummaryText(summary))

	if format := cmd.String("format"); format != "text" || cmd.String("output") != "" {
		path, err := formatter.WriteSummary(summary, format, cmd.String("output"))
		if err != nil {
			return err
		}
		r.writePlain("\nSummary written to %s\n", path)
	}

	if runErr != nil {
		if errors.Is(runErr, shared.ErrQuotaExhausted) {
			r.writePlainln("⚠ Daily quota exhausted. Re-run this transfer after the quota resets; already-transferred resources are skipped.")
		}
		return runErr
	}

	return nil
}

// recordRun persists a finished run to the history database. Best effort;
// a storage failure never fails the transfer itself.
func (r *Runner) recordRun(req models.TransferRequest, summary *models.TransferSummary, started time.Time, runErr error) {
	runs, closer, err := r.openRuns()
	if err != nil {
		r.logger.Warn("run history unavailable", "error", err)
		return
	}
	defer closer()

	run := models.NewTransferRun(req, *summary, started, time.Now(), runErr)
	if err := runs.Create(run); err != nil {
		r.logger.Warn("failed to record run", "run_id", summary.RunID, "error", err)
		return
	}
	r.logger.Info("run recorded", "run_id", summary.RunID)
}

// TransferExport enumerates one category on an account and writes it as CSV.
func (r *Runner) TransferExport(ctx context.Context, cmd *cli.Command) error {
	role := cmd.String("account")
	svc, err := r.accountService(ctx, role)
	if err != nil {
		return err
	}

	var data []byte
	switch c := models.Category(cmd.StringArg("category")); c {
	case models.Subscriptions:
		subs, err := svc.Subscriptions(ctx)
		if err != nil {
			return err
		}
		data, err = formatter.SubscriptionsToCSV(subs)
		if err != nil {
			return err
		}
	case models.LikedVideos:
		videos, err := svc.LikedVideos(ctx)
		if err != nil {
			return err
		}
		data, err = formatter.LikedVideosToCSV(videos)
		if err != nil {
			return err
		}
	case models.Playlists:
		playlists, err := svc.Playlists(ctx)
		if err != nil {
			return err
		}
		data, err = formatter.PlaylistsToCSV(playlists)
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("%w: export supports subscriptions, liked_videos or playlists", shared.ErrInvalidArgument)
	}

	return r.writePlain("%s", data)
}

// transferCommand groups the transfer operations.
func transferCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "transfer",
		Usage: "Copy subscriptions, likes and playlists between accounts",
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Run a transfer from the source account to the target account",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:    "category",
						Aliases: []string{"c"},
						Usage:   "Category to transfer: subscriptions, liked_videos, playlists or all (repeatable)",
						Value:   []string{"all"},
					},
					&cli.StringSliceFlag{
						Name:  "select",
						Usage: "Resource ids to transfer; requires a single --category",
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Summary file format: text, json or markdown",
						Value:   "text",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Summary file path (default: transfer_<run id>.<ext>)",
					},
					&cli.BoolFlag{
						Name:  "no-history",
						Usage: "Skip recording this run in the history database",
					},
				},
				Action: r.TransferRun,
			},
			{
				Name:  "export",
				Usage: "Export one category of an account as CSV",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "category"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "account",
						Usage: "Account role to enumerate (source or target)",
						Value: "source",
					},
				},
				Action: r.TransferExport,
			},
			{
				Name:  "history",
				Usage: "List past transfer runs",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of runs to show",
						Value: 20,
					},
					&cli.StringFlag{
						Name:  "category",
						Usage: "Only runs that included this category",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output run summaries as JSON",
					},
				},
				Action: r.TransferHistory,
			},
		},
	}
}
