package main

import (
	"context"
	"time"

	"github.com/urfave/cli/v3"
)

// historyRecord is the JSON shape of one run in `transfer history --json`.
type historyRecord struct {
	RunID      string `json:"run_id"`
	StartedAt  string `json:"started_at"`
	FinishedAt string `json:"finished_at"`
	Categories string `json:"categories"`
	Error      string `json:"error,omitempty"`
	Summary    any    `json:"summary"`
}

// TransferHistory lists past transfer runs from the history database.
func (r *Runner) TransferHistory(ctx context.Context, cmd *cli.Command) error {
	runs, closer, err := r.openRuns()
	if err != nil {
		return err
	}
	defer closer()

	criteria := map[string]any{"limit": cmd.Int("limit")}
	if category := cmd.String("category"); category != "" {
		criteria["category"] = category
	}

	records, err := runs.List(criteria)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		out := make([]historyRecord, len(records))
		for i, run := range records {
			summary := run.Summary()
			out[i] = historyRecord{
				RunID:      run.ID(),
				StartedAt:  run.StartedAt().Format(time.RFC3339),
				FinishedAt: run.FinishedAt().Format(time.RFC3339),
				Categories: run.CategoryList(),
				Error:      run.RunError(),
				Summary:    summary,
			}
		}
		return r.writeJSON(out, true)
	}

	if len(records) == 0 {
		return r.writePlain("No transfer runs recorded yet.\n")
	}

	r.writePlainHeader("Transfer History")
	for _, run := range records {
		outcome := "completed"
		if !run.Succeeded() {
			outcome = "aborted: " + run.RunError()
		}
		r.writePlain("%s  %s  [%s]  %s\n",
			run.StartedAt().Format("2006-01-02 15:04"), run.ID(), run.CategoryList(), outcome)
	}

	return nil
}
