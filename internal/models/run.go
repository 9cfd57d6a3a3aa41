package models

import (
	"fmt"
	"strings"
	"time"
)

// TransferRun is the persisted record of one transfer invocation.
//
// The engine itself is memoryless; the CLI and web layers record finished
// runs so `transfer history` can list them. Implements [Model].
type TransferRun struct {
	id         string
	startedAt  time.Time
	finishedAt time.Time
	categories []Category
	summary    TransferSummary
	runError   string
}

// NewTransferRun builds a run record from a finished invocation. The run id
// comes from the summary; runErr carries the abort reason for partial runs.
func NewTransferRun(req TransferRequest, summary TransferSummary, startedAt, finishedAt time.Time, runErr error) *TransferRun {
	run := &TransferRun{
		id:         summary.RunID,
		startedAt:  startedAt,
		finishedAt: finishedAt,
		categories: append([]Category(nil), req.Categories...),
		summary:    summary,
	}
	if runErr != nil {
		run.runError = runErr.Error()
	}
	return run
}

func (r *TransferRun) ID() string           { return r.id }
func (r *TransferRun) CreatedAt() time.Time { return r.startedAt }
func (r *TransferRun) UpdatedAt() time.Time { return r.finishedAt }

func (r *TransferRun) StartedAt() time.Time     { return r.startedAt }
func (r *TransferRun) FinishedAt() time.Time    { return r.finishedAt }
func (r *TransferRun) Categories() []Category   { return r.categories }
func (r *TransferRun) Summary() TransferSummary { return r.summary }
func (r *TransferRun) RunError() string         { return r.runError }

// Succeeded reports whether the run finished without an abort.
func (r *TransferRun) Succeeded() bool { return r.runError == "" }

// SetID overrides the run id; used when rehydrating from storage.
func (r *TransferRun) SetID(id string) {
	r.id = id
	r.summary.RunID = id
}

// Validate checks the run record before persistence.
func (r *TransferRun) Validate() error {
	if r.id == "" {
		return fmt.Errorf("run id is required")
	}
	if len(r.categories) == 0 {
		return fmt.Errorf("at least one category is required")
	}
	if r.finishedAt.Before(r.startedAt) {
		return fmt.Errorf("finished before it started")
	}
	return nil
}

// CategoryList renders the run's categories as a comma-separated string for storage.
func (r *TransferRun) CategoryList() string {
	names := make([]string, len(r.categories))
	for i, c := range r.categories {
		names[i] = string(c)
	}
	return strings.Join(names, ",")
}

// ParseCategoryList parses the stored comma-separated category list.
func ParseCategoryList(s string) []Category {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	categories := make([]Category, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			categories = append(categories, Category(part))
		}
	}
	return categories
}
