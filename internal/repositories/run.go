package repositories

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/desertthunder/yttransfer/internal/models"
)

// TransferRunRepository implements models.Repository[*models.TransferRun].
type TransferRunRepository struct {
	db *sql.DB
}

// NewTransferRunRepository creates a new TransferRunRepository with the given database connection
func NewTransferRunRepository(db *sql.DB) *TransferRunRepository {
	return &TransferRunRepository{db: db}
}

// Create inserts a finished run together with its flattened failure records.
func (r *TransferRunRepository) Create(run *models.TransferRun) error {
	if err := run.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	summaryJSON, err := json.Marshal(run.Summary())
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO transfer_runs (id, started_at, finished_at, categories, summary_json, run_error)
		VALUES (?, ?, ?, ?, ?, ?)
	`, run.ID(), run.StartedAt(), run.FinishedAt(), run.CategoryList(), string(summaryJSON), nullString(run.RunError()))
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	summary := run.Summary()
	if err := insertFailures(tx, run.ID(), models.Subscriptions, summary.Subscriptions); err != nil {
		return err
	}
	if err := insertFailures(tx, run.ID(), models.LikedVideos, summary.LikedVideos); err != nil {
		return err
	}
	if summary.Playlists != nil {
		if err := insertFailures(tx, run.ID(), models.Playlists, &summary.Playlists.CategorySummary); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}

	return nil
}

func insertFailures(tx *sql.Tx, runID string, category models.Category, summary *models.CategorySummary) error {
	if summary == nil {
		return nil
	}
	for _, f := range summary.Failures {
		_, err := tx.Exec(`
			INSERT INTO transfer_failures (run_id, category, resource_id, resource_title, error_detail)
			VALUES (?, ?, ?, ?, ?)
		`, runID, string(category), f.ResourceID, f.ResourceTitle, f.ErrorDetail)
		if err != nil {
			return fmt.Errorf("failed to insert failure record: %w", err)
		}
	}
	return nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// Get retrieves a run by its id.
func (r *TransferRunRepository) Get(id string) (*models.TransferRun, error) {
	row := r.db.QueryRow(`
		SELECT id, started_at, finished_at, categories, summary_json, run_error
		FROM transfer_runs
		WHERE id = ?
	`, id)

	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run not found: %s", id)
	}
	return run, err
}

// Update replaces the stored summary and error for an existing run.
func (r *TransferRunRepository) Update(run *models.TransferRun) error {
	if err := run.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	summaryJSON, err := json.Marshal(run.Summary())
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}

	result, err := r.db.Exec(`
		UPDATE transfer_runs
		SET finished_at = ?, summary_json = ?, run_error = ?
		WHERE id = ?
	`, run.FinishedAt(), string(summaryJSON), nullString(run.RunError()), run.ID())
	if err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("run not found: %s", run.ID())
	}

	return nil
}

// Delete removes a run and its failure records. History rows carry no
// operational state, so deletion is hard.
func (r *TransferRunRepository) Delete(id string) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM transfer_failures WHERE run_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete failure records: %w", err)
	}

	result, err := tx.Exec(`DELETE FROM transfer_runs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("run not found: %s", id)
	}

	return tx.Commit()
}

// List retrieves runs most recent first. Supported criteria: "category"
// (runs that included a category) and "limit".
func (r *TransferRunRepository) List(criteria map[string]any) ([]*models.TransferRun, error) {
	query := `
		SELECT id, started_at, finished_at, categories, summary_json, run_error
		FROM transfer_runs
	`
	args := []any{}

	if category, ok := criteria["category"].(string); ok && category != "" {
		query += ` WHERE ',' || categories || ',' LIKE ?`
		args = append(args, "%,"+category+",%")
	}

	query += " ORDER BY started_at DESC"

	if limit, ok := criteria["limit"].(int); ok && limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []*models.TransferRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return runs, nil
}

// Failures lists failure records across runs for one category, most useful
// for spotting resources that fail repeatedly.
func (r *TransferRunRepository) Failures(category models.Category) ([]models.FailureRecord, error) {
	rows, err := r.db.Query(`
		SELECT resource_id, resource_title, error_detail
		FROM transfer_failures
		WHERE category = ?
	`, string(category))
	if err != nil {
		return nil, fmt.Errorf("failed to query failures: %w", err)
	}
	defer rows.Close()

	var failures []models.FailureRecord
	for rows.Next() {
		var f models.FailureRecord
		if err := rows.Scan(&f.ResourceID, &f.ResourceTitle, &f.ErrorDetail); err != nil {
			return nil, fmt.Errorf("failed to scan failure record: %w", err)
		}
		failures = append(failures, f)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return failures, nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanRun(row scannable) (*models.TransferRun, error) {
	var (
		id          string
		startedAt   time.Time
		finishedAt  time.Time
		categories  string
		summaryJSON string
		runError    sql.NullString
	)

	if err := row.Scan(&id, &startedAt, &finishedAt, &categories, &summaryJSON, &runError); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}

	var summary models.TransferSummary
	if err := json.Unmarshal([]byte(summaryJSON), &summary); err != nil {
		return nil, fmt.Errorf("failed to decode stored summary: %w", err)
	}
	summary.RunID = id

	req := models.TransferRequest{Categories: models.ParseCategoryList(categories)}

	var runErr error
	if runError.Valid && runError.String != "" {
		runErr = fmt.Errorf("%s", runError.String)
	}

	return models.NewTransferRun(req, summary, startedAt, finishedAt, runErr), nil
}
