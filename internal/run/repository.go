package run

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
)

// Repository stores runs in the simulation_runs table.
type Repository struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewRepository(db *sql.DB, logger *slog.Logger) *Repository {
	logger.Debug("Initializing run repository")

	return &Repository{
		db:     db,
		logger: logger,
	}
}

func (r *Repository) Save(ctx context.Context, run *Run) error {
	logger := r.logger.With(
		"component", "run_repository",
		"operation", "save_run",
		"galaxy_count", run.GalaxyCount,
		"steps", run.Steps,
		"seed", run.Seed,
	)
	logger.Debug("Saving run")

	report, err := json.Marshal(run.Report)
	if err != nil {
		logger.Error("Failed to encode run report", "error", err)
		return fmt.Errorf("failed to encode run report: %w", err)
	}

	query := `
		INSERT INTO simulation_runs (status, galaxy_count, time_step, steps, seed, degenerate_policy, duration_ms, report)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`

	err = r.db.QueryRowContext(ctx, query,
		run.Status,
		run.GalaxyCount,
		run.TimeStep,
		run.Steps,
		strconv.FormatUint(run.Seed, 10),
		run.DegeneratePolicy,
		run.DurationMS,
		report,
	).Scan(&run.ID, &run.CreatedAt)
	if err != nil {
		logger.Error("Failed to save run", "error", err)
		return fmt.Errorf("failed to save run: %w", err)
	}

	logger.Info("Run saved", "run_id", run.ID)
	return nil
}

func (r *Repository) Get(ctx context.Context, id int) (*Run, error) {
	logger := r.logger.With("component", "run_repository", "operation", "get_run", "run_id", id)
	logger.Debug("Getting run by ID")

	query := `
		SELECT id, status, galaxy_count, time_step, steps, seed, degenerate_policy, duration_ms, report, created_at
		FROM simulation_runs
		WHERE id = $1
	`

	var (
		run    Run
		seed   string
		report []byte
	)
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&run.ID,
		&run.Status,
		&run.GalaxyCount,
		&run.TimeStep,
		&run.Steps,
		&seed,
		&run.DegeneratePolicy,
		&run.DurationMS,
		&report,
		&run.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			logger.Debug("Run not found")
			return nil, nil
		}
		logger.Error("Database error getting run", "error", err)
		return nil, fmt.Errorf("database error: %w", err)
	}

	if run.Seed, err = strconv.ParseUint(seed, 10, 64); err != nil {
		return nil, fmt.Errorf("corrupt seed %q for run %d: %w", seed, id, err)
	}
	if err := json.Unmarshal(report, &run.Report); err != nil {
		return nil, fmt.Errorf("corrupt report for run %d: %w", id, err)
	}

	return &run, nil
}

func (r *Repository) List(ctx context.Context) ([]RunSummary, error) {
	logger := r.logger.With("component", "run_repository", "operation", "list_runs")
	logger.Debug("Listing runs")

	query := `
		SELECT id, status, galaxy_count, steps, seed, created_at
		FROM simulation_runs
		ORDER BY id DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		logger.Error("Failed to query runs", "error", err)
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			logger.Error("Failed to close rows", "error", err)
		}
	}()

	var summaries []RunSummary
	for rows.Next() {
		var (
			s    RunSummary
			seed string
		)
		if err := rows.Scan(&s.ID, &s.Status, &s.GalaxyCount, &s.Steps, &seed, &s.CreatedAt); err != nil {
			logger.Error("Failed to scan run row", "error", err)
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		if s.Seed, err = strconv.ParseUint(seed, 10, 64); err != nil {
			return nil, fmt.Errorf("corrupt seed %q for run %d: %w", seed, s.ID, err)
		}
		summaries = append(summaries, s)
	}

	if err := rows.Err(); err != nil {
		logger.Error("Error iterating run rows", "error", err)
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}

	logger.Debug("Runs listed", "count", len(summaries))
	return summaries, nil
}
