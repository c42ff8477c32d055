package journal

import (
	"fmt"
	"time"
)

// InsertRun records a rotation run and returns its id.
func (j *Journal) InsertRun(run *Run) (int64, error) {
	query := `
		INSERT INTO runs
		(started_at, filesystem, grp, keep, created, destroyed_count, failed_count, status, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := j.db.Exec(query,
		run.StartedAt.UTC().Format(time.RFC3339),
		run.Filesystem,
		run.Group,
		run.Keep,
		run.Created,
		run.DestroyedCount,
		run.FailedCount,
		run.Status,
		run.Error,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get run id: %w", err)
	}
	return id, nil
}

// InsertDestroyedSnapshot records one destroy attempt of a run.
func (j *Journal) InsertDestroyedSnapshot(ds *DestroyedSnapshot) error {
	query := `
		INSERT INTO destroyed_snapshots (run_id, identifier, ok, error)
		VALUES (?, ?, ?, ?)
	`

	if _, err := j.db.Exec(query, ds.RunID, ds.Identifier, ds.OK, ds.Error); err != nil {
		return fmt.Errorf("failed to insert destroyed snapshot %s: %w", ds.Identifier, err)
	}
	return nil
}

// ListRuns returns the most recent runs, newest first.
func (j *Journal) ListRuns(limit int) ([]*Run, error) {
	query := `
		SELECT id, started_at, filesystem, grp, keep, created, destroyed_count, failed_count, status, error
		FROM runs
		ORDER BY id DESC
		LIMIT ?
	`

	rows, err := j.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		var run Run
		var startedAt string

		err := rows.Scan(
			&run.ID,
			&startedAt,
			&run.Filesystem,
			&run.Group,
			&run.Keep,
			&run.Created,
			&run.DestroyedCount,
			&run.FailedCount,
			&run.Status,
			&run.Error,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}

		run.StartedAt, err = time.Parse(time.RFC3339, startedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse started_at for run %d: %w", run.ID, err)
		}

		runs = append(runs, &run)
	}

	return runs, rows.Err()
}

// ListDestroyedSnapshots returns the destroy attempts of one run in insertion
// order.
func (j *Journal) ListDestroyedSnapshots(runID int64) ([]*DestroyedSnapshot, error) {
	query := `
		SELECT run_id, identifier, ok, error
		FROM destroyed_snapshots
		WHERE run_id = ?
		ORDER BY rowid
	`

	rows, err := j.db.Query(query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list destroyed snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []*DestroyedSnapshot
	for rows.Next() {
		var ds DestroyedSnapshot
		if err := rows.Scan(&ds.RunID, &ds.Identifier, &ds.OK, &ds.Error); err != nil {
			return nil, fmt.Errorf("failed to scan destroyed snapshot: %w", err)
		}
		snapshots = append(snapshots, &ds)
	}

	return snapshots, rows.Err()
}
