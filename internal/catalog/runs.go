package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Record inserts run, assigning its ID, status and creation time when unset,
// and returns the stored row.
func (s *Store) Record(ctx context.Context, run Run) (*Run, error) {
	if run.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return nil, fmt.Errorf("generate run id: %w", err)
		}
		run.ID = id.String()
	}
	if run.Status == "" {
		run.Status = run.Classify()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}
	run.CreatedAt = run.CreatedAt.UTC()

	_, err := s.exec(ctx,
		`INSERT INTO runs (`+runColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.Name,
		run.Base,
		run.Source,
		string(run.Mode),
		string(run.Direction),
		run.Chunk,
		run.Requested,
		run.Parsed,
		run.Warnings,
		string(run.Status),
		nullableString(run.Digest),
		nullableString(run.CapturePath),
		nullableString(run.ErrorMessage),
		run.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}
	return &run, nil
}

// Get fetches a run by ID. A missing run yields nil and no error.
func (s *Store) Get(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ensureContext(ctx), `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get run %s: %w", id, err)
	}
	return run, nil
}

// FindByDigest returns the most recent successful run of the capture with
// digest, or nil when it has never been ingested.
func (s *Store) FindByDigest(ctx context.Context, digest string) (*Run, error) {
	if digest == "" {
		return nil, nil
	}
	row := s.db.QueryRowContext(ensureContext(ctx),
		`SELECT `+runColumns+` FROM runs WHERE digest = ? AND status != ? ORDER BY created_at DESC LIMIT 1`,
		digest, string(StatusFailed))
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find run by digest: %w", err)
	}
	return run, nil
}

// ListOptions filters List.
type ListOptions struct {
	// Base restricts the result to one dataset.
	Base string
	// Limit caps the number of rows; zero lists every run.
	Limit int
}

// List returns runs newest first.
func (s *Store) List(ctx context.Context, opts ListOptions) ([]*Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs`
	var args []any
	if opts.Base != "" {
		query += ` WHERE base = ?`
		args = append(args, opts.Base)
	}
	query += ` ORDER BY created_at DESC, id DESC`
	if opts.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, opts.Limit)
	}

	rows, err := s.db.QueryContext(ensureContext(ctx), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Summary aggregates run counts, decoded traces and datasets.
func (s *Store) Summary(ctx context.Context) (Summary, error) {
	ctx = ensureContext(ctx)
	summary := Summary{ByStatus: make(map[Status]int)}

	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(1), COALESCE(SUM(parsed), 0) FROM runs GROUP BY status`)
	if err != nil {
		return summary, fmt.Errorf("catalog summary: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			status string
			count  int
			traces int
		)
		if err := rows.Scan(&status, &count, &traces); err != nil {
			return summary, err
		}
		summary.ByStatus[Status(status)] = count
		summary.Runs += count
		summary.Traces += traces
	}
	if err := rows.Err(); err != nil {
		return summary, err
	}

	var last sql.NullString
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(DISTINCT base), MAX(created_at) FROM runs WHERE status != ?`, string(StatusFailed),
	).Scan(&summary.Datasets, &last); err != nil {
		return summary, fmt.Errorf("catalog datasets: %w", err)
	}
	if last.Valid {
		if t, err := parseTimeString(last.String); err == nil {
			summary.Last = &t
		}
	}
	return summary, nil
}

// Remove deletes every run of base and returns how many rows were removed.
func (s *Store) Remove(ctx context.Context, base string) (int64, error) {
	res, err := s.exec(ctx, `DELETE FROM runs WHERE base = ?`, base)
	if err != nil {
		return 0, fmt.Errorf("remove runs: %w", err)
	}
	return res.RowsAffected()
}

// Clear deletes every run.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.exec(ctx, `DELETE FROM runs`)
	if err != nil {
		return 0, fmt.Errorf("clear runs: %w", err)
	}
	return res.RowsAffected()
}
