package catalog

import (
	"database/sql"
	"errors"
	"time"

	"github.com/samiBendou/sca-automation/internal/dataset"
)

const runColumns = "id, name, base, source, mode, direction, chunk, requested, parsed, warnings, status, digest, capture_path, error_message, created_at"

func scanRun(scanner interface{ Scan(dest ...any) error }) (*Run, error) {
	var (
		run        Run
		mode       string
		direction  string
		status     string
		digest     sql.NullString
		capture    sql.NullString
		errMessage sql.NullString
		createdRaw string
	)
	if err := scanner.Scan(
		&run.ID,
		&run.Name,
		&run.Base,
		&run.Source,
		&mode,
		&direction,
		&run.Chunk,
		&run.Requested,
		&run.Parsed,
		&run.Warnings,
		&status,
		&digest,
		&capture,
		&errMessage,
		&createdRaw,
	); err != nil {
		return nil, err
	}
	run.Mode = dataset.Mode(mode)
	run.Direction = dataset.Direction(direction)
	run.Status = Status(status)
	run.Digest = digest.String
	run.CapturePath = capture.String
	run.ErrorMessage = errMessage.String
	if created, err := parseTimeString(createdRaw); err == nil {
		run.CreatedAt = created
	}
	return &run, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}
