package catalog

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
)

//go:embed schema.sql
var schemaSQL string

// catalogVersion is kept in PRAGMA user_version. A new database reports 0.
const catalogVersion = 1

// ErrSchemaMismatch reports a catalog written by another version of sca.
var ErrSchemaMismatch = errors.New("schema version mismatch")

func (s *Store) migrate(ctx context.Context) error {
	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("read catalog version: %w", err)
	}
	switch version {
	case catalogVersion:
		return nil
	case 0:
		return s.create(ctx)
	default:
		return fmt.Errorf("%w: catalog %s has version %d, sca expects %d; remove the file to start a new history",
			ErrSchemaMismatch, s.path, version, catalogVersion)
	}
}

// create builds the tables and stamps the version in one transaction.
func (s *Store) create(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin catalog setup: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create catalog tables: %w", err)
	}
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", catalogVersion)); err != nil {
		return fmt.Errorf("stamp catalog version: %w", err)
	}
	return tx.Commit()
}
