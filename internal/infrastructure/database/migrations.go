package database

import (
	"context"
	"fmt"
)

// Migration is one ordered schema step. The schema is small enough to live
// inline; versions only ever grow.
type Migration struct {
	Version string
	Name    string
	SQL     string
}

// migrations are applied in slice order. Append only — never edit an
// applied migration.
var migrations = []Migration{
	{
		Version: "20260115_000001",
		Name:    "create_dispatch_history",
		SQL: `
			CREATE TABLE IF NOT EXISTS dispatch_history (
				id            TEXT PRIMARY KEY,
				dispatched_at TEXT NOT NULL,
				target        TEXT NOT NULL,
				action        TEXT NOT NULL,
				device_id     TEXT,
				device_name   TEXT,
				domain        TEXT,
				primitive     TEXT,
				score         REAL,
				attempts      INTEGER NOT NULL DEFAULT 0,
				healed        INTEGER NOT NULL DEFAULT 0,
				status        TEXT NOT NULL,
				error_kind    TEXT,
				advisory      TEXT,
				duration_ms   INTEGER
			);
			CREATE INDEX IF NOT EXISTS idx_dispatch_history_at
				ON dispatch_history(dispatched_at);
			CREATE INDEX IF NOT EXISTS idx_dispatch_history_device
				ON dispatch_history(device_id);
		`,
	},
}

// Migrate applies all pending migrations in version order, each in its own
// transaction. Re-running after a failure continues from the failed step.
func (db *DB) Migrate(ctx context.Context) error {
	if err := db.createMigrationsTable(ctx); err != nil {
		return err
	}

	applied, err := db.appliedVersions(ctx)
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if applied[m.Version] {
			continue
		}
		if err := db.applyMigration(ctx, m); err != nil {
			return fmt.Errorf("applying migration %s (%s): %w", m.Version, m.Name, err)
		}
	}
	return nil
}

func (db *DB) createMigrationsTable(ctx context.Context) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    TEXT PRIMARY KEY,
			applied_at TEXT NOT NULL DEFAULT (datetime('now'))
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}
	return nil
}

func (db *DB) appliedVersions(ctx context.Context) (map[string]bool, error) {
	rows, err := db.QueryContext(ctx, "SELECT version FROM schema_migrations")
	if err != nil {
		return nil, fmt.Errorf("reading applied migrations: %w", err)
	}
	defer rows.Close() //nolint:errcheck // Read-only cursor

	applied := make(map[string]bool)
	for rows.Next() {
		var version string
		if err := rows.Scan(&version); err != nil {
			return nil, fmt.Errorf("scanning migration version: %w", err)
		}
		applied[version] = true
	}
	return applied, rows.Err()
}

func (db *DB) applyMigration(ctx context.Context, m Migration) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // No-op after commit

	if _, err := tx.ExecContext(ctx, m.SQL); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO schema_migrations (version) VALUES (?)", m.Version); err != nil {
		return err
	}
	return tx.Commit()
}
