package database

import (
	"context"
	"database/sql"
	"fmt"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS tables (
		id TEXT PRIMARY KEY,
		owner TEXT,
		title TEXT,
		main_data TEXT,
		template TEXT,
		updated_at TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS tables_owner_idx ON tables (owner)`,
}

// EnsureSchema creates the tables relation and its owner index if missing.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
