package sqldb

import (
	"context"
	"database/sql"
	"fmt"
)

// createSchema creates the tables. Safe to call on every start.
func createSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}

// Times are stored as Unix nanoseconds so both drivers round-trip them exactly
var schema = []string{
	`CREATE TABLE IF NOT EXISTS room (
    challenge_id TEXT PRIMARY KEY,
    room_id TEXT NOT NULL,
    group_id TEXT NOT NULL,
    group_name TEXT NOT NULL,
    difficulty INTEGER NOT NULL,
    member_count INTEGER NOT NULL,
    queue_number TEXT NOT NULL,
    status TEXT NOT NULL,
    start_time BIGINT NOT NULL,
    created_at BIGINT NOT NULL,
    updated_at BIGINT NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS idx_room_created_at ON room(created_at)`,
	`CREATE TABLE IF NOT EXISTS group_name (
    normalized_name TEXT PRIMARY KEY,
    group_id TEXT NOT NULL
)`,
}
