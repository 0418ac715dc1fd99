package db

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
)

func migrations(schema string) []string {
	return []string{
		fmt.Sprintf(`CREATE SCHEMA IF NOT EXISTS %s`, schema),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s.guild_starboards (
				id TEXT PRIMARY KEY,
				guild_id TEXT NOT NULL UNIQUE,
				channel_id TEXT NOT NULL DEFAULT '',
				threshold INTEGER NOT NULL DEFAULT 1 CHECK (threshold >= 1),
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			)`, schema),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s.starboard_messages (
				id TEXT PRIMARY KEY,
				guild_id TEXT NOT NULL,
				message_id TEXT NOT NULL UNIQUE,
				posted_message_id TEXT NOT NULL,
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			)`, schema),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_starboard_messages_guild_id ON %s.starboard_messages (guild_id)`, schema),
	}
}

// RunMigrations applies the idempotent schema statements in order.
func RunMigrations(ctx context.Context, db *sqlx.DB, schema string) error {
	slog.Info("📋 Starting to run database migrations", "schema", schema)

	for i, stmt := range migrations(schema) {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to run migration %d: %w", i, err)
		}
	}

	slog.Info("✅ Completed successfully - database migrations applied", "schema", schema)
	return nil
}
