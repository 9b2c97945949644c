package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// EnsureSchema creates the engine's tables when they are missing. Safe to
// call at every startup.
func EnsureSchema(db *sql.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id SERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			user_name TEXT NOT NULL UNIQUE,
			password TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS oauth_tokens (
			id BIGSERIAL PRIMARY KEY,
			user_id TEXT NOT NULL,
			platform TEXT NOT NULL,
			access_token TEXT NOT NULL,
			refresh_token TEXT NOT NULL,
			expires_at TIMESTAMPTZ,
			scopes TEXT NOT NULL DEFAULT '',
			token_type TEXT,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL,
			UNIQUE (user_id, platform)
		)`,
		`CREATE TABLE IF NOT EXISTS actions (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			type TEXT NOT NULL,
			source_playlist_id TEXT,
			target_playlist_id TEXT,
			status TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			finished_at TIMESTAMPTZ,
			parent_action_id TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_actions_user_created ON actions (user_id, created_at DESC, id)`,
		`CREATE TABLE IF NOT EXISTS action_items (
			id TEXT PRIMARY KEY,
			action_id TEXT NOT NULL REFERENCES actions(id),
			type TEXT NOT NULL,
			video_id TEXT,
			source_playlist_id TEXT,
			target_playlist_id TEXT,
			source_playlist_item_id TEXT,
			target_playlist_item_id TEXT,
			position INT,
			status TEXT NOT NULL,
			error_code TEXT,
			error_message TEXT,
			created_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_action_items_action ON action_items (action_id, created_at, id)`,
		`CREATE TABLE IF NOT EXISTS idempotency_keys (
			key TEXT PRIMARY KEY,
			created_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS quota_usage (
			date_key TEXT NOT NULL,
			scope TEXT NOT NULL,
			used BIGINT NOT NULL DEFAULT 0,
			updated_at TIMESTAMPTZ NOT NULL,
			PRIMARY KEY (date_key, scope)
		)`,
	}

	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensuring schema failed: %w", err)
		}
	}
	return nil
}
