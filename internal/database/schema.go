package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// schema is applied in order on startup. Every statement is idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id    TEXT PRIMARY KEY,
		name  VARCHAR(250) NOT NULL,
		email VARCHAR(254) NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS categories (
		id   TEXT PRIMARY KEY,
		name VARCHAR(50) NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS events (
		id                 TEXT PRIMARY KEY,
		title              VARCHAR(120) NOT NULL,
		annotation         VARCHAR(2000) NOT NULL,
		description        VARCHAR(7000) NOT NULL,
		category_id        TEXT NOT NULL REFERENCES categories (id),
		initiator_id       TEXT NOT NULL REFERENCES users (id) ON DELETE CASCADE,
		lat                DOUBLE PRECISION NOT NULL,
		lon                DOUBLE PRECISION NOT NULL,
		event_date         TIMESTAMPTZ NOT NULL,
		state              VARCHAR(16) NOT NULL,
		paid               BOOLEAN NOT NULL DEFAULT FALSE,
		created_on         TIMESTAMPTZ NOT NULL,
		published_on       TIMESTAMPTZ,
		participant_limit  INTEGER NOT NULL DEFAULT 0 CHECK (participant_limit >= 0),
		request_moderation BOOLEAN NOT NULL DEFAULT TRUE
	)`,
	`CREATE INDEX IF NOT EXISTS events_initiator_idx ON events (initiator_id)`,
	`CREATE INDEX IF NOT EXISTS events_state_date_idx ON events (state, event_date)`,
	`CREATE TABLE IF NOT EXISTS participation_requests (
		id           TEXT PRIMARY KEY,
		event_id     TEXT NOT NULL REFERENCES events (id) ON DELETE CASCADE,
		requester_id TEXT NOT NULL REFERENCES users (id) ON DELETE CASCADE,
		status       VARCHAR(16) NOT NULL,
		created      TIMESTAMPTZ NOT NULL,
		CONSTRAINT participation_requests_requester_event_key UNIQUE (requester_id, event_id)
	)`,
	`CREATE INDEX IF NOT EXISTS participation_requests_event_status_idx ON participation_requests (event_id, status)`,
	`CREATE TABLE IF NOT EXISTS compilations (
		id     TEXT PRIMARY KEY,
		title  VARCHAR(50) NOT NULL UNIQUE,
		pinned BOOLEAN NOT NULL DEFAULT FALSE
	)`,
	`CREATE TABLE IF NOT EXISTS compilation_events (
		compilation_id TEXT NOT NULL REFERENCES compilations (id) ON DELETE CASCADE,
		event_id       TEXT NOT NULL REFERENCES events (id) ON DELETE CASCADE,
		position       INTEGER NOT NULL,
		PRIMARY KEY (compilation_id, event_id)
	)`,
	`CREATE TABLE IF NOT EXISTS comments (
		id         TEXT PRIMARY KEY,
		text       VARCHAR(1000) NOT NULL,
		event_id   TEXT NOT NULL REFERENCES events (id) ON DELETE CASCADE,
		author_id  TEXT NOT NULL REFERENCES users (id) ON DELETE CASCADE,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS comments_event_idx ON comments (event_id)`,
}

// Migrate creates the main-service tables if they do not exist.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for i, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema statement %d: %w", i, err)
		}
	}
	return nil
}
