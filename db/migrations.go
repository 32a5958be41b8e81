package db

import (
	"context"
	"database/sql"
	"fmt"
)

// schema is applied statement by statement; every statement is idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS tournament_slots (
		game_type        TEXT NOT NULL CHECK (game_type IN ('bgmi', 'freefire')),
		tournament_type  TEXT NOT NULL CHECK (tournament_type IN ('solo', 'duo', 'squad')),
		max_slots        INTEGER NOT NULL CHECK (max_slots > 0),
		entry_fee        INTEGER NOT NULL DEFAULT 0,
		winner_prize     INTEGER NOT NULL DEFAULT 0,
		runner_up_prize  INTEGER NOT NULL DEFAULT 0,
		per_kill_reward  INTEGER NOT NULL DEFAULT 0,
		qr_code_url      TEXT,
		room_id          TEXT,
		room_password    TEXT,
		start_time       TIMESTAMPTZ,
		end_time         TIMESTAMPTZ,
		registered_count INTEGER NOT NULL DEFAULT 0,
		approved_count   INTEGER NOT NULL DEFAULT 0,
		pending_count    INTEGER NOT NULL DEFAULT 0,
		rejected_count   INTEGER NOT NULL DEFAULT 0,
		available_slots  INTEGER NOT NULL DEFAULT 0,
		is_full          BOOLEAN NOT NULL DEFAULT FALSE,
		status           TEXT NOT NULL DEFAULT 'scheduled' CHECK (status IN ('scheduled', 'live', 'completed', 'cancelled')),
		created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (game_type, tournament_type)
	)`,
	`CREATE TABLE IF NOT EXISTS registrations (
		id                     UUID PRIMARY KEY,
		game_type              TEXT NOT NULL,
		tournament_type        TEXT NOT NULL,
		team_name              TEXT NOT NULL,
		leader_name            TEXT NOT NULL,
		leader_game_id         TEXT NOT NULL,
		leader_whatsapp        TEXT NOT NULL,
		players                JSONB NOT NULL DEFAULT '[]'::jsonb,
		payment_screenshot     TEXT NOT NULL,
		payment_transaction_id TEXT NOT NULL,
		status                 TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'approved', 'rejected')),
		rejection_reason       TEXT,
		submitted_at           TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		approved_at            TIMESTAMPTZ,
		approved_by            TEXT,
		rejected_at            TIMESTAMPTZ,
		rejected_by            TEXT,
		updated_at             TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT registrations_tournament_fkey FOREIGN KEY (game_type, tournament_type)
			REFERENCES tournament_slots (game_type, tournament_type) ON DELETE CASCADE
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS registrations_active_leader_key
		ON registrations (game_type, tournament_type, leader_game_id)
		WHERE status IN ('pending', 'approved')`,
	`CREATE INDEX IF NOT EXISTS registrations_key_status_idx
		ON registrations (game_type, tournament_type, status)`,
	`CREATE INDEX IF NOT EXISTS registrations_submitted_at_idx
		ON registrations (submitted_at DESC)`,
	`CREATE TABLE IF NOT EXISTS admins (
		id            UUID PRIMARY KEY,
		username      TEXT NOT NULL,
		email         TEXT,
		password_hash TEXT NOT NULL,
		role          TEXT NOT NULL DEFAULT 'admin' CHECK (role IN ('admin', 'super_admin')),
		permissions   TEXT[] NOT NULL DEFAULT '{}',
		is_active     BOOLEAN NOT NULL DEFAULT TRUE,
		last_login    TIMESTAMPTZ,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT admins_username_key UNIQUE (username),
		CONSTRAINT admins_email_key UNIQUE (email)
	)`,
}

// Migrate creates the tables and indexes when they do not exist yet.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration step %d failed: %w", i+1, err)
		}
	}
	return nil
}
