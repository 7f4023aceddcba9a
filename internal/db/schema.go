package db

import (
	"context"
	"fmt"
)

// Tables backing dashboard accounts and the audit trail.
var tables = []struct {
	name string
	ddl  string
}{
	{"admins", `
		CREATE TABLE IF NOT EXISTS admins (
			id TEXT PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			role TEXT NOT NULL CHECK (role IN ('admin', 'viewer')),
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`},
	{"refresh_tokens", `
		CREATE TABLE IF NOT EXISTS refresh_tokens (
			id TEXT PRIMARY KEY,
			admin_id TEXT NOT NULL REFERENCES admins(id) ON DELETE CASCADE,
			token TEXT NOT NULL UNIQUE,
			expires_at TIMESTAMPTZ NOT NULL
		)`},
	{"audit_log", `
		CREATE TABLE IF NOT EXISTS audit_log (
			id TEXT PRIMARY KEY,
			actor_id TEXT NOT NULL,
			action TEXT NOT NULL,
			target TEXT NOT NULL,
			detail JSONB,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`},
	{"audit_log_created_at_idx", `
		CREATE INDEX IF NOT EXISTS audit_log_created_at_idx ON audit_log (created_at DESC)`},
}

// EnsurePostgresSchema creates the relational tables if they are missing.
func EnsurePostgresSchema(ctx context.Context, q Querier) error {
	for _, t := range tables {
		if _, err := q.Exec(ctx, t.ddl); err != nil {
			return fmt.Errorf("create %s: %w", t.name, err)
		}
	}
	return nil
}
