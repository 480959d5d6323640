package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Schema holds the tables this service owns. Wallets and transactions live
// in the backend; only funding sessions are stored locally.
const Schema = `
CREATE TABLE IF NOT EXISTS funding_sessions (
	reference       TEXT PRIMARY KEY,
	user_id         TEXT NOT NULL,
	email           TEXT NOT NULL,
	amount          NUMERIC(18, 2) NOT NULL CHECK (amount > 0),
	method          TEXT NOT NULL,
	state           TEXT NOT NULL,
	checkout_url    TEXT NOT NULL DEFAULT '',
	verify_attempts INTEGER NOT NULL DEFAULT 0,
	last_error      TEXT NOT NULL DEFAULT '',
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_funding_sessions_state_updated
	ON funding_sessions (state, updated_at);

CREATE INDEX IF NOT EXISTS idx_funding_sessions_user
	ON funding_sessions (user_id, created_at DESC);
`

// Migrate applies Schema. It is safe to run on every start.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
