// Package postgres stores the ledger in PostgreSQL through database/sql and
// lib/pq. Row locks (SELECT ... FOR UPDATE) serialize concurrent operations
// on the same accounts.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

const defaultTimeout = 10 * time.Second

// Config holds the connection settings.
type Config struct {
	DSN          string
	MaxOpenConns int
	Timeout      time.Duration
}

// Open connects and pings the database.
func Open(ctx context.Context, cfg Config) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("postgres open: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
		db.SetMaxIdleConns(cfg.MaxOpenConns)
	}
	db.SetConnMaxLifetime(30 * time.Minute)

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}
	return db, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS users (
	user_id       TEXT PRIMARY KEY,
	password_hash TEXT NOT NULL,
	last_name     TEXT NOT NULL DEFAULT '',
	first_name    TEXT NOT NULL DEFAULT '',
	address       TEXT NOT NULL DEFAULT '',
	male          BOOLEAN NOT NULL DEFAULT FALSE,
	role          TEXT NOT NULL CHECK (role IN ('client', 'manager')),
	client_number CHAR(10) CONSTRAINT users_client_number_key UNIQUE
);

CREATE TABLE IF NOT EXISTS accounts (
	account_number  TEXT PRIMARY KEY,
	owner_id        TEXT NOT NULL REFERENCES users (user_id),
	kind            TEXT NOT NULL CHECK (kind IN ('no_overdraft', 'with_overdraft')),
	balance         NUMERIC NOT NULL DEFAULT 0,
	overdraft_limit NUMERIC NOT NULL DEFAULT 0 CHECK (overdraft_limit >= 0),
	CHECK (balance >= -overdraft_limit)
);

CREATE INDEX IF NOT EXISTS accounts_owner_id_idx ON accounts (owner_id);
`

// Migrate creates the tables when they do not exist yet.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("postgres migrate: %w", err)
	}
	return nil
}
