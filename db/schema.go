// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Dialect selects the SQL driver and placeholder style.
type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite"
)

// ParseDialect accepts "postgres", "postgresql", "sqlite" or "sqlite3".
func ParseDialect(s string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "postgres", "postgresql":
		return Postgres, nil
	case "", "sqlite", "sqlite3":
		return SQLite, nil
	}
	return "", fmt.Errorf("unknown database type %q", s)
}

// Rebind rewrites ? placeholders to $1, $2, ... for postgres. Queries in
// this module never contain a literal question mark.
func (d Dialect) Rebind(query string) string {
	if d != Postgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// sqliteDSN turns a path into a DSN with foreign keys enabled.
func sqliteDSN(path string) string {
	pragmas := "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	if path == ":memory:" {
		return "file::memory:?" + pragmas
	}
	if strings.Contains(path, "?") {
		return path + "&" + pragmas
	}
	return path + "?_pragma=journal_mode(WAL)&" + pragmas
}

// Open connects to dsn, verifies the connection and creates the schema.
func Open(d Dialect, dsn string) (*sql.DB, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, fmt.Errorf("database URL is required")
	}
	driver := string(d)
	if d == SQLite {
		dsn = sqliteDSN(dsn)
	}
	conn, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", d, err)
	}
	if d == SQLite && strings.HasPrefix(dsn, "file::memory:") {
		// Every pooled connection would get its own empty database.
		conn.SetMaxOpenConns(1)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping %s database: %w", d, err)
	}
	if err := CreateSchema(conn); err != nil {
		conn.Close()
		return nil, err
	}
	return conn, nil
}

// CreateSchema creates all tables needed by the remote store.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

const schema = `
-- Polls
CREATE TABLE IF NOT EXISTS poll (
    id TEXT PRIMARY KEY,
    share_code TEXT NOT NULL UNIQUE,
    title TEXT NOT NULL,
    description TEXT,
    location TEXT,
    timezone TEXT NOT NULL,
    specify_times BOOLEAN NOT NULL DEFAULT FALSE,
    status TEXT NOT NULL DEFAULT 'live' CHECK (status IN ('live', 'paused', 'finished')),
    creator_id TEXT NOT NULL,
    creator_username TEXT,
    creator_first_name TEXT,
    creator_last_name TEXT,
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_poll_share_code ON poll(share_code);

-- Options
CREATE TABLE IF NOT EXISTS poll_option (
    id TEXT PRIMARY KEY,
    poll_id TEXT NOT NULL REFERENCES poll(id) ON DELETE CASCADE,
    option_date TEXT NOT NULL,
    start_minute INTEGER,
    end_minute INTEGER
);

CREATE INDEX IF NOT EXISTS idx_poll_option_poll_id ON poll_option(poll_id);

-- Votes
CREATE TABLE IF NOT EXISTS vote (
    id TEXT PRIMARY KEY,
    poll_id TEXT NOT NULL REFERENCES poll(id) ON DELETE CASCADE,
    voter_name TEXT NOT NULL,
    voter_contact TEXT,
    created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_vote_poll_id ON vote(poll_id);

-- Selections
CREATE TABLE IF NOT EXISTS vote_selection (
    vote_id TEXT NOT NULL REFERENCES vote(id) ON DELETE CASCADE,
    poll_option_id TEXT NOT NULL REFERENCES poll_option(id) ON DELETE CASCADE,
    availability TEXT NOT NULL CHECK (availability IN ('yes', 'maybe', 'no')),
    PRIMARY KEY (vote_id, poll_option_id)
);

CREATE INDEX IF NOT EXISTS idx_vote_selection_option ON vote_selection(poll_option_id);
`
