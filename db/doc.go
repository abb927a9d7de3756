// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db opens the poll database and creates its schema.

# Dialects

Two drivers are registered: lib/pq for postgres and modernc.org/sqlite for
sqlite. Queries are written with ? placeholders and passed through
Dialect.Rebind, which turns them into $1, $2, ... for postgres.

	conn, err := db.Open(db.SQLite, "planner.db")
	if err != nil {
		log.Fatal(err)
	}

Open pings the database and calls CreateSchema. SQLite connections always
enable foreign keys; ":memory:" is limited to one pooled connection.

# Tables

  - poll: title, timezone, status and the creator's identity
  - poll_option: one row per date or time range
  - vote: one row per submitted vote
  - vote_selection: availability per vote and option

# Relationships

	poll 1──* poll_option
	poll 1──* vote
	vote 1──* vote_selection *──1 poll_option

All foreign keys use ON DELETE CASCADE. Removing an option removes the
answers given for it.
*/
package db
