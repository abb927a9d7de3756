// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package remote stores polls, options and votes in SQL.

Store implements the engine's remote collaborator directly on database/sql,
so the engine can run without a hosted API:

	conn, err := db.Open(db.SQLite, "polls.db")
	if err != nil {
		return err
	}
	store := remote.New(conn, db.SQLite)
	poll, err := store.CreatePoll(ctx, req)

# Dialects

Queries are written with ? placeholders and rewritten for postgres by
db.Dialect.Rebind.

# Identifiers

Polls, options and votes get UUIDs. Share codes come from
auth.GenerateShareCode and are retried on collision.

# Consistency

CreatePoll, UpdatePollOptions and SubmitVote each run in one transaction.
SubmitVote reads the poll status inside its transaction and refuses
finished polls with apperr.ErrPollFinished. Deleting an option cascades to
the answers given for it.

FetchPollDetail returns nil, nil when the reference matches no poll.
*/
package remote
