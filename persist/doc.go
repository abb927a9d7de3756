// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package persist is the local cache behind the planner.

# Backends

Every backend implements KV and stores opaque JSON documents:

  - SQLiteKV: one table in a SQLite file (modernc.org/sqlite, no cgo)
  - FileKV: one JSON file per key, written atomically via temp file + rename
  - RedisKV: plain Redis strings under a "planner:" prefix
  - MemoryKV: process memory, for guests and tests

Pick one from configuration:

	kv, err := persist.Open(ctx, persist.Options{Kind: "sqlite", Path: "planner.db"})

# User State

UserStates stores one blob per user under "planner-state:<id>", or
"planner-state:guest" when the host did not supply an identity. The blob
format belongs to the engine.

The vote tracker lives in the same KV under its own key and is never part of
the user-state blob.

# Debouncing

Debouncer coalesces bursts of writes:

	d := persist.NewDebouncer(persist.DefaultDelay, save)
	d.Schedule() // restarts the 200ms window
	d.Close()    // runs a pending save now

Only the trailing edge runs. Flush and Close run fn on the caller's goroutine,
the timer runs it on its own.
*/
package persist
