// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package engine is the state engine of the scheduling mini-app.

A Store owns one State and exposes every user action as a method. The
screens (dashboard, create, poll) read from it with Read or the small
getters; nothing outside the Store mutates state.

# Persistence

Planner fields, poll history, dashboard filters and the active poll
reference are saved per user through a StateStore. Saves are debounced:

	store := engine.New(remote, persist.NewUserStates(kv), tracker, engine.Config{
		User:        user,
		BotUsername: "meetbot",
	})
	defer store.Close()

	store.Bootstrap(ctx, startParam)

Close flushes the last pending save.

# Remote Calls

Commands that reach the Remote set a busy flag, release the lock, make the
call, and apply the result under the lock again. Results for a poll that is
no longer open are dropped. Vote submission and status changes go through
the shared lifecycle.Gate, so only one of them runs per poll.

# Feedback

Each form has a Message slot in State.Feedback. Validation failures fill it
and return an apperr.ValidationError; remote failures fill it and return an
apperr.RemoteError.
*/
package engine
