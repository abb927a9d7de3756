// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package lifecycle moves polls between live, paused and finished.

# Transitions

	live     → paused, finished
	paused   → live, finished
	finished → live

Only the poll creator may change status. Asking for the current status does
nothing.

# Single-Flight

A Gate admits one operation per poll. Status changes and vote submissions
share the same Gate, so on one device they never overlap for the same poll:
whichever starts first runs and the other fails with apperr.ErrBusy.

	ctl := lifecycle.NewController(gate)
	changed, err := ctl.Change(ctx, lifecycle.Request{...}, func(ctx context.Context) error {
		// update remote status, then refetch the poll
	})

Change never touches local poll state itself. The caller refetches inside
apply, so a failed update leaves the previous status in place.
*/
package lifecycle
