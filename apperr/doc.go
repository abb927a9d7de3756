// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package apperr defines the error kinds surfaced by the planner engine.

  - ValidationError: bad input or a rejected guard. Shown inline, no retry.
  - RemoteError: the remote store rejected the call or the network failed.
    Local state is left unchanged.
  - CompensationError: cleanup after a partial failure failed. Logged only;
    the original error still reaches the user.
  - StaleReferenceError: a saved poll reference no longer resolves.

Guard failures are exported sentinels and can be matched with errors.Is:

	if errors.Is(err, apperr.ErrPollFinished) {
		// voting is closed
	}
*/
package apperr
