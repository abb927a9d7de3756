// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package vote holds the current user's vote before and after submission.

# Draft

A Draft maps option ids to an availability. Clicking a cell cycles it:

	none → yes → maybe → no → none

Only explicit marks are kept. When the vote is sent, Total fills every
unmarked option with "no" so the remote store receives one answer per option.

# Guard

Guard decides whether submitting is allowed:

	if err := vote.Guard(poll, draft, submitted); err != nil {
		// apperr.ErrPollFinished, apperr.ErrAlreadySubmitted or
		// apperr.ErrNoPositiveSelection
	}

# Tracker

Tracker is the device-local record of submitted votes, stored in the cache
under "submittedPollVotes" as {pollId: {voteId, shareCode, voterName,
timestamp}}. It enforces one vote per poll per device.
*/
package vote
