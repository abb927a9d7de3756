// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package draft turns a date selection into the options of a poll.

# Creating

	options, err := draft.BuildOptions(selection, specifyTimes)

Without specific times each date becomes one whole-day option (null start
and end). With times each slot becomes an option. An empty selection fails
with apperr.ErrNoDates, a date with no slots with apperr.ErrMissingTimeSlot.

# Editing

FromPoll loads a published poll into an EditDraft. Build returns the new
options together with the ids of options that were dropped, compared by
normalized id so numeric and string ids match.
*/
package draft
