// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package history keeps the dashboard list of polls a user created or joined.

Entries are keyed by poll id, or by share code when the id is unknown.
Entries with neither key are kept as they are.

# Merging

When two entries share a key:

  - relation becomes created if either side says created
  - timestamp is the later of the two (unparsable counts as the epoch)
  - status is the incoming one, normalized to live, paused or finished

Merging is order-independent for relation, so a poll opened from an invite
and later recognized as the user's own ends up as created either way.

# Patching

PatchDetails updates title, status and timestamp after a refetch and reports
whether anything changed, so callers only schedule a save when needed.

# Filtering

	cards := history.Filter(list, history.Filters{Status: models.StatusLive, CreatedOnly: true})

Returns the matching entries newest first.
*/
package history
