// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines the domain and payload types shared by the planner.

# Domain Types

  - Poll: title, share code, timezone, status, creator, options, votes
  - PollOption: one date with an optional start/end minute range
  - Vote: voter name, optional contact, per-option availability
  - HistoryEntry: a dashboard record of a created or joined poll
  - PollRef: id and/or share code used to reload a poll
  - User: identity handed over by the host chat platform

# Request Types

Payloads handed to the remote store:

  - CreatePollRequest: title, details, timezone, specify_times, options
  - UpdateDetailsRequest: id, title, location, description
  - UpdateOptionsRequest: id, specify_times, options, removed_option_ids
  - UpdateStatusRequest: id, status
  - SubmitVoteRequest: poll_id, voter_name, voter_contact, selections

# Identifiers

Remote rows may carry numeric or string ids. ID accepts both when decoding
JSON and compares by a trimmed key:

	models.ParseID(42).Equal(models.ID("42")) // true

# Availability

Availability is the vote grid cell state. Clicking a cell walks the cycle

	None → Yes → Maybe → No → None

Only Yes and Maybe count as a positive selection.

# Status

Poll status is one of live, paused or finished. Unknown values normalize to
live via NormalizeStatus.
*/
package models
