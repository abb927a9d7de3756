// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package api is a client for a hosted PostgREST-style poll API.

Client implements the engine's remote collaborator over HTTP:

	client := api.New("https://example.supabase.co/rest/v1", apiKey, nil)
	store := engine.New(client, states, tracker, cfg)

# Tables

	polls            one row per poll, with share_code and status
	poll_options     option_date plus start_minute/end_minute (null for whole day)
	votes            voter_name and voter_contact (the comment)
	vote_selections  vote_id, poll_option_id, availability

Filters use the eq. and in.() operators. Reads embed options, votes and
selections in one request.

# Multi-step Writes

Creating a poll posts the poll, then its options. Submitting a vote posts
the vote, then its selections. If the second step fails the first row is
deleted again. A failed cleanup is logged as an apperr.CompensationError and
the original error is returned.

# Logging

LoggingTransport logs every round trip with method, path, status, duration
and the X-Request-ID header set by Client.
*/
package api
