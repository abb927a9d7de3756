// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cmd is the planner command line, built on cobra.

Every invocation is one launch of the mini-app: it resolves the current
user, opens the poll backend and the local cache, runs the launch sequence
(hydrate, follow the start parameter, restore the open poll), applies one
action and flushes the saved state before exiting. State such as the
planner selection and the open poll carries over to the next invocation
through the cache.

# Commands

	planner open [poll:CODE]     launch, optionally from an invite
	planner history              list created and joined polls
	planner plan ...             pick dates and slots
	planner create --title T     publish the planner selection
	planner join CODE            open a poll by share code
	planner poll [open|close]    show, reopen or leave a poll
	planner vote 1=yes 2=maybe   answer and submit
	planner status finished      change the status of your poll
	planner edit --title T       change poll details
	planner options --toggle D   change the dates and slots of your poll

# Backends

The poll backend is a SQL database (-d, -t) or a REST endpoint (--api).
The cache is selected with --cache. See package cliparse for every flag
and environment variable.
*/
package cmd
