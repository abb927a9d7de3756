// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the planner command line.

The planner is the client side of a scheduling poll mini-app that runs
inside a chat client. A creator picks dates and optional time slots,
publishes them as a poll with a share code, and participants answer each
option with yes, maybe or no. The creator can pause, finish, reopen and
edit the poll.

# Running

	go run . plan toggle 2031-03-03 2031-03-04 -d planner.db --user 1001
	go run . create --title "Team Sync" -d planner.db --user 1001

Configuration comes from flags, environment variables, or a .env file.
See package cliparse.

# Architecture

  - engine: the state store and every user action
  - slots, draft: date selection and slot editing
  - vote, lifecycle, history: voting, status changes and the dashboard ledger
  - views: calendar, vote grid and history cards
  - persist: per-user state in sqlite, files or redis
  - remote, api: the poll backend over SQL or REST
  - db: schema and drivers for the SQL backend
  - auth: init data verification and share codes
  - cmd: the cobra command tree
  - cliparse: configuration parsing

See package documentation for each component.
*/
package main
