// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package views derives display data from engine state.

Nothing here mutates state. Each function takes plain values and returns
rows ready to print:

  - Calendar: a 42-cell Monday-first month grid with selection and today marks.
  - SelectionRows: selected dates with HH:MM slot labels and duration badges.
  - VoteGrid: options × participants with per-option yes and maybe tallies.
  - HistoryCards: dashboard entries with humanized timestamps.
*/
package views
