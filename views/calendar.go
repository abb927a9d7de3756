// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package views

import (
	"strconv"
	"time"

	"github.com/hibeautyss/tma-clean/slots"
)

// CalendarCells is the size of a month grid: six Monday-first weeks.
const CalendarCells = 42

// Cell is one day of the month grid.
type Cell struct {
	ISO            string
	Label          string
	IsCurrentMonth bool
	IsSelected     bool
	IsToday        bool
}

// Month is the grid for one calendar page.
type Month struct {
	Label string
	Cells []Cell
}

// Calendar builds the grid for the month containing view. selected may be
// nil.
func Calendar(view, today time.Time, selected func(iso string) bool) Month {
	first := time.Date(view.Year(), view.Month(), 1, 0, 0, 0, 0, time.UTC)
	offset := (int(first.Weekday()) + 6) % 7
	start := first.AddDate(0, 0, -offset)
	todayISO := today.Format(slots.DateLayout)

	m := Month{
		Label: first.Format("January 2006"),
		Cells: make([]Cell, 0, CalendarCells),
	}
	for i := 0; i < CalendarCells; i++ {
		day := start.AddDate(0, 0, i)
		iso := day.Format(slots.DateLayout)
		m.Cells = append(m.Cells, Cell{
			ISO:            iso,
			Label:          strconv.Itoa(day.Day()),
			IsCurrentMonth: day.Month() == first.Month(),
			IsSelected:     selected != nil && selected(iso),
			IsToday:        iso == todayISO,
		})
	}
	return m
}
