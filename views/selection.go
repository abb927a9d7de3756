// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package views

import (
	"time"

	"github.com/hibeautyss/tma-clean/slots"
)

// SlotRow is one editable time range.
type SlotRow struct {
	Index    int
	Start    string
	End      string
	Duration string
}

// DateRow is one selected date with its slots.
type DateRow struct {
	Date       string
	Label      string
	Slots      []SlotRow
	CanAddSlot bool
}

// DateLabel renders an ISO date as "Mon, Mar 10". Invalid input is
// returned unchanged.
func DateLabel(iso string) string {
	t, err := time.Parse(slots.DateLayout, iso)
	if err != nil {
		return iso
	}
	return t.Format("Mon, Jan 2")
}

// SelectionRows lists the selected dates in order. Slots are included only
// when specifyTimes is set.
func SelectionRows(c *slots.Collection, specifyTimes bool) []DateRow {
	dates := c.Dates()
	rows := make([]DateRow, 0, len(dates))
	for _, date := range dates {
		row := DateRow{Date: date, Label: DateLabel(date)}
		if specifyTimes {
			for i, s := range c.Slots(date) {
				row.Slots = append(row.Slots, SlotRow{
					Index:    i,
					Start:    slots.FormatMinutes(s.Start),
					End:      slots.FormatMinutes(s.End),
					Duration: slots.FormatDuration(s.Duration()),
				})
			}
			row.CanAddSlot = c.CanAppendSlot(date)
		}
		rows = append(rows, row)
	}
	return rows
}
