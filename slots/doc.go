// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package slots models candidate dates and time slots picked while building a
poll.

A Collection maps ISO dates (2006-01-02) to an ordered list of TimeSlots.
Slots are minute ranges on a fixed grid (15 minutes by default) and always
satisfy 0 <= Start < End <= 1440.

	c := slots.NewCollection(slots.DefaultTimeConfig())
	c.Toggle("2024-01-10", true)  // selected with 12:00-13:00
	c.AppendSlot("2024-01-10")    // adds 13:00-14:00
	c.ResizeSlot("2024-01-10", 0, slots.EdgeEnd, 700) // snaps to 12:15

Mutations on unknown dates or indexes are ignored rather than reported.

The collection serializes as a list of [date, entry] pairs sorted by date.
*/
package slots
