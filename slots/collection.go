// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package slots

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// DateLayout is the ISO calendar date used as the collection key.
const DateLayout = "2006-01-02"

// ValidDate reports whether s is an ISO calendar date.
func ValidDate(s string) bool {
	_, err := time.Parse(DateLayout, s)
	return err == nil
}

// Entry is the set of candidate slots for one selected date.
type Entry struct {
	Slots []TimeSlot `json:"slots"`
}

// Collection maps selected dates to their slots.
//
// Mutations never fail: unknown dates and out-of-range indexes are ignored,
// since the UI may race a removal against an edit.
// The zero value is an empty collection on the default time grid.
type Collection struct {
	cfg     TimeConfig
	entries map[string]*Entry
}

// NewCollection returns an empty collection using cfg.
func NewCollection(cfg TimeConfig) *Collection {
	return &Collection{cfg: cfg.orDefault(), entries: make(map[string]*Entry)}
}

// Config returns the time grid in use.
func (c *Collection) Config() TimeConfig {
	if c == nil {
		return DefaultTimeConfig()
	}
	return c.cfg.orDefault()
}

// SetConfig replaces the time grid, used after decoding a saved collection.
func (c *Collection) SetConfig(cfg TimeConfig) {
	c.cfg = cfg.orDefault()
}

func (c *Collection) entry(date string) *Entry {
	if c == nil || c.entries == nil {
		return nil
	}
	return c.entries[date]
}

// Len returns the number of selected dates.
func (c *Collection) Len() int {
	if c == nil {
		return 0
	}
	return len(c.entries)
}

// Has reports whether date is selected.
func (c *Collection) Has(date string) bool {
	return c.entry(date) != nil
}

// Dates returns the selected dates in ascending order.
func (c *Collection) Dates() []string {
	if c == nil {
		return nil
	}
	dates := make([]string, 0, len(c.entries))
	for d := range c.entries {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	return dates
}

// Slots returns a copy of the slots for date.
func (c *Collection) Slots(date string) []TimeSlot {
	e := c.entry(date)
	if e == nil {
		return nil
	}
	return append([]TimeSlot(nil), e.Slots...)
}

// Clear removes every date.
func (c *Collection) Clear() {
	c.entries = make(map[string]*Entry)
}

// Select adds date with no slots if it is not already selected.
// Invalid dates are ignored.
func (c *Collection) Select(date string) {
	if !ValidDate(date) || c.Has(date) {
		return
	}
	if c.entries == nil {
		c.entries = make(map[string]*Entry)
	}
	c.entries[date] = &Entry{}
}

// Toggle removes date when selected, otherwise selects it. When
// specifyTimes is set a newly selected date receives the default slot.
// It returns whether the date is selected afterwards.
func (c *Collection) Toggle(date string, specifyTimes bool) bool {
	if c.Has(date) {
		delete(c.entries, date)
		return false
	}
	if !ValidDate(date) {
		return false
	}
	c.Select(date)
	if specifyTimes {
		c.EnsureDefaultSlot(date)
	}
	return true
}

// EnsureDefaultSlot gives an empty entry the default slot.
func (c *Collection) EnsureDefaultSlot(date string) {
	e := c.entry(date)
	if e == nil || len(e.Slots) > 0 {
		return
	}
	e.Slots = append(e.Slots, c.Config().DefaultSlot())
}

// EnsureDefaultSlots applies EnsureDefaultSlot to every date.
func (c *Collection) EnsureDefaultSlots() {
	for _, d := range c.Dates() {
		c.EnsureDefaultSlot(d)
	}
}

// Insert appends slot to date, selecting the date first if needed.
func (c *Collection) Insert(date string, slot TimeSlot) {
	c.Select(date)
	e := c.entry(date)
	if e == nil {
		return
	}
	e.Slots = append(e.Slots, slot)
}

// nextSlot computes the slot AppendSlot would add after last.
func (c *Collection) nextSlot(last TimeSlot) (TimeSlot, bool) {
	cfg := c.Config()
	duration := max(last.End-last.Start, cfg.DefaultDuration())
	next := TimeSlot{Start: last.End, End: last.End + duration}
	return next, next.End <= cfg.MinutesInDay
}

// CanAppendSlot reports whether another slot fits after the last one of
// date. A date without slots, selected or not, always has room.
func (c *Collection) CanAppendSlot(date string) bool {
	e := c.entry(date)
	if e == nil || len(e.Slots) == 0 {
		return true
	}
	_, ok := c.nextSlot(e.Slots[len(e.Slots)-1])
	return ok
}

// AppendSlot adds a slot starting where the last one ends, with the same
// duration (at least the default duration). It does nothing once the slot
// would run past the end of the day.
func (c *Collection) AppendSlot(date string) {
	e := c.entry(date)
	if e == nil {
		return
	}
	if len(e.Slots) == 0 {
		c.EnsureDefaultSlot(date)
		return
	}
	next, ok := c.nextSlot(e.Slots[len(e.Slots)-1])
	if !ok {
		return
	}
	e.Slots = append(e.Slots, next)
}

// RemoveSlot deletes the slot at index. The date stays selected even when
// its last slot goes away.
func (c *Collection) RemoveSlot(date string, index int) {
	e := c.entry(date)
	if e == nil || index < 0 || index >= len(e.Slots) {
		return
	}
	e.Slots = append(e.Slots[:index], e.Slots[index+1:]...)
}

// ResizeSlot moves one edge of the slot at index. See Resize.
// It reports whether a slot was changed.
func (c *Collection) ResizeSlot(date string, index int, edge Edge, value int) bool {
	e := c.entry(date)
	if e == nil || index < 0 || index >= len(e.Slots) {
		return false
	}
	e.Slots[index] = Resize(e.Slots[index], edge, value, c.Config())
	return true
}

// Pair is the persisted form of one collection entry.
type Pair struct {
	Date  string
	Entry Entry
}

// Pairs returns the collection as date-sorted pairs.
func (c *Collection) Pairs() []Pair {
	out := make([]Pair, 0, c.Len())
	for _, d := range c.Dates() {
		out = append(out, Pair{Date: d, Entry: Entry{Slots: c.Slots(d)}})
	}
	return out
}

// MarshalJSON writes [[date, {"slots": [...]}], ...].
func (c *Collection) MarshalJSON() ([]byte, error) {
	pairs := c.Pairs()
	raw := make([][2]any, 0, len(pairs))
	for _, p := range pairs {
		slots := p.Entry.Slots
		if slots == nil {
			slots = []TimeSlot{}
		}
		raw = append(raw, [2]any{p.Date, Entry{Slots: slots}})
	}
	return json.Marshal(raw)
}

// UnmarshalJSON reads either the pair list or a {date: entry} object.
// Invalid dates are dropped and slots are normalized onto the grid.
func (c *Collection) UnmarshalJSON(data []byte) error {
	cfg := c.Config()
	decoded := make(map[string]Entry)

	var pairs []json.RawMessage
	if err := json.Unmarshal(data, &pairs); err == nil {
		for _, rawPair := range pairs {
			var pair []json.RawMessage
			if err := json.Unmarshal(rawPair, &pair); err != nil || len(pair) != 2 {
				return fmt.Errorf("invalid selected date pair: %s", rawPair)
			}
			var date string
			var entry Entry
			if err := json.Unmarshal(pair[0], &date); err != nil {
				return fmt.Errorf("invalid selected date key: %w", err)
			}
			if err := json.Unmarshal(pair[1], &entry); err != nil {
				return fmt.Errorf("invalid selected date entry: %w", err)
			}
			decoded[date] = entry
		}
	} else if err := json.Unmarshal(data, &decoded); err != nil {
		return fmt.Errorf("invalid selected dates: %w", err)
	}

	c.cfg = cfg
	c.entries = make(map[string]*Entry, len(decoded))
	for date, entry := range decoded {
		if !ValidDate(date) {
			continue
		}
		e := &Entry{}
		for _, s := range entry.Slots {
			e.Slots = append(e.Slots, Normalize(s, cfg))
		}
		c.entries[date] = e
	}
	return nil
}
