// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package slots

import (
	"fmt"

	"github.com/hibeautyss/tma-clean/models"
)

// TimeConfig holds the minute grid used by slot editing.
type TimeConfig struct {
	MinutesInDay int
	Step         int
	DefaultStart int
	DefaultEnd   int
}

// DefaultTimeConfig is a 15 minute grid with a 12:00-13:00 default slot.
func DefaultTimeConfig() TimeConfig {
	return TimeConfig{
		MinutesInDay: 24 * 60,
		Step:         15,
		DefaultStart: 12 * 60,
		DefaultEnd:   13 * 60,
	}
}

// orDefault fills zero fields so a zero TimeConfig is usable.
func (c TimeConfig) orDefault() TimeConfig {
	d := DefaultTimeConfig()
	if c.MinutesInDay <= 0 {
		c.MinutesInDay = d.MinutesInDay
	}
	if c.Step <= 0 {
		c.Step = d.Step
	}
	if c.DefaultEnd <= c.DefaultStart || c.DefaultEnd > c.MinutesInDay {
		c.DefaultStart, c.DefaultEnd = d.DefaultStart, d.DefaultEnd
	}
	return c
}

// DefaultDuration is the length of the default slot.
func (c TimeConfig) DefaultDuration() int {
	c = c.orDefault()
	return c.DefaultEnd - c.DefaultStart
}

// DefaultSlot returns a fresh default slot with no id.
func (c TimeConfig) DefaultSlot() TimeSlot {
	c = c.orDefault()
	return TimeSlot{Start: c.DefaultStart, End: c.DefaultEnd}
}

// TimeSlot is a candidate interval in minutes from midnight.
// ID is set only for slots loaded from an existing poll option.
type TimeSlot struct {
	ID    models.ID `json:"id"`
	Start int       `json:"start"`
	End   int       `json:"end"`
}

// Duration returns End-Start.
func (s TimeSlot) Duration() int {
	return s.End - s.Start
}

// Valid reports whether the slot satisfies 0 <= Start < End <= day length.
func (s TimeSlot) Valid(cfg TimeConfig) bool {
	cfg = cfg.orDefault()
	return s.Start >= 0 && s.End > s.Start && s.End <= cfg.MinutesInDay
}

// Edge selects which end of a slot a resize edits.
type Edge int

const (
	EdgeStart Edge = iota
	EdgeEnd
)

func (e Edge) String() string {
	if e == EdgeEnd {
		return "end"
	}
	return "start"
}

// ParseEdge converts "start" or "end".
func ParseEdge(s string) (Edge, error) {
	switch s {
	case "start":
		return EdgeStart, nil
	case "end":
		return EdgeEnd, nil
	}
	return EdgeStart, fmt.Errorf("unknown slot edge %q", s)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// snap rounds v down to the step grid. The day boundary is left alone.
func snap(v int, cfg TimeConfig) int {
	if v >= cfg.MinutesInDay {
		return cfg.MinutesInDay
	}
	return v - v%cfg.Step
}

// ClampStart limits a start minute to [0, day-step] on the step grid.
func ClampStart(v int, cfg TimeConfig) int {
	cfg = cfg.orDefault()
	return snap(clamp(v, 0, cfg.MinutesInDay-cfg.Step), cfg)
}

// ClampEnd limits an end minute to [0, day] on the step grid.
func ClampEnd(v int, cfg TimeConfig) int {
	cfg = cfg.orDefault()
	return snap(clamp(v, 0, cfg.MinutesInDay), cfg)
}

// Normalize returns a copy that satisfies Valid.
// A collapsed or reversed range becomes start+step.
func Normalize(s TimeSlot, cfg TimeConfig) TimeSlot {
	cfg = cfg.orDefault()
	s.Start = ClampStart(s.Start, cfg)
	s.End = ClampEnd(s.End, cfg)
	if s.End <= s.Start {
		s.End = min(s.Start+cfg.Step, cfg.MinutesInDay)
	}
	return s
}

// Resize applies one edge edit and keeps End > Start.
//
// Editing start past the end pushes the end forward by the prior duration.
// Editing end to or before the start snaps it to start+step.
func Resize(s TimeSlot, edge Edge, value int, cfg TimeConfig) TimeSlot {
	cfg = cfg.orDefault()
	s = Normalize(s, cfg)
	if edge == EdgeStart {
		duration := max(s.End-s.Start, cfg.Step)
		s.Start = ClampStart(value, cfg)
		if s.End <= s.Start {
			s.End = min(s.Start+duration, cfg.MinutesInDay)
		}
		return s
	}
	v := ClampEnd(value, cfg)
	if v <= s.Start {
		s.End = min(s.Start+cfg.Step, cfg.MinutesInDay)
	} else {
		s.End = v
	}
	return s
}

// FormatMinutes renders a minute of day as HH:MM. The day end renders as 24:00.
func FormatMinutes(m int) string {
	m = clamp(m, 0, 24*60)
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

// FormatDuration renders a length such as 1h 30m, 2h or 45m.
func FormatDuration(minutes int) string {
	h, m := minutes/60, minutes%60
	switch {
	case h > 0 && m > 0:
		return fmt.Sprintf("%dh %dm", h, m)
	case h > 0:
		return fmt.Sprintf("%dh", h)
	}
	return fmt.Sprintf("%dm", m)
}
