// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package views

import (
	"sort"

	"github.com/hibeautyss/tma-clean/draft"
	"github.com/hibeautyss/tma-clean/models"
	"github.com/hibeautyss/tma-clean/slots"
	"github.com/hibeautyss/tma-clean/vote"
)

// GuestName labels votes submitted without a name.
const GuestName = "Guest"

// Column is one poll option with its tallies.
type Column struct {
	OptionID  models.ID
	Date      string
	DateLabel string
	TimeLabel string
	Yes       int
	Maybe     int
	Draft     models.Availability
}

// Participant is one submitted vote. Answers line up with Grid.Columns.
type Participant struct {
	VoteID    models.ID
	Name      string
	Comment   string
	Answers   []models.Availability
	CreatedAt string
}

// Grid is the options × participants table of a poll.
type Grid struct {
	Columns      []Column
	Participants []Participant
	ReadOnly     bool
}

// TimeLabel renders an option range as "09:00 - 10:30", or "All day".
func TimeLabel(o models.PollOption) string {
	if o.IsWholeDay() || o.EndMinute == nil {
		return "All day"
	}
	return slots.FormatMinutes(*o.StartMinute) + " - " + slots.FormatMinutes(*o.EndMinute)
}

// VoteGrid builds the grid for p. d is the current draft and may be nil.
func VoteGrid(p *models.Poll, d *vote.Draft, readOnly bool) Grid {
	g := Grid{ReadOnly: readOnly}
	if p == nil {
		return g
	}
	options := append([]models.PollOption(nil), p.Options...)
	draft.SortOptions(options)

	index := make(map[string]int, len(options))
	for i, o := range options {
		index[o.ID.Key()] = i
		col := Column{
			OptionID:  o.ID,
			Date:      o.Date,
			DateLabel: DateLabel(o.Date),
			TimeLabel: TimeLabel(o),
		}
		if d != nil {
			col.Draft = d.Get(o.ID)
		}
		g.Columns = append(g.Columns, col)
	}

	votes := append([]models.Vote(nil), p.Votes...)
	sort.SliceStable(votes, func(i, j int) bool {
		return votes[i].CreatedAt.Before(votes[j].CreatedAt)
	})
	for _, v := range votes {
		part := Participant{
			VoteID:  v.ID,
			Name:    v.VoterName,
			Answers: make([]models.Availability, len(options)),
		}
		if part.Name == "" {
			part.Name = GuestName
		}
		if v.VoterContact != nil {
			part.Comment = *v.VoterContact
		}
		if !v.CreatedAt.IsZero() {
			part.CreatedAt = v.CreatedAt.Format("Jan 2, 15:04")
		}
		for id, a := range v.Selections {
			i, ok := index[id.Key()]
			if !ok {
				continue
			}
			part.Answers[i] = a
			switch a {
			case models.Yes:
				g.Columns[i].Yes++
			case models.Maybe:
				g.Columns[i].Maybe++
			}
		}
		g.Participants = append(g.Participants, part)
	}
	return g
}

// Best returns the option ids with the most yes answers, maybe breaking
// ties. It is empty when nobody said yes or maybe.
func (g Grid) Best() []models.ID {
	bestYes, bestMaybe := 0, 0
	var out []models.ID
	for _, c := range g.Columns {
		if c.Yes == 0 && c.Maybe == 0 {
			continue
		}
		switch {
		case c.Yes > bestYes || (c.Yes == bestYes && c.Maybe > bestMaybe):
			bestYes, bestMaybe = c.Yes, c.Maybe
			out = []models.ID{c.OptionID}
		case c.Yes == bestYes && c.Maybe == bestMaybe:
			out = append(out, c.OptionID)
		}
	}
	return out
}

// Comments returns the participants that left a note, in vote order.
func (g Grid) Comments() []Participant {
	var out []Participant
	for _, p := range g.Participants {
		if p.Comment != "" {
			out = append(out, p)
		}
	}
	return out
}
