// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package views

import (
	"testing"
	"time"

	"github.com/hibeautyss/tma-clean/models"
	"github.com/hibeautyss/tma-clean/slots"
	"github.com/hibeautyss/tma-clean/vote"
)

func intPtr(v int) *int { return &v }

func TestCalendar(t *testing.T) {
	view := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)
	today := time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)
	selected := map[string]bool{"2025-03-12": true}

	m := Calendar(view, today, func(iso string) bool { return selected[iso] })

	if m.Label != "March 2025" {
		t.Errorf("Expected label March 2025, got %q", m.Label)
	}
	if len(m.Cells) != CalendarCells {
		t.Fatalf("Expected %d cells, got %d", CalendarCells, len(m.Cells))
	}

	tests := []struct {
		index   int
		iso     string
		current bool
	}{
		{0, "2025-02-24", false},
		{5, "2025-03-01", true},
		{35, "2025-03-31", true},
		{41, "2025-04-06", false},
	}
	for _, tt := range tests {
		c := m.Cells[tt.index]
		if c.ISO != tt.iso || c.IsCurrentMonth != tt.current {
			t.Errorf("Cell %d: expected %s (current %v), got %s (current %v)", tt.index, tt.iso, tt.current, c.ISO, c.IsCurrentMonth)
		}
	}
	for _, c := range m.Cells {
		if c.IsToday != (c.ISO == "2025-03-10") {
			t.Errorf("Unexpected today mark on %s", c.ISO)
		}
		if c.IsSelected != (c.ISO == "2025-03-12") {
			t.Errorf("Unexpected selection mark on %s", c.ISO)
		}
	}
}

func TestCalendarMondayStart(t *testing.T) {
	// September 2025 starts on a Monday.
	m := Calendar(time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC), time.Time{}, nil)
	if m.Cells[0].ISO != "2025-09-01" {
		t.Errorf("Expected grid to start on 2025-09-01, got %s", m.Cells[0].ISO)
	}
}

func TestSelectionRows(t *testing.T) {
	c := slots.NewCollection(slots.DefaultTimeConfig())
	c.Toggle("2025-03-12", true)
	c.Toggle("2025-03-10", true)
	c.ResizeSlot("2025-03-10", 0, slots.EdgeEnd, 13*60+30)

	rows := SelectionRows(c, true)
	if len(rows) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(rows))
	}
	first := rows[0]
	if first.Date != "2025-03-10" || first.Label != "Mon, Mar 10" {
		t.Errorf("Unexpected first row %+v", first)
	}
	if len(first.Slots) != 1 {
		t.Fatalf("Expected 1 slot, got %d", len(first.Slots))
	}
	if first.Slots[0].Start != "12:00" || first.Slots[0].End != "13:30" || first.Slots[0].Duration != "1h 30m" {
		t.Errorf("Unexpected slot row %+v", first.Slots[0])
	}
	if !first.CanAddSlot {
		t.Error("Expected room for another slot")
	}

	plain := SelectionRows(c, false)
	if len(plain[0].Slots) != 0 || plain[0].CanAddSlot {
		t.Errorf("Expected no slots without specific times, got %+v", plain[0])
	}
}

func TestVoteGrid(t *testing.T) {
	comment := "after lunch works best"
	p := &models.Poll{
		ID: "1",
		Options: []models.PollOption{
			{ID: "b", Date: "2025-03-11"},
			{ID: "a", Date: "2025-03-10", StartMinute: intPtr(540), EndMinute: intPtr(600)},
			{ID: "c", Date: "2025-03-10"},
		},
		Votes: []models.Vote{
			{ID: "v2", VoterName: "", CreatedAt: time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC),
				Selections: map[models.ID]models.Availability{"a": models.Maybe, "b": models.Yes}},
			{ID: "v1", VoterName: "Ann", VoterContact: &comment, CreatedAt: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
				Selections: map[models.ID]models.Availability{"a": models.Yes, "b": models.Yes, "c": models.No, "gone": models.Yes}},
		},
	}
	d := vote.NewDraft()
	d.Set("c", models.Maybe)

	g := VoteGrid(p, d, false)

	wantOrder := []models.ID{"c", "a", "b"}
	for i, id := range wantOrder {
		if g.Columns[i].OptionID != id {
			t.Errorf("Column %d: expected %s, got %s", i, id, g.Columns[i].OptionID)
		}
	}
	if g.Columns[0].TimeLabel != "All day" || g.Columns[1].TimeLabel != "09:00 - 10:00" {
		t.Errorf("Unexpected time labels %q, %q", g.Columns[0].TimeLabel, g.Columns[1].TimeLabel)
	}
	if g.Columns[0].Draft != models.Maybe {
		t.Errorf("Expected draft maybe on c, got %v", g.Columns[0].Draft)
	}
	if g.Columns[1].Yes != 1 || g.Columns[1].Maybe != 1 {
		t.Errorf("Expected a to have 1 yes 1 maybe, got %d/%d", g.Columns[1].Yes, g.Columns[1].Maybe)
	}
	if g.Columns[2].Yes != 2 {
		t.Errorf("Expected b to have 2 yes, got %d", g.Columns[2].Yes)
	}

	if len(g.Participants) != 2 || g.Participants[0].Name != "Ann" || g.Participants[1].Name != GuestName {
		t.Fatalf("Unexpected participants %+v", g.Participants)
	}
	if g.Participants[0].Answers[0] != models.No {
		t.Errorf("Expected Ann to answer no on c, got %v", g.Participants[0].Answers[0])
	}
	if comments := g.Comments(); len(comments) != 1 || comments[0].Comment != comment {
		t.Errorf("Unexpected comments %+v", comments)
	}
	if best := g.Best(); len(best) != 1 || best[0] != "b" {
		t.Errorf("Expected b to be best, got %v", best)
	}
}

func TestVoteGridNoVotes(t *testing.T) {
	g := VoteGrid(&models.Poll{Options: []models.PollOption{{ID: "a", Date: "2025-03-10"}}}, nil, true)
	if len(g.Participants) != 0 || len(g.Best()) != 0 {
		t.Errorf("Expected empty grid, got %+v", g)
	}
	if !g.ReadOnly {
		t.Error("Expected read-only grid")
	}
	if got := VoteGrid(nil, nil, false); len(got.Columns) != 0 {
		t.Errorf("Expected no columns for nil poll, got %d", len(got.Columns))
	}
}

func TestHistoryCards(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	entries := []models.HistoryEntry{
		{ID: "1", Title: "Team Sync", Status: models.StatusPaused, Relation: models.RelationCreated, ShareCode: "ABC", Timestamp: "2025-03-01T10:00:00.000Z"},
		{ID: "2", Status: "archived", Relation: models.RelationJoined, Timestamp: "not a date"},
	}
	cards := HistoryCards(entries, now)

	if cards[0].RelationLabel != "Created by you" || cards[0].StatusLabel != "Paused" || !cards[0].CanManage {
		t.Errorf("Unexpected first card %+v", cards[0])
	}
	if cards[0].When != "2 hours ago" {
		t.Errorf("Expected 2 hours ago, got %q", cards[0].When)
	}
	if cards[1].Title != "Untitled poll" || cards[1].StatusLabel != "Live" || cards[1].RelationLabel != "Joined" {
		t.Errorf("Unexpected second card %+v", cards[1])
	}
	if cards[1].When != "" {
		t.Errorf("Expected no time for unparsable timestamp, got %q", cards[1].When)
	}
}
