// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package history

import (
	"reflect"
	"testing"
	"time"

	"github.com/hibeautyss/tma-clean/models"
)

func entry(id, code string, rel models.Relation, status models.Status, ts string) models.HistoryEntry {
	return models.HistoryEntry{
		ID:        models.ID(id),
		ShareCode: code,
		Title:     "Poll " + id + code,
		Relation:  rel,
		Status:    status,
		Timestamp: ts,
	}
}

func TestMergeRelationEscalationIsCommutative(t *testing.T) {
	joined := entry("1", "AAA", models.RelationJoined, models.StatusLive, "2024-01-10T10:00:00.000Z")
	created := entry("1", "AAA", models.RelationCreated, models.StatusLive, "2024-01-09T10:00:00.000Z")

	a := Merge(created, Merge(joined, nil))
	b := Merge(joined, Merge(created, nil))

	for name, got := range map[string][]models.HistoryEntry{"joined first": a, "created first": b} {
		if len(got) != 1 {
			t.Fatalf("%s: expected 1 entry, got %d", name, len(got))
		}
		if got[0].Relation != models.RelationCreated {
			t.Errorf("%s: expected created, got %s", name, got[0].Relation)
		}
		if got[0].Timestamp != "2024-01-10T10:00:00.000Z" {
			t.Errorf("%s: expected later timestamp, got %s", name, got[0].Timestamp)
		}
	}
}

func TestMergeStatusAndPosition(t *testing.T) {
	list := []models.HistoryEntry{
		entry("1", "", models.RelationJoined, models.StatusLive, "2024-01-01"),
		entry("2", "", models.RelationJoined, models.StatusLive, "2024-01-02"),
	}
	incoming := entry("2", "", models.RelationJoined, "archived", "not a date")

	got := Merge(incoming, list)
	if len(got) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(got))
	}
	if got[0].ID != "2" {
		t.Errorf("Expected merged entry first, got %s", got[0].ID)
	}
	if got[0].Status != models.StatusLive {
		t.Errorf("Expected unknown status normalized to live, got %s", got[0].Status)
	}
	if got[0].Timestamp != "2024-01-02" {
		t.Errorf("Expected unparsable timestamp to lose, got %s", got[0].Timestamp)
	}

	finished := entry("1", "", models.RelationJoined, models.StatusFinished, "")
	got = Merge(finished, got)
	if got[0].ID != "1" || got[0].Status != models.StatusFinished {
		t.Errorf("Expected incoming status to win, got %+v", got[0])
	}
}

func TestMergeFallsBackToShareCode(t *testing.T) {
	list := []models.HistoryEntry{entry("", "CODE1", models.RelationJoined, models.StatusLive, "")}
	got := Merge(entry("", "CODE1", models.RelationCreated, models.StatusPaused, ""), list)
	if len(got) != 1 || got[0].Relation != models.RelationCreated || got[0].Status != models.StatusPaused {
		t.Errorf("Unexpected merge by share code: %+v", got)
	}
}

func TestDedupeKeepsUnkeyedEntries(t *testing.T) {
	list := []models.HistoryEntry{
		{Title: "orphan"},
		entry("1", "", models.RelationJoined, models.StatusLive, "2024-01-01"),
		{Title: "orphan"},
		entry("1", "", models.RelationCreated, models.StatusPaused, "2024-02-01"),
	}
	got := Dedupe(list)
	if len(got) != 3 {
		t.Fatalf("Expected 3 entries, got %d", len(got))
	}
	if got[1].Relation != models.RelationCreated || got[1].Status != models.StatusPaused || got[1].Timestamp != "2024-02-01" {
		t.Errorf("Unexpected combined entry %+v", got[1])
	}
}

func TestDedupeNumericAndStringIDs(t *testing.T) {
	list := []models.HistoryEntry{
		{ID: models.ParseID(5), Relation: models.RelationJoined},
		{ID: " 5", Relation: models.RelationCreated},
	}
	if got := Dedupe(list); len(got) != 1 {
		t.Errorf("Expected ids to collapse, got %d entries", len(got))
	}
}

func TestDedupeKeepsFirstTitle(t *testing.T) {
	first := entry("1", "", models.RelationJoined, models.StatusLive, "2024-01-01")
	first.Title = "Team lunch"
	second := entry("1", "", models.RelationJoined, models.StatusLive, "2024-02-01")
	second.Title = "Renamed lunch"
	untitled := entry("2", "", models.RelationJoined, models.StatusLive, "2024-01-01")
	untitled.Title = ""
	titled := entry("2", "", models.RelationJoined, models.StatusLive, "2024-01-02")
	titled.Title = "Board game night"

	got := Dedupe([]models.HistoryEntry{first, untitled, second, titled})
	if len(got) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(got))
	}
	if got[0].Title != "Team lunch" {
		t.Errorf("Expected first title kept, got %q", got[0].Title)
	}
	if got[0].Timestamp != "2024-02-01" {
		t.Errorf("Expected newer timestamp, got %q", got[0].Timestamp)
	}
	if got[1].Title != "Board game night" {
		t.Errorf("Expected missing title filled, got %q", got[1].Title)
	}

	// Merge still takes the incoming title.
	merged := Merge(second, []models.HistoryEntry{first})
	if merged[0].Title != "Renamed lunch" {
		t.Errorf("Expected Merge to take incoming title, got %q", merged[0].Title)
	}
}

func TestRecord(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	poll := &models.Poll{
		ID:        "p1",
		ShareCode: "ABC",
		Status:    models.StatusLive,
		Creator:   models.User{ID: "7"},
	}

	got := Record(nil, poll, models.RelationJoined, "7", now)
	if len(got) != 1 {
		t.Fatalf("Expected 1 entry, got %d", len(got))
	}
	e := got[0]
	if e.Relation != models.RelationCreated {
		t.Errorf("Expected creator match to derive created, got %s", e.Relation)
	}
	if e.Title != DefaultTitle {
		t.Errorf("Expected default title, got %q", e.Title)
	}
	if e.Timestamp != "2024-03-01T12:00:00.000Z" {
		t.Errorf("Expected now as timestamp, got %s", e.Timestamp)
	}
	if e.CreatorID != "7" {
		t.Errorf("Expected creator id 7, got %s", e.CreatorID)
	}

	if got := Record(got, &models.Poll{}, models.RelationJoined, "7", now); len(got) != 1 {
		t.Errorf("Expected unkeyed poll to be ignored, got %d entries", len(got))
	}
}

func TestPatchDetails(t *testing.T) {
	list := []models.HistoryEntry{
		entry("1", "", models.RelationCreated, models.StatusLive, "2024-01-01T00:00:00.000Z"),
		entry("2", "", models.RelationJoined, models.StatusLive, "2024-01-01T00:00:00.000Z"),
	}

	same := list[0].Title
	live := models.StatusLive
	got, changed := PatchDetails(list, "1", Details{Title: &same, Status: &live, Timestamp: list[0].Timestamp})
	if changed {
		t.Error("Expected no change for identical details")
	}
	if &got[0] != &list[0] {
		t.Error("Expected the original slice back when nothing changed")
	}

	title := "Renamed"
	finished := models.StatusFinished
	got, changed = PatchDetails(list, models.ParseID(1), Details{Title: &title, Status: &finished})
	if !changed {
		t.Fatal("Expected change")
	}
	if got[0].Title != "Renamed" || got[0].Status != models.StatusFinished {
		t.Errorf("Unexpected patched entry %+v", got[0])
	}
	if got[0].Timestamp != list[0].Timestamp {
		t.Errorf("Expected timestamp kept, got %s", got[0].Timestamp)
	}
	if list[0].Title == "Renamed" {
		t.Error("Expected input list untouched")
	}
	if !reflect.DeepEqual(got[1], list[1]) {
		t.Error("Expected other entries untouched")
	}

	if _, changed := PatchDetails(list, "missing", Details{Title: &title}); changed {
		t.Error("Expected no change for unknown poll")
	}
}

func TestDetailsOf(t *testing.T) {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	updated := created.Add(time.Hour)
	d := DetailsOf(&models.Poll{Title: "T", Status: models.StatusPaused, CreatedAt: created, UpdatedAt: &updated})
	if *d.Title != "T" || *d.Status != models.StatusPaused {
		t.Errorf("Unexpected details %+v", d)
	}
	if d.Timestamp != "2024-01-01T01:00:00.000Z" {
		t.Errorf("Expected updated_at timestamp, got %s", d.Timestamp)
	}
}

func TestFilter(t *testing.T) {
	list := []models.HistoryEntry{
		entry("1", "", models.RelationJoined, models.StatusLive, "2024-01-01T00:00:00.000Z"),
		entry("2", "", models.RelationCreated, models.StatusLive, "2024-03-01T00:00:00.000Z"),
		entry("3", "", models.RelationCreated, models.StatusFinished, "2024-02-01T00:00:00.000Z"),
		entry("4", "", models.RelationCreated, "", "2024-02-01T00:00:00.000Z"),
	}

	tests := []struct {
		name    string
		filters Filters
		want    []models.ID
	}{
		{"live tab", Filters{Status: models.StatusLive}, []models.ID{"2", "4", "1"}},
		{"live created only", Filters{Status: models.StatusLive, CreatedOnly: true}, []models.ID{"2", "4"}},
		{"finished tab", Filters{Status: models.StatusFinished}, []models.ID{"3"}},
		{"unknown tab is live", Filters{Status: "bogus"}, []models.ID{"2", "4", "1"}},
		{"paused tab", Filters{Status: models.StatusPaused}, []models.ID{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Filter(list, tt.filters)
			ids := []models.ID{}
			for _, e := range got {
				ids = append(ids, e.ID)
			}
			if !reflect.DeepEqual(ids, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, ids)
			}
		})
	}
}

func TestParseTimestamp(t *testing.T) {
	if ParseTimestamp("") != 0 || ParseTimestamp("yesterday") != 0 {
		t.Error("Expected empty and unparsable timestamps to be 0")
	}
	if ParseTimestamp("2024-01-10T09:00:00.000Z") <= ParseTimestamp("2024-01-10") {
		t.Error("Expected later instant to compare greater")
	}
}
