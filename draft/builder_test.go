// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package draft

import (
	"errors"
	"reflect"
	"testing"

	"github.com/hibeautyss/tma-clean/apperr"
	"github.com/hibeautyss/tma-clean/models"
	"github.com/hibeautyss/tma-clean/slots"
)

func intPtr(v int) *int { return &v }

func TestBuildOptionsWholeDay(t *testing.T) {
	c := slots.NewCollection(slots.DefaultTimeConfig())
	c.Toggle("2024-01-10", false)

	got, err := BuildOptions(c, false)
	if err != nil {
		t.Fatalf("BuildOptions() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("Expected 1 option, got %d", len(got))
	}
	if got[0].Date != "2024-01-10" || got[0].StartMinute != nil || got[0].EndMinute != nil {
		t.Errorf("Expected whole-day option on 2024-01-10, got %+v", got[0])
	}
}

func TestBuildOptionsWithTimes(t *testing.T) {
	c := slots.NewCollection(slots.DefaultTimeConfig())
	c.Insert("2024-01-10", slots.TimeSlot{Start: 540, End: 600})

	got, err := BuildOptions(c, true)
	if err != nil {
		t.Fatalf("BuildOptions() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("Expected 1 option, got %d", len(got))
	}
	o := got[0]
	if o.Date != "2024-01-10" || o.StartMinute == nil || *o.StartMinute != 540 || *o.EndMinute != 600 {
		t.Errorf("Expected 2024-01-10 540-600, got %+v", o)
	}
}

func TestBuildOptionsSortedByDate(t *testing.T) {
	c := slots.NewCollection(slots.DefaultTimeConfig())
	c.Toggle("2024-03-01", true)
	c.Toggle("2024-01-10", true)
	c.AppendSlot("2024-01-10")

	got, err := BuildOptions(c, true)
	if err != nil {
		t.Fatalf("BuildOptions() error = %v", err)
	}
	var dates []string
	for _, o := range got {
		dates = append(dates, o.Date)
	}
	want := []string{"2024-01-10", "2024-01-10", "2024-03-01"}
	if !reflect.DeepEqual(dates, want) {
		t.Errorf("Expected %v, got %v", want, dates)
	}
}

func TestBuildOptionsErrors(t *testing.T) {
	tests := []struct {
		name         string
		setup        func(c *slots.Collection)
		specifyTimes bool
		want         error
	}{
		{
			name:  "no dates",
			setup: func(c *slots.Collection) {},
			want:  apperr.ErrNoDates,
		},
		{
			name: "date without slot",
			setup: func(c *slots.Collection) {
				c.Toggle("2024-01-10", true)
				c.RemoveSlot("2024-01-10", 0)
			},
			specifyTimes: true,
			want:         apperr.ErrMissingTimeSlot,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := slots.NewCollection(slots.DefaultTimeConfig())
			tt.setup(c)
			_, err := BuildOptions(c, tt.specifyTimes)
			if !errors.Is(err, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, err)
			}
			if !apperr.IsValidation(err) {
				t.Errorf("Expected a validation error, got %T", err)
			}
		})
	}
}

func TestRemovedOptionIDs(t *testing.T) {
	baseline := []models.ID{models.ParseID(1), "2", " 3 ", "", "2"}
	options := []models.OptionPayload{
		{ID: "1", Date: "2024-01-10"},
		{ID: models.ParseID(3.0), Date: "2024-01-11"},
		{Date: "2024-01-12"},
	}

	got := RemovedOptionIDs(baseline, options)
	want := []models.ID{"2"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestFromPollRoundTrip(t *testing.T) {
	poll := &models.Poll{
		ID:           "p1",
		SpecifyTimes: true,
		Timezone:     "Europe/Moscow",
		Options: []models.PollOption{
			{ID: "o2", Date: "2024-01-11", StartMinute: intPtr(600), EndMinute: intPtr(660)},
			{ID: "o1", Date: "2024-01-10", StartMinute: intPtr(540), EndMinute: intPtr(600)},
			{ID: "o3", Date: "2024-01-11", StartMinute: intPtr(540), EndMinute: intPtr(570)},
		},
	}

	d := FromPoll(poll, slots.DefaultTimeConfig())
	if d.Dates.Len() != 2 {
		t.Fatalf("Expected 2 dates, got %d", d.Dates.Len())
	}
	if got := d.Dates.Slots("2024-01-11"); got[0].ID != "o3" {
		t.Errorf("Expected slots sorted by start, got %+v", got)
	}

	// Drop the first slot on 2024-01-11 and save.
	d.Dates.RemoveSlot("2024-01-11", 0)
	edit, err := d.Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if len(edit.Options) != 2 {
		t.Errorf("Expected 2 options, got %d", len(edit.Options))
	}
	if !reflect.DeepEqual(edit.RemovedOptionIDs, []models.ID{"o3"}) {
		t.Errorf("Expected o3 removed, got %v", edit.RemovedOptionIDs)
	}
}

func TestFromPollWholeDayKeepsIDs(t *testing.T) {
	poll := &models.Poll{
		Options: []models.PollOption{{ID: "o1", Date: "2024-01-10"}},
	}
	d := FromPoll(poll, slots.DefaultTimeConfig())

	edit, err := d.Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if len(edit.Options) != 1 || edit.Options[0].ID != "o1" || edit.Options[0].StartMinute != nil {
		t.Errorf("Expected whole-day option o1, got %+v", edit.Options)
	}
	if len(edit.RemovedOptionIDs) != 0 {
		t.Errorf("Expected nothing removed, got %v", edit.RemovedOptionIDs)
	}

	d.SetSpecifyTimes(true)
	edit, err = d.Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if *edit.Options[0].StartMinute != 720 || *edit.Options[0].EndMinute != 780 {
		t.Errorf("Expected default times, got %d-%d", *edit.Options[0].StartMinute, *edit.Options[0].EndMinute)
	}
}

func TestSortOptionsWholeDayFirst(t *testing.T) {
	opts := []models.PollOption{
		{ID: "b", Date: "2024-01-10", StartMinute: intPtr(0)},
		{ID: "a", Date: "2024-01-10"},
		{ID: "c", Date: "2024-01-09", StartMinute: intPtr(900)},
	}
	SortOptions(opts)
	var ids []string
	for _, o := range opts {
		ids = append(ids, string(o.ID))
	}
	if !reflect.DeepEqual(ids, []string{"c", "a", "b"}) {
		t.Errorf("Expected [c a b], got %v", ids)
	}
}
