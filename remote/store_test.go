// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package remote

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/hibeautyss/tma-clean/apperr"
	"github.com/hibeautyss/tma-clean/db"
	"github.com/hibeautyss/tma-clean/models"
	"github.com/hibeautyss/tma-clean/testutil"
)

func intPtr(v int) *int { return &v }

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return New(testutil.SetupTestDB(t), db.SQLite)
}

func teamSync() models.CreatePollRequest {
	return models.CreatePollRequest{
		Title:        "Team Sync",
		Location:     "Room 4",
		Timezone:     "Europe/Berlin",
		SpecifyTimes: true,
		Creator:      &models.User{ID: "1001", FirstName: "Ann", Username: "ann"},
		Options: []models.OptionPayload{
			{Date: "2025-03-04", StartMinute: intPtr(720), EndMinute: intPtr(780)},
			{Date: "2025-03-03", StartMinute: intPtr(540), EndMinute: intPtr(600)},
			{Date: "2025-03-03"},
		},
	}
}

func TestCreatePoll(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p, err := s.CreatePoll(ctx, teamSync())
	if err != nil {
		t.Fatalf("Failed to create poll: %v", err)
	}
	if p == nil {
		t.Fatal("Expected poll, got nil")
	}
	if len(p.ShareCode) != 6 || strings.ToUpper(p.ShareCode) != p.ShareCode {
		t.Errorf("Unexpected share code %q", p.ShareCode)
	}
	if p.Status != models.StatusLive {
		t.Errorf("Expected status live, got %s", p.Status)
	}
	if p.Location == nil || *p.Location != "Room 4" {
		t.Errorf("Expected location Room 4, got %v", p.Location)
	}
	if p.Description != nil {
		t.Errorf("Expected no description, got %q", *p.Description)
	}
	if !p.Creator.ID.Equal("1001") || p.Creator.FirstName != "Ann" {
		t.Errorf("Unexpected creator %+v", p.Creator)
	}
	if p.Votes == nil || len(p.Votes) != 0 {
		t.Errorf("Expected empty vote list, got %v", p.Votes)
	}

	if len(p.Options) != 3 {
		t.Fatalf("Expected 3 options, got %d", len(p.Options))
	}
	// Whole-day options sort first within a date.
	if p.Options[0].Date != "2025-03-03" || !p.Options[0].IsWholeDay() {
		t.Errorf("Expected whole-day 2025-03-03 first, got %+v", p.Options[0])
	}
	if *p.Options[1].StartMinute != 540 || *p.Options[2].StartMinute != 720 {
		t.Errorf("Unexpected option order %+v", p.Options)
	}
}

func TestCreatePollValidation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		mutate  func(r *models.CreatePollRequest)
		wantErr error
	}{
		{"blank title", func(r *models.CreatePollRequest) { r.Title = "  " }, apperr.ErrTitleRequired},
		{"no options", func(r *models.CreatePollRequest) { r.Options = nil }, apperr.ErrNoDates},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := teamSync()
			tt.mutate(&req)
			if _, err := s.CreatePoll(ctx, req); !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestFetchPollDetail(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	p, err := s.CreatePoll(ctx, teamSync())
	if err != nil {
		t.Fatalf("Failed to create poll: %v", err)
	}

	tests := []struct {
		name  string
		ref   models.PollRef
		found bool
	}{
		{"by id", models.PollRef{PollID: p.ID}, true},
		{"by share code", models.PollRef{ShareCode: p.ShareCode}, true},
		{"lower-case share code", models.PollRef{ShareCode: strings.ToLower(p.ShareCode)}, true},
		{"id wins over code", models.PollRef{PollID: p.ID, ShareCode: "NOPE"}, true},
		{"unknown id", models.PollRef{PollID: "missing"}, false},
		{"unknown code", models.PollRef{ShareCode: "ZZZZZZ"}, false},
		{"empty ref", models.PollRef{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.FetchPollDetail(ctx, tt.ref)
			if err != nil {
				t.Fatalf("FetchPollDetail() error = %v", err)
			}
			if (got != nil) != tt.found {
				t.Fatalf("Expected found=%v, got %v", tt.found, got)
			}
			if got != nil && !got.ID.Equal(p.ID) {
				t.Errorf("Expected poll %s, got %s", p.ID, got.ID)
			}
		})
	}
}

func TestSubmitVote(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	p, err := s.CreatePoll(ctx, teamSync())
	if err != nil {
		t.Fatalf("Failed to create poll: %v", err)
	}
	comment := "after lunch please"

	v, err := s.SubmitVote(ctx, models.SubmitVoteRequest{
		PollID:       p.ID,
		VoterName:    " Bob ",
		VoterContact: &comment,
		Selections: []models.Selection{
			{OptionID: p.Options[0].ID, Availability: models.Yes},
			{OptionID: p.Options[1].ID, Availability: models.Maybe},
			{OptionID: p.Options[2].ID, Availability: models.None},
			{OptionID: "not-an-option", Availability: models.Yes},
		},
	})
	if err != nil {
		t.Fatalf("Failed to submit vote: %v", err)
	}
	if v.VoterName != "Bob" {
		t.Errorf("Expected trimmed name Bob, got %q", v.VoterName)
	}
	if len(v.Selections) != 2 {
		t.Errorf("Expected 2 stored selections, got %d", len(v.Selections))
	}

	got, err := s.FetchPollDetail(ctx, p.Ref())
	if err != nil {
		t.Fatalf("Failed to fetch poll: %v", err)
	}
	if len(got.Votes) != 1 {
		t.Fatalf("Expected 1 vote, got %d", len(got.Votes))
	}
	stored := got.Votes[0]
	if stored.Selections[p.Options[0].ID] != models.Yes || stored.Selections[p.Options[1].ID] != models.Maybe {
		t.Errorf("Unexpected selections %v", stored.Selections)
	}
	if stored.VoterContact == nil || *stored.VoterContact != comment {
		t.Errorf("Expected comment %q, got %v", comment, stored.VoterContact)
	}
}

func TestSubmitVoteRejected(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	p, err := s.CreatePoll(ctx, teamSync())
	if err != nil {
		t.Fatalf("Failed to create poll: %v", err)
	}
	sel := []models.Selection{{OptionID: p.Options[0].ID, Availability: models.Yes}}

	if _, err := s.SubmitVote(ctx, models.SubmitVoteRequest{PollID: p.ID, VoterName: "", Selections: sel}); !errors.Is(err, apperr.ErrNameRequired) {
		t.Errorf("Expected ErrNameRequired, got %v", err)
	}
	if _, err := s.SubmitVote(ctx, models.SubmitVoteRequest{PollID: "missing", VoterName: "Bob", Selections: sel}); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}

	// Paused polls still take votes.
	if err := s.UpdatePollStatus(ctx, models.UpdateStatusRequest{PollID: p.ID, Status: models.StatusPaused}); err != nil {
		t.Fatalf("Failed to pause poll: %v", err)
	}
	if _, err := s.SubmitVote(ctx, models.SubmitVoteRequest{PollID: p.ID, VoterName: "Bob", Selections: sel}); err != nil {
		t.Errorf("Expected vote on paused poll to succeed, got %v", err)
	}

	if err := s.UpdatePollStatus(ctx, models.UpdateStatusRequest{PollID: p.ID, Status: models.StatusFinished}); err != nil {
		t.Fatalf("Failed to finish poll: %v", err)
	}
	if _, err := s.SubmitVote(ctx, models.SubmitVoteRequest{PollID: p.ID, VoterName: "Cy", Selections: sel}); !errors.Is(err, apperr.ErrPollFinished) {
		t.Errorf("Expected ErrPollFinished, got %v", err)
	}
}

func TestUpdatePollStatus(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	p, err := s.CreatePoll(ctx, teamSync())
	if err != nil {
		t.Fatalf("Failed to create poll: %v", err)
	}

	tests := []struct {
		name    string
		req     models.UpdateStatusRequest
		wantErr bool
	}{
		{"pause", models.UpdateStatusRequest{PollID: p.ID, Status: models.StatusPaused}, false},
		{"finish", models.UpdateStatusRequest{PollID: p.ID, Status: models.StatusFinished}, false},
		{"unknown status", models.UpdateStatusRequest{PollID: p.ID, Status: "archived"}, true},
		{"unknown poll", models.UpdateStatusRequest{PollID: "missing", Status: models.StatusLive}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.UpdatePollStatus(ctx, tt.req)
			if (err != nil) != tt.wantErr {
				t.Fatalf("UpdatePollStatus() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			got, _ := s.FetchPollDetail(ctx, p.Ref())
			if got.Status != tt.req.Status {
				t.Errorf("Expected status %s, got %s", tt.req.Status, got.Status)
			}
			if got.UpdatedAt == nil {
				t.Error("Expected updated_at to be set")
			}
		})
	}
}

func TestUpdatePollDetails(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	p, err := s.CreatePoll(ctx, teamSync())
	if err != nil {
		t.Fatalf("Failed to create poll: %v", err)
	}

	got, err := s.UpdatePollDetails(ctx, models.UpdateDetailsRequest{
		PollID:      p.ID,
		Title:       " Team Retro ",
		Location:    "",
		Description: "Bring notes",
	})
	if err != nil {
		t.Fatalf("Failed to update details: %v", err)
	}
	if got.Title != "Team Retro" {
		t.Errorf("Expected title Team Retro, got %q", got.Title)
	}
	if got.Location != nil {
		t.Errorf("Expected location cleared, got %q", *got.Location)
	}
	if got.Description == nil || *got.Description != "Bring notes" {
		t.Errorf("Expected description Bring notes, got %v", got.Description)
	}

	if _, err := s.UpdatePollDetails(ctx, models.UpdateDetailsRequest{PollID: "missing", Title: "x"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
	if _, err := s.UpdatePollDetails(ctx, models.UpdateDetailsRequest{PollID: p.ID}); !errors.Is(err, apperr.ErrTitleRequired) {
		t.Errorf("Expected ErrTitleRequired, got %v", err)
	}
}

func TestUpdatePollOptions(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	p, err := s.CreatePoll(ctx, teamSync())
	if err != nil {
		t.Fatalf("Failed to create poll: %v", err)
	}
	wholeDay, morning, noon := p.Options[0], p.Options[1], p.Options[2]

	_, err = s.SubmitVote(ctx, models.SubmitVoteRequest{
		PollID:    p.ID,
		VoterName: "Bob",
		Selections: []models.Selection{
			{OptionID: wholeDay.ID, Availability: models.Yes},
			{OptionID: noon.ID, Availability: models.Maybe},
		},
	})
	if err != nil {
		t.Fatalf("Failed to submit vote: %v", err)
	}

	err = s.UpdatePollOptions(ctx, models.UpdateOptionsRequest{
		PollID:       p.ID,
		SpecifyTimes: true,
		Options: []models.OptionPayload{
			{ID: morning.ID, Date: "2025-03-03", StartMinute: intPtr(480), EndMinute: intPtr(600)},
			{ID: noon.ID, Date: noon.Date, StartMinute: noon.StartMinute, EndMinute: noon.EndMinute},
			{Date: "2025-03-05", StartMinute: intPtr(900), EndMinute: intPtr(960)},
		},
		RemovedOptionIDs: []models.ID{wholeDay.ID},
	})
	if err != nil {
		t.Fatalf("Failed to update options: %v", err)
	}

	got, err := s.FetchPollDetail(ctx, p.Ref())
	if err != nil {
		t.Fatalf("Failed to fetch poll: %v", err)
	}
	if len(got.Options) != 3 {
		t.Fatalf("Expected 3 options, got %d", len(got.Options))
	}
	if !got.Options[0].ID.Equal(morning.ID) || *got.Options[0].StartMinute != 480 {
		t.Errorf("Expected resized morning option first, got %+v", got.Options[0])
	}
	if got.Options[2].Date != "2025-03-05" {
		t.Errorf("Expected new option last, got %+v", got.Options[2])
	}

	// The removed option's answer is gone; the kept one survives.
	sel := got.Votes[0].Selections
	if _, ok := sel[wholeDay.ID]; ok {
		t.Error("Expected answer for removed option to be deleted")
	}
	if sel[noon.ID] != models.Maybe {
		t.Errorf("Expected kept answer maybe, got %v", sel[noon.ID])
	}

	err = s.UpdatePollOptions(ctx, models.UpdateOptionsRequest{
		PollID:  p.ID,
		Options: []models.OptionPayload{{ID: "foreign", Date: "2025-03-06"}},
	})
	if err == nil {
		t.Error("Expected error for option of another poll")
	}
}

func TestDeletePoll(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	p, err := s.CreatePoll(ctx, teamSync())
	if err != nil {
		t.Fatalf("Failed to create poll: %v", err)
	}

	if err := s.DeletePoll(ctx, p.ID); err != nil {
		t.Fatalf("Failed to delete poll: %v", err)
	}
	if n := testutil.CountRows(t, s.db, "poll_option"); n != 0 {
		t.Errorf("Expected options to cascade, %d left", n)
	}
	if err := s.DeletePoll(ctx, p.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestFetchSeededPoll(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	s := New(conn, db.SQLite)
	ctx := context.Background()

	pollID, code := testutil.CreateTestPoll(t, conn, "1001", "paused")
	opt := testutil.AddTestOption(t, conn, pollID, "2025-03-03", -1, -1)
	testutil.SubmitTestVote(t, conn, pollID, "Dee", map[string]string{opt: "no"})

	p, err := s.FetchPollDetail(ctx, models.PollRef{ShareCode: code})
	if err != nil || p == nil {
		t.Fatalf("Failed to fetch seeded poll: %v", err)
	}
	if p.Status != models.StatusPaused {
		t.Errorf("Expected paused, got %s", p.Status)
	}
	if len(p.Options) != 1 || !p.Options[0].IsWholeDay() {
		t.Errorf("Expected one whole-day option, got %+v", p.Options)
	}
	if len(p.Votes) != 1 || p.Votes[0].Selections[models.ID(opt)] != models.No {
		t.Errorf("Unexpected votes %+v", p.Votes)
	}
}
