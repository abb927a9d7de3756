// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hibeautyss/tma-clean/apperr"
	"github.com/hibeautyss/tma-clean/draft"
	"github.com/hibeautyss/tma-clean/history"
	"github.com/hibeautyss/tma-clean/models"
	"github.com/hibeautyss/tma-clean/slots"
)

// userMessage picks the text shown for err.
func userMessage(err error, fallback string) string {
	switch {
	case errors.Is(err, apperr.ErrNoDates):
		return "Select at least one date first."
	case errors.Is(err, apperr.ErrMissingTimeSlot):
		return "Add at least one time slot for every selected date."
	case errors.Is(err, apperr.ErrBusy):
		return "Another update is still running. Try again in a moment."
	case errors.Is(err, apperr.ErrNotPermitted):
		return "Only the poll creator can do that."
	}
	return fallback
}

func (s *Store) resetPlannerLocked() {
	now := s.now()
	s.state.SelectedDates = slots.NewCollection(s.cfg.TimeConfig)
	s.state.SpecifyTimes = false
	s.state.TimezoneSearch = ""
	s.state.Today = now
	s.state.CurrentView = firstOfMonth(now)
}

// NewPoll opens an empty create screen.
func (s *Store) NewPoll() {
	s.mu.Lock()
	s.state.InviteLink = ""
	s.state.InviteCode = ""
	s.resetPlannerLocked()
	s.state.Feedback.Form = Message{}
	s.state.Screen = ScreenCreate
	s.mu.Unlock()
	s.saveNow()
}

// ToggleDate selects or deselects date and reports whether it is selected.
func (s *Store) ToggleDate(date string) bool {
	var selected bool
	s.update(func(st *State) {
		selected = st.SelectedDates.Toggle(date, st.SpecifyTimes)
	})
	return selected
}

// SetSpecifyTimes switches between whole-day and timed options.
func (s *Store) SetSpecifyTimes(on bool) {
	s.update(func(st *State) {
		st.SpecifyTimes = on
		if on {
			st.SelectedDates.EnsureDefaultSlots()
		}
	})
}

// AddSlot appends a slot after the last one on date.
func (s *Store) AddSlot(date string) {
	s.update(func(st *State) {
		st.SelectedDates.AppendSlot(date)
	})
}

// RemoveSlot drops the slot at index on date.
func (s *Store) RemoveSlot(date string, index int) {
	s.update(func(st *State) {
		st.SelectedDates.RemoveSlot(date, index)
	})
}

// ResizeSlot moves one edge of a slot.
func (s *Store) ResizeSlot(date string, index int, edge slots.Edge, value int) {
	s.update(func(st *State) {
		st.SelectedDates.ResizeSlot(date, index, edge, value)
	})
}

// SetTimezoneSearch stores the picker query and returns the matches.
func (s *Store) SetTimezoneSearch(query string) []Timezone {
	s.update(func(st *State) {
		st.TimezoneSearch = query
	})
	return FilterTimezones(query)
}

// SetTimezone selects zone. Zones outside the catalog are rejected.
func (s *Store) SetTimezone(zone string) bool {
	if SanitizeTimezone(zone) != zone {
		return false
	}
	s.update(func(st *State) {
		st.Timezone = zone
	})
	return true
}

// NavigateMonth moves the calendar by delta months.
func (s *Store) NavigateMonth(delta int) {
	s.update(func(st *State) {
		st.CurrentView = firstOfMonth(st.CurrentView).AddDate(0, delta, 0)
	})
}

// CanCreate reports whether the create button is enabled.
func (s *Store) CanCreate() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.SelectedDates.Len() > 0 && !s.state.IsSubmitting
}

// PollDetails are the free-text fields of a poll.
type PollDetails struct {
	Title       string
	Location    string
	Description string
}

// CreateResult is returned by a successful CreatePoll.
type CreateResult struct {
	Poll       *models.Poll
	ShareCode  string
	InviteLink string
}

// CreatePoll publishes the planner selection as a new poll. On success the
// poll is recorded as created and the planner is reset.
func (s *Store) CreatePoll(ctx context.Context, d PollDetails) (CreateResult, error) {
	s.mu.Lock()
	if s.state.IsSubmitting {
		s.mu.Unlock()
		return CreateResult{}, apperr.ErrBusy
	}
	if strings.TrimSpace(d.Title) == "" {
		s.state.Feedback.Form = Message{Text: "Title is required before creating a poll.", Tone: ToneError}
		s.mu.Unlock()
		return CreateResult{}, apperr.ErrTitleRequired
	}
	options, err := draft.BuildOptions(s.state.SelectedDates, s.state.SpecifyTimes)
	if err != nil {
		s.state.Feedback.Form = Message{Text: userMessage(err, err.Error()), Tone: ToneError}
		s.mu.Unlock()
		return CreateResult{}, err
	}
	req := models.CreatePollRequest{
		Title:        d.Title,
		Location:     d.Location,
		Description:  d.Description,
		Timezone:     s.state.Timezone,
		SpecifyTimes: s.state.SpecifyTimes,
		Creator:      s.state.User,
		Options:      options,
	}
	s.state.IsSubmitting = true
	s.state.Feedback.Form = Message{Text: "Saving poll...", Tone: ToneInfo}
	s.mu.Unlock()

	poll, err := s.remote.CreatePoll(ctx, req)
	if err == nil && poll == nil {
		err = errors.New("remote returned no poll")
	}

	s.mu.Lock()
	s.state.IsSubmitting = false
	if err != nil {
		err = apperr.Remote("create poll", err)
		slog.Error("failed to create poll", "error", err)
		s.state.Feedback.Form = Message{Text: "Unable to create poll. Please try again.", Tone: ToneError}
		s.mu.Unlock()
		return CreateResult{}, err
	}

	code := SanitizeShareCode(poll.ShareCode)
	link := InviteLink(s.cfg.BotUsername, code)
	s.state.InviteCode = code
	s.state.InviteLink = link
	s.state.Feedback.Form = Message{
		Text: fmt.Sprintf("Poll created! Invite link ready below (share code %s).", code),
		Tone: ToneSuccess,
	}
	s.state.PollHistory = history.Record(s.state.PollHistory, poll, models.RelationCreated, s.userID(), s.now())
	s.resetPlannerLocked()
	s.mu.Unlock()
	s.saveNow()

	if link == "" {
		slog.Warn("no bot username configured, invite link disabled", "share_code", code)
	}
	slog.Info("poll created", "poll_id", poll.ID, "share_code", code, "options", len(options))
	return CreateResult{Poll: poll, ShareCode: code, InviteLink: link}, nil
}
