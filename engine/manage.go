// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package engine

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/hibeautyss/tma-clean/apperr"
	"github.com/hibeautyss/tma-clean/draft"
	"github.com/hibeautyss/tma-clean/history"
	"github.com/hibeautyss/tma-clean/lifecycle"
	"github.com/hibeautyss/tma-clean/models"
	"github.com/hibeautyss/tma-clean/slots"
)

// ToggleManageMenu opens or closes the creator menu. Participants never see
// it open.
func (s *Store) ToggleManageMenu() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.state.CanManage {
		s.state.ManageMenuOpen = false
		return false
	}
	s.state.ManageMenuOpen = !s.state.ManageMenuOpen
	return s.state.ManageMenuOpen
}

// ChangeStatus moves the open poll to target and reloads it. A vote on the
// same poll that is already in flight makes this return ErrBusy.
func (s *Store) ChangeStatus(ctx context.Context, target models.Status) error {
	s.mu.Lock()
	poll := s.state.ActivePoll
	canManage := s.permissionsLocked().CanManage
	s.state.ManageMenuOpen = false
	s.mu.Unlock()
	if poll == nil {
		return apperr.ErrNoActivePoll
	}

	req := lifecycle.Request{
		PollID:    poll.ID,
		Current:   poll.Status,
		Target:    target,
		CanManage: canManage,
	}
	changed, err := s.lifecycle.Change(ctx, req, func(ctx context.Context) error {
		s.setVoteFeedback(poll.ID, Message{Text: "Updating poll status...", Tone: ToneInfo})
		if err := s.remote.UpdatePollStatus(ctx, models.UpdateStatusRequest{PollID: poll.ID, Status: target}); err != nil {
			return err
		}
		if err := s.RefreshActivePoll(ctx); err != nil {
			slog.Warn("poll not refreshed after status change", "poll_id", poll.ID, "error", err)
		}
		return nil
	})
	switch {
	case err != nil && apperr.IsRemote(err):
		s.setVoteFeedback(poll.ID, Message{Text: "Unable to update poll status. Please try again.", Tone: ToneError})
	case changed:
		s.setVoteFeedback(poll.ID, Message{Text: lifecycle.SuccessMessage(target), Tone: ToneSuccess})
	}
	return err
}

func (s *Store) setVoteFeedback(pollID models.ID, msg Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.ActivePoll != nil && s.state.ActivePoll.ID.Equal(pollID) {
		s.state.Feedback.Vote = msg
	}
}

func optional(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}

// UpdateDetails saves the title, location and description of the open poll.
func (s *Store) UpdateDetails(ctx context.Context, d PollDetails) error {
	s.mu.Lock()
	st := &s.state
	if st.IsUpdatingDetails {
		s.mu.Unlock()
		return apperr.ErrBusy
	}
	poll := st.ActivePoll
	if poll == nil {
		s.mu.Unlock()
		return apperr.ErrNoActivePoll
	}
	if !s.permissionsLocked().CanManage {
		s.mu.Unlock()
		return apperr.ErrNotPermitted
	}
	title := strings.TrimSpace(d.Title)
	if title == "" {
		st.Feedback.EditDetails = Message{Text: "Title is required.", Tone: ToneError}
		s.mu.Unlock()
		return apperr.ErrTitleRequired
	}
	st.IsUpdatingDetails = true
	st.Feedback.EditDetails = Message{Text: "Saving changes...", Tone: ToneInfo}
	s.mu.Unlock()

	req := models.UpdateDetailsRequest{
		PollID:      poll.ID,
		Title:       title,
		Location:    strings.TrimSpace(d.Location),
		Description: strings.TrimSpace(d.Description),
	}
	updated, err := s.remote.UpdatePollDetails(ctx, req)

	s.mu.Lock()
	st.IsUpdatingDetails = false
	if err != nil {
		err = apperr.Remote("update poll details", err)
		slog.Error("failed to update poll details", "poll_id", poll.ID, "error", err)
		st.Feedback.EditDetails = Message{Text: "Unable to save changes. Please try again.", Tone: ToneError}
		s.mu.Unlock()
		return err
	}
	if updated == nil {
		updated = &models.Poll{Title: req.Title, Location: optional(req.Location), Description: optional(req.Description)}
	}

	var changed bool
	if st.ActivePoll != nil && st.ActivePoll.ID.Equal(poll.ID) {
		next := *st.ActivePoll
		if strings.TrimSpace(updated.Title) != "" {
			next.Title = updated.Title
		}
		next.Location = optional(deref(updated.Location))
		next.Description = optional(deref(updated.Description))
		if updated.UpdatedAt != nil {
			next.UpdatedAt = updated.UpdatedAt
		}
		st.ActivePoll = &next
		st.Feedback.EditDetails = Message{}
		st.PollHistory, changed = history.PatchDetails(st.PollHistory, next.ID, history.Details{Title: &next.Title})
	}
	s.mu.Unlock()
	if changed {
		s.debounce.Schedule()
	}
	slog.Info("poll details updated", "poll_id", poll.ID)
	return nil
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// OpenEditOptions starts editing the options of the open poll.
func (s *Store) OpenEditOptions() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := &s.state
	if st.ActivePoll == nil {
		return apperr.ErrNoActivePoll
	}
	if !s.permissionsLocked().CanManage {
		return apperr.ErrNotPermitted
	}
	st.EditOptions = draft.FromPoll(st.ActivePoll, s.cfg.TimeConfig)
	st.EditView = firstOfMonth(s.now())
	if dates := st.EditOptions.Dates.Dates(); len(dates) > 0 {
		if t, err := time.Parse(slots.DateLayout, dates[0]); err == nil {
			st.EditView = firstOfMonth(t)
		}
	}
	st.IsUpdatingOptions = false
	st.ManageMenuOpen = false
	st.Feedback.EditOptions = Message{}
	return nil
}

// editOptions runs fn on the edit draft unless a save is in flight.
func (s *Store) editOptions(fn func(d *draft.EditDraft)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.EditOptions == nil || s.state.IsUpdatingOptions {
		return
	}
	fn(s.state.EditOptions)
	s.state.Feedback.EditOptions = Message{}
}

// EditToggleDate toggles a date in the edit draft.
func (s *Store) EditToggleDate(date string) {
	s.editOptions(func(d *draft.EditDraft) {
		d.Dates.Toggle(date, d.SpecifyTimes)
	})
}

// EditSetSpecifyTimes switches the edit draft between whole-day and timed.
func (s *Store) EditSetSpecifyTimes(on bool) {
	s.editOptions(func(d *draft.EditDraft) {
		d.SetSpecifyTimes(on)
	})
}

// EditAddSlot appends a slot to date in the edit draft.
func (s *Store) EditAddSlot(date string) {
	s.editOptions(func(d *draft.EditDraft) {
		d.Dates.AppendSlot(date)
	})
}

// EditRemoveSlot drops a slot from the edit draft.
func (s *Store) EditRemoveSlot(date string, index int) {
	s.editOptions(func(d *draft.EditDraft) {
		d.Dates.RemoveSlot(date, index)
	})
}

// EditResizeSlot moves one edge of a slot in the edit draft.
func (s *Store) EditResizeSlot(date string, index int, edge slots.Edge, value int) {
	s.editOptions(func(d *draft.EditDraft) {
		d.Dates.ResizeSlot(date, index, edge, value)
	})
}

// EditNavigateMonth moves the edit calendar by delta months.
func (s *Store) EditNavigateMonth(delta int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.EditOptions == nil {
		return
	}
	s.state.EditView = firstOfMonth(s.state.EditView).AddDate(0, delta, 0)
}

// CancelEditOptions discards the edit draft.
func (s *Store) CancelEditOptions() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.IsUpdatingOptions {
		return
	}
	s.state.EditOptions = nil
	s.state.Feedback.EditOptions = Message{}
}

// SaveEditOptions sends the edited options, then reloads the poll. Options
// dropped from the draft are removed remotely together with their answers.
func (s *Store) SaveEditOptions(ctx context.Context) error {
	s.mu.Lock()
	st := &s.state
	if st.IsUpdatingOptions {
		s.mu.Unlock()
		return apperr.ErrBusy
	}
	poll := st.ActivePoll
	if poll == nil || st.EditOptions == nil {
		s.mu.Unlock()
		return apperr.ErrNoActivePoll
	}
	if !s.permissionsLocked().CanManage {
		s.mu.Unlock()
		return apperr.ErrNotPermitted
	}
	edit, err := st.EditOptions.Build()
	if err != nil {
		st.Feedback.EditOptions = Message{Text: userMessage(err, err.Error()), Tone: ToneError}
		s.mu.Unlock()
		return err
	}
	relation := st.ActivePollRelation
	if relation == "" {
		relation = models.RelationCreated
	}
	st.IsUpdatingOptions = true
	st.Feedback.EditOptions = Message{Text: "Saving changes...", Tone: ToneInfo}
	s.mu.Unlock()

	req := models.UpdateOptionsRequest{
		PollID:           poll.ID,
		SpecifyTimes:     edit.SpecifyTimes,
		Options:          edit.Options,
		RemovedOptionIDs: edit.RemovedOptionIDs,
	}
	var latest *models.Poll
	failure := "Unable to save poll options. Please try again."
	err = s.remote.UpdatePollOptions(ctx, req)
	if err == nil {
		failure = "Unable to refresh the poll after saving. Please try again."
		latest, err = s.remote.FetchPollDetail(ctx, models.PollRef{PollID: poll.ID})
		if err == nil && latest == nil {
			err = errors.New("poll missing after update")
		}
	}
	if err != nil {
		err = apperr.Remote("update poll options", err)
		slog.Error("failed to update poll options", "poll_id", poll.ID, "error", err)
		s.mu.Lock()
		st.IsUpdatingOptions = false
		st.Feedback.EditOptions = Message{Text: failure, Tone: ToneError}
		s.mu.Unlock()
		return err
	}

	s.applyPollDetail(ctx, latest, relation)
	s.mu.Lock()
	st.IsUpdatingOptions = false
	st.EditOptions = nil
	st.Feedback.EditOptions = Message{}
	s.mu.Unlock()
	slog.Info("poll options updated", "poll_id", poll.ID, "options", len(req.Options), "removed", len(req.RemovedOptionIDs))
	return nil
}
