// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package engine

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/hibeautyss/tma-clean/apperr"
	"github.com/hibeautyss/tma-clean/lifecycle"
	"github.com/hibeautyss/tma-clean/models"
	"github.com/hibeautyss/tma-clean/vote"
)

// guardMessage maps a vote guard error to its feedback. ok is false when the
// error is silent.
func guardMessage(err error, perms Permissions) (Message, bool) {
	switch {
	case errors.Is(err, apperr.ErrPollFinished):
		return Message{Text: "This poll is finished. Voting is closed.", Tone: ToneError}, true
	case errors.Is(err, apperr.ErrAlreadySubmitted):
		return Message{Text: LockedVotingMessage(perms), Tone: ToneSuccess}, true
	case errors.Is(err, apperr.ErrNoPositiveSelection):
		return Message{Text: "Select at least one slot (green or yellow) first.", Tone: ToneError}, true
	case errors.Is(err, apperr.ErrNameRequired):
		return Message{Text: "Please provide your name before submitting.", Tone: ToneError}, true
	}
	return Message{}, false
}

func hasOption(p *models.Poll, id models.ID) bool {
	for _, o := range p.Options {
		if o.ID.Equal(id) {
			return true
		}
	}
	return false
}

// CycleDraft advances the availability of one option in the vote draft.
// It is a no-op once voting is locked or for options not on the poll.
func (s *Store) CycleDraft(optionID models.ID) (models.Availability, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := &s.state
	if st.ActivePoll == nil {
		return models.None, apperr.ErrNoActivePoll
	}
	perms := s.permissionsLocked()
	if perms.IsFinished {
		return st.VoteDraft.Get(optionID), apperr.ErrPollFinished
	}
	if perms.HasSubmittedVote {
		return st.VoteDraft.Get(optionID), apperr.ErrAlreadySubmitted
	}
	if !hasOption(st.ActivePoll, optionID) {
		return models.None, nil
	}
	if st.VoteDraft == nil {
		st.VoteDraft = vote.NewDraft()
	}
	a := st.VoteDraft.Cycle(optionID)
	st.Feedback.Vote = Message{}
	return a, nil
}

// ResetDraft clears every mark and the comment.
func (s *Store) ResetDraft() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.ActivePoll == nil || s.permissionsLocked().IsReadOnly {
		return
	}
	s.state.VoteDraft = vote.NewDraft()
	s.state.VoteComment = ""
	s.state.Feedback.Vote = Message{}
}

// SetVoteComment sets the optional note sent with the vote.
func (s *Store) SetVoteComment(comment string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.permissionsLocked().IsReadOnly {
		return
	}
	s.state.VoteComment = comment
}

// SetVoteName sets the name the vote is submitted under.
func (s *Store) SetVoteName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.VoteName = name
}

// ContinueVote validates the draft and opens the name prompt.
func (s *Store) ContinueVote() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := &s.state
	perms := s.permissionsLocked()
	if err := vote.Guard(st.ActivePoll, st.VoteDraft, st.HasSubmittedVote); err != nil {
		if msg, ok := guardMessage(err, perms); ok {
			st.Feedback.Vote = msg
		}
		return err
	}
	st.Feedback.Vote = Message{}
	if strings.TrimSpace(st.VoteName) == "" {
		st.VoteName = st.User.DefaultVoterName()
	}
	st.NameModalOpen = true
	return nil
}

// CloseNameModal dismisses the name prompt.
func (s *Store) CloseNameModal() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.NameModalOpen = false
}

// SubmitVote sends the draft under name, or under the stored vote name when
// name is blank. Only one vote or status change per poll runs at a time.
func (s *Store) SubmitVote(ctx context.Context, name string) (*models.Vote, error) {
	s.mu.Lock()
	st := &s.state
	poll := st.ActivePoll
	perms := s.permissionsLocked()
	if err := vote.Guard(poll, st.VoteDraft, st.HasSubmittedVote); err != nil {
		if msg, ok := guardMessage(err, perms); ok {
			st.Feedback.Vote = msg
		}
		s.mu.Unlock()
		return nil, err
	}
	voterName := strings.TrimSpace(name)
	if voterName == "" {
		voterName = strings.TrimSpace(st.VoteName)
	}
	if voterName == "" {
		msg, _ := guardMessage(apperr.ErrNameRequired, perms)
		st.Feedback.Vote = msg
		s.mu.Unlock()
		return nil, apperr.ErrNameRequired
	}
	release, ok := s.gate.Acquire(poll.ID, lifecycle.OpVote)
	if !ok {
		s.mu.Unlock()
		return nil, apperr.ErrBusy
	}
	defer release()

	req := models.SubmitVoteRequest{
		PollID:     poll.ID,
		VoterName:  voterName,
		Selections: st.VoteDraft.Total(poll.Options),
	}
	if comment := strings.TrimSpace(st.VoteComment); comment != "" {
		req.VoterContact = &comment
	}
	st.Feedback.Vote = Message{Text: "Sending your vote...", Tone: ToneInfo}
	s.mu.Unlock()

	v, err := s.remote.SubmitVote(ctx, req)
	if err == nil && v == nil {
		err = errors.New("remote returned no vote")
	}
	if err != nil {
		err = apperr.Remote("submit vote", err)
		slog.Error("failed to submit vote", "poll_id", poll.ID, "error", err)
		s.mu.Lock()
		if s.state.ActivePoll != nil && s.state.ActivePoll.ID.Equal(poll.ID) {
			s.state.Feedback.Vote = Message{Text: "Unable to submit your vote. Please try again.", Tone: ToneError}
		}
		s.mu.Unlock()
		return nil, err
	}

	s.tracker.Remember(ctx, poll, v)
	slog.Info("vote submitted", "poll_id", poll.ID, "vote_id", v.ID)

	s.mu.Lock()
	if s.state.ActivePoll != nil && s.state.ActivePoll.ID.Equal(poll.ID) {
		st.Feedback.Vote = Message{Text: "Thanks! Your vote has been recorded.", Tone: ToneSuccess}
		st.VoteDraft = vote.NewDraft()
		st.VoteComment = ""
		st.VoteName = voterName
		st.NameModalOpen = false
		st.HasSubmittedVote = true
	}
	s.mu.Unlock()

	if err := s.RefreshActivePoll(ctx); err != nil {
		slog.Warn("poll not refreshed after vote", "poll_id", poll.ID, "error", err)
	}
	return v, nil
}
