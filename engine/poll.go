// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package engine

import (
	"context"
	"log/slog"
	"strings"

	"github.com/hibeautyss/tma-clean/apperr"
	"github.com/hibeautyss/tma-clean/draft"
	"github.com/hibeautyss/tma-clean/history"
	"github.com/hibeautyss/tma-clean/models"
	"github.com/hibeautyss/tma-clean/vote"
)

// RestoreStatus is the outcome of a restore or invite attempt.
type RestoreStatus string

const (
	RestoreSkipped  RestoreStatus = "skipped"
	RestoreFallback RestoreStatus = "fallback"
	RestoreSuccess  RestoreStatus = "success"
	RestoreError    RestoreStatus = "error"
)

// normalizePoll returns a copy of p with sorted options and a known status.
func normalizePoll(p *models.Poll) *models.Poll {
	out := *p
	out.Options = append([]models.PollOption(nil), p.Options...)
	draft.SortOptions(out.Options)
	out.Status = models.NormalizeStatus(string(p.Status))
	return &out
}

// applyPollDetail opens poll on the poll screen with a fresh vote draft.
func (s *Store) applyPollDetail(ctx context.Context, poll *models.Poll, relation models.Relation) {
	submitted := s.tracker.HasSubmitted(ctx, poll)
	next := normalizePoll(poll)

	s.mu.Lock()
	st := &s.state
	perms := DerivePermissions(next, relation, s.userID(), submitted)
	ref := next.Ref()

	st.ActivePoll = next
	st.ActivePollRef = &ref
	st.ActivePollRelation = perms.Relation
	st.VoteDraft = vote.NewDraft()
	st.VoteComment = ""
	st.VoteName = st.User.DefaultVoterName()
	st.NameModalOpen = false
	st.HasSubmittedVote = submitted
	st.CanManage = perms.CanManage
	st.ManageMenuOpen = false
	st.EditOptions = nil
	st.Feedback.Vote = Message{}
	st.Feedback.EditDetails = Message{}
	st.Feedback.EditOptions = Message{}
	if submitted {
		st.Feedback.Vote = Message{Text: LockedVotingMessage(perms), Tone: ToneSuccess}
	}
	st.PollHistory = history.Record(st.PollHistory, next, perms.Relation, s.userID(), s.now())
	st.Screen = ScreenPoll
	s.mu.Unlock()
	s.debounce.Schedule()
}

func (s *Store) clearActivePollLocked() {
	st := &s.state
	st.ActivePoll = nil
	st.ActivePollRef = nil
	st.ActivePollRelation = models.RelationJoined
	st.VoteDraft = vote.NewDraft()
	st.VoteComment = ""
	st.VoteName = ""
	st.NameModalOpen = false
	st.HasSubmittedVote = false
	st.CanManage = false
	st.ManageMenuOpen = false
	st.EditOptions = nil
}

func (s *Store) setJoinFeedback(text string, tone Tone) {
	s.mu.Lock()
	s.state.Feedback.Join = Message{Text: text, Tone: tone}
	s.mu.Unlock()
}

// JoinPoll opens the poll with the given share code as a participant.
func (s *Store) JoinPoll(ctx context.Context, code string) error {
	shareCode := SanitizeShareCode(strings.TrimSpace(code))
	if shareCode == "" {
		s.setJoinFeedback("Enter a share code first.", ToneError)
		return apperr.ErrShareCodeRequired
	}
	s.setJoinFeedback("", "")

	poll, err := s.remote.FetchPollDetail(ctx, models.PollRef{ShareCode: shareCode})
	if err != nil {
		err = apperr.Remote("fetch poll", err)
		slog.Error("failed to join poll", "share_code", shareCode, "error", err)
		s.setJoinFeedback("Unable to join that poll right now. Please try again.", ToneError)
		return err
	}
	if poll == nil {
		s.setJoinFeedback("No poll found with that code.", ToneError)
		return apperr.ErrPollNotFound
	}
	s.applyPollDetail(ctx, poll, models.RelationJoined)
	return nil
}

// OpenFromHistory reopens a dashboard entry. manage opens it as the creator,
// which only applies to polls the current user created.
func (s *Store) OpenFromHistory(ctx context.Context, entry models.HistoryEntry, manage bool) error {
	ref := models.PollRef{PollID: entry.ID, ShareCode: SanitizeShareCode(entry.ShareCode)}
	if ref.IsZero() {
		s.setJoinFeedback("Missing poll reference.", ToneError)
		return apperr.ErrMissingReference
	}
	relation := entry.Relation
	if relation == "" {
		relation = models.RelationJoined
	}

	poll, err := s.remote.FetchPollDetail(ctx, ref)
	if err != nil {
		err = apperr.Remote("fetch poll", err)
		slog.Error("failed to open poll from history", "poll_id", ref.PollID, "error", err)
		s.setJoinFeedback("Unable to load that poll.", ToneError)
		return err
	}
	if poll == nil {
		s.setJoinFeedback("Unable to load that poll.", ToneError)
		return apperr.ErrPollNotFound
	}
	if manage && s.ownsPoll(entry, poll) {
		relation = models.RelationCreated
	}
	s.setJoinFeedback("", "")
	s.applyPollDetail(ctx, poll, relation)
	return nil
}

// ownsPoll reports whether the current user created the poll behind entry.
func (s *Store) ownsPoll(entry models.HistoryEntry, poll *models.Poll) bool {
	if entry.Relation == models.RelationCreated {
		return true
	}
	s.mu.Lock()
	me := s.userID()
	s.mu.Unlock()
	if me.IsZero() {
		return false
	}
	return entry.CreatorID.Equal(me) || poll.Creator.ID.Equal(me)
}

// RestoreActivePoll reloads the poll that was open when the state was saved.
// A reference that no longer resolves is cleared and reported as a
// StaleReferenceError.
func (s *Store) RestoreActivePoll(ctx context.Context) (RestoreStatus, error) {
	s.mu.Lock()
	if s.state.Screen != ScreenPoll || s.state.ActivePoll != nil {
		s.mu.Unlock()
		return RestoreSkipped, nil
	}
	if s.state.ActivePollRef == nil || s.state.ActivePollRef.IsZero() {
		s.state.Screen = ScreenDashboard
		s.mu.Unlock()
		s.debounce.Schedule()
		return RestoreFallback, nil
	}
	ref := *s.state.ActivePollRef
	relation := s.state.ActivePollRelation
	s.mu.Unlock()

	poll, err := s.remote.FetchPollDetail(ctx, ref)
	if err != nil || poll == nil {
		stale := &apperr.StaleReferenceError{PollID: ref.PollID.Key(), ShareCode: ref.ShareCode, Err: err}
		slog.Warn("failed to restore poll", "error", stale)
		s.mu.Lock()
		s.clearActivePollLocked()
		s.state.Screen = ScreenDashboard
		s.state.Feedback.Join = Message{Text: "We couldn't reload that poll. Please join it again.", Tone: ToneError}
		s.mu.Unlock()
		s.debounce.Schedule()
		return RestoreError, stale
	}
	s.applyPollDetail(ctx, poll, relation)
	return RestoreSuccess, nil
}

// HandleInvite opens the poll named by a launch start parameter.
func (s *Store) HandleInvite(ctx context.Context, startParam string) (RestoreStatus, error) {
	code := ParseInvite(startParam)
	if code == "" {
		return RestoreSkipped, nil
	}
	s.setJoinFeedback("Loading invite...", ToneInfo)

	poll, err := s.remote.FetchPollDetail(ctx, models.PollRef{ShareCode: code})
	if err != nil {
		err = apperr.Remote("fetch poll", err)
		slog.Error("failed to open invite", "share_code", code, "error", err)
		s.setJoinFeedback("We couldn't open that invite link. Try joining with the code.", ToneError)
		return RestoreError, err
	}
	if poll == nil {
		s.setJoinFeedback("We couldn't find that invite link.", ToneError)
		return RestoreError, apperr.ErrPollNotFound
	}
	s.setJoinFeedback("", "")
	s.applyPollDetail(ctx, poll, models.RelationJoined)
	return RestoreSuccess, nil
}

// Bootstrap hydrates the store and opens the invited or last open poll.
// An invite that opens takes precedence over the restore.
func (s *Store) Bootstrap(ctx context.Context, startParam string) RestoreStatus {
	s.Hydrate(ctx)
	status, err := s.HandleInvite(ctx, startParam)
	if err != nil {
		slog.Warn("invite not opened", "error", err)
	}
	if status == RestoreSuccess {
		return status
	}
	status, err = s.RestoreActivePoll(ctx)
	if err != nil {
		slog.Warn("active poll not restored", "error", err)
	}
	return status
}

// RefreshActivePoll reloads the open poll and its derived flags. The vote
// draft is kept. A result for a poll that is no longer open is dropped.
func (s *Store) RefreshActivePoll(ctx context.Context) error {
	s.mu.Lock()
	current := s.state.ActivePoll
	s.mu.Unlock()
	if current == nil || current.ID.IsZero() {
		return nil
	}

	latest, err := s.remote.FetchPollDetail(ctx, models.PollRef{PollID: current.ID})
	if err != nil {
		err = apperr.Remote("refresh poll", err)
		slog.Error("failed to refresh poll", "poll_id", current.ID, "error", err)
		return err
	}
	if latest == nil {
		return nil
	}
	submitted := s.tracker.HasSubmitted(ctx, latest)
	next := normalizePoll(latest)

	s.mu.Lock()
	st := &s.state
	if st.ActivePoll == nil || !st.ActivePoll.ID.Equal(current.ID) {
		s.mu.Unlock()
		return nil
	}
	wasLocked := st.HasSubmittedVote
	perms := DerivePermissions(next, st.ActivePollRelation, s.userID(), submitted)
	ref := next.Ref()
	st.ActivePoll = next
	st.ActivePollRef = &ref
	st.ActivePollRelation = perms.Relation
	st.HasSubmittedVote = submitted
	st.CanManage = perms.CanManage
	if !perms.CanManage {
		st.ManageMenuOpen = false
	}
	if submitted && !wasLocked {
		st.Feedback.Vote = Message{Text: LockedVotingMessage(perms), Tone: ToneSuccess}
	}
	var changed bool
	st.PollHistory, changed = history.PatchDetails(st.PollHistory, next.ID, history.DetailsOf(next))
	s.mu.Unlock()
	if changed {
		s.debounce.Schedule()
	}
	return nil
}
