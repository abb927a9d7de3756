// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package engine

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/hibeautyss/tma-clean/history"
	"github.com/hibeautyss/tma-clean/lifecycle"
	"github.com/hibeautyss/tma-clean/models"
	"github.com/hibeautyss/tma-clean/persist"
	"github.com/hibeautyss/tma-clean/slots"
	"github.com/hibeautyss/tma-clean/vote"
)

// Config tunes a Store.
type Config struct {
	User         *models.User
	BotUsername  string
	Timezone     string
	PersistDelay time.Duration
	TimeConfig   slots.TimeConfig
	Now          func() time.Time
}

// Store owns the application state and runs every command against it.
//
// Handlers hold the lock only while reading or mutating state, never across
// a remote call. Busy flags, not queues, keep async work single-flight.
type Store struct {
	mu    sync.Mutex
	state State

	remote    Remote
	states    StateStore
	tracker   *vote.Tracker
	gate      *lifecycle.Gate
	lifecycle *lifecycle.Controller
	debounce  *persist.Debouncer

	cfg Config
	now func() time.Time
}

// New returns a Store. tracker may be nil, in which case an in-memory
// tracker is used.
func New(remote Remote, states StateStore, tracker *vote.Tracker, cfg Config) *Store {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	cfg.TimeConfig = slots.NewCollection(cfg.TimeConfig).Config()
	if tracker == nil {
		tracker = vote.NewTracker(persist.NewMemoryKV())
	}
	gate := lifecycle.NewGate()
	s := &Store{
		remote:    remote,
		states:    states,
		tracker:   tracker,
		gate:      gate,
		lifecycle: lifecycle.NewController(gate),
		cfg:       cfg,
		now:       cfg.Now,
	}
	s.state = newState(cfg.TimeConfig, SanitizeTimezone(cfg.Timezone), cfg.Now())
	s.state.User = cfg.User
	s.debounce = persist.NewDebouncer(cfg.PersistDelay, s.persist)
	return s
}

// Read calls fn with the state under the store lock. fn must not keep
// references past its return or call back into the Store.
func (s *Store) Read(fn func(st *State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.state)
}

// update mutates state under the lock and schedules a save.
func (s *Store) update(fn func(st *State)) {
	s.mu.Lock()
	fn(&s.state)
	s.mu.Unlock()
	s.debounce.Schedule()
}

func (s *Store) userID() models.ID {
	if s.state.User == nil {
		return ""
	}
	return s.state.User.ID
}

// Hydrate loads the saved state of the configured user. A missing or
// unreadable blob leaves the defaults in place.
func (s *Store) Hydrate(ctx context.Context) {
	s.mu.Lock()
	userID := s.userID()
	s.mu.Unlock()

	if s.cfg.User != nil {
		slog.Info("host user detected", "user_id", userID, "name", s.cfg.User.DisplayName())
	}

	var data []byte
	if s.states != nil {
		var err error
		data, err = s.states.LoadUserState(ctx, userID)
		if err != nil {
			slog.Error("failed to load user state", "user_id", userID, "error", err)
			data = nil
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if data != nil {
		if err := UnmarshalState(data, &s.state); err != nil {
			slog.Error("failed to decode user state", "user_id", userID, "error", err)
		}
	}
	s.state.PollHistory = history.Dedupe(s.state.PollHistory)
	s.state.Timezone = SanitizeTimezone(s.state.Timezone)
	now := s.now()
	s.state.Today = now
	s.state.CurrentView = firstOfMonth(now)
}

// persist writes the state blob. It runs on the debouncer's goroutine or on
// the caller of Flush/Close.
func (s *Store) persist() {
	if s.states == nil {
		return
	}
	s.mu.Lock()
	userID := s.userID()
	data, err := MarshalState(&s.state)
	s.mu.Unlock()
	if err != nil {
		slog.Error("failed to encode user state", "error", err)
		return
	}
	if err := s.states.SaveUserState(context.Background(), userID, data); err != nil {
		slog.Error("failed to save user state", "user_id", userID, "error", err)
	}
}

// Flush writes any pending state now.
func (s *Store) Flush() {
	s.debounce.Flush()
}

// saveNow schedules and flushes in one go.
func (s *Store) saveNow() {
	s.debounce.Schedule()
	s.debounce.Flush()
}

// Close flushes pending state. Later mutations are no longer saved.
func (s *Store) Close() error {
	s.debounce.Close()
	return nil
}

// SetScreen switches the visible screen.
func (s *Store) SetScreen(screen Screen) {
	s.update(func(st *State) {
		st.Screen = NormalizeScreen(screen)
	})
}

// BackToDashboard leaves the create or poll screen.
func (s *Store) BackToDashboard() {
	s.SetScreen(ScreenDashboard)
}

// SetPollTab selects the dashboard status tab.
func (s *Store) SetPollTab(status models.Status) {
	s.mu.Lock()
	normalized := models.NormalizeStatus(string(status))
	if s.state.PollFilters.Normalized().Status == normalized {
		s.mu.Unlock()
		return
	}
	s.state.PollFilters.Status = normalized
	s.mu.Unlock()
	s.debounce.Schedule()
}

// SetCreatedOnly toggles the "created by me" filter.
func (s *Store) SetCreatedOnly(on bool) {
	s.update(func(st *State) {
		st.PollFilters = st.PollFilters.Normalized()
		st.PollFilters.CreatedOnly = on
	})
}

// HistoryCards returns the dashboard entries for the current filters.
func (s *Store) HistoryCards() []models.HistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return history.Filter(s.state.PollHistory, s.state.PollFilters)
}

// Permissions returns the derived permissions for the open poll.
func (s *Store) Permissions() Permissions {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.permissionsLocked()
}

func (s *Store) permissionsLocked() Permissions {
	return DerivePermissions(s.state.ActivePoll, s.state.ActivePollRelation, s.userID(), s.state.HasSubmittedVote)
}

// IsUpdatingStatus reports whether a status change of the open poll is in
// flight.
func (s *Store) IsUpdatingStatus() bool {
	s.mu.Lock()
	poll := s.state.ActivePoll
	s.mu.Unlock()
	return poll != nil && s.lifecycle.IsWorking(poll.ID)
}

// IsVoting reports whether a vote on the open poll is being submitted.
func (s *Store) IsVoting() bool {
	s.mu.Lock()
	poll := s.state.ActivePoll
	s.mu.Unlock()
	if poll == nil {
		return false
	}
	op, ok := s.gate.Holder(poll.ID)
	return ok && op == lifecycle.OpVote
}

// Feedback returns the current messages.
func (s *Store) Feedback() Feedback {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Feedback
}
