// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package engine

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibeautyss/tma-clean/draft"
	"github.com/hibeautyss/tma-clean/history"
	"github.com/hibeautyss/tma-clean/models"
	"github.com/hibeautyss/tma-clean/slots"
	"github.com/hibeautyss/tma-clean/vote"
)

// Screen is the top-level view of the mini-app.
type Screen string

// Screens
const (
	ScreenDashboard Screen = "dashboard"
	ScreenCreate    Screen = "create"
	ScreenPoll      Screen = "poll"
)

// NormalizeScreen maps unknown values to the dashboard.
func NormalizeScreen(s Screen) Screen {
	switch s {
	case ScreenCreate, ScreenPoll:
		return s
	}
	return ScreenDashboard
}

// Tone is the style of a feedback message.
type Tone string

const (
	ToneInfo    Tone = "info"
	ToneSuccess Tone = "success"
	ToneError   Tone = "error"
)

// Message is one line of user feedback. The zero value shows nothing.
type Message struct {
	Text string
	Tone Tone
}

// Feedback holds the message slot of each form.
type Feedback struct {
	Form        Message
	Join        Message
	Vote        Message
	EditDetails Message
	EditOptions Message
}

// State is everything the engine knows. The Store owns the only instance.
type State struct {
	// Persisted planner fields.
	SelectedDates      *slots.Collection
	SpecifyTimes       bool
	Timezone           string
	TimezoneSearch     string
	Today              time.Time
	CurrentView        time.Time
	Screen             Screen
	PollHistory        []models.HistoryEntry
	PollFilters        history.Filters
	ActivePollRef      *models.PollRef
	ActivePollRelation models.Relation

	// Session fields.
	User              *models.User
	ActivePoll        *models.Poll
	VoteDraft         *vote.Draft
	VoteComment       string
	VoteName          string
	NameModalOpen     bool
	HasSubmittedVote  bool
	CanManage         bool
	ManageMenuOpen    bool
	IsSubmitting      bool
	IsUpdatingDetails bool
	IsUpdatingOptions bool
	EditOptions       *draft.EditDraft
	EditView          time.Time
	InviteLink        string
	InviteCode        string
	Feedback          Feedback
}

// firstOfMonth returns midnight on the first day of t's month.
func firstOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

func newState(cfg slots.TimeConfig, timezone string, now time.Time) State {
	return State{
		SelectedDates:      slots.NewCollection(cfg),
		Timezone:           timezone,
		Today:              now,
		CurrentView:        firstOfMonth(now),
		Screen:             ScreenDashboard,
		PollFilters:        history.Filters{Status: models.StatusLive},
		ActivePollRelation: models.RelationJoined,
		VoteDraft:          vote.NewDraft(),
	}
}

// savedState is the persisted user-state blob.
type savedState struct {
	SelectedDates       *slots.Collection     `json:"selectedDates"`
	SpecifyTimesEnabled bool                  `json:"specifyTimesEnabled"`
	Timezone            string                `json:"timezone"`
	TimezoneSearch      string                `json:"timezoneSearch"`
	Today               *time.Time            `json:"today"`
	CurrentView         *time.Time            `json:"currentView"`
	Screen              Screen                `json:"screen"`
	PollHistory         []models.HistoryEntry `json:"pollHistory"`
	PollFilters         history.Filters       `json:"pollFilters"`
	ActivePollRef       *models.PollRef       `json:"activePollRef"`
	ActivePollRelation  models.Relation       `json:"activePollRelation,omitempty"`
}

// MarshalState encodes the persisted part of s.
func MarshalState(s *State) ([]byte, error) {
	today := s.Today.UTC()
	view := s.CurrentView.UTC()
	saved := savedState{
		SelectedDates:       s.SelectedDates,
		SpecifyTimesEnabled: s.SpecifyTimes,
		Timezone:            s.Timezone,
		TimezoneSearch:      s.TimezoneSearch,
		Today:               &today,
		CurrentView:         &view,
		Screen:              NormalizeScreen(s.Screen),
		PollHistory:         s.PollHistory,
		PollFilters:         s.PollFilters.Normalized(),
		ActivePollRef:       s.ActivePollRef,
		ActivePollRelation:  s.ActivePollRelation,
	}
	if saved.SelectedDates == nil {
		saved.SelectedDates = slots.NewCollection(slots.DefaultTimeConfig())
	}
	if saved.PollHistory == nil {
		saved.PollHistory = []models.HistoryEntry{}
	}
	data, err := json.Marshal(saved)
	if err != nil {
		return nil, fmt.Errorf("encode user state: %w", err)
	}
	return data, nil
}

// UnmarshalState overlays a saved blob onto s. Fields missing from the blob
// keep their current values.
func UnmarshalState(data []byte, s *State) error {
	var saved savedState
	if err := json.Unmarshal(data, &saved); err != nil {
		return fmt.Errorf("decode user state: %w", err)
	}
	if saved.SelectedDates != nil {
		saved.SelectedDates.SetConfig(s.SelectedDates.Config())
		s.SelectedDates = saved.SelectedDates
	}
	s.SpecifyTimes = saved.SpecifyTimesEnabled
	if saved.Timezone != "" {
		s.Timezone = saved.Timezone
	}
	s.TimezoneSearch = saved.TimezoneSearch
	if saved.Today != nil {
		s.Today = *saved.Today
	}
	if saved.CurrentView != nil {
		s.CurrentView = *saved.CurrentView
	}
	if saved.Screen != "" {
		s.Screen = NormalizeScreen(saved.Screen)
	}
	if saved.PollHistory != nil {
		s.PollHistory = saved.PollHistory
	}
	if saved.PollFilters.Status != "" || saved.PollFilters.CreatedOnly {
		s.PollFilters = saved.PollFilters.Normalized()
	}
	if saved.ActivePollRef != nil && !saved.ActivePollRef.IsZero() {
		s.ActivePollRef = saved.ActivePollRef
	}
	if saved.ActivePollRelation == models.RelationCreated {
		s.ActivePollRelation = models.RelationCreated
	}
	return nil
}
