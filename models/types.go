// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import (
	"fmt"
	"strings"
	"time"
)

// Status is the lifecycle state of a poll.
type Status string

// Poll status constants
const (
	StatusLive     Status = "live"
	StatusPaused   Status = "paused"
	StatusFinished Status = "finished"
)

// Statuses lists every poll status in tab order.
var Statuses = []Status{StatusLive, StatusPaused, StatusFinished}

// NormalizeStatus maps any value onto a known status, defaulting to live.
func NormalizeStatus(s string) Status {
	switch Status(strings.ToLower(strings.TrimSpace(s))) {
	case StatusPaused:
		return StatusPaused
	case StatusFinished:
		return StatusFinished
	}
	return StatusLive
}

// Relation describes how the current user is connected to a poll.
type Relation string

// Relation constants
const (
	RelationCreated Relation = "created"
	RelationJoined  Relation = "joined"
)

// DeriveRelation returns created when explicit says so or when the poll's
// creator is the current user, otherwise joined.
func DeriveRelation(explicit Relation, p *Poll, currentUserID ID) Relation {
	if explicit == RelationCreated {
		return RelationCreated
	}
	if p != nil && p.Creator.ID.Equal(currentUserID) {
		return RelationCreated
	}
	return RelationJoined
}

// User is the identity supplied by the host chat platform.
type User struct {
	ID        ID     `json:"id"`
	Username  string `json:"username,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

// DisplayName returns the best human label for the user.
func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}
	parts := make([]string, 0, 2)
	for _, p := range []string{u.FirstName, u.LastName} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) > 0 {
		return strings.Join(parts, " ")
	}
	if u.Username != "" {
		return "@" + u.Username
	}
	if !u.ID.IsZero() {
		return fmt.Sprintf("User %s", u.ID)
	}
	return "Telegram user"
}

// DefaultVoterName is the name pre-filled in the vote form.
func (u *User) DefaultVoterName() string {
	if u == nil {
		return ""
	}
	for _, v := range []string{u.FirstName, u.Username, u.LastName} {
		if v != "" {
			return v
		}
	}
	return ""
}

// Request types

// OptionPayload is one option as sent to create or update a poll.
// StartMinute and EndMinute are nil for whole-day options.
type OptionPayload struct {
	ID          ID     `json:"id,omitempty"`
	Date        string `json:"option_date"`
	StartMinute *int   `json:"start_minute"`
	EndMinute   *int   `json:"end_minute"`
}

type CreatePollRequest struct {
	Title        string          `json:"title"`
	Location     string          `json:"location,omitempty"`
	Description  string          `json:"description,omitempty"`
	Timezone     string          `json:"timezone"`
	SpecifyTimes bool            `json:"specify_times"`
	Creator      *User           `json:"creator,omitempty"`
	Options      []OptionPayload `json:"options"`
}

type UpdateDetailsRequest struct {
	PollID      ID     `json:"id"`
	Title       string `json:"title"`
	Location    string `json:"location"`
	Description string `json:"description"`
}

type UpdateOptionsRequest struct {
	PollID           ID              `json:"id"`
	SpecifyTimes     bool            `json:"specify_times"`
	Options          []OptionPayload `json:"options"`
	RemovedOptionIDs []ID            `json:"removed_option_ids"`
}

type UpdateStatusRequest struct {
	PollID ID     `json:"id"`
	Status Status `json:"status"`
}

// Selection is one option's availability inside a submitted vote.
type Selection struct {
	OptionID     ID           `json:"option_id"`
	Availability Availability `json:"availability"`
}

type SubmitVoteRequest struct {
	PollID       ID          `json:"poll_id"`
	VoterName    string      `json:"voter_name"`
	VoterContact *string     `json:"voter_contact"`
	Selections   []Selection `json:"selections"`
}

// Domain types

// PollRef identifies a poll by id, share code, or both.
type PollRef struct {
	PollID    ID     `json:"pollId,omitempty"`
	ShareCode string `json:"shareCode,omitempty"`
}

// IsZero reports whether the reference cannot resolve anything.
func (r PollRef) IsZero() bool {
	return r.PollID.IsZero() && strings.TrimSpace(r.ShareCode) == ""
}

type PollOption struct {
	ID          ID     `json:"id"`
	PollID      ID     `json:"poll_id,omitempty"`
	Date        string `json:"option_date"`
	StartMinute *int   `json:"start_minute"`
	EndMinute   *int   `json:"end_minute"`
}

// IsWholeDay reports whether the option has no time range.
func (o PollOption) IsWholeDay() bool {
	return o.StartMinute == nil
}

type Vote struct {
	ID           ID                  `json:"id"`
	PollID       ID                  `json:"poll_id"`
	VoterName    string              `json:"voter_name"`
	VoterContact *string             `json:"voter_contact,omitempty"`
	Selections   map[ID]Availability `json:"selections"`
	CreatedAt    time.Time           `json:"created_at"`
}

type Poll struct {
	ID           ID           `json:"id"`
	ShareCode    string       `json:"share_code"`
	Title        string       `json:"title"`
	Description  *string      `json:"description,omitempty"`
	Location     *string      `json:"location,omitempty"`
	Timezone     string       `json:"timezone"`
	SpecifyTimes bool         `json:"specify_times"`
	Status       Status       `json:"status"`
	Creator      User         `json:"creator"`
	Options      []PollOption `json:"poll_options"`
	Votes        []Vote       `json:"votes,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    *time.Time   `json:"updated_at,omitempty"`
}

// Ref returns the reference used to reload this poll later.
func (p *Poll) Ref() PollRef {
	if p == nil {
		return PollRef{}
	}
	return PollRef{PollID: p.ID, ShareCode: p.ShareCode}
}

// HistoryEntry is one poll in the user's dashboard history.
// Timestamp is kept as the raw string it was recorded with.
type HistoryEntry struct {
	ID        ID       `json:"id,omitempty"`
	ShareCode string   `json:"share_code,omitempty"`
	Title     string   `json:"title"`
	Status    Status   `json:"status"`
	Relation  Relation `json:"relation"`
	CreatorID ID       `json:"creator_id,omitempty"`
	Timestamp string   `json:"timestamp"`
}

// Key returns the dedup key: the id when present, else the share code.
func (e HistoryEntry) Key() string {
	if k := e.ID.Key(); k != "" {
		return k
	}
	return strings.TrimSpace(e.ShareCode)
}

// ErrorResponse is the error body returned by the REST backend.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
