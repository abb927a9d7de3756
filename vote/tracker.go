// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package vote

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibeautyss/tma-clean/models"
	"github.com/hibeautyss/tma-clean/persist"
)

// TrackerKey is the cache key of the submitted-vote ledger.
const TrackerKey = "submittedPollVotes"

// Submission records that this device already voted on a poll.
type Submission struct {
	VoteID    models.ID `json:"voteId"`
	ShareCode *string   `json:"shareCode"`
	VoterName *string   `json:"voterName"`
	Timestamp string    `json:"timestamp"`
}

// Tracker is the per-device ledger of submitted votes, keyed by poll id.
// Read and write failures are logged and treated as an empty ledger.
type Tracker struct {
	kv  persist.KV
	now func() time.Time
}

// NewTracker returns a Tracker stored in kv.
func NewTracker(kv persist.KV) *Tracker {
	return &Tracker{kv: kv, now: time.Now}
}

func (t *Tracker) read(ctx context.Context) map[string]Submission {
	ledger := make(map[string]Submission)
	data, err := t.kv.Get(ctx, TrackerKey)
	if errors.Is(err, persist.ErrNotFound) {
		return ledger
	}
	if err != nil {
		slog.Warn("unable to read vote tracker", "error", err)
		return ledger
	}
	if err := json.Unmarshal(data, &ledger); err != nil {
		slog.Warn("unable to decode vote tracker", "error", err)
		return make(map[string]Submission)
	}
	return ledger
}

func (t *Tracker) write(ctx context.Context, ledger map[string]Submission) {
	data, err := json.Marshal(ledger)
	if err != nil {
		slog.Warn("unable to encode vote tracker", "error", err)
		return
	}
	if err := t.kv.Set(ctx, TrackerKey, data); err != nil {
		slog.Warn("unable to persist vote tracker", "error", err)
	}
}

// Get returns the submission recorded for pollID.
func (t *Tracker) Get(ctx context.Context, pollID models.ID) (Submission, bool) {
	if pollID.IsZero() {
		return Submission{}, false
	}
	s, ok := t.read(ctx)[pollID.Key()]
	return s, ok
}

// Put stores s for pollID.
func (t *Tracker) Put(ctx context.Context, pollID models.ID, s Submission) {
	if pollID.IsZero() {
		return
	}
	ledger := t.read(ctx)
	ledger[pollID.Key()] = s
	t.write(ctx, ledger)
}

// Remember records a successful submission of v on poll.
func (t *Tracker) Remember(ctx context.Context, poll *models.Poll, v *models.Vote) {
	if poll == nil || v == nil || poll.ID.IsZero() || v.ID.IsZero() {
		return
	}
	s := Submission{
		VoteID:    v.ID,
		Timestamp: t.now().UTC().Format(time.RFC3339Nano),
	}
	if poll.ShareCode != "" {
		code := poll.ShareCode
		s.ShareCode = &code
	}
	if v.VoterName != "" {
		name := v.VoterName
		s.VoterName = &name
	}
	t.Put(ctx, poll.ID, s)
}

// Forget drops the entry for pollID.
func (t *Tracker) Forget(ctx context.Context, pollID models.ID) {
	if pollID.IsZero() {
		return
	}
	ledger := t.read(ctx)
	if _, ok := ledger[pollID.Key()]; !ok {
		return
	}
	delete(ledger, pollID.Key())
	t.write(ctx, ledger)
}

// HasSubmitted reports whether this device already voted on poll.
//
// When the poll carries its votes and the tracked vote is not among them
// (deleted remotely, or the database was reset) the entry is forgotten and
// voting is allowed again. A poll fetched without votes keeps the entry.
func (t *Tracker) HasSubmitted(ctx context.Context, poll *models.Poll) bool {
	if poll == nil || poll.ID.IsZero() {
		return false
	}
	s, ok := t.Get(ctx, poll.ID)
	if !ok || s.VoteID.IsZero() {
		return false
	}
	if poll.Votes == nil {
		return true
	}
	for _, v := range poll.Votes {
		if v.ID.Equal(s.VoteID) {
			return true
		}
	}
	t.Forget(ctx, poll.ID)
	return false
}
