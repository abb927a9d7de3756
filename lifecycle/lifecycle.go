// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package lifecycle

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/hibeautyss/tma-clean/apperr"
	"github.com/hibeautyss/tma-clean/models"
)

var transitions = map[models.Status][]models.Status{
	models.StatusLive:     {models.StatusPaused, models.StatusFinished},
	models.StatusPaused:   {models.StatusLive, models.StatusFinished},
	models.StatusFinished: {models.StatusLive},
}

// Targets returns the statuses reachable from s.
func Targets(s models.Status) []models.Status {
	return slices.Clone(transitions[models.NormalizeStatus(string(s))])
}

// CanTransition reports whether from → to is an allowed change.
func CanTransition(from, to models.Status) bool {
	return slices.Contains(transitions[models.NormalizeStatus(string(from))], to)
}

// Operation names an exclusive per-poll activity.
type Operation string

const (
	OpStatus Operation = "status"
	OpVote   Operation = "vote"
)

// Gate allows one operation per poll at a time. There is no queue:
// a second caller is turned away.
type Gate struct {
	mu       sync.Mutex
	inFlight map[string]Operation
}

// NewGate returns an empty Gate.
func NewGate() *Gate {
	return &Gate{inFlight: make(map[string]Operation)}
}

// Acquire claims pollID for op. The returned release must be called once.
func (g *Gate) Acquire(pollID models.ID, op Operation) (release func(), ok bool) {
	key := pollID.Key()
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, busy := g.inFlight[key]; busy {
		return nil, false
	}
	g.inFlight[key] = op
	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.inFlight, key)
			g.mu.Unlock()
		})
	}, true
}

// Holder returns the operation running on pollID, if any.
func (g *Gate) Holder(pollID models.ID) (Operation, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	op, ok := g.inFlight[pollID.Key()]
	return op, ok
}

// Controller changes poll status on behalf of the creator.
type Controller struct {
	gate *Gate
}

// NewController returns a Controller sharing gate with other per-poll work.
func NewController(gate *Gate) *Controller {
	if gate == nil {
		gate = NewGate()
	}
	return &Controller{gate: gate}
}

// IsWorking reports whether a status change for pollID is in flight.
func (c *Controller) IsWorking(pollID models.ID) bool {
	op, ok := c.gate.Holder(pollID)
	return ok && op == OpStatus
}

// Request describes one status change.
type Request struct {
	PollID    models.ID
	Current   models.Status
	Target    models.Status
	CanManage bool
}

// Apply performs the remote status update and the follow-up refetch.
type Apply func(ctx context.Context) error

// Change runs apply when req is allowed. It returns false with no error when
// the target equals the current status. Errors from apply come back as
// RemoteErrors; the in-flight mark is cleared either way.
func (c *Controller) Change(ctx context.Context, req Request, apply Apply) (bool, error) {
	if req.PollID.IsZero() {
		return false, apperr.ErrNoActivePoll
	}
	if !req.CanManage {
		return false, apperr.ErrNotPermitted
	}
	current := models.NormalizeStatus(string(req.Current))
	if current == req.Target {
		return false, nil
	}
	if !CanTransition(current, req.Target) {
		return false, apperr.ErrInvalidTransition
	}

	release, ok := c.gate.Acquire(req.PollID, OpStatus)
	if !ok {
		return false, apperr.ErrBusy
	}
	defer release()

	if err := apply(ctx); err != nil {
		slog.Error("failed to update poll status", "poll_id", req.PollID, "status", req.Target, "error", err)
		return false, apperr.Remote("update poll status", err)
	}
	slog.Info("poll status changed", "poll_id", req.PollID, "from", current, "to", req.Target)
	return true, nil
}

// SuccessMessage is the feedback shown after moving to target.
func SuccessMessage(target models.Status) string {
	switch target {
	case models.StatusFinished:
		return "Poll finished. Voting is closed."
	case models.StatusPaused:
		return "Poll paused. Voting is on hold."
	}
	return "Poll reopened. Participants can vote again."
}
