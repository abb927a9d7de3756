// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package vote

import (
	"encoding/json"

	"github.com/hibeautyss/tma-clean/apperr"
	"github.com/hibeautyss/tma-clean/models"
)

// Draft is the current user's unsent availability per option.
// It is sparse: options never touched are absent, not "no".
type Draft struct {
	marks map[string]models.Availability
}

// NewDraft returns an empty draft.
func NewDraft() *Draft {
	return &Draft{marks: make(map[string]models.Availability)}
}

// Get returns the mark for optionID, None when unmarked.
func (d *Draft) Get(optionID models.ID) models.Availability {
	if d == nil || d.marks == nil {
		return models.None
	}
	return d.marks[optionID.Key()]
}

// Set stores a mark. Setting None removes the option from the draft.
func (d *Draft) Set(optionID models.ID, a models.Availability) {
	k := optionID.Key()
	if k == "" {
		return
	}
	if d.marks == nil {
		d.marks = make(map[string]models.Availability)
	}
	if a == models.None {
		delete(d.marks, k)
		return
	}
	d.marks[k] = a
}

// Cycle advances optionID to the next availability and returns it.
func (d *Draft) Cycle(optionID models.ID) models.Availability {
	next := d.Get(optionID).Next()
	d.Set(optionID, next)
	return next
}

// Reset clears every mark.
func (d *Draft) Reset() {
	d.marks = make(map[string]models.Availability)
}

// Len returns the number of marked options.
func (d *Draft) Len() int {
	if d == nil {
		return 0
	}
	return len(d.marks)
}

// HasPositiveSelection reports whether any option is marked yes or maybe.
func (d *Draft) HasPositiveSelection() bool {
	if d == nil {
		return false
	}
	for _, a := range d.marks {
		if a.IsPositive() {
			return true
		}
	}
	return false
}

// Total returns one selection per option. Unmarked options are sent as no.
func (d *Draft) Total(options []models.PollOption) []models.Selection {
	out := make([]models.Selection, 0, len(options))
	for _, o := range options {
		a := d.Get(o.ID)
		if a == models.None {
			a = models.No
		}
		out = append(out, models.Selection{OptionID: o.ID, Availability: a})
	}
	return out
}

// Marks returns a copy of the explicit marks.
func (d *Draft) Marks() map[models.ID]models.Availability {
	out := make(map[models.ID]models.Availability, d.Len())
	if d == nil {
		return out
	}
	for k, a := range d.marks {
		out[models.ID(k)] = a
	}
	return out
}

func (d *Draft) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Marks())
}

func (d *Draft) UnmarshalJSON(data []byte) error {
	var raw map[models.ID]models.Availability
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	d.Reset()
	for id, a := range raw {
		d.Set(id, a)
	}
	return nil
}

// Guard checks whether a vote may be submitted. Conditions are checked in
// order: no poll, finished poll, already submitted, no positive selection.
func Guard(poll *models.Poll, d *Draft, submitted bool) error {
	if poll == nil {
		return apperr.ErrNoActivePoll
	}
	if models.NormalizeStatus(string(poll.Status)) == models.StatusFinished {
		return apperr.ErrPollFinished
	}
	if submitted {
		return apperr.ErrAlreadySubmitted
	}
	if !d.HasPositiveSelection() {
		return apperr.ErrNoPositiveSelection
	}
	return nil
}
