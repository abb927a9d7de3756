// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package draft

import (
	"sort"

	"github.com/hibeautyss/tma-clean/apperr"
	"github.com/hibeautyss/tma-clean/models"
	"github.com/hibeautyss/tma-clean/slots"
)

// BuildOptions turns a date selection into the option payload of a poll.
//
// Without specific times every date yields one whole-day option. With times,
// every slot yields one option with a clamped start and end.
func BuildOptions(c *slots.Collection, specifyTimes bool) ([]models.OptionPayload, error) {
	if c.Len() == 0 {
		return nil, apperr.ErrNoDates
	}
	cfg := c.Config()

	options := make([]models.OptionPayload, 0, c.Len())
	for _, date := range c.Dates() {
		dateSlots := c.Slots(date)
		if !specifyTimes {
			opt := models.OptionPayload{Date: date}
			if len(dateSlots) > 0 {
				opt.ID = dateSlots[0].ID
			}
			options = append(options, opt)
			continue
		}
		if len(dateSlots) == 0 {
			return nil, apperr.ErrMissingTimeSlot
		}
		for _, s := range dateSlots {
			s = slots.Normalize(s, cfg)
			start, end := s.Start, s.End
			options = append(options, models.OptionPayload{
				ID:          s.ID,
				Date:        date,
				StartMinute: &start,
				EndMinute:   &end,
			})
		}
	}
	return options, nil
}

// Edit is the result of building options for an existing poll.
type Edit struct {
	SpecifyTimes     bool
	Options          []models.OptionPayload
	RemovedOptionIDs []models.ID
}

// BuildEdit builds options like BuildOptions and also reports which baseline
// option ids no longer appear in the payload.
func BuildEdit(c *slots.Collection, specifyTimes bool, baseline []models.ID) (Edit, error) {
	options, err := BuildOptions(c, specifyTimes)
	if err != nil {
		return Edit{}, err
	}
	return Edit{
		SpecifyTimes:     specifyTimes,
		Options:          options,
		RemovedOptionIDs: RemovedOptionIDs(baseline, options),
	}, nil
}

// RemovedOptionIDs returns baseline minus the ids kept in options, compared
// by normalized key. Blank ids are ignored. Order follows baseline.
func RemovedOptionIDs(baseline []models.ID, options []models.OptionPayload) []models.ID {
	kept := make(map[string]bool, len(options))
	for _, o := range options {
		if k := o.ID.Key(); k != "" {
			kept[k] = true
		}
	}

	seen := make(map[string]bool, len(baseline))
	var removed []models.ID
	for _, id := range baseline {
		k := id.Key()
		if k == "" || kept[k] || seen[k] {
			continue
		}
		seen[k] = true
		removed = append(removed, models.ID(k))
	}
	return removed
}

// EditDraft is the editable copy of a published poll's options.
type EditDraft struct {
	SpecifyTimes bool
	Timezone     string
	Dates        *slots.Collection
	Baseline     []models.ID
}

// FromPoll rebuilds an edit draft from the poll's current options.
// Options without times get the default start and duration so toggling
// specific times on later has something to show.
func FromPoll(p *models.Poll, cfg slots.TimeConfig) *EditDraft {
	d := &EditDraft{Dates: slots.NewCollection(cfg)}
	if p == nil {
		return d
	}
	d.SpecifyTimes = p.SpecifyTimes
	d.Timezone = p.Timezone

	options := append([]models.PollOption(nil), p.Options...)
	SortOptions(options)

	def := cfg.DefaultSlot()
	for _, o := range options {
		if !slots.ValidDate(o.Date) {
			continue
		}
		start := def.Start
		if o.StartMinute != nil {
			start = *o.StartMinute
		}
		end := min(start+cfg.DefaultDuration(), d.Dates.Config().MinutesInDay)
		if o.EndMinute != nil {
			end = *o.EndMinute
		}
		d.Dates.Insert(o.Date, slots.TimeSlot{ID: o.ID, Start: start, End: end})
		if !o.ID.IsZero() {
			d.Baseline = append(d.Baseline, o.ID)
		}
	}
	if d.SpecifyTimes {
		d.Dates.EnsureDefaultSlots()
	}
	return d
}

// Build produces the update payload for the draft.
func (d *EditDraft) Build() (Edit, error) {
	return BuildEdit(d.Dates, d.SpecifyTimes, d.Baseline)
}

// SetSpecifyTimes switches time ranges on or off for the whole draft.
func (d *EditDraft) SetSpecifyTimes(on bool) {
	d.SpecifyTimes = on
	if on {
		d.Dates.EnsureDefaultSlots()
	}
}

// SortOptions orders options by date, then start minute with whole-day
// options first.
func SortOptions(options []models.PollOption) {
	sort.SliceStable(options, func(i, j int) bool {
		a, b := options[i], options[j]
		if a.Date != b.Date {
			return a.Date < b.Date
		}
		return startOf(a) < startOf(b)
	})
}

func startOf(o models.PollOption) int {
	if o.StartMinute == nil {
		return -1
	}
	return *o.StartMinute
}
