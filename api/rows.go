// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package api

import (
	"strings"
	"time"

	"github.com/hibeautyss/tma-clean/models"
)

// Row types mirror the REST tables. Ids may arrive as numbers or strings.

type pollRow struct {
	ID               models.ID   `json:"id"`
	ShareCode        string      `json:"share_code"`
	Title            string      `json:"title"`
	Description      *string     `json:"description"`
	Location         *string     `json:"location"`
	Timezone         string      `json:"timezone"`
	SpecifyTimes     bool        `json:"specify_times"`
	Status           string      `json:"status"`
	CreatorID        models.ID   `json:"creator_id"`
	CreatorUsername  *string     `json:"creator_username"`
	CreatorFirstName *string     `json:"creator_first_name"`
	CreatorLastName  *string     `json:"creator_last_name"`
	CreatedAt        time.Time   `json:"created_at"`
	UpdatedAt        *time.Time  `json:"updated_at"`
	Options          []optionRow `json:"poll_options"`
	Votes            []voteRow   `json:"votes"`
}

type optionRow struct {
	ID          models.ID `json:"id,omitempty"`
	PollID      models.ID `json:"poll_id"`
	Date        string    `json:"option_date"`
	StartMinute *int      `json:"start_minute"`
	EndMinute   *int      `json:"end_minute"`
}

type voteRow struct {
	ID           models.ID      `json:"id,omitempty"`
	PollID       models.ID      `json:"poll_id"`
	VoterName    string         `json:"voter_name"`
	VoterContact *string        `json:"voter_contact"`
	CreatedAt    time.Time      `json:"created_at"`
	Selections   []selectionRow `json:"vote_selections,omitempty"`
}

type selectionRow struct {
	VoteID       models.ID           `json:"vote_id"`
	OptionID     models.ID           `json:"poll_option_id"`
	Availability models.Availability `json:"availability"`
}

// pollInsert is the body of a poll insert. The server fills id, status and
// timestamps.
type pollInsert struct {
	ShareCode        string  `json:"share_code"`
	Title            string  `json:"title"`
	Description      *string `json:"description"`
	Location         *string `json:"location"`
	Timezone         string  `json:"timezone"`
	SpecifyTimes     bool    `json:"specify_times"`
	Status           string  `json:"status"`
	CreatorID        string  `json:"creator_id,omitempty"`
	CreatorUsername  *string `json:"creator_username"`
	CreatorFirstName *string `json:"creator_first_name"`
	CreatorLastName  *string `json:"creator_last_name"`
}

type voteInsert struct {
	PollID       models.ID `json:"poll_id"`
	VoterName    string    `json:"voter_name"`
	VoterContact *string   `json:"voter_contact"`
}

func nullable(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}

func text(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func (r pollRow) toModel() *models.Poll {
	p := &models.Poll{
		ID:           r.ID,
		ShareCode:    r.ShareCode,
		Title:        r.Title,
		Description:  r.Description,
		Location:     r.Location,
		Timezone:     r.Timezone,
		SpecifyTimes: r.SpecifyTimes,
		Status:       models.NormalizeStatus(r.Status),
		Creator: models.User{
			ID:        r.CreatorID,
			Username:  text(r.CreatorUsername),
			FirstName: text(r.CreatorFirstName),
			LastName:  text(r.CreatorLastName),
		},
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
		Options:   make([]models.PollOption, 0, len(r.Options)),
		Votes:     make([]models.Vote, 0, len(r.Votes)),
	}
	for _, o := range r.Options {
		p.Options = append(p.Options, models.PollOption{
			ID:          o.ID,
			PollID:      r.ID,
			Date:        o.Date,
			StartMinute: o.StartMinute,
			EndMinute:   o.EndMinute,
		})
	}
	for _, v := range r.Votes {
		p.Votes = append(p.Votes, v.toModel())
	}
	return p
}

func (r voteRow) toModel() models.Vote {
	v := models.Vote{
		ID:           r.ID,
		PollID:       r.PollID,
		VoterName:    r.VoterName,
		VoterContact: r.VoterContact,
		CreatedAt:    r.CreatedAt,
		Selections:   make(map[models.ID]models.Availability, len(r.Selections)),
	}
	for _, s := range r.Selections {
		if s.Availability != models.None {
			v.Selections[models.ID(s.OptionID.Key())] = s.Availability
		}
	}
	return v
}
