// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package remote

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/hibeautyss/tma-clean/models"
)

const pollColumns = `id, share_code, title, description, location, timezone, specify_times, status,
	creator_id, creator_username, creator_first_name, creator_last_name, created_at, updated_at`

// FetchPollDetail loads a poll with its options and votes. The id wins over
// the share code when both are set. A reference that matches nothing yields
// nil, nil.
func (s *Store) FetchPollDetail(ctx context.Context, ref models.PollRef) (*models.Poll, error) {
	var row *sql.Row
	switch {
	case !ref.PollID.IsZero():
		row = s.db.QueryRowContext(ctx, s.q(`SELECT `+pollColumns+` FROM poll WHERE id = ?`), ref.PollID.Key())
	case strings.TrimSpace(ref.ShareCode) != "":
		row = s.db.QueryRowContext(ctx, s.q(`SELECT `+pollColumns+` FROM poll WHERE share_code = ?`),
			strings.ToUpper(strings.TrimSpace(ref.ShareCode)))
	default:
		return nil, nil
	}

	p, err := scanPoll(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query poll: %w", err)
	}
	if p.Options, err = s.options(ctx, string(p.ID)); err != nil {
		return nil, err
	}
	if p.Votes, err = s.votes(ctx, string(p.ID)); err != nil {
		return nil, err
	}
	return p, nil
}

func scanPoll(row *sql.Row) (*models.Poll, error) {
	var (
		p                             models.Poll
		id, status, creatorID         string
		description, location         sql.NullString
		username, firstName, lastName sql.NullString
		updatedAt                     sql.NullTime
	)
	err := row.Scan(&id, &p.ShareCode, &p.Title, &description, &location, &p.Timezone, &p.SpecifyTimes, &status,
		&creatorID, &username, &firstName, &lastName, &p.CreatedAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	p.ID = models.ID(id)
	p.Status = models.NormalizeStatus(status)
	if description.Valid {
		p.Description = &description.String
	}
	if location.Valid {
		p.Location = &location.String
	}
	if updatedAt.Valid {
		t := updatedAt.Time
		p.UpdatedAt = &t
	}
	p.Creator = models.User{
		ID:        models.ID(creatorID),
		Username:  username.String,
		FirstName: firstName.String,
		LastName:  lastName.String,
	}
	return &p, nil
}

func (s *Store) options(ctx context.Context, pollID string) ([]models.PollOption, error) {
	rows, err := s.db.QueryContext(ctx, s.q(`
		SELECT id, option_date, start_minute, end_minute
		FROM poll_option
		WHERE poll_id = ?
		ORDER BY option_date, COALESCE(start_minute, -1), id
	`), pollID)
	if err != nil {
		return nil, fmt.Errorf("failed to query options: %w", err)
	}
	defer rows.Close()

	var out []models.PollOption
	for rows.Next() {
		var (
			id         string
			o          models.PollOption
			start, end sql.NullInt64
		)
		if err := rows.Scan(&id, &o.Date, &start, &end); err != nil {
			return nil, fmt.Errorf("failed to scan option: %w", err)
		}
		o.ID = models.ID(id)
		o.PollID = models.ID(pollID)
		if start.Valid {
			v := int(start.Int64)
			o.StartMinute = &v
		}
		if end.Valid {
			v := int(end.Int64)
			o.EndMinute = &v
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// votes loads every vote of a poll. The result is never nil, so callers can
// tell "no votes" from "votes not loaded".
func (s *Store) votes(ctx context.Context, pollID string) ([]models.Vote, error) {
	rows, err := s.db.QueryContext(ctx, s.q(`
		SELECT id, voter_name, voter_contact, created_at
		FROM vote
		WHERE poll_id = ?
		ORDER BY created_at, id
	`), pollID)
	if err != nil {
		return nil, fmt.Errorf("failed to query votes: %w", err)
	}
	defer rows.Close()

	out := []models.Vote{}
	index := make(map[string]int)
	for rows.Next() {
		var (
			id      string
			v       models.Vote
			contact sql.NullString
		)
		if err := rows.Scan(&id, &v.VoterName, &contact, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan vote: %w", err)
		}
		v.ID = models.ID(id)
		v.PollID = models.ID(pollID)
		if contact.Valid {
			v.VoterContact = &contact.String
		}
		v.Selections = make(map[models.ID]models.Availability)
		index[id] = len(out)
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read votes: %w", err)
	}
	rows.Close()

	sel, err := s.db.QueryContext(ctx, s.q(`
		SELECT vs.vote_id, vs.poll_option_id, vs.availability
		FROM vote_selection vs
		JOIN vote v ON v.id = vs.vote_id
		WHERE v.poll_id = ?
	`), pollID)
	if err != nil {
		return nil, fmt.Errorf("failed to query selections: %w", err)
	}
	defer sel.Close()
	for sel.Next() {
		var voteID, optionID, raw string
		if err := sel.Scan(&voteID, &optionID, &raw); err != nil {
			return nil, fmt.Errorf("failed to scan selection: %w", err)
		}
		a, err := models.ParseAvailability(raw)
		if err != nil {
			return nil, err
		}
		if i, ok := index[voteID]; ok {
			out[i].Selections[models.ID(optionID)] = a
		}
	}
	return out, sel.Err()
}
