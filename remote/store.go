// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package remote

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hibeautyss/tma-clean/apperr"
	"github.com/hibeautyss/tma-clean/auth"
	"github.com/hibeautyss/tma-clean/db"
	"github.com/hibeautyss/tma-clean/models"
)

// ErrNotFound is returned by updates addressed to a missing poll.
var ErrNotFound = errors.New("poll not found")

// shareCodeAttempts bounds retries on share code collisions.
const shareCodeAttempts = 5

// Store is a poll store on database/sql. It works against postgres and
// sqlite; see db.Dialect.
type Store struct {
	db      *sql.DB
	dialect db.Dialect
	now     func() time.Time
}

// New wraps an open connection. The schema must already exist.
func New(conn *sql.DB, dialect db.Dialect) *Store {
	return &Store{db: conn, dialect: dialect, now: time.Now}
}

func (s *Store) q(query string) string {
	return s.dialect.Rebind(query)
}

func nullString(v string) sql.NullString {
	v = strings.TrimSpace(v)
	return sql.NullString{String: v, Valid: v != ""}
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

// rollback is deferred after Begin; it is a no-op once the tx committed.
func rollback(tx *sql.Tx) {
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		slog.Warn("rollback failed", "error", err)
	}
}

func (s *Store) uniqueShareCode(ctx context.Context, tx *sql.Tx) (string, error) {
	for attempt := 0; attempt < shareCodeAttempts; attempt++ {
		code, err := auth.GenerateShareCode(auth.ShareCodeLength)
		if err != nil {
			return "", err
		}
		var exists int
		err = tx.QueryRowContext(ctx, s.q(`SELECT 1 FROM poll WHERE share_code = ?`), code).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return code, nil
		}
		if err != nil {
			return "", fmt.Errorf("failed to check share code: %w", err)
		}
	}
	return "", fmt.Errorf("no free share code after %d attempts", shareCodeAttempts)
}

func (s *Store) insertOption(ctx context.Context, tx *sql.Tx, pollID string, o models.OptionPayload) error {
	_, err := tx.ExecContext(ctx, s.q(`
		INSERT INTO poll_option (id, poll_id, option_date, start_minute, end_minute)
		VALUES (?, ?, ?, ?, ?)
	`), uuid.NewString(), pollID, o.Date, nullInt(o.StartMinute), nullInt(o.EndMinute))
	if err != nil {
		return fmt.Errorf("failed to insert option: %w", err)
	}
	return nil
}

// CreatePoll inserts the poll and its options in one transaction.
func (s *Store) CreatePoll(ctx context.Context, req models.CreatePollRequest) (*models.Poll, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, apperr.ErrTitleRequired
	}
	if len(req.Options) == 0 {
		return nil, apperr.ErrNoDates
	}
	var creator models.User
	if req.Creator != nil {
		creator = *req.Creator
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer rollback(tx)

	code, err := s.uniqueShareCode(ctx, tx)
	if err != nil {
		return nil, err
	}
	pollID := uuid.NewString()
	_, err = tx.ExecContext(ctx, s.q(`
		INSERT INTO poll (id, share_code, title, description, location, timezone, specify_times, status,
			creator_id, creator_username, creator_first_name, creator_last_name, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`), pollID, code, strings.TrimSpace(req.Title), nullString(req.Description), nullString(req.Location),
		req.Timezone, req.SpecifyTimes, string(models.StatusLive),
		creator.ID.Key(), nullString(creator.Username), nullString(creator.FirstName), nullString(creator.LastName),
		s.now().UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to insert poll: %w", err)
	}
	for _, o := range req.Options {
		if err := s.insertOption(ctx, tx, pollID, o); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit poll: %w", err)
	}

	slog.Info("poll stored", "poll_id", pollID, "share_code", code, "options", len(req.Options))
	return s.FetchPollDetail(ctx, models.PollRef{PollID: models.ID(pollID)})
}

// UpdatePollDetails sets title, location and description. Blank location or
// description clears them.
func (s *Store) UpdatePollDetails(ctx context.Context, req models.UpdateDetailsRequest) (*models.Poll, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, apperr.ErrTitleRequired
	}
	res, err := s.db.ExecContext(ctx, s.q(`
		UPDATE poll SET title = ?, location = ?, description = ?, updated_at = ?
		WHERE id = ?
	`), strings.TrimSpace(req.Title), nullString(req.Location), nullString(req.Description), s.now().UTC(), req.PollID.Key())
	if err != nil {
		return nil, fmt.Errorf("failed to update poll details: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}
	return s.FetchPollDetail(ctx, models.PollRef{PollID: req.PollID})
}

// UpdatePollOptions applies an option edit. Removed options are deleted
// together with their answers; options with an id are updated in place.
func (s *Store) UpdatePollOptions(ctx context.Context, req models.UpdateOptionsRequest) error {
	pollID := req.PollID.Key()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer rollback(tx)

	res, err := tx.ExecContext(ctx, s.q(`UPDATE poll SET specify_times = ?, updated_at = ? WHERE id = ?`),
		req.SpecifyTimes, s.now().UTC(), pollID)
	if err != nil {
		return fmt.Errorf("failed to update poll: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}

	for _, id := range req.RemovedOptionIDs {
		if _, err := tx.ExecContext(ctx, s.q(`DELETE FROM poll_option WHERE id = ? AND poll_id = ?`), id.Key(), pollID); err != nil {
			return fmt.Errorf("failed to delete option %s: %w", id, err)
		}
	}
	for _, o := range req.Options {
		if o.ID.IsZero() {
			if err := s.insertOption(ctx, tx, pollID, o); err != nil {
				return err
			}
			continue
		}
		res, err := tx.ExecContext(ctx, s.q(`
			UPDATE poll_option SET option_date = ?, start_minute = ?, end_minute = ?
			WHERE id = ? AND poll_id = ?
		`), o.Date, nullInt(o.StartMinute), nullInt(o.EndMinute), o.ID.Key(), pollID)
		if err != nil {
			return fmt.Errorf("failed to update option %s: %w", o.ID, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("option %s does not belong to poll %s", o.ID, pollID)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit options: %w", err)
	}
	slog.Info("poll options stored", "poll_id", pollID, "options", len(req.Options), "removed", len(req.RemovedOptionIDs))
	return nil
}

// UpdatePollStatus sets the status of a poll.
func (s *Store) UpdatePollStatus(ctx context.Context, req models.UpdateStatusRequest) error {
	status := models.NormalizeStatus(string(req.Status))
	if status != req.Status {
		return fmt.Errorf("unknown status %q", req.Status)
	}
	res, err := s.db.ExecContext(ctx, s.q(`UPDATE poll SET status = ?, updated_at = ? WHERE id = ?`),
		string(status), s.now().UTC(), req.PollID.Key())
	if err != nil {
		return fmt.Errorf("failed to update poll status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// SubmitVote stores a vote. The poll status is read inside the same
// transaction, so a vote never lands on a finished poll.
func (s *Store) SubmitVote(ctx context.Context, req models.SubmitVoteRequest) (*models.Vote, error) {
	name := strings.TrimSpace(req.VoterName)
	if name == "" {
		return nil, apperr.ErrNameRequired
	}
	pollID := req.PollID.Key()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer rollback(tx)

	var status string
	err = tx.QueryRowContext(ctx, s.q(`SELECT status FROM poll WHERE id = ?`), pollID).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query poll: %w", err)
	}
	if models.NormalizeStatus(status) == models.StatusFinished {
		return nil, apperr.ErrPollFinished
	}

	valid, err := s.optionIDs(ctx, tx, pollID)
	if err != nil {
		return nil, err
	}

	v := &models.Vote{
		ID:           models.ID(uuid.NewString()),
		PollID:       req.PollID,
		VoterName:    name,
		VoterContact: req.VoterContact,
		Selections:   make(map[models.ID]models.Availability, len(req.Selections)),
		CreatedAt:    s.now().UTC(),
	}
	var contact sql.NullString
	if req.VoterContact != nil {
		contact = nullString(*req.VoterContact)
	}
	_, err = tx.ExecContext(ctx, s.q(`
		INSERT INTO vote (id, poll_id, voter_name, voter_contact, created_at)
		VALUES (?, ?, ?, ?, ?)
	`), string(v.ID), pollID, name, contact, v.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert vote: %w", err)
	}

	for _, sel := range req.Selections {
		key := sel.OptionID.Key()
		if sel.Availability == models.None || !valid[key] {
			continue
		}
		_, err := tx.ExecContext(ctx, s.q(`
			INSERT INTO vote_selection (vote_id, poll_option_id, availability)
			VALUES (?, ?, ?)
		`), string(v.ID), key, sel.Availability.String())
		if err != nil {
			return nil, fmt.Errorf("failed to insert selection: %w", err)
		}
		v.Selections[models.ID(key)] = sel.Availability
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit vote: %w", err)
	}

	slog.Info("vote stored", "poll_id", pollID, "vote_id", v.ID, "selections", len(v.Selections))
	return v, nil
}

func (s *Store) optionIDs(ctx context.Context, tx *sql.Tx, pollID string) (map[string]bool, error) {
	rows, err := tx.QueryContext(ctx, s.q(`SELECT id FROM poll_option WHERE poll_id = ?`), pollID)
	if err != nil {
		return nil, fmt.Errorf("failed to query options: %w", err)
	}
	defer rows.Close()
	ids := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan option: %w", err)
		}
		ids[id] = true
	}
	return ids, rows.Err()
}

// DeletePoll removes a poll with its options and votes.
func (s *Store) DeletePoll(ctx context.Context, pollID models.ID) error {
	res, err := s.db.ExecContext(ctx, s.q(`DELETE FROM poll WHERE id = ?`), pollID.Key())
	if err != nil {
		return fmt.Errorf("failed to delete poll: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
