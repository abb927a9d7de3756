// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hibeautyss/tma-clean/apperr"
	"github.com/hibeautyss/tma-clean/auth"
	"github.com/hibeautyss/tma-clean/models"
)

// pollSelect embeds options and votes with their selections.
const pollSelect = "*,poll_options(*),votes(*,vote_selections(*))"

// DefaultTimeout bounds a single request when no http.Client is supplied.
const DefaultTimeout = 15 * time.Second

var errEmptyResponse = errors.New("empty response")

// StatusError is a non-2xx response.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("status %d", e.Code)
	}
	return fmt.Sprintf("status %d: %s", e.Code, e.Message)
}

// Client talks to a PostgREST-style API. It implements the engine's remote
// collaborator.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	now     func() time.Time
}

// New returns a Client for baseURL. hc may be nil.
func New(baseURL, apiKey string, hc *http.Client) *Client {
	if hc == nil {
		hc = &http.Client{
			Timeout:   DefaultTimeout,
			Transport: &LoggingTransport{},
		}
	}
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		apiKey:  apiKey,
		http:    hc,
		now:     time.Now,
	}
}

func eq(v any) string {
	return fmt.Sprintf("eq.%v", v)
}

func in(ids []models.ID) string {
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		if k := id.Key(); k != "" {
			keys = append(keys, k)
		}
	}
	return "in.(" + strings.Join(keys, ",") + ")"
}

// do sends one request. A non-nil out receives the decoded JSON body.
func (c *Client) do(ctx context.Context, method, table string, query url.Values, body, out any) error {
	u := c.baseURL + "/" + table
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode %s body: %w", table, err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if out != nil {
		req.Header.Set("Prefer", "return=representation")
	}
	if c.apiKey != "" {
		req.Header.Set("apikey", c.apiKey)
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	if id, err := auth.GenerateID(8); err == nil {
		req.Header.Set(RequestIDHeader, id)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		se := &StatusError{Code: resp.StatusCode}
		var er models.ErrorResponse
		if json.Unmarshal(data, &er) == nil {
			se.Message = er.Message
			if se.Message == "" {
				se.Message = er.Error
			}
		}
		return se
	}
	if out != nil && len(bytes.TrimSpace(data)) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("failed to decode %s response: %w", table, err)
		}
	}
	return nil
}

// compensate runs undo after a failed multi-step write. A failed cleanup is
// logged; the caller still returns the original error.
func (c *Client) compensate(ctx context.Context, op string, id models.ID, original error, undo func(context.Context) error) {
	ctx = context.WithoutCancel(ctx)
	err := undo(ctx)
	if err == nil {
		slog.Info("rolled back partial write", "op", op, "id", id)
		return
	}
	ce := &apperr.CompensationError{Op: op, Original: original, Err: err}
	slog.Warn("failed to roll back partial write", "op", op, "id", id, "error", ce)
}

func (c *Client) deleteRow(ctx context.Context, table string, id models.ID) error {
	return c.do(ctx, http.MethodDelete, table, url.Values{"id": {eq(id.Key())}}, nil, nil)
}

// CreatePoll inserts the poll, then its options. If the options fail the
// poll is deleted again.
func (c *Client) CreatePoll(ctx context.Context, req models.CreatePollRequest) (*models.Poll, error) {
	code, err := auth.GenerateShareCode(auth.ShareCodeLength)
	if err != nil {
		return nil, err
	}
	body := pollInsert{
		ShareCode:    code,
		Title:        strings.TrimSpace(req.Title),
		Description:  nullable(req.Description),
		Location:     nullable(req.Location),
		Timezone:     req.Timezone,
		SpecifyTimes: req.SpecifyTimes,
		Status:       string(models.StatusLive),
	}
	if u := req.Creator; u != nil {
		body.CreatorID = u.ID.Key()
		body.CreatorUsername = nullable(u.Username)
		body.CreatorFirstName = nullable(u.FirstName)
		body.CreatorLastName = nullable(u.LastName)
	}

	var created []pollRow
	if err := c.do(ctx, http.MethodPost, "polls", nil, body, &created); err != nil {
		return nil, apperr.Remote("create poll", err)
	}
	if len(created) == 0 || created[0].ID.IsZero() {
		return nil, apperr.Remote("create poll", errEmptyResponse)
	}
	pollID := created[0].ID

	options := make([]optionRow, 0, len(req.Options))
	for _, o := range req.Options {
		options = append(options, optionRow{PollID: pollID, Date: o.Date, StartMinute: o.StartMinute, EndMinute: o.EndMinute})
	}
	if err := c.do(ctx, http.MethodPost, "poll_options", nil, options, nil); err != nil {
		c.compensate(ctx, "delete poll", pollID, err, func(ctx context.Context) error {
			return c.DeletePoll(ctx, pollID)
		})
		return nil, apperr.Remote("create poll options", err)
	}

	slog.Info("poll created", "poll_id", pollID, "share_code", created[0].ShareCode)
	return c.FetchPollDetail(ctx, models.PollRef{PollID: pollID})
}

// FetchPollDetail loads a poll with options and votes by id, or by share
// code when the id is absent. No match yields nil, nil.
func (c *Client) FetchPollDetail(ctx context.Context, ref models.PollRef) (*models.Poll, error) {
	q := url.Values{"select": {pollSelect}, "limit": {"1"}}
	switch {
	case !ref.PollID.IsZero():
		q.Set("id", eq(ref.PollID.Key()))
	case strings.TrimSpace(ref.ShareCode) != "":
		q.Set("share_code", eq(strings.ToUpper(strings.TrimSpace(ref.ShareCode))))
	default:
		return nil, nil
	}

	var rows []pollRow
	if err := c.do(ctx, http.MethodGet, "polls", q, nil, &rows); err != nil {
		return nil, apperr.Remote("fetch poll", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0].toModel(), nil
}

// UpdatePollDetails patches title, location and description.
func (c *Client) UpdatePollDetails(ctx context.Context, req models.UpdateDetailsRequest) (*models.Poll, error) {
	body := map[string]any{
		"title":       strings.TrimSpace(req.Title),
		"location":    nullable(req.Location),
		"description": nullable(req.Description),
		"updated_at":  c.now().UTC(),
	}
	var rows []pollRow
	if err := c.do(ctx, http.MethodPatch, "polls", url.Values{"id": {eq(req.PollID.Key())}}, body, &rows); err != nil {
		return nil, apperr.Remote("update poll details", err)
	}
	if len(rows) == 0 {
		return nil, apperr.Remote("update poll details", apperr.ErrPollNotFound)
	}
	return c.FetchPollDetail(ctx, models.PollRef{PollID: req.PollID})
}

// UpdatePollOptions deletes removed options, patches kept ones and inserts
// new ones. The steps are not atomic; a failure part way leaves the earlier
// steps applied, and the caller reloads the poll.
func (c *Client) UpdatePollOptions(ctx context.Context, req models.UpdateOptionsRequest) error {
	pollID := req.PollID.Key()
	scope := func(id string) url.Values {
		return url.Values{"id": {id}, "poll_id": {eq(pollID)}}
	}

	if len(req.RemovedOptionIDs) > 0 {
		if err := c.do(ctx, http.MethodDelete, "poll_options", scope(in(req.RemovedOptionIDs)), nil, nil); err != nil {
			return apperr.Remote("delete poll options", err)
		}
	}

	var fresh []optionRow
	for _, o := range req.Options {
		if o.ID.IsZero() {
			fresh = append(fresh, optionRow{PollID: req.PollID, Date: o.Date, StartMinute: o.StartMinute, EndMinute: o.EndMinute})
			continue
		}
		body := map[string]any{"option_date": o.Date, "start_minute": o.StartMinute, "end_minute": o.EndMinute}
		if err := c.do(ctx, http.MethodPatch, "poll_options", scope(eq(o.ID.Key())), body, nil); err != nil {
			return apperr.Remote("update poll option", err)
		}
	}
	if len(fresh) > 0 {
		if err := c.do(ctx, http.MethodPost, "poll_options", nil, fresh, nil); err != nil {
			return apperr.Remote("insert poll options", err)
		}
	}

	body := map[string]any{"specify_times": req.SpecifyTimes, "updated_at": c.now().UTC()}
	if err := c.do(ctx, http.MethodPatch, "polls", url.Values{"id": {eq(pollID)}}, body, nil); err != nil {
		return apperr.Remote("update poll", err)
	}
	return nil
}

// UpdatePollStatus patches the poll status.
func (c *Client) UpdatePollStatus(ctx context.Context, req models.UpdateStatusRequest) error {
	body := map[string]any{"status": string(req.Status), "updated_at": c.now().UTC()}
	var rows []pollRow
	if err := c.do(ctx, http.MethodPatch, "polls", url.Values{"id": {eq(req.PollID.Key())}}, body, &rows); err != nil {
		return apperr.Remote("update poll status", err)
	}
	if len(rows) == 0 {
		return apperr.Remote("update poll status", apperr.ErrPollNotFound)
	}
	return nil
}

// SubmitVote inserts the vote, then its selections. If the selections fail
// the vote is deleted again.
func (c *Client) SubmitVote(ctx context.Context, req models.SubmitVoteRequest) (*models.Vote, error) {
	var created []voteRow
	body := voteInsert{PollID: req.PollID, VoterName: strings.TrimSpace(req.VoterName), VoterContact: req.VoterContact}
	if err := c.do(ctx, http.MethodPost, "votes", nil, body, &created); err != nil {
		return nil, apperr.Remote("submit vote", err)
	}
	if len(created) == 0 || created[0].ID.IsZero() {
		return nil, apperr.Remote("submit vote", errEmptyResponse)
	}
	row := created[0]

	selections := make([]selectionRow, 0, len(req.Selections))
	for _, s := range req.Selections {
		if s.Availability == models.None {
			continue
		}
		selections = append(selections, selectionRow{VoteID: row.ID, OptionID: s.OptionID, Availability: s.Availability})
	}
	if len(selections) > 0 {
		if err := c.do(ctx, http.MethodPost, "vote_selections", nil, selections, nil); err != nil {
			c.compensate(ctx, "delete vote", row.ID, err, func(ctx context.Context) error {
				return c.deleteRow(ctx, "votes", row.ID)
			})
			return nil, apperr.Remote("submit vote selections", err)
		}
	}
	row.Selections = selections
	v := row.toModel()
	slog.Info("vote submitted", "poll_id", req.PollID, "vote_id", v.ID, "selections", len(v.Selections))
	return &v, nil
}

// DeletePoll removes a poll. Options and votes are expected to cascade.
func (c *Client) DeletePoll(ctx context.Context, pollID models.ID) error {
	if err := c.deleteRow(ctx, "polls", pollID); err != nil {
		return apperr.Remote("delete poll", err)
	}
	return nil
}
