// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package history

import (
	"sort"
	"strings"
	"time"

	"github.com/hibeautyss/tma-clean/models"
)

// TimestampLayout is how the ledger writes timestamps (UTC, milliseconds).
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// DefaultTitle labels polls that arrive without a title.
const DefaultTitle = "Untitled poll"

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTimestamp returns the instant in ms since the epoch, 0 when empty or
// unparsable.
func ParseTimestamp(s string) int64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UnixMilli()
		}
	}
	return 0
}

// FormatTimestamp writes t in TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// combine folds incoming into existing for the same key.
func combine(existing, incoming models.HistoryEntry) models.HistoryEntry {
	out := existing
	if existing.Relation == models.RelationCreated || incoming.Relation == models.RelationCreated {
		out.Relation = models.RelationCreated
	}
	if ParseTimestamp(incoming.Timestamp) > ParseTimestamp(existing.Timestamp) {
		out.Timestamp = incoming.Timestamp
	}
	status := incoming.Status
	if status == "" {
		status = existing.Status
	}
	out.Status = models.NormalizeStatus(string(status))
	if incoming.Title != "" {
		out.Title = incoming.Title
	}
	if out.ID.IsZero() {
		out.ID = incoming.ID
	}
	if out.ShareCode == "" {
		out.ShareCode = incoming.ShareCode
	}
	if out.CreatorID.IsZero() {
		out.CreatorID = incoming.CreatorID
	}
	return out
}

// Dedupe collapses entries sharing a key, keeping the position and title of
// the first occurrence. Later entries are treated as incoming. Unkeyed
// entries pass through untouched.
func Dedupe(list []models.HistoryEntry) []models.HistoryEntry {
	index := make(map[string]int, len(list))
	out := make([]models.HistoryEntry, 0, len(list))
	for _, e := range list {
		key := e.Key()
		if key == "" {
			out = append(out, e)
			continue
		}
		i, ok := index[key]
		if !ok {
			index[key] = len(out)
			e.Status = models.NormalizeStatus(string(e.Status))
			out = append(out, e)
			continue
		}
		title := out[i].Title
		out[i] = combine(out[i], e)
		if title != "" {
			out[i].Title = title
		}
	}
	return out
}

// Merge adds entry to list. A matching entry is combined with it and moved
// to the front; otherwise entry is prepended.
func Merge(entry models.HistoryEntry, list []models.HistoryEntry) []models.HistoryEntry {
	key := entry.Key()
	out := make([]models.HistoryEntry, 0, len(list)+1)
	if key == "" {
		out = append(out, entry)
		return append(out, list...)
	}

	merged := entry
	merged.Status = models.NormalizeStatus(string(entry.Status))
	rest := make([]models.HistoryEntry, 0, len(list))
	for _, e := range list {
		if e.Key() == key {
			merged = combine(e, merged)
			continue
		}
		rest = append(rest, e)
	}
	out = append(out, merged)
	return append(out, rest...)
}

// EntryFromPoll builds a ledger entry for poll.
func EntryFromPoll(p *models.Poll, relation models.Relation, currentUserID models.ID, now time.Time) (models.HistoryEntry, bool) {
	if p == nil || (p.ID.IsZero() && strings.TrimSpace(p.ShareCode) == "") {
		return models.HistoryEntry{}, false
	}
	title := p.Title
	if strings.TrimSpace(title) == "" {
		title = DefaultTitle
	}
	ts := FormatTimestamp(now)
	if !p.CreatedAt.IsZero() {
		ts = FormatTimestamp(p.CreatedAt)
	}
	return models.HistoryEntry{
		ID:        p.ID,
		ShareCode: p.ShareCode,
		Title:     title,
		Status:    models.NormalizeStatus(string(p.Status)),
		Relation:  models.DeriveRelation(relation, p, currentUserID),
		CreatorID: p.Creator.ID,
		Timestamp: ts,
	}, true
}

// Record merges an entry for poll into list. Polls with neither id nor
// share code are ignored.
func Record(list []models.HistoryEntry, p *models.Poll, relation models.Relation, currentUserID models.ID, now time.Time) []models.HistoryEntry {
	entry, ok := EntryFromPoll(p, relation, currentUserID, now)
	if !ok {
		return list
	}
	return Merge(entry, list)
}

// Details are the fields a poll refresh may change in the ledger.
// Nil or empty fields leave the entry alone.
type Details struct {
	Title     *string
	Status    *models.Status
	Timestamp string
}

// DetailsOf extracts Details from a fetched poll. The timestamp is the
// last update, else the creation time.
func DetailsOf(p *models.Poll) Details {
	if p == nil {
		return Details{}
	}
	d := Details{}
	if p.Title != "" {
		title := p.Title
		d.Title = &title
	}
	if p.Status != "" {
		status := p.Status
		d.Status = &status
	}
	switch {
	case p.UpdatedAt != nil && !p.UpdatedAt.IsZero():
		d.Timestamp = FormatTimestamp(*p.UpdatedAt)
	case !p.CreatedAt.IsZero():
		d.Timestamp = FormatTimestamp(p.CreatedAt)
	}
	return d
}

// PatchDetails applies d to the entries whose id matches pollID. It reports
// whether anything changed; when nothing did, list is returned as is.
func PatchDetails(list []models.HistoryEntry, pollID models.ID, d Details) ([]models.HistoryEntry, bool) {
	if pollID.IsZero() || len(list) == 0 {
		return list, false
	}
	var patched []models.HistoryEntry
	for i, e := range list {
		if !e.ID.Equal(pollID) {
			continue
		}
		next := e
		if d.Title != nil {
			next.Title = *d.Title
		}
		status := e.Status
		if d.Status != nil {
			status = *d.Status
		}
		next.Status = models.NormalizeStatus(string(status))
		if d.Timestamp != "" {
			next.Timestamp = d.Timestamp
		}
		if next == e {
			continue
		}
		if patched == nil {
			patched = append([]models.HistoryEntry(nil), list...)
		}
		patched[i] = next
	}
	if patched == nil {
		return list, false
	}
	return patched, true
}

// Filters select which entries the dashboard shows.
type Filters struct {
	Status      models.Status `json:"status"`
	CreatedOnly bool          `json:"createdOnly"`
}

// Normalized returns f with a known status.
func (f Filters) Normalized() Filters {
	f.Status = models.NormalizeStatus(string(f.Status))
	return f
}

// Filter returns the entries on the f.Status tab, optionally only those the
// user created, newest first.
func Filter(list []models.HistoryEntry, f Filters) []models.HistoryEntry {
	f = f.Normalized()
	out := make([]models.HistoryEntry, 0, len(list))
	for _, e := range list {
		if models.NormalizeStatus(string(e.Status)) != f.Status {
			continue
		}
		if f.CreatedOnly && e.Relation != models.RelationCreated {
			continue
		}
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return ParseTimestamp(out[i].Timestamp) > ParseTimestamp(out[j].Timestamp)
	})
	return Dedupe(out)
}
