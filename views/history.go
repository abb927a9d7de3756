// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package views

import (
	"time"

	"github.com/dustin/go-humanize"

	"github.com/hibeautyss/tma-clean/history"
	"github.com/hibeautyss/tma-clean/models"
)

// Card is one dashboard history entry ready for display.
type Card struct {
	Entry         models.HistoryEntry
	Title         string
	RelationLabel string
	StatusLabel   string
	ShareCode     string
	When          string
	CanManage     bool
}

// RelationLabel names how the user relates to a poll.
func RelationLabel(r models.Relation) string {
	if r == models.RelationCreated {
		return "Created by you"
	}
	return "Joined"
}

// StatusLabel is the badge text of a status.
func StatusLabel(s models.Status) string {
	switch models.NormalizeStatus(string(s)) {
	case models.StatusPaused:
		return "Paused"
	case models.StatusFinished:
		return "Finished"
	}
	return "Live"
}

// HistoryCards renders entries relative to now. Entries without a
// parsable timestamp get an empty When.
func HistoryCards(entries []models.HistoryEntry, now time.Time) []Card {
	cards := make([]Card, 0, len(entries))
	for _, e := range entries {
		c := Card{
			Entry:         e,
			Title:         e.Title,
			RelationLabel: RelationLabel(e.Relation),
			StatusLabel:   StatusLabel(e.Status),
			ShareCode:     e.ShareCode,
			CanManage:     e.Relation == models.RelationCreated,
		}
		if c.Title == "" {
			c.Title = history.DefaultTitle
		}
		if ms := history.ParseTimestamp(e.Timestamp); ms > 0 {
			c.When = humanize.RelTime(time.UnixMilli(ms), now, "ago", "from now")
		}
		cards = append(cards, c)
	}
	return cards
}
