// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cmd

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/hibeautyss/tma-clean/engine"
	"github.com/hibeautyss/tma-clean/lifecycle"
	"github.com/hibeautyss/tma-clean/models"
	"github.com/hibeautyss/tma-clean/views"
)

var answerMarks = map[models.Availability]string{
	models.None:  ".",
	models.Yes:   "Y",
	models.Maybe: "?",
	models.No:    "N",
}

func printMessage(w io.Writer, m engine.Message) {
	if m.Text == "" {
		return
	}
	prefix := ""
	switch m.Tone {
	case engine.ToneError:
		prefix = "! "
	case engine.ToneSuccess:
		prefix = "✓ "
	}
	fmt.Fprintln(w, prefix+m.Text)
}

func printFeedback(w io.Writer, f engine.Feedback) {
	for _, m := range []engine.Message{f.Form, f.Join, f.Vote, f.EditDetails, f.EditOptions} {
		printMessage(w, m)
	}
}

func printCalendar(w io.Writer, m views.Month) {
	fmt.Fprintln(w, m.Label)
	fmt.Fprintln(w, " Mo  Tu  We  Th  Fr  Sa  Su")
	for i, c := range m.Cells {
		label := c.Label
		if !c.IsCurrentMonth {
			label = ""
		}
		mark := " "
		switch {
		case c.IsSelected:
			mark = "*"
		case c.IsToday:
			mark = "·"
		}
		fmt.Fprintf(w, "%3s%s", label, mark)
		if i%7 == 6 {
			fmt.Fprintln(w)
		}
	}
}

func printSelection(w io.Writer, rows []views.DateRow, specifyTimes bool) {
	if len(rows) == 0 {
		fmt.Fprintln(w, "No dates selected.")
		return
	}
	for _, r := range rows {
		fmt.Fprintf(w, "%-14s%s\n", r.Label, r.Date)
		if !specifyTimes {
			continue
		}
		for _, s := range r.Slots {
			fmt.Fprintf(w, "  #%d  %s - %s  (%s)\n", s.Index, s.Start, s.End, s.Duration)
		}
		if !r.CanAddSlot {
			fmt.Fprintln(w, "  day is full")
		}
	}
}

func printPlanner(w io.Writer, st *engine.State) {
	printCalendar(w, views.Calendar(st.CurrentView, st.Today, st.SelectedDates.Has))
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Timezone: %s\n", engine.TimezoneLabel(st.Timezone))
	fmt.Fprintf(w, "Specific times: %v\n", st.SpecifyTimes)
	printSelection(w, views.SelectionRows(st.SelectedDates, st.SpecifyTimes), st.SpecifyTimes)
}

func printPoll(w io.Writer, st *engine.State, perms engine.Permissions, botUsername string, updatingStatus bool) {
	p := st.ActivePoll
	if p == nil {
		fmt.Fprintln(w, "No poll is open.")
		return
	}
	fmt.Fprintf(w, "%s  [%s]  code %s\n", p.Title, views.StatusLabel(p.Status), p.ShareCode)
	if p.Location != nil && *p.Location != "" {
		fmt.Fprintf(w, "Where: %s\n", *p.Location)
	}
	if p.Description != nil && *p.Description != "" {
		fmt.Fprintln(w, *p.Description)
	}
	fmt.Fprintf(w, "Timezone: %s  (%s)\n", engine.TimezoneLabel(p.Timezone), views.RelationLabel(perms.Relation))
	if link := engine.InviteLink(botUsername, p.ShareCode); link != "" {
		fmt.Fprintf(w, "Invite: %s\n", link)
	}
	if perms.CanManage {
		if updatingStatus {
			fmt.Fprintln(w, "Updating status...")
		} else if targets := lifecycle.Targets(p.Status); len(targets) > 0 {
			names := make([]string, len(targets))
			for i, t := range targets {
				names[i] = string(t)
			}
			fmt.Fprintf(w, "Change status to: %s\n", strings.Join(names, ", "))
		}
	}
	fmt.Fprintln(w)
	printGrid(w, views.VoteGrid(p, st.VoteDraft, perms.IsReadOnly))
}

func printGrid(w io.Writer, g views.Grid) {
	if len(g.Columns) == 0 {
		fmt.Fprintln(w, "No options.")
		return
	}
	best := make(map[string]bool)
	for _, id := range g.Best() {
		best[id.Key()] = true
	}
	for i, c := range g.Columns {
		star := " "
		if best[c.OptionID.Key()] {
			star = "*"
		}
		draft := ""
		if !g.ReadOnly && c.Draft != models.None {
			draft = "  you: " + c.Draft.String()
		}
		fmt.Fprintf(w, "%s%2d  %-12s%-15s yes %d  maybe %d%s\n", star, i+1, c.DateLabel, c.TimeLabel, c.Yes, c.Maybe, draft)
	}
	if len(g.Participants) == 0 {
		fmt.Fprintln(w, "\nNo votes yet.")
		return
	}
	fmt.Fprintln(w)
	for _, p := range g.Participants {
		marks := make([]string, len(p.Answers))
		for i, a := range p.Answers {
			marks[i] = answerMarks[a]
		}
		fmt.Fprintf(w, "%-16s%s\n", p.Name, strings.Join(marks, " "))
	}
	for _, p := range g.Comments() {
		fmt.Fprintf(w, "  %s: %s\n", p.Name, p.Comment)
	}
}

func printHistory(w io.Writer, entries []models.HistoryEntry, now time.Time) {
	cards := views.HistoryCards(entries, now)
	if len(cards) == 0 {
		fmt.Fprintln(w, "No polls yet.")
		return
	}
	for _, c := range cards {
		fmt.Fprintf(w, "%-24s%-16s%-10s%-8s%s\n", c.Title, c.RelationLabel, c.StatusLabel, c.ShareCode, c.When)
	}
}
