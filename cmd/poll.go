// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hibeautyss/tma-clean/apperr"
	"github.com/hibeautyss/tma-clean/cliparse"
	"github.com/hibeautyss/tma-clean/engine"
	"github.com/hibeautyss/tma-clean/models"
	"github.com/hibeautyss/tma-clean/views"
)

// showPoll prints the open poll.
func showPoll(cmd *cobra.Command, cfg *cliparse.Config, s *session) {
	updating := s.store.IsUpdatingStatus()
	readState(s, func(st *engine.State, perms engine.Permissions) {
		printPoll(cmd.OutOrStdout(), st, perms, cfg.BotUsername, updating)
	})
}

func detailFlags(cmd *cobra.Command, d *engine.PollDetails) {
	cmd.Flags().StringVar(&d.Title, "title", "", "Poll title")
	cmd.Flags().StringVar(&d.Location, "location", "", "Where to meet")
	cmd.Flags().StringVar(&d.Description, "description", "", "Notes for participants")
}

func newCreateCmd(cfg *cliparse.Config) *cobra.Command {
	var d engine.PollDetails
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a poll from the planner selection",
		Args:  cobra.NoArgs,
		RunE: action(cfg, nil, func(ctx context.Context, cmd *cobra.Command, s *session, args []string) error {
			s.store.SetScreen(engine.ScreenCreate)
			res, err := s.store.CreatePoll(ctx, d)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Share code: %s\n", res.ShareCode)
			if res.InviteLink != "" {
				fmt.Fprintf(w, "Invite link: %s\n", res.InviteLink)
			}
			return nil
		}),
	}
	detailFlags(cmd, &d)
	return cmd
}

func newJoinCmd(cfg *cliparse.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "join CODE",
		Short: "Open a poll by its share code",
		Args:  cobra.ExactArgs(1),
		RunE: action(cfg, nil, func(ctx context.Context, cmd *cobra.Command, s *session, args []string) error {
			if err := s.store.JoinPoll(ctx, args[0]); err != nil {
				return err
			}
			showPoll(cmd, cfg, s)
			return nil
		}),
	}
}

func newPollCmd(cfg *cliparse.Config) *cobra.Command {
	poll := &cobra.Command{
		Use:   "poll",
		Short: "Show the open poll",
		Args:  cobra.NoArgs,
		RunE: action(cfg, nil, func(ctx context.Context, cmd *cobra.Command, s *session, args []string) error {
			showPoll(cmd, cfg, s)
			return nil
		}),
	}
	poll.AddCommand(&cobra.Command{
		Use:   "close",
		Short: "Go back to the dashboard",
		Args:  cobra.NoArgs,
		RunE: action(cfg, nil, func(ctx context.Context, cmd *cobra.Command, s *session, args []string) error {
			s.store.BackToDashboard()
			return nil
		}),
	})

	var manage bool
	open := &cobra.Command{
		Use:   "open CODE",
		Short: "Open a poll from your history",
		Args:  cobra.ExactArgs(1),
		RunE: action(cfg, nil, func(ctx context.Context, cmd *cobra.Command, s *session, args []string) error {
			code := engine.SanitizeShareCode(args[0])
			var entry *models.HistoryEntry
			readState(s, func(st *engine.State, _ engine.Permissions) {
				for _, e := range st.PollHistory {
					if e.ShareCode == code || e.ID.Equal(models.ID(args[0])) {
						entry = &e
						break
					}
				}
			})
			if entry == nil {
				return fmt.Errorf("no poll %s in your history", args[0])
			}
			if err := s.store.OpenFromHistory(ctx, *entry, manage); err != nil {
				return err
			}
			showPoll(cmd, cfg, s)
			return nil
		}),
	}
	open.Flags().BoolVar(&manage, "manage", false, "Open as the poll creator")
	poll.AddCommand(open)
	return poll
}

// parseAnswer reads "N=yes|maybe|no" with a 1-based option number.
func parseAnswer(arg string) (int, models.Availability, error) {
	n, value, ok := strings.Cut(arg, "=")
	if !ok {
		return 0, models.None, fmt.Errorf("invalid answer %q, want N=yes|maybe|no", arg)
	}
	idx, err := strconv.Atoi(n)
	if err != nil || idx < 1 {
		return 0, models.None, fmt.Errorf("invalid option number in %q", arg)
	}
	a, err := models.ParseAvailability(strings.ToLower(value))
	if err != nil || a == models.None {
		return 0, models.None, fmt.Errorf("invalid answer in %q", arg)
	}
	return idx, a, nil
}

// setDraft cycles the draft cell of optionID until it reads want.
func setDraft(s *session, optionID models.ID, want models.Availability) error {
	for i := 0; i < 4; i++ {
		got, err := s.store.CycleDraft(optionID)
		if err != nil {
			return err
		}
		if got == want {
			return nil
		}
	}
	return fmt.Errorf("option %s did not accept %s", optionID, want)
}

func newVoteCmd(cfg *cliparse.Config) *cobra.Command {
	var name, comment string
	cmd := &cobra.Command{
		Use:   "vote N=yes|maybe|no...",
		Short: "Answer the open poll and submit",
		Long: `vote answers options of the open poll by their number in "planner poll"
and submits. Options you leave out count as unanswered. Without --name the
vote is sent under your profile name.`,
		Args: cobra.MinimumNArgs(1),
		RunE: action(cfg, nil, func(ctx context.Context, cmd *cobra.Command, s *session, args []string) error {
			var columns []views.Column
			readState(s, func(st *engine.State, _ engine.Permissions) {
				columns = views.VoteGrid(st.ActivePoll, nil, false).Columns
			})
			if len(columns) == 0 {
				return apperr.ErrNoActivePoll
			}

			s.store.ResetDraft()
			for _, arg := range args {
				idx, a, err := parseAnswer(arg)
				if err != nil {
					return err
				}
				if idx > len(columns) {
					return fmt.Errorf("option %d does not exist", idx)
				}
				if err := setDraft(s, columns[idx-1].OptionID, a); err != nil {
					return err
				}
			}
			s.store.SetVoteComment(comment)
			if err := s.store.ContinueVote(); err != nil {
				return err
			}
			if _, err := s.store.SubmitVote(ctx, name); err != nil {
				s.store.CloseNameModal()
				return err
			}
			showPoll(cmd, cfg, s)
			return nil
		}),
	}
	cmd.Flags().StringVar(&name, "name", "", "Name shown next to your answers")
	cmd.Flags().StringVar(&comment, "comment", "", "Optional note")
	return cmd
}

func newStatusCmd(cfg *cliparse.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "status live|paused|finished",
		Short: "Change the status of a poll you created",
		Args:  cobra.ExactArgs(1),
		RunE: action(cfg, nil, func(ctx context.Context, cmd *cobra.Command, s *session, args []string) error {
			target := models.Status(strings.ToLower(args[0]))
			if models.NormalizeStatus(args[0]) != target {
				return fmt.Errorf("unknown status %q", args[0])
			}
			return s.store.ChangeStatus(ctx, target)
		}),
	}
}

func newEditCmd(cfg *cliparse.Config) *cobra.Command {
	var d engine.PollDetails
	cmd := &cobra.Command{
		Use:   "edit",
		Short: "Change title, location or description of a poll you created",
		Args:  cobra.NoArgs,
		RunE: action(cfg, nil, func(ctx context.Context, cmd *cobra.Command, s *session, args []string) error {
			// Unset flags keep the current values.
			readState(s, func(st *engine.State, _ engine.Permissions) {
				p := st.ActivePoll
				if p == nil {
					return
				}
				if !cmd.Flags().Changed("title") {
					d.Title = p.Title
				}
				if !cmd.Flags().Changed("location") && p.Location != nil {
					d.Location = *p.Location
				}
				if !cmd.Flags().Changed("description") && p.Description != nil {
					d.Description = *p.Description
				}
			})
			return s.store.UpdateDetails(ctx, d)
		}),
	}
	detailFlags(cmd, &d)
	return cmd
}

func newOptionsCmd(cfg *cliparse.Config) *cobra.Command {
	var (
		toggle []string
		add    []string
		remove []string
		times  string
		month  string
	)
	cmd := &cobra.Command{
		Use:   "options",
		Short: "Edit the dates and slots of a poll you created",
		Long: `options opens the option editor on the current poll options, applies
the given changes and saves. Answers for removed options are dropped. With
only --month the editor calendar is shown and nothing is saved.`,
		Args: cobra.NoArgs,
		RunE: action(cfg, nil, func(ctx context.Context, cmd *cobra.Command, s *session, args []string) error {
			if err := s.store.OpenEditOptions(); err != nil {
				return err
			}
			if times != "" {
				on, err := parseOnOff(times)
				if err != nil {
					return err
				}
				s.store.EditSetSpecifyTimes(on)
			}
			for _, date := range toggle {
				s.store.EditToggleDate(date)
			}
			for _, date := range add {
				s.store.EditAddSlot(date)
			}
			for _, slot := range remove {
				date, n, ok := strings.Cut(slot, ":")
				if !ok {
					return fmt.Errorf("invalid slot %q, want DATE:INDEX", slot)
				}
				idx, err := parseIndex(n)
				if err != nil {
					return err
				}
				s.store.EditRemoveSlot(date, idx)
			}
			if month != "" {
				delta, err := parseDelta(month)
				if err != nil {
					s.store.CancelEditOptions()
					return err
				}
				s.store.EditNavigateMonth(delta)
				readState(s, func(st *engine.State, _ engine.Permissions) {
					if st.EditOptions != nil {
						printCalendar(cmd.OutOrStdout(), views.Calendar(st.EditView, st.Today, st.EditOptions.Dates.Has))
						fmt.Fprintln(cmd.OutOrStdout())
					}
				})
				if !changed(cmd, "toggle", "add-slot", "remove-slot", "times") {
					s.store.CancelEditOptions()
					return nil
				}
			}
			if err := s.store.SaveEditOptions(ctx); err != nil {
				s.store.CancelEditOptions()
				return err
			}
			showPoll(cmd, cfg, s)
			return nil
		}),
	}
	cmd.Flags().StringSliceVar(&toggle, "toggle", nil, "Dates to add or remove")
	cmd.Flags().StringSliceVar(&add, "add-slot", nil, "Dates to append a slot to")
	cmd.Flags().StringSliceVar(&remove, "remove-slot", nil, "Slots to remove as DATE:INDEX")
	cmd.Flags().StringVar(&times, "times", "", "Use specific times: on or off")
	cmd.Flags().StringVar(&month, "month", "", "Show the editor calendar moved by next, prev or a delta")
	return cmd
}

// changed reports whether any of the named flags was set.
func changed(cmd *cobra.Command, names ...string) bool {
	for _, n := range names {
		if cmd.Flags().Changed(n) {
			return true
		}
	}
	return false
}
