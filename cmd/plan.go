// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hibeautyss/tma-clean/cliparse"
	"github.com/hibeautyss/tma-clean/engine"
	"github.com/hibeautyss/tma-clean/slots"
)

// parseClock converts "HH:MM" to minutes after midnight. "24:00" is the
// end of the day.
func parseClock(s string) (int, error) {
	h, m, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return 0, fmt.Errorf("invalid time %q, want HH:MM", s)
	}
	hours, err := strconv.Atoi(h)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q: %w", s, err)
	}
	minutes, err := strconv.Atoi(m)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q: %w", s, err)
	}
	total := hours*60 + minutes
	if hours < 0 || minutes < 0 || minutes > 59 || total > 24*60 {
		return 0, fmt.Errorf("invalid time %q", s)
	}
	return total, nil
}

func parseOnOff(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "on", "true", "yes":
		return true, nil
	case "off", "false", "no":
		return false, nil
	}
	return false, fmt.Errorf("expected on or off, got %q", s)
}

func parseIndex(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid slot index %q", s)
	}
	return n, nil
}

func parseDelta(s string) (int, error) {
	switch strings.ToLower(s) {
	case "next":
		return 1, nil
	case "prev":
		return -1, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid month delta %q", s)
	}
	return n, nil
}

// planAction runs fn on the create screen and prints the planner after.
func planAction(cfg *cliparse.Config, fn func(s *session, args []string) error) func(*cobra.Command, []string) error {
	return action(cfg, nil, func(ctx context.Context, cmd *cobra.Command, s *session, args []string) error {
		s.store.SetScreen(engine.ScreenCreate)
		if err := fn(s, args); err != nil {
			return err
		}
		readState(s, func(st *engine.State, _ engine.Permissions) {
			printPlanner(cmd.OutOrStdout(), st)
		})
		return nil
	})
}

func newPlanCmd(cfg *cliparse.Config) *cobra.Command {
	plan := &cobra.Command{
		Use:   "plan",
		Short: "Pick dates and time slots for a new poll",
		Args:  cobra.NoArgs,
		RunE:  planAction(cfg, func(*session, []string) error { return nil }),
	}

	plan.AddCommand(&cobra.Command{
		Use:   "new",
		Short: "Start over with an empty planner",
		Args:  cobra.NoArgs,
		RunE: planAction(cfg, func(s *session, _ []string) error {
			s.store.NewPoll()
			return nil
		}),
	})

	plan.AddCommand(&cobra.Command{
		Use:   "toggle DATE...",
		Short: "Select or unselect dates (YYYY-MM-DD)",
		Args:  cobra.MinimumNArgs(1),
		RunE: planAction(cfg, func(s *session, args []string) error {
			for _, date := range args {
				if !slots.ValidDate(date) {
					return fmt.Errorf("invalid date %q, want YYYY-MM-DD", date)
				}
				s.store.ToggleDate(date)
			}
			return nil
		}),
	})

	plan.AddCommand(&cobra.Command{
		Use:   "times on|off",
		Short: "Use specific time slots or whole days",
		Args:  cobra.ExactArgs(1),
		RunE: planAction(cfg, func(s *session, args []string) error {
			on, err := parseOnOff(args[0])
			if err != nil {
				return err
			}
			s.store.SetSpecifyTimes(on)
			return nil
		}),
	})

	plan.AddCommand(&cobra.Command{
		Use:   "add-slot DATE",
		Short: "Append a slot after the last one of a date",
		Args:  cobra.ExactArgs(1),
		RunE: planAction(cfg, func(s *session, args []string) error {
			s.store.AddSlot(args[0])
			return nil
		}),
	})

	plan.AddCommand(&cobra.Command{
		Use:   "remove-slot DATE INDEX",
		Short: "Remove a slot; removing the last one unselects the date",
		Args:  cobra.ExactArgs(2),
		RunE: planAction(cfg, func(s *session, args []string) error {
			idx, err := parseIndex(args[1])
			if err != nil {
				return err
			}
			s.store.RemoveSlot(args[0], idx)
			return nil
		}),
	})

	plan.AddCommand(&cobra.Command{
		Use:   "resize DATE INDEX start|end HH:MM",
		Short: "Move one edge of a slot",
		Args:  cobra.ExactArgs(4),
		RunE: planAction(cfg, func(s *session, args []string) error {
			idx, err := parseIndex(args[1])
			if err != nil {
				return err
			}
			edge, err := slots.ParseEdge(args[2])
			if err != nil {
				return err
			}
			minutes, err := parseClock(args[3])
			if err != nil {
				return err
			}
			s.store.ResizeSlot(args[0], idx, edge, minutes)
			return nil
		}),
	})

	plan.AddCommand(&cobra.Command{
		Use:   "month next|prev|DELTA",
		Short: "Move the calendar; negative deltas go after --",
		Args:  cobra.ExactArgs(1),
		RunE: planAction(cfg, func(s *session, args []string) error {
			delta, err := parseDelta(args[0])
			if err != nil {
				return err
			}
			s.store.NavigateMonth(delta)
			return nil
		}),
	})

	var zone string
	tz := &cobra.Command{
		Use:   "timezone [QUERY]",
		Short: "Search the timezone list, or pick one with --set",
		Args:  cobra.MaximumNArgs(1),
		RunE: action(cfg, nil, func(ctx context.Context, cmd *cobra.Command, s *session, args []string) error {
			w := cmd.OutOrStdout()
			if zone != "" {
				if !s.store.SetTimezone(zone) {
					return fmt.Errorf("unknown timezone %q", zone)
				}
				fmt.Fprintf(w, "Timezone: %s\n", engine.TimezoneLabel(zone))
				return nil
			}
			query := ""
			if len(args) == 1 {
				query = args[0]
			}
			for _, t := range s.store.SetTimezoneSearch(query) {
				fmt.Fprintf(w, "%-20s%-12s%s\n", t.Zone, t.Offset, strings.Join(t.Cities, ", "))
			}
			return nil
		}),
	}
	tz.Flags().StringVar(&zone, "set", "", "Zone to select, e.g. Europe/Moscow")
	plan.AddCommand(tz)

	return plan
}
