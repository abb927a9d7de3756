// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/hibeautyss/tma-clean/cliparse"
	"github.com/hibeautyss/tma-clean/engine"
	"github.com/hibeautyss/tma-clean/history"
	"github.com/hibeautyss/tma-clean/models"
)

func newOpenCmd(cfg *cliparse.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "open [start-param]",
		Short: "Launch the app, optionally from an invite like poll:ABC234",
		Args:  cobra.MaximumNArgs(1),
		RunE: action(cfg, func(args []string) string {
			if len(args) == 0 {
				return ""
			}
			return args[0]
		}, func(ctx context.Context, cmd *cobra.Command, s *session, args []string) error {
			w := cmd.OutOrStdout()
			updating := s.store.IsUpdatingStatus()
			readState(s, func(st *engine.State, perms engine.Permissions) {
				switch st.Screen {
				case engine.ScreenPoll:
					printPoll(w, st, perms, cfg.BotUsername, updating)
				case engine.ScreenCreate:
					printPlanner(w, st)
				default:
					if name := st.User.DisplayName(); name != "" {
						fmt.Fprintf(w, "Hello, %s.\n\n", name)
					}
					printHistory(w, history.Filter(st.PollHistory, st.PollFilters), time.Now())
				}
			})
			return nil
		}),
	}
}

func newHistoryCmd(cfg *cliparse.Config) *cobra.Command {
	var (
		tab     string
		created bool
		all     bool
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List polls you created or joined",
		Args:  cobra.NoArgs,
		RunE: action(cfg, nil, func(ctx context.Context, cmd *cobra.Command, s *session, args []string) error {
			if tab != "" {
				s.store.SetPollTab(models.Status(tab))
			}
			if cmd.Flags().Changed("created") {
				s.store.SetCreatedOnly(created)
			}
			s.store.BackToDashboard()

			entries := s.store.HistoryCards()
			if all {
				readState(s, func(st *engine.State, _ engine.Permissions) {
					entries = append([]models.HistoryEntry(nil), st.PollHistory...)
				})
			}
			printHistory(cmd.OutOrStdout(), entries, time.Now())
			return nil
		}),
	}
	cmd.Flags().StringVar(&tab, "tab", "", "Status tab: live, paused or finished")
	cmd.Flags().BoolVar(&created, "created", false, "Only polls you created")
	cmd.Flags().BoolVar(&all, "all", false, "Ignore the tab and filter")
	return cmd
}
