// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hibeautyss/tma-clean/cliparse"
	"github.com/hibeautyss/tma-clean/engine"
	"github.com/hibeautyss/tma-clean/models"
)

// NewRootCmd builds the command tree. Each call has its own config, so
// tests can run several trees in one process.
func NewRootCmd() *cobra.Command {
	var cfg cliparse.Config

	root := &cobra.Command{
		Use:   "planner",
		Short: "Plan a meeting time with a shared availability poll",
		Long: `planner drives the scheduling poll engine from the terminal.
Pick dates and time slots, create a poll, share its code, and collect
yes/maybe/no answers. Planner state is kept in the local cache between runs.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return cliparse.Resolve(&cfg)
		},
	}
	root.PersistentFlags().AddGoFlagSet(cliparse.NewFlagSet(&cfg))

	root.AddCommand(newOpenCmd(&cfg))
	root.AddCommand(newHistoryCmd(&cfg))
	root.AddCommand(newPlanCmd(&cfg))
	root.AddCommand(newCreateCmd(&cfg))
	root.AddCommand(newJoinCmd(&cfg))
	root.AddCommand(newPollCmd(&cfg))
	root.AddCommand(newVoteCmd(&cfg))
	root.AddCommand(newStatusCmd(&cfg))
	root.AddCommand(newEditCmd(&cfg))
	root.AddCommand(newOptionsCmd(&cfg))
	return root
}

// Execute is the entry point called from main.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// action opens a session, runs fn, then prints the feedback it left.
// startParam, when set, picks the launch start parameter from the args.
func action(cfg *cliparse.Config, startParam func(args []string) string, fn func(ctx context.Context, cmd *cobra.Command, s *session, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		param := ""
		if startParam != nil {
			param = startParam(args)
		}
		s, err := openSession(ctx, *cfg, param)
		if err != nil {
			return err
		}
		defer s.close()

		err = fn(ctx, cmd, s, args)
		printFeedback(cmd.OutOrStdout(), s.store.Feedback())
		return err
	}
}

// readState calls fn with the state and the permissions derived from it.
func readState(s *session, fn func(st *engine.State, perms engine.Permissions)) {
	s.store.Read(func(st *engine.State) {
		var userID models.ID
		if st.User != nil {
			userID = st.User.ID
		}
		fn(st, engine.DerivePermissions(st.ActivePoll, st.ActivePollRelation, userID, st.HasSubmittedVote))
	})
}
