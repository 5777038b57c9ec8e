package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/RevCBH/fsgit/internal/cli/tui"
	"github.com/RevCBH/fsgit/internal/git"
	"github.com/RevCBH/fsgit/internal/session"
)

// NewSessionsCmd groups the staged-session administration subcommands:
// list, watch, preview, finalize, abort. Each operates directly on the
// durable session store (spec.md §3 "Session store"), so it works whether
// or not a fsgitd serve process is currently running.
func NewSessionsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "Inspect and administer staged sessions",
	}
	cmd.AddCommand(newSessionsListCmd(app))
	cmd.AddCommand(newSessionsWatchCmd(app))
	cmd.AddCommand(newSessionsPreviewCmd(app))
	cmd.AddCommand(newSessionsFinalizeCmd(app))
	cmd.AddCommand(newSessionsAbortCmd(app))
	return cmd
}

func (a *App) openManager() (*session.Manager, error) {
	cfg, err := a.loadConfig()
	if err != nil {
		return nil, err
	}
	store, err := session.NewStore(cfg.SessionDir)
	if err != nil {
		return nil, err
	}
	return session.NewManager(store), nil
}

func (a *App) openStore() (*session.Store, error) {
	cfg, err := a.loadConfig()
	if err != nil {
		return nil, err
	}
	return session.NewStore(cfg.SessionDir)
}

func newSessionsListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List staged sessions still in progress",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := app.openStore()
			if err != nil {
				return err
			}
			records, err := store.List()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(records) == 0 {
				fmt.Fprintln(out, "no staged sessions")
				return nil
			}
			for _, rec := range records {
				fmt.Fprintf(out, "%s\t%s\t%s -> %s\t%s\n", rec.ID, rec.State, rec.BaseBranch, rec.WorkBranch, rec.StartedAt)
			}
			return nil
		},
	}
}

func newSessionsWatchCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Watch staged sessions live in a terminal UI",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := app.openStore()
			if err != nil {
				return err
			}
			return tui.RunWatch(cmd.Context(), store)
		},
	}
}

func newSessionsPreviewCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "preview <session-id>",
		Short: "Preview a staged session's accumulated diff and commits",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := app.openManager()
			if err != nil {
				return err
			}
			preview, err := mgr.StagedPreview(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, preview.Diff)
			for _, subject := range preview.Commits {
				fmt.Fprintln(out, subject)
			}
			return nil
		},
	}
}

func newSessionsFinalizeCmd(app *App) *cobra.Command {
	var strategy string
	var keepWorkBranch bool
	var squashSubject string

	cmd := &cobra.Command{
		Use:   "finalize <session-id>",
		Short: "Merge a staged session's work branch onto its base branch",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := app.openManager()
			if err != nil {
				return err
			}
			subject := squashSubject
			if subject == "" {
				subject = defaultSquashSubject(args[0])
			}
			result, err := mgr.FinalizeStaged(cmd.Context(), args[0], session.FinalizeOptions{
				Strategy:         git.MergeStrategy(strategy),
				DeleteWorkBranch: !keepWorkBranch,
				SquashSubject:    subject,
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), result.MergedSHA)
			return nil
		},
	}
	cmd.Flags().StringVar(&strategy, "strategy", string(git.StrategyMergeFF),
		"Finalize strategy: merge-ff, merge-no-ff, rebase-merge, squash-merge")
	cmd.Flags().BoolVar(&keepWorkBranch, "keep-work-branch", false,
		"Keep the work branch after finalize instead of deleting it")
	cmd.Flags().StringVar(&squashSubject, "squash-subject", "",
		"Commit subject for squash-merge (default derived from the session id)")
	return cmd
}

// defaultSquashSubject synthesizes a commit subject for squash-merge when
// the caller doesn't supply one; git refuses an empty -m.
func defaultSquashSubject(sessionID string) string {
	return "[squash] " + sessionID + " – finalize staged session"
}

func newSessionsAbortCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "abort <session-id>",
		Short: "Abort a staged session, discarding its work branch",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := app.openManager()
			if err != nil {
				return err
			}
			if err := mgr.AbortStaged(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "aborted %s\n", args[0])
			return nil
		},
	}
}
