package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mithrel/lessonplan/internal/present"
	"github.com/mithrel/lessonplan/internal/util"
	"github.com/mithrel/lessonplan/pkg/api"
)

// FilterOpts are the time filters shared by history commands.
type FilterOpts struct {
	Since string
	Until string
	Limit int
}

func addFilterFlags(cmd *cobra.Command, f *FilterOpts) {
	cmd.Flags().StringVar(&f.Since, "since", "", "only lessons after this time (2h, 3d, 2w, 1mo, 2025-01-02)")
	cmd.Flags().StringVar(&f.Until, "until", "", "only lessons before this time")
	cmd.Flags().IntVarP(&f.Limit, "limit", "n", 0, "maximum rows (0 uses history.limit)")
}

func (f FilterOpts) query(cmd *cobra.Command) (api.ListQuery, error) {
	since, until, err := util.ParseTimeRange(f.Since, f.Until, time.Now())
	if err != nil {
		return api.ListQuery{}, err
	}
	limit := f.Limit
	if limit <= 0 {
		limit = getConfig(cmd).GetInt("history.limit")
	}
	return api.ListQuery{Since: since, Until: until, Limit: limit}, nil
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "history",
		Aliases: []string{"h"},
		Short:   "Browse generated lesson plans",
	}
	cmd.AddCommand(newHistoryListCmd())
	cmd.AddCommand(newHistoryShowCmd())
	cmd.AddCommand(newHistorySearchCmd())
	cmd.AddCommand(newHistoryDeleteCmd())
	cmd.AddCommand(newHistoryBrowseCmd())
	return cmd
}

func newHistoryListCmd() *cobra.Command {
	var filters FilterOpts
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored lessons, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp(cmd)
			q, err := filters.query(cmd)
			if err != nil {
				return err
			}
			lessons, err := app.Store.Lessons.List(cmd.Context(), q)
			if err != nil {
				return err
			}
			opts, err := outputOptions(cmd, cmd.OutOrStdout(), "plain")
			if err != nil {
				return err
			}
			opts.Browse = app.Store.Lessons
			return renderLessons(cmd, lessons, opts)
		},
	}
	addFilterFlags(cmd, &filters)
	addOutputFlag(cmd, "plain", "output mode: plain|json|yaml|html|tui")
	cmd.Flags().Bool("noheaders", false, "hide column headers (plain/tui)")
	return cmd
}

func newHistoryShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show [id]",
		Short: "Display a stored lesson (default: the most recent)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := lessonArg(cmd, args)
			if err != nil {
				return err
			}
			opts, err := outputOptions(cmd, cmd.OutOrStdout(), "")
			if err != nil {
				return err
			}
			return renderLesson(cmd, l, opts)
		},
	}
	cmd.ValidArgsFunction = completeLessonIDs
	addOutputFlag(cmd, "", "output mode: pretty|html|markdown|plain|json|yaml")
	cmd.Flags().Bool("no-meta", false, "omit the metadata line")
	return cmd
}

func newHistorySearchCmd() *cobra.Command {
	var filters FilterOpts
	cmd := &cobra.Command{
		Use:   "search <terms...>",
		Short: "Fuzzy search stored lessons by their request",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp(cmd)
			q, err := filters.query(cmd)
			if err != nil {
				return err
			}
			limit := q.Limit
			q.Limit = 0
			lessons, err := app.Store.Lessons.List(cmd.Context(), q)
			if err != nil {
				return err
			}
			matches := util.ScoreLessons(strings.Join(args, " "), lessons, limit)
			opts, err := outputOptions(cmd, cmd.OutOrStdout(), "plain")
			if err != nil {
				return err
			}
			opts.Browse = app.Store.Lessons
			return renderLessons(cmd, matches, opts)
		},
	}
	addFilterFlags(cmd, &filters)
	addOutputFlag(cmd, "plain", "output mode: plain|json|yaml|html|tui")
	cmd.Flags().Bool("noheaders", false, "hide column headers")
	return cmd
}

func newHistoryDeleteCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <id...>",
		Short: "Delete stored lessons",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp(cmd)
			lessons := make([]api.Lesson, 0, len(args))
			for _, id := range args {
				l, err := app.Store.Lessons.Get(cmd.Context(), id)
				if err != nil {
					return fmt.Errorf("%s: %w", id, err)
				}
				lessons = append(lessons, l)
			}
			title := fmt.Sprintf("Delete %d lessons?", len(lessons))
			if len(lessons) == 1 {
				title = fmt.Sprintf("Delete lesson %s?", lessons[0].ID)
			}
			if err := confirm(title, "This permanently removes them from history.", yes); err != nil {
				return err
			}
			for _, l := range lessons {
				if err := app.Store.Lessons.Delete(cmd.Context(), l.ID); err != nil {
					return fmt.Errorf("%s: %w", l.ID, err)
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", l.ID)
			}
			return nil
		},
	}
	cmd.ValidArgsFunction = completeLessonIDs
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

func newHistoryBrowseCmd() *cobra.Command {
	var filters FilterOpts
	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Open the interactive history browser",
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp(cmd)
			q, err := filters.query(cmd)
			if err != nil {
				return err
			}
			if filters.Limit <= 0 {
				q.Limit = 0
			}
			lessons, err := app.Store.Lessons.List(cmd.Context(), q)
			if err != nil {
				return err
			}
			opts := present.Options{
				Mode:    present.ForOutput(present.ModeTUI, cmd.OutOrStdout()),
				Headers: true,
				Browse:  app.Store.Lessons,
			}
			return renderLessons(cmd, lessons, opts)
		},
	}
	addFilterFlags(cmd, &filters)
	return cmd
}

// lessonArg resolves an id argument, or the most recent lesson without one.
func lessonArg(cmd *cobra.Command, args []string) (api.Lesson, error) {
	app := getApp(cmd)
	if len(args) == 0 {
		return app.Store.Lessons.Last(cmd.Context())
	}
	return app.Store.Lessons.Get(cmd.Context(), args[0])
}
