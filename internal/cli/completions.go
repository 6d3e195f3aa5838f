package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/mithrel/lessonplan/internal/util"
	"github.com/mithrel/lessonplan/internal/wire"
	"github.com/mithrel/lessonplan/pkg/api"
)

func newCompletionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion",
		Short: "Generate shell completion scripts",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "bash",
		Short: "Generate Bash completions",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Root().GenBashCompletionV2(cmd.OutOrStdout(), true)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "zsh",
		Short: "Generate Zsh completions",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Root().GenZshCompletion(cmd.OutOrStdout())
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "fish",
		Short: "Generate Fish completions",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Root().GenFishCompletion(cmd.OutOrStdout(), true)
		},
	})

	markNoApp(cmd)
	return cmd
}

// markNoApp annotates cmd and its subcommands so they run without the store.
func markNoApp(cmd *cobra.Command) {
	if cmd.Annotations == nil {
		cmd.Annotations = map[string]string{}
	}
	cmd.Annotations[noApp] = "true"
	for _, c := range cmd.Commands() {
		markNoApp(c)
	}
}

// completeLessonIDs suggests stored lesson ids ranked against what is typed.
func completeLessonIDs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if cmd.Context() == nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	app, ok := cmd.Context().Value(appKey).(*wire.App)
	if !ok {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	lessons, err := app.Store.Lessons.List(cmd.Context(), api.ListQuery{Limit: 200})
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	ids := make([]string, 0, len(lessons))
	byID := make(map[string]api.Lesson, len(lessons))
	for _, l := range lessons {
		ids = append(ids, l.ID)
		byID[l.ID] = l
	}
	out := make([]string, 0, len(ids))
	for _, id := range util.ScoreCompletions(toComplete, ids, 50) {
		desc := strings.ReplaceAll(byID[id].Query, "\t", " ")
		out = append(out, id+"\t"+desc)
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}
