package cli

import (
	"fmt"
	"slices"
	"time"

	"github.com/spf13/cobra"

	"github.com/mithrel/lessonplan/pkg/api"
)

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Check the backend and summarize local state",
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp(cmd)
			out := cmd.OutOrStdout()

			h, err := app.Client.Health(cmd.Context())
			if err != nil {
				_, _ = fmt.Fprintf(out, "backend   %s: offline (%v)\n", app.Client.BaseURL(), err)
			} else {
				_, _ = fmt.Fprintf(out, "backend   %s: %s (%d chunks)\n", app.Client.BaseURL(), h.Status, h.Chunks)
				names := make([]string, 0, len(h.Components))
				for name := range h.Components {
					names = append(names, name)
				}
				slices.Sort(names)
				for _, name := range names {
					state := "down"
					if h.Components[name] {
						state = "up"
					}
					_, _ = fmt.Fprintf(out, "  %-14s %s\n", name, state)
				}
			}

			lessons, err := app.Store.Lessons.List(cmd.Context(), api.ListQuery{})
			if err != nil {
				return err
			}
			chunks, err := app.Store.Chunks.Count(cmd.Context())
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(out, "history   %d lessons\n", len(lessons))
			if len(lessons) > 0 {
				_, _ = fmt.Fprintf(out, "  latest   %s\n", lessons[0].CreatedAt.Local().Format(time.DateTime))
			}
			_, _ = fmt.Fprintf(out, "documents %d local chunks\n", chunks)
			return nil
		},
	}
	return cmd
}
