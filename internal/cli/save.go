package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mithrel/lessonplan/internal/config"
	"github.com/mithrel/lessonplan/internal/controller"
	"github.com/mithrel/lessonplan/internal/present"
)

func newSaveCmd() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "save [id]",
		Short: "Save a lesson's raw markdown as lesson-plan-<timestamp>.md",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp(cmd)
			l, err := lessonArg(cmd, args)
			if err != nil {
				return err
			}
			app.Session.Load(l.AskResponse())
			if dir == "" {
				dir = config.ResolveDownloadDir(app.Cfg)
			}
			path, err := app.Session.Download(dir, time.Now())
			if err != nil {
				if errors.Is(err, controller.ErrNoContent) {
					present.Toast(toastOut(cmd), present.ToastWarning, "No content to download")
				} else {
					present.Toast(toastOut(cmd), present.ToastError, "Failed to download file")
				}
				return err
			}
			present.Toast(toastOut(cmd), present.ToastSuccess, "Lesson plan downloaded!")
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
	cmd.ValidArgsFunction = completeLessonIDs
	cmd.Flags().StringVar(&dir, "dir", "", "target directory (default download_dir)")
	return cmd
}

func newCopyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "copy [id]",
		Short: "Copy a lesson's raw markdown to the clipboard",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp(cmd)
			l, err := lessonArg(cmd, args)
			if err != nil {
				return err
			}
			app.Session.Load(l.AskResponse())
			copyToClipboard(cmd, app.Session)
			return nil
		},
	}
	cmd.ValidArgsFunction = completeLessonIDs
	return cmd
}
