package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mithrel/lessonplan/internal/client"
	"github.com/mithrel/lessonplan/internal/config"
	"github.com/mithrel/lessonplan/internal/controller"
	"github.com/mithrel/lessonplan/internal/editor"
	"github.com/mithrel/lessonplan/internal/present"
	"github.com/mithrel/lessonplan/internal/present/tui"
	"github.com/mithrel/lessonplan/pkg/api"
)

type askFlags struct {
	duration       string
	customDuration string
	external       bool
	save           bool
	copy           bool
	useEditor      bool
	noSpinner      bool
}

func newAskCmd() *cobra.Command {
	var f askFlags
	cmd := &cobra.Command{
		Use:   "ask [query...]",
		Short: "Generate a lesson plan",
		Long: `Send a lesson request to the backend and render the reply.

Without a query an interactive form opens (or $EDITOR with --editor).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp(cmd)
			in := controller.Input{
				Query:             strings.Join(args, " "),
				Duration:          f.duration,
				CustomDuration:    f.customDuration,
				ExternalKnowledge: f.external,
			}
			if strings.TrimSpace(in.Query) == "" {
				var err error
				switch {
				case f.useEditor:
					in, err = editor.Compose(in)
				case present.IsTerminal(os.Stdin):
					in, err = promptInput(in)
				default:
					return errors.New("a query is required when stdin is not a terminal")
				}
				if err != nil {
					return err
				}
			}
			return submit(cmd, app.Session, f, func(ctx context.Context) (controller.Rendered, error) {
				return app.Session.Submit(ctx, in)
			})
		},
	}
	addAskFlags(cmd, &f)
	cmd.Flags().StringVarP(&f.duration, "duration", "d", "", "lesson length, e.g. \"45 minutes\", or \"custom\"")
	cmd.Flags().StringVar(&f.customDuration, "custom-duration", "", "duration used when --duration=custom")
	cmd.Flags().BoolVarP(&f.external, "external", "x", false, "include external ideas beyond the district documents")
	cmd.Flags().BoolVarP(&f.useEditor, "editor", "e", false, "compose the request in $EDITOR")
	_ = cmd.RegisterFlagCompletionFunc("duration", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return append(append([]string(nil), durationChoices...), controller.CustomDuration), cobra.ShellCompDirectiveNoFileComp
	})
	return cmd
}

func newRetryCmd() *cobra.Command {
	var f askFlags
	cmd := &cobra.Command{
		Use:   "retry [id]",
		Short: "Resubmit the last request (or the request of a stored lesson)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp(cmd)
			var (
				l   api.Lesson
				err error
			)
			if len(args) == 1 {
				l, err = app.Store.Lessons.Get(cmd.Context(), args[0])
			} else {
				l, err = app.Store.Lessons.Last(cmd.Context())
			}
			if err != nil {
				return fmt.Errorf("nothing to retry: %w", err)
			}
			app.Session.Remember(controller.InputFromRequest(api.AskRequest{Query: l.Query, Duration: l.Duration}))
			return submit(cmd, app.Session, f, app.Session.Retry)
		},
	}
	cmd.ValidArgsFunction = completeLessonIDs
	addAskFlags(cmd, &f)
	return cmd
}

func addAskFlags(cmd *cobra.Command, f *askFlags) {
	addOutputFlag(cmd, "", "output mode: pretty|html|markdown|plain|json|yaml")
	cmd.Flags().Bool("no-meta", false, "omit the metadata line")
	cmd.Flags().BoolVarP(&f.save, "save", "s", false, "save the raw lesson plan into download_dir")
	cmd.Flags().BoolVarP(&f.copy, "copy", "c", false, "copy the raw lesson plan to the clipboard")
	cmd.Flags().BoolVar(&f.noSpinner, "no-spinner", false, "disable the loading indicator")
	cmd.Flags().Duration("timeout", 0, "request timeout (overrides request_timeout)")
}

// submit runs one generation with the loading indicator or the interrupt
// guard, then renders, saves and copies the reply.
func submit(cmd *cobra.Command, s *controller.Session, f askFlags, run func(context.Context) (controller.Rendered, error)) error {
	app := getApp(cmd)
	ctx := cmd.Context()
	if t, _ := cmd.Flags().GetDuration("timeout"); t > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t)
		defer cancel()
	}

	var out controller.Rendered
	work := func(ctx context.Context) error {
		var err error
		out, err = run(ctx)
		return err
	}

	errOut := cmd.ErrOrStderr()
	errFile, isFile := errOut.(*os.File)
	var err error
	if isFile && present.IsTerminal(errFile) && !f.noSpinner && app.Cfg.GetBool("ui.spinner") {
		err = tui.RunLoading(ctx, errOut, "Generating lesson plan…", work)
	} else {
		err = runGuarded(ctx, errOut, s.Generating, work)
	}
	if err != nil {
		reportAskError(cmd, err)
		return err
	}
	present.Toast(toastOut(cmd), present.ToastSuccess, "Lesson plan generated successfully!")

	opts, err := outputOptions(cmd, cmd.OutOrStdout(), "")
	if err != nil {
		return err
	}
	lesson := api.LessonFromResponse(out.Request, out.Response, time.Now())
	if err := present.RenderLesson(cmd.OutOrStdout(), lesson, opts); err != nil {
		return err
	}

	if f.save {
		path, err := s.Download(config.ResolveDownloadDir(app.Cfg), time.Now())
		if err != nil {
			present.Toast(toastOut(cmd), present.ToastError, "Failed to download file")
			return err
		}
		present.Toastf(toastOut(cmd), present.ToastSuccess, "Lesson plan downloaded! %s", path)
	}
	if f.copy {
		copyToClipboard(cmd, s)
	}
	return nil
}

func reportAskError(cmd *cobra.Command, err error) {
	var verr *controller.ValidationError
	var herr *client.HTTPError
	var nerr *client.NetworkError
	switch {
	case errors.As(err, &verr):
		present.Toast(toastOut(cmd), present.ToastWarning, verr.Message)
	case errors.Is(err, controller.ErrBusy):
		present.Toast(toastOut(cmd), present.ToastWarning, "A lesson plan is already being generated")
	case errors.Is(err, tui.ErrInterrupted):
		present.Toast(toastOut(cmd), present.ToastWarning, "Generation cancelled")
	case errors.As(err, &nerr):
		present.Toast(toastOut(cmd), present.ToastError, "Failed to generate lesson plan: backend unreachable")
	case errors.As(err, &herr):
		present.Toastf(toastOut(cmd), present.ToastError, "Failed to generate lesson plan: %s", herr.Message)
	default:
		present.Toast(toastOut(cmd), present.ToastError, "Failed to generate lesson plan")
	}
}

func copyToClipboard(cmd *cobra.Command, s *controller.Session) {
	clip := controller.SystemClipboard{}
	if !clip.Available() {
		present.Toast(toastOut(cmd), present.ToastWarning, "Please copy the selected text manually")
		return
	}
	if err := s.Copy(clip); err != nil {
		if errors.Is(err, controller.ErrNoContent) {
			present.Toast(toastOut(cmd), present.ToastWarning, "No content to copy")
			return
		}
		present.Toast(toastOut(cmd), present.ToastWarning, "Please copy the selected text manually")
		return
	}
	present.Toast(toastOut(cmd), present.ToastSuccess, "Lesson plan copied to clipboard!")
}
