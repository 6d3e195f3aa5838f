package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mithrel/lessonplan/internal/markdown"
	"github.com/mithrel/lessonplan/internal/present"
	"github.com/mithrel/lessonplan/internal/present/format"
	"github.com/mithrel/lessonplan/pkg/api"
)

func newRenderCmd() *cobra.Command {
	var mode string
	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Render lesson markdown (file or stdin) to HTML",
		Args:  cobra.MaximumNArgs(1),
		Annotations: map[string]string{
			noApp: "true",
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			var src io.Reader = cmd.InOrStdin()
			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				src = f
			}
			b, err := io.ReadAll(src)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			switch mode {
			case "html":
				_, err = io.WriteString(out, markdown.Render(string(b)))
			case "plain":
				_, err = io.WriteString(out, markdown.PlainText(string(b))+"\n")
			case "pretty":
				width := 0
				if f, ok := out.(*os.File); ok {
					width = present.TermWidth(f, 80)
				}
				err = format.WritePrettyLesson(out, api.Lesson{Response: string(b)}, false, width)
			default:
				return fmt.Errorf("unknown render mode %q (html|plain|pretty)", mode)
			}
			return err
		},
	}
	cmd.Flags().StringVarP(&mode, "output", "o", "html", "html|plain|pretty")
	return cmd
}
