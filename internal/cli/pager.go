package cli

import (
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mithrel/lessonplan/internal/present"
	"github.com/mithrel/lessonplan/pkg/api"
)

const defaultPager = "less -FRSX"

func renderLessons(cmd *cobra.Command, lessons []api.Lesson, opts present.Options) error {
	if opts.Mode == present.ModeTUI {
		return present.RenderLessons(cmd.Context(), cmd.OutOrStdout(), lessons, opts)
	}
	return withPager(cmd, func(w io.Writer) error {
		return present.RenderLessons(cmd.Context(), w, lessons, opts)
	})
}

func renderLesson(cmd *cobra.Command, l api.Lesson, opts present.Options) error {
	return withPager(cmd, func(w io.Writer) error {
		return present.RenderLesson(w, l, opts)
	})
}

// pagerCommand picks ui.pager, then $PAGER, then less. "none" or "cat"
// turn paging off.
func pagerCommand(cmd *cobra.Command) string {
	p := strings.TrimSpace(getConfig(cmd).GetString("ui.pager"))
	if p == "" {
		p = strings.TrimSpace(os.Getenv("PAGER"))
	}
	switch p {
	case "":
		return defaultPager
	case "none", "cat":
		return ""
	}
	return p
}

// withPager streams write into the pager when stdout is a terminal and
// writes directly otherwise. A pager that fails to start is skipped.
func withPager(cmd *cobra.Command, write func(io.Writer) error) error {
	out := cmd.OutOrStdout()
	tty, ok := out.(*os.File)
	pager := pagerCommand(cmd)
	if !ok || !present.IsTerminal(tty) || pager == "" {
		return write(out)
	}

	pc := exec.CommandContext(cmd.Context(), "sh", "-c", pager)
	pc.Stdout = tty
	pc.Stderr = cmd.ErrOrStderr()
	in, err := pc.StdinPipe()
	if err != nil {
		return write(out)
	}
	if err := pc.Start(); err != nil {
		return write(out)
	}
	werr := write(in)
	_ = in.Close()
	if err := pc.Wait(); err != nil && werr == nil {
		return err
	}
	return werr
}
