package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mithrel/lessonplan/internal/config"
	"github.com/mithrel/lessonplan/internal/present"
)

// outputOptions resolves --output (or the configured default) for w.
func outputOptions(cmd *cobra.Command, w io.Writer, fallback string) (present.Options, error) {
	name := fallback
	if f := cmd.Flags().Lookup("output"); f != nil && f.Changed {
		name = f.Value.String()
	} else if name == "" {
		name = getConfig(cmd).GetString("output")
	}
	mode, ok := present.ParseMode(strings.ToLower(name))
	if !ok {
		return present.Options{}, fmt.Errorf("invalid --output: %s", name)
	}
	opts := present.Options{
		Mode:    present.ForOutput(mode, w),
		Headers: true,
		Meta:    true,
	}
	if f, ok := w.(*os.File); ok {
		opts.Width = present.TermWidth(f, 100)
	}
	if nh := cmd.Flags().Lookup("noheaders"); nh != nil && nh.Value.String() == "true" {
		opts.Headers = false
	}
	if nm := cmd.Flags().Lookup("no-meta"); nm != nil && nm.Value.String() == "true" {
		opts.Meta = false
	}
	return opts, nil
}

func addOutputFlag(cmd *cobra.Command, def, usage string) {
	cmd.Flags().StringP("output", "o", def, usage)
	_ = cmd.RegisterFlagCompletionFunc("output", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return append([]string(nil), config.OutputModes...), cobra.ShellCompDirectiveNoFileComp
	})
}

// toastOut is where notifications go: stderr, so stdout stays pipeable.
func toastOut(cmd *cobra.Command) io.Writer { return cmd.ErrOrStderr() }
