package cli

import (
	"errors"
	"os"

	"github.com/charmbracelet/huh"

	"github.com/mithrel/lessonplan/internal/controller"
	"github.com/mithrel/lessonplan/internal/present"
)

var durationChoices = []string{"30 minutes", "45 minutes", "60 minutes", "90 minutes"}

// promptInput asks for a lesson request with an interactive form.
func promptInput(in controller.Input) (controller.Input, error) {
	opts := []huh.Option[string]{huh.NewOption("Not sure yet", "")}
	opts = append(opts, huh.NewOptions(durationChoices...)...)
	opts = append(opts, huh.NewOption("Custom…", controller.CustomDuration))

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewText().
				Title("Describe the lesson you need").
				Placeholder("e.g. A rhythm lesson for second grade using body percussion").
				Value(&in.Query).
				Validate(func(s string) error {
					return controller.Validate(controller.Input{Query: s}.Request())
				}),
			huh.NewSelect[string]().
				Title("Lesson duration").
				Options(opts...).
				Value(&in.Duration),
			huh.NewConfirm().
				Title("Include external ideas and best practices?").
				Value(&in.ExternalKnowledge),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Custom duration").
				Placeholder("2 class periods").
				Value(&in.CustomDuration),
		).WithHideFunc(func() bool { return in.Duration != controller.CustomDuration }),
	)
	if err := form.Run(); err != nil {
		return in, err
	}
	return in, nil
}

// confirm asks a yes/no question; yes skips the prompt.
func confirm(title, desc string, yes bool) error {
	if yes {
		return nil
	}
	if !present.IsTerminal(os.Stdin) {
		return errors.New("confirmation required; rerun with --yes")
	}
	ok := false
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Description(desc).
				Value(&ok),
		),
	)
	if err := form.Run(); err != nil {
		return err
	}
	if !ok {
		return errors.New("aborted")
	}
	return nil
}
