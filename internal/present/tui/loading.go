package tui

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// LoadingSteps are shown one at a time while a lesson is generated.
var LoadingSteps = []string{
	"Searching district documents",
	"Analyzing lesson requirements",
	"Drafting the lesson plan",
	"Formatting the results",
}

const stepInterval = 2 * time.Second

// LeaveWarning is shown on the first interrupt while a request is outstanding.
const LeaveWarning = "A lesson plan is being generated. Are you sure you want to leave?"

// ErrInterrupted is returned when the user confirmed leaving.
var ErrInterrupted = errors.New("interrupted")

var (
	activeStep   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	inactiveStep = lipgloss.NewStyle().Faint(true)
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
)

type stepMsg struct{}

type doneMsg struct{}

type loadingModel struct {
	spinner     spinner.Model
	title       string
	step        int
	warned      bool
	interrupted bool
	done        bool
	cancel      context.CancelFunc
}

func newLoadingModel(title string, cancel context.CancelFunc) loadingModel {
	sp := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("63"))),
	)
	return loadingModel{spinner: sp, title: title, cancel: cancel}
}

func stepTick() tea.Cmd {
	return tea.Tick(stepInterval, func(time.Time) tea.Msg { return stepMsg{} })
}

func (m loadingModel) Init() tea.Cmd { return tea.Batch(m.spinner.Tick, stepTick()) }

func (m loadingModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case stepMsg:
		if m.done {
			return m, nil
		}
		m.step = (m.step + 1) % len(LoadingSteps)
		return m, stepTick()
	case doneMsg:
		m.done = true
		return m, tea.Quit
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			if !m.warned {
				m.warned = true
				return m, nil
			}
			m.interrupted = true
			if m.cancel != nil {
				m.cancel()
			}
			return m, tea.Quit
		default:
			m.warned = false
			return m, nil
		}
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m loadingModel) View() string {
	if m.done || m.interrupted {
		return ""
	}
	var b strings.Builder
	b.WriteString(m.spinner.View() + " " + m.title + "\n")
	for i, s := range LoadingSteps {
		if i == m.step {
			b.WriteString("  " + activeStep.Render("● "+s) + "\n")
		} else {
			b.WriteString("  " + inactiveStep.Render("○ "+s) + "\n")
		}
	}
	if m.warned {
		b.WriteString("\n" + warnStyle.Render(LeaveWarning) + "\n")
		b.WriteString(inactiveStep.Render("ctrl+c again to leave • any other key to stay") + "\n")
	}
	return b.String()
}

// RunLoading shows the loading indicator on out until work returns. The
// first interrupt only warns; a second one cancels work and returns
// ErrInterrupted.
func RunLoading(ctx context.Context, out io.Writer, title string, work func(context.Context) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(newLoadingModel(title, cancel), tea.WithOutput(out))
	result := make(chan error, 1)
	go func() {
		err := work(ctx)
		result <- err
		p.Send(doneMsg{})
	}()

	final, err := p.Run()
	if err != nil {
		cancel()
		<-result
		return err
	}
	if fm, ok := final.(loadingModel); ok && fm.interrupted {
		<-result
		return ErrInterrupted
	}
	return <-result
}
