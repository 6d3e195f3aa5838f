package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mithrel/lessonplan/pkg/api"
)

// Backend is the history store the browser reads from and deletes in.
type Backend interface {
	List(ctx context.Context, q api.ListQuery) ([]api.Lesson, error)
	Delete(ctx context.Context, id string) error
}

// deleteResultMsg conveys the outcome of a delete operation back to Update.
type deleteResultMsg struct {
	id  string
	err error
	dur time.Duration
}

// listResultMsg carries a reloaded history window.
type listResultMsg struct {
	lessons []api.Lesson
	err     error
	dur     time.Duration
}

func deleteCmd(ctx context.Context, b Backend, id string) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()
		err := b.Delete(ctx, id)
		return deleteResultMsg{id: id, err: err, dur: time.Since(start)}
	}
}

func listCmd(ctx context.Context, b Backend, q api.ListQuery) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()
		lessons, err := b.List(ctx, q)
		return listResultMsg{lessons: lessons, err: err, dur: time.Since(start)}
	}
}
