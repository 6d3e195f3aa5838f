package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/mithrel/lessonplan/internal/present/tui"
)

// runGuarded runs work while translating interrupts: the first one while
// generating() is true only prints the leave warning, the next cancels.
func runGuarded(ctx context.Context, errOut io.Writer, generating func() bool, work func(context.Context) error) error {
	sigs := make(chan os.Signal, 2)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigs)
	return guard(ctx, sigs, errOut, generating, work)
}

func guard(ctx context.Context, sigs <-chan os.Signal, errOut io.Writer, generating func() bool, work func(context.Context) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- work(ctx) }()

	warned := false
	for {
		select {
		case err := <-done:
			return err
		case <-sigs:
			if generating() && !warned {
				warned = true
				fmt.Fprintln(errOut, tui.LeaveWarning)
				fmt.Fprintln(errOut, "Interrupt again to leave.")
				continue
			}
			cancel()
			<-done
			return tui.ErrInterrupted
		}
	}
}
