// Package runner starts long-running components resolved from a container.
package runner

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/a-peyrard/haywire"
	"golang.org/x/sync/errgroup"
)

// Runnable represents a component that can be run with a context.
type Runnable interface {
	Run(ctx context.Context) error
}

// RunnableFunc adapts a function to a Runnable.
type RunnableFunc func(ctx context.Context) error

func (f RunnableFunc) Run(ctx context.Context) error {
	return f(ctx)
}

// RunAll runs all the provided runnables concurrently and waits for all of them to finish.
//
// This method is blocking, the first error cancels the context given to the other runnables and is
// returned.
func RunAll(parentCtx context.Context, runnables ...Runnable) error {
	group, ctx := errgroup.WithContext(parentCtx)

	for _, runnable := range runnables {
		group.Go(func() error {
			return runnable.Run(ctx)
		})
	}

	return group.Wait()
}

// Run resolves every runnable bound under the contract of id and runs them with RunAll.
func Run(ctx context.Context, c *haywire.Container, id haywire.ID[Runnable]) error {
	runnables, err := haywire.GetAsync(ctx, c, haywire.AllOf(id))
	if err != nil {
		return fmt.Errorf("failed to resolve runnables:\n\t%w", err)
	}
	return RunAll(ctx, runnables...)
}

// WithSignalContext returns a context cancelled on SIGINT or SIGTERM.
func WithSignalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
