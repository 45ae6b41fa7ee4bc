package runner

import (
	"context"
	"errors"
	"sync/atomic"
	"syscall"
	"testing"
	"time"

	"github.com/a-peyrard/haywire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockRunnable counts its runs and blocks for delay unless its context is cancelled.
type mockRunnable struct {
	counter *int32
	value   int32
	err     error
	delay   time.Duration
}

func (m *mockRunnable) Run(ctx context.Context) error {
	if m.counter != nil {
		atomic.AddInt32(m.counter, m.value)
	}

	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return m.err
}

func TestRunAll(t *testing.T) {
	t.Run("it should run all runnables successfully", func(t *testing.T) {
		// GIVEN
		var counter int32
		runnable1 := &mockRunnable{counter: &counter, value: 1}
		runnable2 := &mockRunnable{counter: &counter, value: 2}
		runnable3 := RunnableFunc(func(ctx context.Context) error {
			atomic.AddInt32(&counter, 3)
			return nil
		})

		// WHEN
		err := RunAll(context.Background(), runnable1, runnable2, runnable3)

		// THEN
		assert.NoError(t, err)
		assert.Equal(t, int32(6), atomic.LoadInt32(&counter))
	})

	t.Run("it should cancel the others when one runnable fails", func(t *testing.T) {
		// GIVEN
		boom := errors.New("something went wrong")
		runnable1 := &mockRunnable{delay: time.Minute}
		runnable2 := &mockRunnable{err: boom}

		// WHEN
		err := RunAll(context.Background(), runnable1, runnable2)

		// THEN
		assert.ErrorIs(t, err, boom)
	})

	t.Run("it should handle empty runnable list", func(t *testing.T) {
		// WHEN
		err := RunAll(context.Background())

		// THEN
		assert.NoError(t, err)
	})

	t.Run("it should respect context cancellation", func(t *testing.T) {
		// GIVEN
		ctx, cancel := context.WithCancel(context.Background())
		var started int32
		runnable1 := &mockRunnable{counter: &started, value: 1, delay: time.Minute}
		runnable2 := &mockRunnable{counter: &started, value: 1, delay: time.Minute}

		// WHEN
		go func() {
			assert.Eventually(t, func() bool { return atomic.LoadInt32(&started) == 2 }, time.Second, time.Millisecond)
			cancel()
		}()
		err := RunAll(ctx, runnable1, runnable2)

		// THEN
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, int32(2), atomic.LoadInt32(&started))
	})
}

func TestRun(t *testing.T) {
	runnableID := haywire.Identifier[Runnable]()

	t.Run("it should run every runnable bound in the container", func(t *testing.T) {
		// GIVEN
		var counter int32
		c, err := haywire.MustModule(
			haywire.Bind(runnableID.Named("http")).WithInstance(&mockRunnable{counter: &counter, value: 1}),
			haywire.Bind(runnableID.Named("worker")).WithAsyncGenerator(func(ctx context.Context) (Runnable, error) {
				return &mockRunnable{counter: &counter, value: 10}, nil
			}),
		).ToContainer()
		require.NoError(t, err)

		// WHEN
		err = Run(context.Background(), c, runnableID)

		// THEN
		require.NoError(t, err)
		assert.Equal(t, int32(11), atomic.LoadInt32(&counter))
	})

	t.Run("it should not run anything when a runnable cannot be resolved", func(t *testing.T) {
		// GIVEN
		var counter int32
		boom := errors.New("boom")
		c, err := haywire.MustModule(
			haywire.Bind(runnableID.Named("http")).WithInstance(&mockRunnable{counter: &counter, value: 1}),
			haywire.Bind(runnableID.Named("worker")).WithGenerator(func() (Runnable, error) {
				return nil, boom
			}),
		).ToContainer()
		require.NoError(t, err)

		// WHEN
		err = Run(context.Background(), c, runnableID)

		// THEN
		assert.ErrorIs(t, err, boom)
		assert.Contains(t, err.Error(), "failed to resolve runnables")
		assert.Equal(t, int32(0), atomic.LoadInt32(&counter))
	})
}

func TestWithSignalContext(t *testing.T) {
	t.Run("it should cancel the context on SIGTERM", func(t *testing.T) {
		// GIVEN
		ctx, stop := WithSignalContext(context.Background())
		defer stop()

		// WHEN
		require.NoError(t, syscall.Kill(syscall.Getpid(), syscall.SIGTERM))

		// THEN
		select {
		case <-ctx.Done():
		case <-time.After(time.Second):
			t.Fatal("context not cancelled")
		}
	})
}
