package haywire

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/a-peyrard/haywire/concurrent"
)

type (
	Logger struct {
		lines *concurrent.Slice[string]
	}

	Clock struct {
		now time.Time
	}

	Service struct {
		Logger *Logger
		Clock  *Clock
	}

	Greeter interface {
		Greet(name string) string
	}

	englishGreeter struct{}

	frenchGreeter struct{}

	Alpha struct {
		beta *Beta
		next Supplier[*Beta]
	}

	Beta struct {
		alpha *Alpha
	}

	resource struct {
		name   string
		closed *concurrent.Slice[string]
		err    error
	}

	// counter counts strategy invocations, it is safe for concurrent use.
	counter struct {
		calls atomic.Int32
	}
)

var errBoom = errors.New("boom")

func NewLogger() *Logger {
	return &Logger{lines: concurrent.NewSlice[string]()}
}

func (l *Logger) Log(line string) {
	l.lines.Append(line)
}

func (englishGreeter) Greet(name string) string {
	return "hello " + name
}

func (frenchGreeter) Greet(name string) string {
	return "bonjour " + name
}

func (r *resource) Close() error {
	r.closed.Append(r.name)
	return r.err
}

func (c *counter) count() int {
	return int(c.calls.Load())
}

// clockProvider returns a provider of new clocks counting its invocations.
func (c *counter) clockProvider() func() *Clock {
	return func() *Clock {
		c.calls.Add(1)
		return &Clock{now: time.Now()}
	}
}

// failingTimes returns a generator failing the first n invocations.
func (c *counter) failingTimes(n int) func() (*Clock, error) {
	return func() (*Clock, error) {
		if int(c.calls.Add(1)) <= n {
			return nil, errBoom
		}
		return &Clock{now: time.Now()}, nil
	}
}

// asyncFailingTimes is the asynchronous flavour of failingTimes.
func (c *counter) asyncFailingTimes(n int) func(ctx context.Context) (*Clock, error) {
	failing := c.failingTimes(n)
	return func(ctx context.Context) (*Clock, error) {
		return failing()
	}
}

func (c *counter) asyncClock() func(ctx context.Context) (*Clock, error) {
	return func(ctx context.Context) (*Clock, error) {
		c.calls.Add(1)
		return &Clock{now: time.Now()}, nil
	}
}
