package option

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type containerOptions struct {
	name      string
	observers []string
}

func withName(name string) Option[containerOptions] {
	return func(opts *containerOptions) {
		opts.name = name
	}
}

func withObserver(observer string) Option[containerOptions] {
	return func(opts *containerOptions) {
		opts.observers = append(opts.observers, observer)
	}
}

func TestBuild(t *testing.T) {
	t.Run("it should keep the defaults without options", func(t *testing.T) {
		// WHEN
		opts := Build(&containerOptions{name: "default"})

		// THEN
		assert.Equal(t, "default", opts.name)
		assert.Empty(t, opts.observers)
	})

	t.Run("it should apply options in order", func(t *testing.T) {
		// WHEN
		opts := Build(
			&containerOptions{name: "default"},
			withName("first"),
			withObserver("logging"),
			withName("second"),
			withObserver("metrics"),
		)

		// THEN
		assert.Equal(t, "second", opts.name)
		assert.Equal(t, []string{"logging", "metrics"}, opts.observers)
	})

	t.Run("it should skip nil options", func(t *testing.T) {
		// WHEN
		opts := Build(&containerOptions{}, nil, withName("named"))

		// THEN
		assert.Equal(t, "named", opts.name)
	})
}

func TestWhen(t *testing.T) {
	t.Run("it should apply the option only when the condition holds", func(t *testing.T) {
		// WHEN
		opts := Build(
			&containerOptions{},
			When(true, withObserver("metrics")),
			When(false, withObserver("tracing")),
		)

		// THEN
		assert.Equal(t, []string{"metrics"}, opts.observers)
	})
}
