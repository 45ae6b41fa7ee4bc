// Package option contains utility to use the variadic options pattern
package option

// Option represents a function that modifies options of type T.
type Option[T any] func(opts *T)

// Build applies a series of options to the default options struct and returns the modified result.
func Build[T any](defaultOpts *T, opts ...Option[T]) *T {
	for _, opt := range opts {
		if opt != nil {
			opt(defaultOpts)
		}
	}
	return defaultOpts
}

// When returns opt if cond holds, a no-op option otherwise.
func When[T any](cond bool, opt Option[T]) Option[T] {
	if cond {
		return opt
	}
	return nil
}
