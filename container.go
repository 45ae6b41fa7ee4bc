package haywire

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/a-peyrard/haywire/concurrent"
	"github.com/a-peyrard/haywire/option"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

type (
	ContainerOptions struct {
		logger    zerolog.Logger
		observers []Observer
	}

	// Container resolves the identifiers of a finalized module and owns its scope cache.
	//
	// Containers built from the same module never share cached values.
	Container struct {
		module *Module

		graph   *graph
		graphMu sync.Mutex
		plans   sync.Map

		store    *store
		observer observers
		logger   zerolog.Logger
		closed   atomic.Bool
	}
)

func WithLogger(logger zerolog.Logger) option.Option[ContainerOptions] {
	return func(opts *ContainerOptions) {
		opts.logger = logger
	}
}

func WithObserver(obs ...Observer) option.Option[ContainerOptions] {
	return func(opts *ContainerOptions) {
		opts.observers = append(opts.observers, obs...)
	}
}

func newContainer(m *Module, opts ...option.Option[ContainerOptions]) (*Container, error) {
	options := option.Build(&ContainerOptions{logger: zerolog.Nop()}, opts...)

	g := newGraph(m)
	if err := g.validate(); err != nil {
		return nil, fmt.Errorf("failed to validate module:\n\t%w", err)
	}

	c := &Container{
		module:   m,
		graph:    g,
		store:    newStore(),
		logger:   options.logger,
		observer: append(observers{loggingObserver{logger: options.logger}}, options.observers...),
	}
	c.logger.Debug().
		Int("bindings", m.Len()).
		Int("async", g.countAsync()).
		Msg("container ready")

	return c, nil
}

// Get resolves id synchronously, it fails with ErrAsyncResolution if id depends on asynchronous
// bindings.
func Get[T any](c *Container, id ID[T]) (T, error) {
	v, err := c.resolve(context.Background(), id.key, false)
	if err != nil {
		var zero T
		return zero, err
	}
	return unReflect[T](v)
}

// GetAsync resolves id, waiting for the asynchronous bindings it depends on.
//
// Cancelling ctx abandons the wait, shared singletons under construction are not interrupted.
func GetAsync[T any](ctx context.Context, c *Container, id ID[T]) (T, error) {
	v, err := c.resolve(ctx, id.key, true)
	if err != nil {
		var zero T
		return zero, err
	}
	return unReflect[T](v)
}

// MustGet panics if id cannot be resolved synchronously.
func MustGet[T any](c *Container, id ID[T]) T {
	v, err := Get(c, id)
	if err != nil {
		panic(fmt.Sprintf("haywire: %v", err))
	}
	return v
}

// Resolve is the untyped form of Get.
func (c *Container) Resolve(dep Dependency) (any, error) {
	v, err := c.resolve(context.Background(), dep.Key(), false)
	if err != nil {
		return nil, err
	}
	return v.Interface(), nil
}

// ResolveAsync is the untyped form of GetAsync.
func (c *Container) ResolveAsync(ctx context.Context, dep Dependency) (any, error) {
	v, err := c.resolve(ctx, dep.Key(), true)
	if err != nil {
		return nil, err
	}
	return v.Interface(), nil
}

// IsAsync reports whether dep must be resolved asynchronously.
func (c *Container) IsAsync(dep Dependency) (bool, error) {
	p, err := c.planFor(dep.Key())
	if err != nil {
		return false, err
	}
	return p.async, nil
}

// Check validates the module of the container again, it never alters the container.
func (c *Container) Check() error {
	if err := newGraph(c.module).validate(); err != nil {
		return fmt.Errorf("failed to validate module:\n\t%w", err)
	}
	return nil
}

// Preload instantiates every synchronous optimistic singleton.
func (c *Container) Preload() error {
	var errs []error
	for _, k := range c.preloadable() {
		p, err := c.planFor(k)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if p.async {
			continue
		}
		if _, err = c.resolve(context.Background(), k, false); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// PreloadAsync instantiates every optimistic singleton concurrently, once done the synchronous
// suppliers of asynchronous optimistic singletons can be invoked.
func (c *Container) PreloadAsync(ctx context.Context) error {
	var (
		group errgroup.Group
		errs  = concurrent.NewSlice[error]()
	)
	for _, k := range c.preloadable() {
		group.Go(func() error {
			if _, err := c.resolve(ctx, k, true); err != nil {
				errs.Append(err)
			}
			return nil
		})
	}
	_ = group.Wait()
	return errors.Join(errs.Snapshot()...)
}

func (c *Container) preloadable() []Key {
	keys := make([]Key, 0)
	for _, b := range c.module.Bindings() {
		if b.scope == OptimisticSingletonScope && b.Kind() != InstanceStrategy {
			keys = append(keys, b.output)
		}
	}
	return keys
}

// Close closes every realized scoped value implementing io.Closer, in reverse instantiation order.
// The container cannot be used afterwards.
func (c *Container) Close() error {
	c.closed.Store(true)
	return c.store.close()
}

func (c *Container) Module() *Module {
	return c.module
}

// Describe returns a human-readable dump of the bindings and of the realized scoped values.
func (c *Container) Describe() string {
	var b strings.Builder
	b.WriteString("* Bindings:\n")
	for _, binding := range c.module.Bindings() {
		b.WriteString(fmt.Sprintf("\t- %s (%s, %s)\n", binding.output, binding.Kind(), binding.scope))
		if len(binding.deps) == 0 {
			continue
		}
		b.WriteString("\t\tdependencies:\n")
		for _, d := range binding.deps {
			b.WriteString(fmt.Sprintf("\t\t\t- %s\n", d))
		}
	}
	b.WriteString("* Realized components:\n")
	for _, comp := range c.store.components() {
		b.WriteString(fmt.Sprintf("\t- %s: %v\n", comp.key, comp.value))
	}
	return b.String()
}
