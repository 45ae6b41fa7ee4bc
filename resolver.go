package haywire

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"github.com/a-peyrard/haywire/set"
	"github.com/a-peyrard/haywire/slices"
	"golang.org/x/sync/errgroup"
)

// resolution is one request against the container, every dependency edge of the plan is
// evaluated on its own so that unscoped bindings are invoked once per dependent.
type resolution struct {
	c     *Container
	plan  *plan
	async bool

	// nodes that may be instantiated during this request, in plan order
	order []Key
	// scoped nodes already present in the store, their dependencies are not part of the request
	cached set.Set[Key]

	// request scoped values, shared with the suppliers propagating the scope of this request
	request *store
	// supplier scoped values, never shared with suppliers
	supplier *store
}

func (c *Container) resolve(ctx context.Context, k Key, async bool) (reflect.Value, error) {
	return c.resolveWithin(ctx, k, async, nil)
}

// resolveWithin resolves k in a new request, sharing the request scope of a parent request when
// request is set.
func (c *Container) resolveWithin(ctx context.Context, k Key, async bool, request *store) (reflect.Value, error) {
	v, err := c.resolveKey(ctx, k, async, request)
	if err != nil {
		return reflect.Value{}, fmt.Errorf("failed to resolve %s:\n\t%w", k, err)
	}
	return v, nil
}

func (c *Container) resolveKey(ctx context.Context, k Key, async bool, request *store) (reflect.Value, error) {
	if c.closed.Load() {
		return reflect.Value{}, ErrContainerClosed
	}
	p, err := c.planFor(k)
	if err != nil {
		return reflect.Value{}, err
	}
	r := c.newResolution(p, async, request)
	if p.async && !async && !r.servedSynchronously() {
		return reflect.Value{}, &AsyncResolutionError{Key: k}
	}
	return r.resolve(ctx, p.target)
}

func (c *Container) newResolution(p *plan, async bool, request *store) *resolution {
	var (
		needed = set.NewWithValues(p.target)
		cached = set.New[Key]()
	)
	for i := len(p.order) - 1; i >= 0; i-- {
		k := p.order[i]
		if needed.DoesNotContain(k) {
			continue
		}
		if c.isScoped(k) && c.store.has(k) {
			cached.Add(k)
			continue
		}
		for _, dep := range p.edges[k] {
			needed.Add(dep)
		}
	}
	if request == nil {
		request = newStore()
	}
	return &resolution{
		c:        c,
		plan:     p,
		async:    async,
		order:    slices.Filter(p.order, needed.Contains),
		cached:   cached,
		request:  request,
		supplier: newStore(),
	}
}

// servedSynchronously reports whether every asynchronous binding of the request is already
// realized, which happens once optimistic singletons are preloaded.
func (r *resolution) servedSynchronously() bool {
	for _, k := range r.order {
		b, found := r.c.module.bindings[k]
		if !found || !b.IsAsync() {
			continue
		}
		if r.cached.DoesNotContain(k) {
			return false
		}
		if fut, found := r.c.store.lookup(k); !found || !fut.succeeded() {
			return false
		}
	}
	return true
}

func (c *Container) isScoped(k Key) bool {
	b, found := c.module.bindings[k]
	return found && b.scope.isCached() && b.Kind() != InstanceStrategy
}

// resolve evaluates one dependency edge ending at k.
func (r *resolution) resolve(ctx context.Context, k Key) (reflect.Value, error) {
	switch {
	case k.IsDeferred():
		var request *store
		if k.Propagates() {
			request = r.request
		}
		return r.c.makeSupplier(k, request), nil
	case k.IsOptional():
		edges := r.plan.edges[k]
		if len(edges) == 0 {
			return buildOptional(k.valueType, reflect.Value{}, false), nil
		}
		v, err := r.resolve(ctx, edges[0])
		if err != nil {
			return reflect.Value{}, err
		}
		return buildOptional(k.valueType, v, true), nil
	case k.IsCollection():
		members, err := r.resolveAll(ctx, r.plan.edges[k])
		if err != nil {
			return reflect.Value{}, err
		}
		res := reflect.MakeSlice(k.valueType, 0, len(members))
		for _, member := range members {
			res = reflect.Append(res, assignTo(member, k.contract))
		}
		return res, nil
	}

	b := r.c.module.bindings[k]
	if r.c.isScoped(k) {
		return r.instantiateScoped(ctx, b)
	}
	if memo := r.memoOf(b); memo != nil {
		return r.memoized(ctx, memo, b)
	}
	return r.instantiate(ctx, b)
}

// resolveAll resolves keys in order, concurrently for asynchronous requests.
func (r *resolution) resolveAll(ctx context.Context, keys []Key) ([]reflect.Value, error) {
	values := make([]reflect.Value, len(keys))
	if !r.async || len(keys) < 2 {
		for i, k := range keys {
			v, err := r.resolve(ctx, k)
			if err != nil {
				return nil, err
			}
			values[i] = v
		}
		return values, nil
	}

	group, groupCtx := errgroup.WithContext(ctx)
	for i, k := range keys {
		group.Go(func() error {
			v, err := r.resolve(groupCtx, k)
			values[i] = v
			return err
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return values, nil
}

func (r *resolution) instantiate(ctx context.Context, b Binding) (reflect.Value, error) {
	args, err := r.resolveAll(ctx, b.deps)
	if err != nil {
		return reflect.Value{}, err
	}
	return r.c.invoke(ctx, b, args)
}

func (r *resolution) memoOf(b Binding) *store {
	if b.Kind() == InstanceStrategy {
		return nil
	}
	switch b.scope {
	case RequestScope:
		return r.request
	case SupplierScope:
		return r.supplier
	default:
		return nil
	}
}

// memoized instantiates b once per memo. A failure is not kept, a later supplier call sharing the
// memo tries again.
func (r *resolution) memoized(ctx context.Context, memo *store, b Binding) (reflect.Value, error) {
	fut, owner := memo.acquire(b.output)
	if !owner {
		r.c.observer.OnCacheHit(b.output)
		return fut.wait(ctx)
	}
	v, err := r.instantiate(ctx, b)
	memo.settle(b.output, fut, v, err, true)
	return v, err
}

// instantiateScoped instantiates b unless another resolver already did or is doing it, the
// dependencies of b are only resolved by the owner of the store entry.
//
// Asynchronous resolvers run the instantiation detached from their own goroutine, so that a caller
// abandoning its resolution stops waiting without interrupting the shared instantiation.
func (r *resolution) instantiateScoped(ctx context.Context, b Binding) (reflect.Value, error) {
	c := r.c
	fut, owner := c.store.acquire(b.output)
	if !owner {
		c.observer.OnCacheHit(b.output)
		return fut.wait(ctx)
	}

	run := func() {
		detached := context.WithoutCancel(ctx)
		args, err := r.resolveAll(detached, b.deps)
		if err != nil {
			c.store.settle(b.output, fut, reflect.Value{}, err, true)
			return
		}
		v, err := c.invoke(detached, b, args)
		evict := b.scope == OptimisticSingletonScope
		if err != nil && evict {
			c.logger.Warn().
				Err(err).
				Stringer("key", b.output).
				Msg("optimistic singleton failed, it will be retried on next resolution")
		}
		c.store.settle(b.output, fut, v, err, evict)
	}
	if !r.async {
		run()
		return fut.value, fut.err
	}
	go run()
	return fut.wait(ctx)
}

func (c *Container) invoke(ctx context.Context, b Binding, args []reflect.Value) (reflect.Value, error) {
	if b.strategy.kind == InstanceStrategy {
		return b.strategy.instance, nil
	}

	start := time.Now()
	ctx = c.observer.BeforeInvoke(ctx, b.output)
	v, err := b.strategy.invoke(ctx, b.output.valueType, args)
	if err != nil {
		err = &StrategyInvocationError{Key: b.output, Err: err}
	}
	c.observer.AfterInvoke(ctx, InvokeEvent{
		Key:      b.output,
		Kind:     b.strategy.kind,
		Scope:    b.scope,
		Duration: time.Since(start),
		Err:      err,
	})

	return v, err
}
