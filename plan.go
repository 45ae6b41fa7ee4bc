package haywire

import (
	"github.com/a-peyrard/haywire/fn"
	"github.com/a-peyrard/haywire/heap"
	"github.com/a-peyrard/haywire/set"
)

// plan is the resolution order of the subgraph reachable from a key, dependencies first.
type plan struct {
	target Key
	order  []Key
	edges  map[Key][]Key
	async  bool
}

var compareKeys = fn.CompareBy(Key.String)

func (c *Container) planFor(k Key) (*plan, error) {
	if raw, found := c.plans.Load(k); found {
		return raw.(*plan), nil
	}
	p, err := c.buildPlan(k)
	if err != nil {
		return nil, err
	}
	raw, _ := c.plans.LoadOrStore(k, p)
	return raw.(*plan), nil
}

func (c *Container) buildPlan(target Key) (*plan, error) {
	c.graphMu.Lock()
	defer c.graphMu.Unlock()

	var (
		edges   = make(map[Key][]Key)
		missing []MissingDependency
		visit   func(k, requiredBy Key)
	)
	visit = func(k, requiredBy Key) {
		if _, found := edges[k]; found {
			return
		}
		if !c.graph.isResolvable(k) {
			missing = append(missing, MissingDependency{Dependency: k, RequiredBy: requiredBy})
			return
		}
		edges[k] = c.graph.edges(k)
		for _, dep := range edges[k] {
			visit(dep, k)
		}
	}
	visit(target, Key{})
	if len(missing) > 0 {
		return nil, &MissingBindingError{Missing: missing}
	}

	return &plan{
		target: target,
		order:  topologicalOrder(edges),
		edges:  edges,
		async:  c.graph.isAsync(target),
	}, nil
}

// topologicalOrder sorts the nodes so that every node comes after its dependencies, ties are
// broken by key name so that the order is deterministic.
func topologicalOrder(edges map[Key][]Key) []Key {
	var (
		pending    = make(map[Key]int, len(edges))
		dependents = make(map[Key][]Key, len(edges))
		ready      = heap.New(compareKeys)
		order      = make([]Key, 0, len(edges))
	)
	for k, deps := range edges {
		distinct := set.NewFromSlice(deps)
		pending[k] = distinct.Size()
		for dep := range distinct {
			dependents[dep] = append(dependents[dep], k)
		}
		if distinct.IsEmpty() {
			ready.Push(k)
		}
	}
	for ready.IsNotEmpty() {
		k := ready.Pop()
		order = append(order, k)
		for _, dependent := range dependents[k] {
			pending[dependent]--
			if pending[dependent] == 0 {
				ready.Push(dependent)
			}
		}
	}
	return order
}
