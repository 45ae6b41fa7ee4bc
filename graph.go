package haywire

import (
	"strings"

	"github.com/a-peyrard/haywire/fn"
	"github.com/a-peyrard/haywire/set"
	"github.com/a-peyrard/haywire/slices"
)

// graph is the dependency graph of a module, with the derived nodes (optional, collection and
// supplier keys) resolved against it.
type graph struct {
	module  *Module
	members map[Key][]Key
	async   map[Key]bool
}

func newGraph(m *Module) *graph {
	g := &graph{
		module:  m,
		members: make(map[Key][]Key),
		async:   make(map[Key]bool),
	}
	for _, k := range m.order {
		g.members[k.memberOf()] = append(g.members[k.memberOf()], k)
	}
	for contract, members := range g.members {
		g.members[contract] = slices.SortedBy(members, fn.CompareBy(Key.Name))
	}
	return g
}

func (g *graph) validate() error {
	if err := g.checkMissing(); err != nil {
		return err
	}
	if err := g.checkCycles(); err != nil {
		return err
	}
	for _, k := range g.module.order {
		g.isAsync(k)
	}
	return g.checkSyncSuppliers()
}

func (g *graph) isBound(k Key) bool {
	_, found := g.module.bindings[k]
	return found
}

// isResolvable reports whether k can be resolved without a missing binding.
func (g *graph) isResolvable(k Key) bool {
	k = k.Target()
	if k.IsOptional() || k.IsCollection() {
		return true
	}
	return g.isBound(k)
}

// edges returns the keys that must be instantiated before k, deferred keys have none.
func (g *graph) edges(k Key) []Key {
	switch {
	case k.IsDeferred():
		return nil
	case k.IsOptional():
		if base := k.Base(); g.isBound(base) {
			return []Key{base}
		}
		return nil
	case k.IsCollection():
		return g.members[k.memberOf()]
	default:
		return g.module.bindings[k].deps
	}
}

func (g *graph) checkMissing() error {
	var missing []MissingDependency
	for _, k := range g.module.order {
		for _, dep := range g.module.bindings[k].deps {
			if !g.isResolvable(dep) {
				missing = append(missing, MissingDependency{Dependency: dep, RequiredBy: k})
			}
		}
	}
	if len(missing) > 0 {
		return &MissingBindingError{Missing: missing}
	}
	return nil
}

func (g *graph) checkCycles() error {
	var (
		done   = set.New[Key]()
		seen   = set.New[string]()
		t      = newTracker()
		cycles [][]Key
		visit  func(k Key)
	)
	visit = func(k Key) {
		if done.Contains(k) {
			return
		}
		if cycle := t.push(k); cycle != nil {
			if seen.AddIfAbsent(cycleSignature(cycle)) {
				cycles = append(cycles, cycle)
			}
			return
		}
		for _, dep := range g.edges(k) {
			visit(dep)
		}
		t.pop()
		done.Add(k)
	}
	for _, k := range g.module.order {
		visit(k)
	}

	if len(cycles) > 0 {
		return &GraphCycleError{Cycles: cycles}
	}
	return nil
}

// isAsync classifies k, memoized, the graph must be acyclic.
func (g *graph) isAsync(k Key) bool {
	if res, found := g.async[k]; found {
		return res
	}
	res := false
	if b, found := g.module.bindings[k]; found && b.IsAsync() {
		res = true
	}
	for _, dep := range g.edges(k) {
		if g.isAsync(dep) {
			res = true
		}
	}
	g.async[k] = res
	return res
}

// isPreloadable reports whether k can be realized ahead of time by Container.PreloadAsync, and
// then served synchronously.
func (g *graph) isPreloadable(k Key) bool {
	b, found := g.module.bindings[k]
	return found && b.scope == OptimisticSingletonScope
}

func (g *graph) checkSyncSuppliers() error {
	var suppliers []MissingDependency
	for _, k := range g.module.order {
		for _, dep := range g.module.bindings[k].deps {
			if dep.IsDeferred() && !dep.IsAsyncDeferred() {
				target := dep.Target()
				if g.isAsync(target) && !g.isPreloadable(target) {
					suppliers = append(suppliers, MissingDependency{Dependency: dep, RequiredBy: k})
				}
			}
		}
	}
	if len(suppliers) > 0 {
		return &SyncSupplierError{Suppliers: suppliers}
	}
	return nil
}

func (g *graph) countAsync() int {
	count := 0
	for _, k := range g.module.order {
		if g.isAsync(k) {
			count++
		}
	}
	return count
}

func cycleSignature(cycle []Key) string {
	members := slices.Map(cycle[:len(cycle)-1], Key.String)
	return strings.Join(slices.SortedBy(members, fn.NaturalOrder[string]), "|")
}
