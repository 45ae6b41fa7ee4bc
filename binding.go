package haywire

import (
	"context"
	"fmt"
	"reflect"
)

type (
	// Binding is the recipe producing the value of one identifier: its dependencies, its strategy
	// and its scope. Bindings are immutable values.
	Binding struct {
		output   Key
		deps     []Key
		scope    Scope
		strategy *strategy
		err      error
	}

	// BindingBuilder starts the definition of a binding for an identifier.
	BindingBuilder[T any] struct {
		id    ID[T]
		scope Scope
		err   error
	}

	// DependentBindingBuilder is a BindingBuilder with a declared list of dependencies.
	DependentBindingBuilder[T any] struct {
		id    ID[T]
		deps  []Key
		scope Scope
		err   error
	}
)

// Bind starts a binding for id.
func Bind[T any](id ID[T]) BindingBuilder[T] {
	b := BindingBuilder[T]{id: id}
	if id.key.IsZero() {
		b.err = invalidBinding(id.key, "identifier is not initialized")
	} else if !id.key.IsPlain() {
		b.err = invalidBinding(id.key, "only plain identifiers can be bound")
	}
	return b
}

func (b BindingBuilder[T]) Scoped(scope Scope) BindingBuilder[T] {
	b.scope = scope
	return b
}

// WithInstance binds a constant value, the scope of the builder is ignored.
//
// It returns no error: an invalid identifier is carried by the binding and reported when the
// binding is added to a module by CreateModule, NewModule or Module.AddBinding.
func (b BindingBuilder[T]) WithInstance(v T) Binding {
	if b.err != nil {
		return Binding{output: b.id.key, err: b.err}
	}
	return Binding{
		output: b.id.key,
		scope:  OptimisticSingletonScope,
		strategy: &strategy{
			kind:     InstanceStrategy,
			instance: reflect.ValueOf(&v).Elem(),
		},
	}
}

// WithGenerator binds fn, called without dependencies. As for WithInstance, a nil fn or an invalid
// identifier is reported when the binding is added to a module.
func (b BindingBuilder[T]) WithGenerator(fn func() (T, error)) Binding {
	return b.funcBinding(GeneratorStrategy, fn)
}

// WithAsyncGenerator is the asynchronous flavour of WithGenerator, its errors are deferred the same
// way.
func (b BindingBuilder[T]) WithAsyncGenerator(fn func(ctx context.Context) (T, error)) Binding {
	return b.funcBinding(AsyncGeneratorStrategy, fn)
}

func (b BindingBuilder[T]) funcBinding(kind StrategyKind, fn any) Binding {
	if b.err != nil {
		return Binding{output: b.id.key, err: b.err}
	}
	var fnValue reflect.Value
	if !reflect.ValueOf(fn).IsNil() {
		fnValue = reflect.ValueOf(fn)
	}
	s, err := newFuncStrategy(kind, b.id.key, nil, fnValue)
	if err != nil {
		return Binding{output: b.id.key, err: err}
	}
	return Binding{output: b.id.key, scope: b.scope, strategy: s}
}

// WithConstructor binds the constructor of the identifier, called without dependencies.
func (b BindingBuilder[T]) WithConstructor() (Binding, error) {
	return b.WithDependencies().WithConstructorProvider()
}

func (b BindingBuilder[T]) WithDependencies(deps ...Dependency) DependentBindingBuilder[T] {
	db := DependentBindingBuilder[T]{
		id:    b.id,
		deps:  make([]Key, len(deps)),
		scope: b.scope,
		err:   b.err,
	}
	for i, dep := range deps {
		if dep == nil || dep.Key().IsZero() {
			if db.err == nil {
				db.err = invalidBinding(b.id.key, "dependency %d is not initialized", i)
			}
			continue
		}
		db.deps[i] = dep.Key()
	}
	return db
}

func (b DependentBindingBuilder[T]) Scoped(scope Scope) DependentBindingBuilder[T] {
	b.scope = scope
	return b
}

// WithProvider binds fn, called with the resolved dependencies in declaration order.
//
// fn must return T, or (T, error).
func (b DependentBindingBuilder[T]) WithProvider(fn any) (Binding, error) {
	return b.funcBinding(ProviderStrategy, reflect.ValueOf(fn))
}

// WithAsyncProvider binds fn, called with a context followed by the resolved dependencies.
func (b DependentBindingBuilder[T]) WithAsyncProvider(fn any) (Binding, error) {
	return b.funcBinding(AsyncProviderStrategy, reflect.ValueOf(fn))
}

// WithConstructorProvider binds the constructor attached to the identifier, or, for struct
// contracts, a new struct whose exported fields are assigned from the dependencies in order.
func (b DependentBindingBuilder[T]) WithConstructorProvider() (Binding, error) {
	if b.err != nil {
		return Binding{}, b.err
	}
	if b.id.constructor.IsValid() {
		return b.funcBinding(ConstructorStrategy, b.id.constructor)
	}
	s, err := newFieldInjectionStrategy(b.id.key, b.deps)
	if err != nil {
		return Binding{}, err
	}
	return Binding{output: b.id.key, deps: b.deps, scope: b.scope, strategy: s}, nil
}

func (b DependentBindingBuilder[T]) funcBinding(kind StrategyKind, fn reflect.Value) (Binding, error) {
	if b.err != nil {
		return Binding{}, b.err
	}
	s, err := newFuncStrategy(kind, b.id.key, b.deps, fn)
	if err != nil {
		return Binding{}, err
	}
	return Binding{output: b.id.key, deps: b.deps, scope: b.scope, strategy: s}, nil
}

func (b Binding) Output() Key {
	return b.output
}

func (b Binding) Dependencies() []Key {
	deps := make([]Key, len(b.deps))
	copy(deps, b.deps)
	return deps
}

func (b Binding) Scope() Scope {
	return b.scope
}

func (b Binding) Kind() StrategyKind {
	if b.strategy == nil {
		return InstanceStrategy
	}
	return b.strategy.kind
}

func (b Binding) IsAsync() bool {
	return b.strategy != nil && b.strategy.kind.IsAsync()
}

// Scoped returns a copy of the binding with a new scope, instance bindings keep theirs.
func (b Binding) Scoped(scope Scope) Binding {
	if b.strategy != nil && b.strategy.kind != InstanceStrategy {
		b.scope = scope
	}
	return b
}

// Equal reports whether both bindings are structurally identical: same output, dependencies,
// scope and strategy. Function strategies are equal only when they come from the same builder
// call, instances are equal when their values are.
func (b Binding) Equal(other Binding) bool {
	if b.output != other.output || b.scope != other.scope || !keysEqual(b.deps, other.deps) {
		return false
	}
	if b.strategy == other.strategy {
		return true
	}
	if b.strategy == nil || other.strategy == nil {
		return false
	}
	if b.strategy.kind != InstanceStrategy || other.strategy.kind != InstanceStrategy {
		return false
	}
	v1, v2 := b.strategy.instance, other.strategy.instance
	return v1.Type() == v2.Type() && v1.Comparable() && v2.Comparable() && v1.Equal(v2)
}

func (b Binding) String() string {
	return fmt.Sprintf("%s <- [%s] (%s, %s)", b.output, joinKeys(b.deps, ", "), b.Kind(), b.scope)
}

func (b Binding) validate() error {
	if b.err != nil {
		return b.err
	}
	if b.strategy == nil {
		return invalidBinding(b.output, "binding has no strategy")
	}
	return nil
}

// Must panics if err is not nil, it is meant for static wiring.
func Must[T any](v T, err error) T {
	if err != nil {
		panic(fmt.Sprintf("haywire: %v", err))
	}
	return v
}

func keysEqual(k1, k2 []Key) bool {
	if len(k1) != len(k2) {
		return false
	}
	for i := range k1 {
		if k1[i] != k2[i] {
			return false
		}
	}
	return true
}
