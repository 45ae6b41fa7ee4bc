package haywire

import "fmt"

// Scope governs how long the value produced by a binding is reused.
type Scope uint8

const (
	// Unscoped bindings are invoked for every dependency edge, two dependents never share a value.
	Unscoped Scope = iota
	// SingletonScope bindings are computed at most once per container, failures included.
	SingletonScope
	// OptimisticSingletonScope bindings are cached only on success, a failure is retried on next
	// resolution. They are the ones instantiated by Container.Preload.
	OptimisticSingletonScope
	// RequestScope bindings are computed once per container request and shared by every dependent
	// of that request. Suppliers start a request of their own unless they propagate the scope.
	RequestScope
	// SupplierScope bindings behave like RequestScope, except that propagating suppliers do not
	// share them with the request invoking the supplier.
	SupplierScope
)

func (s Scope) String() string {
	switch s {
	case Unscoped:
		return "unscoped"
	case SingletonScope:
		return "singleton"
	case OptimisticSingletonScope:
		return "optimistic-singleton"
	case RequestScope:
		return "request"
	case SupplierScope:
		return "supplier"
	default:
		return fmt.Sprintf("scope(%d)", uint8(s))
	}
}

// ParseScope is the inverse of Scope.String, it also accepts the short form "optimistic" and
// "transient" for unscoped.
func ParseScope(s string) (Scope, error) {
	switch s {
	case "", "unscoped", "transient":
		return Unscoped, nil
	case "singleton":
		return SingletonScope, nil
	case "optimistic", "optimistic-singleton":
		return OptimisticSingletonScope, nil
	case "request":
		return RequestScope, nil
	case "supplier":
		return SupplierScope, nil
	default:
		return Unscoped, fmt.Errorf("unknown scope %q", s)
	}
}

// isCached reports whether the values of the scope live in the container store.
func (s Scope) isCached() bool {
	return s == SingletonScope || s == OptimisticSingletonScope
}
