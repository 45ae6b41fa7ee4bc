package haywire

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

var (
	ErrInvalidBinding     = errors.New("invalid binding definition")
	ErrDuplicateBinding   = errors.New("duplicate binding")
	ErrGraphCycle         = errors.New("dependency graph cycle")
	ErrMissingBinding     = errors.New("missing binding")
	ErrAsyncResolution    = errors.New("asynchronous resolution required")
	ErrSyncSupplier       = errors.New("synchronous supplier of asynchronous binding")
	ErrStrategyInvocation = errors.New("strategy invocation failed")
	ErrContainerClosed    = errors.New("container is closed")
	errTypeMismatch       = errors.New("type mismatch")
)

type (
	InvalidBindingDefinitionError struct {
		Key    Key
		Reason string
	}

	DuplicateBindingError struct {
		Keys []Key
	}

	GraphCycleError struct {
		Cycles [][]Key
	}

	MissingDependency struct {
		Dependency Key
		// RequiredBy is zero when the missing key was requested directly.
		RequiredBy Key
	}

	MissingBindingError struct {
		Missing []MissingDependency
	}

	AsyncResolutionError struct {
		Key Key
	}

	SyncSupplierError struct {
		Suppliers []MissingDependency
	}

	StrategyInvocationError struct {
		Key Key
		Err error
	}

	typeMismatchError struct {
		expected reflect.Type
		actual   reflect.Type
	}
)

func invalidBinding(k Key, format string, args ...any) *InvalidBindingDefinitionError {
	return &InvalidBindingDefinitionError{Key: k, Reason: fmt.Sprintf(format, args...)}
}

func (e *InvalidBindingDefinitionError) Error() string {
	return fmt.Sprintf("invalid binding for %s: %s", e.Key, e.Reason)
}

func (e *InvalidBindingDefinitionError) Is(target error) bool {
	return target == ErrInvalidBinding
}

func (e *DuplicateBindingError) Error() string {
	return fmt.Sprintf("duplicate bindings for: %s", joinKeys(e.Keys, ", "))
}

func (e *DuplicateBindingError) Is(target error) bool {
	return target == ErrDuplicateBinding
}

func (e *GraphCycleError) Error() string {
	var b strings.Builder
	b.WriteString("cycles found:")
	for _, cycle := range e.Cycles {
		b.WriteString("\n\t")
		b.WriteString(joinKeys(cycle, " -> "))
	}
	return b.String()
}

func (e *GraphCycleError) Is(target error) bool {
	return target == ErrGraphCycle
}

func (e *MissingBindingError) Error() string {
	var b strings.Builder
	b.WriteString("missing bindings:")
	for _, m := range e.Missing {
		b.WriteString("\n\t- ")
		b.WriteString(m.Dependency.String())
		if !m.RequiredBy.IsZero() {
			b.WriteString(" (required by ")
			b.WriteString(m.RequiredBy.String())
			b.WriteString(")")
		}
	}
	return b.String()
}

func (e *MissingBindingError) Is(target error) bool {
	return target == ErrMissingBinding
}

func (e *AsyncResolutionError) Error() string {
	return fmt.Sprintf("%s depends on asynchronous bindings, it must be resolved asynchronously", e.Key)
}

func (e *AsyncResolutionError) Is(target error) bool {
	return target == ErrAsyncResolution
}

func (e *SyncSupplierError) Error() string {
	var b strings.Builder
	b.WriteString("synchronous suppliers of asynchronous bindings:")
	for _, m := range e.Suppliers {
		b.WriteString("\n\t- ")
		b.WriteString(m.Dependency.String())
		b.WriteString(" (required by ")
		b.WriteString(m.RequiredBy.String())
		b.WriteString(")")
	}
	return b.String()
}

func (e *SyncSupplierError) Is(target error) bool {
	return target == ErrSyncSupplier
}

func (e *StrategyInvocationError) Error() string {
	return fmt.Sprintf("failed to invoke strategy of %s:\n\t%v", e.Key, e.Err)
}

func (e *StrategyInvocationError) Unwrap() error {
	return e.Err
}

func (e *StrategyInvocationError) Is(target error) bool {
	return target == ErrStrategyInvocation
}

func (e *typeMismatchError) Error() string {
	return fmt.Sprintf("expected value of type %s, got %s", e.expected, e.actual)
}

func (e *typeMismatchError) Is(target error) bool {
	return target == errTypeMismatch
}

func joinKeys(keys []Key, sep string) string {
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k.String()
	}
	return strings.Join(parts, sep)
}
