package haywire

import (
	"fmt"

	"github.com/a-peyrard/haywire/option"
)

// Module is an immutable set of bindings, at most one per identifier.
//
// Every operation returns a new module and leaves its receiver untouched.
type Module struct {
	bindings map[Key]Binding
	order    []Key
}

// CreateModule creates a module containing exactly b.
func CreateModule(b Binding) (*Module, error) {
	return NewModule(b)
}

// NewModule creates a module containing all the given bindings.
func NewModule(bindings ...Binding) (*Module, error) {
	m := &Module{bindings: make(map[Key]Binding, len(bindings))}
	for _, b := range bindings {
		if err := m.add(b); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// MustModule panics if the module cannot be created, it is meant for static wiring.
func MustModule(bindings ...Binding) *Module {
	m, err := NewModule(bindings...)
	if err != nil {
		panic(fmt.Sprintf("haywire: %v", err))
	}
	return m
}

// AddBinding returns a new module with b added, it fails if b's output is already bound.
func (m *Module) AddBinding(b Binding) (*Module, error) {
	res := m.clone()
	if err := res.add(b); err != nil {
		return nil, err
	}
	return res, nil
}

// MergeModule returns the union of both modules.
//
// An identifier bound in both modules is accepted only if both bindings are equal.
func (m *Module) MergeModule(other *Module) (*Module, error) {
	res := m.clone()
	var conflicts []Key
	for _, k := range other.order {
		b := other.bindings[k]
		existing, found := res.bindings[k]
		if !found {
			res.bindings[k] = b
			res.order = append(res.order, k)
			continue
		}
		if !existing.Equal(b) {
			conflicts = append(conflicts, k)
		}
	}
	if len(conflicts) > 0 {
		return nil, &DuplicateBindingError{Keys: conflicts}
	}
	return res, nil
}

// Bindings returns the bindings in insertion order.
func (m *Module) Bindings() []Binding {
	res := make([]Binding, len(m.order))
	for i, k := range m.order {
		res[i] = m.bindings[k]
	}
	return res
}

func (m *Module) Len() int {
	return len(m.order)
}

// Binding returns the binding of k, if any.
func (m *Module) Binding(k Key) (Binding, bool) {
	b, found := m.bindings[k]
	return b, found
}

// Equal reports whether both modules bind the same identifiers with equal bindings.
func (m *Module) Equal(other *Module) bool {
	if m.Len() != other.Len() {
		return false
	}
	for k, b := range m.bindings {
		o, found := other.bindings[k]
		if !found || !b.Equal(o) {
			return false
		}
	}
	return true
}

// ToContainer validates the module and finalizes it into a container.
func (m *Module) ToContainer(opts ...option.Option[ContainerOptions]) (*Container, error) {
	return newContainer(m, opts...)
}

func (m *Module) add(b Binding) error {
	if err := b.validate(); err != nil {
		return err
	}
	if _, found := m.bindings[b.output]; found {
		return &DuplicateBindingError{Keys: []Key{b.output}}
	}
	m.bindings[b.output] = b
	m.order = append(m.order, b.output)
	return nil
}

func (m *Module) clone() *Module {
	res := &Module{
		bindings: make(map[Key]Binding, len(m.bindings)),
		order:    make([]Key, len(m.order)),
	}
	for k, b := range m.bindings {
		res.bindings[k] = b
	}
	copy(res.order, m.order)
	return res
}
