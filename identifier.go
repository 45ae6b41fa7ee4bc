package haywire

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/a-peyrard/haywire/option"
	"github.com/google/uuid"
)

type (
	deferKind uint8
	wrapKind  uint8

	// Key is the comparable form of an identifier, used as map key everywhere in the engine.
	//
	// Two keys are equal iff they share contract type, contract tag, name, wrapping and deferral.
	// Deferral includes whether the supplier propagates the request scope.
	Key struct {
		contract   reflect.Type
		tag        string
		name       string
		wrap       wrapKind
		deferred   deferKind
		propagate  bool
		valueType  reflect.Type
		targetType reflect.Type
	}

	// ID is a typed identifier of a value of type T.
	ID[T any] struct {
		key         Key
		constructor reflect.Value
	}

	// Dependency is anything that can be used as a binding dependency, ID[T] and Key implement it.
	Dependency interface {
		Key() Key
	}

	IdentifierOptions struct {
		tag         string
		constructor any
	}
)

const (
	notDeferred deferKind = iota
	syncDeferred
	asyncDeferred
)

const (
	notWrapped wrapKind = iota
	optionalWrap
	collectionWrap
)

// Tagged distinguishes a contract from the default contract of the same Go type.
func Tagged(tag string) option.Option[IdentifierOptions] {
	return func(opts *IdentifierOptions) {
		opts.tag = tag
	}
}

// Unique gives the identifier a fresh random contract, no other identifier will ever be equal to it.
func Unique() option.Option[IdentifierOptions] {
	return func(opts *IdentifierOptions) {
		opts.tag = uuid.NewString()
	}
}

// WithConstructor attaches the constructor used by WithConstructorProvider.
func WithConstructor(constructor any) option.Option[IdentifierOptions] {
	return func(opts *IdentifierOptions) {
		opts.constructor = constructor
	}
}

// Identifier creates an identifier for the contract T.
func Identifier[T any](opts ...option.Option[IdentifierOptions]) ID[T] {
	options := option.Build(&IdentifierOptions{}, opts...)

	typ := TypeOf[T]()
	id := ID[T]{
		key: Key{
			contract:  typ,
			tag:       options.tag,
			valueType: typ,
		},
	}
	if options.constructor != nil {
		id.constructor = reflect.ValueOf(options.constructor)
	}
	return id
}

// Named returns a copy of the identifier qualified by name.
func (id ID[T]) Named(name string) ID[T] {
	if id.key.wrap == collectionWrap {
		panic(fmt.Sprintf("cannot name collection identifier %s", id.key))
	}
	id.key.name = name
	return id
}

func (id ID[T]) Key() Key {
	return id.key
}

func (id ID[T]) String() string {
	return id.key.String()
}

// SupplierOf derives the identifier of a synchronous deferred resolution of id.
func SupplierOf[T any](id ID[T]) ID[Supplier[T]] {
	return ID[Supplier[T]]{key: id.key.deferTo(syncDeferred, TypeOf[Supplier[T]]())}
}

// AsyncSupplierOf derives the identifier of an asynchronous deferred resolution of id.
func AsyncSupplierOf[T any](id ID[T]) ID[AsyncSupplier[T]] {
	return ID[AsyncSupplier[T]]{key: id.key.deferTo(asyncDeferred, TypeOf[AsyncSupplier[T]]())}
}

// Propagating returns a copy of a supplier identifier whose resolutions share the request scope of
// the request that built the supplier. It panics when id is not a supplier identifier.
func (id ID[T]) Propagating() ID[T] {
	if id.key.deferred == notDeferred {
		panic(fmt.Sprintf("identifier %s is not a supplier, it cannot propagate a scope", id.key))
	}
	id.key.propagate = true
	return id
}

// OptionalOf derives an identifier resolving to an empty Optional when id is not bound.
func OptionalOf[T any](id ID[T]) ID[Optional[T]] {
	registerOptional[T]()
	return ID[Optional[T]]{key: id.key.wrapIn(optionalWrap, TypeOf[Optional[T]]())}
}

// AllOf derives an identifier resolving to every binding of id's contract, whatever their name,
// ordered by name.
func AllOf[T any](id ID[T]) ID[[]T] {
	k := id.key.wrapIn(collectionWrap, TypeOf[[]T]())
	k.name = ""
	return ID[[]T]{key: k}
}

func (k Key) deferTo(kind deferKind, valueType reflect.Type) Key {
	if k.deferred != notDeferred {
		panic(fmt.Sprintf("identifier %s is already deferred", k))
	}
	k.deferred = kind
	k.targetType = k.valueType
	k.valueType = valueType
	return k
}

func (k Key) wrapIn(kind wrapKind, valueType reflect.Type) Key {
	if k.deferred != notDeferred || k.wrap != notWrapped {
		panic(fmt.Sprintf("identifier %s cannot be wrapped", k))
	}
	k.wrap = kind
	k.valueType = valueType
	return k
}

func (k Key) Key() Key {
	return k
}

// Base strips every wrapper from the key.
func (k Key) Base() Key {
	return Key{
		contract:  k.contract,
		tag:       k.tag,
		name:      k.name,
		valueType: k.contract,
	}
}

// Target returns the key resolved by a deferred key, or the key itself.
func (k Key) Target() Key {
	if k.deferred == notDeferred {
		return k
	}
	t := k
	t.deferred = notDeferred
	t.propagate = false
	t.valueType = k.targetType
	t.targetType = nil
	return t
}

func (k Key) IsZero() bool {
	return k.contract == nil
}

func (k Key) IsPlain() bool {
	return k.deferred == notDeferred && k.wrap == notWrapped
}

func (k Key) IsDeferred() bool {
	return k.deferred != notDeferred
}

func (k Key) IsAsyncDeferred() bool {
	return k.deferred == asyncDeferred
}

// Propagates reports whether the deferred key shares the request scope of its parent request.
func (k Key) Propagates() bool {
	return k.propagate
}

func (k Key) IsOptional() bool {
	return k.wrap == optionalWrap
}

func (k Key) IsCollection() bool {
	return k.wrap == collectionWrap
}

// Type is the Go type of the value the key resolves to.
func (k Key) Type() reflect.Type {
	return k.valueType
}

func (k Key) Name() string {
	return k.name
}

func (k Key) Tag() string {
	return k.tag
}

func (k Key) String() string {
	if k.IsZero() {
		return "<nil>"
	}
	var b strings.Builder
	b.WriteString(k.contract.String())
	if k.tag != "" {
		b.WriteString("[" + k.tag + "]")
	}
	annotations := make([]string, 0, 3)
	if k.name != "" {
		annotations = append(annotations, "named: "+k.name)
	}
	switch k.wrap {
	case optionalWrap:
		annotations = append(annotations, "optional")
	case collectionWrap:
		annotations = append(annotations, "all")
	}
	if k.deferred != notDeferred {
		mode := "sync"
		if k.deferred == asyncDeferred {
			mode = "async"
		}
		if k.propagate {
			mode += ", propagating"
		}
		annotations = append(annotations, "supplier("+mode+")")
	}
	if len(annotations) > 0 {
		b.WriteString("(" + strings.Join(annotations, ", ") + ")")
	}
	return b.String()
}

// memberOf is the index key grouping every named binding of one contract.
func (k Key) memberOf() Key {
	return Key{contract: k.contract, tag: k.tag, valueType: k.contract}
}
