package haywire

import (
	"context"
	"reflect"
	"sync"
)

type (
	// Supplier resolves its target against the container on every call, honouring the target's scope.
	Supplier[T any] func() (T, error)

	// AsyncSupplier is the asynchronous flavour of Supplier, it may resolve asynchronous targets.
	AsyncSupplier[T any] func(ctx context.Context) (T, error)

	// Optional holds a value resolved from an optional identifier, empty when nothing was bound.
	Optional[T any] struct {
		value T
		found bool
	}

	optionalBuilder func(v reflect.Value, found bool) reflect.Value
)

var optionalBuilders sync.Map

func registerOptional[T any]() {
	optionalBuilders.LoadOrStore(TypeOf[Optional[T]](), optionalBuilder(func(v reflect.Value, found bool) reflect.Value {
		if !found {
			return reflect.ValueOf(Optional[T]{})
		}
		value, _ := unReflect[T](v)
		return reflect.ValueOf(Optional[T]{value: value, found: true})
	}))
}

func buildOptional(typ reflect.Type, v reflect.Value, found bool) reflect.Value {
	raw, ok := optionalBuilders.Load(typ)
	if !ok {
		panic("no optional builder registered for " + typ.String())
	}
	return raw.(optionalBuilder)(v, found)
}

// Some returns a present Optional.
func Some[T any](v T) Optional[T] {
	return Optional[T]{value: v, found: true}
}

func (o Optional[T]) Get() (T, bool) {
	return o.value, o.found
}

func (o Optional[T]) IsPresent() bool {
	return o.found
}

func (o Optional[T]) OrElse(other T) T {
	if o.found {
		return o.value
	}
	return other
}

// makeSupplier builds the closure resolving target each time it is invoked, every call is a request
// of its own sharing the request scope when request is set.
func (c *Container) makeSupplier(k Key, request *store) reflect.Value {
	target := k.Target()
	errOut := func(err error) reflect.Value {
		if err == nil {
			return reflect.Zero(ErrorType)
		}
		return reflect.ValueOf(&err).Elem()
	}
	out := func(v reflect.Value, err error) []reflect.Value {
		if err != nil {
			return []reflect.Value{reflect.Zero(target.valueType), errOut(err)}
		}
		return []reflect.Value{assignTo(v, target.valueType), errOut(nil)}
	}

	if k.IsAsyncDeferred() {
		return reflect.MakeFunc(k.valueType, func(args []reflect.Value) []reflect.Value {
			ctx, _ := args[0].Interface().(context.Context)
			if ctx == nil {
				ctx = context.Background()
			}
			return out(c.resolveWithin(ctx, target, true, request))
		})
	}
	return reflect.MakeFunc(k.valueType, func([]reflect.Value) []reflect.Value {
		return out(c.resolveWithin(context.Background(), target, false, request))
	})
}
