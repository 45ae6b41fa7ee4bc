package haywire

import (
	"context"
	"io"
	"reflect"
)

var (
	ErrorType   = TypeOf[error]()
	ContextType = TypeOf[context.Context]()
	CloserType  = TypeOf[io.Closer]()
)

// TypeOf returns the reflect.Type of I, including interface types.
func TypeOf[I any]() reflect.Type {
	var i I
	t := reflect.TypeOf(i)
	if t == nil {
		t = reflect.TypeOf((*I)(nil)).Elem()
	}
	return t
}

// assignTo returns v as a value of exactly typ, v must be assignable to typ.
//
// An invalid v (untyped nil) becomes the zero value of typ.
func assignTo(v reflect.Value, typ reflect.Type) reflect.Value {
	if !v.IsValid() {
		return reflect.Zero(typ)
	}
	if v.Type() == typ {
		return v
	}
	out := reflect.New(typ).Elem()
	out.Set(v)
	return out
}

func unReflect[T any](v reflect.Value) (res T, err error) {
	if !v.IsValid() {
		return res, nil
	}
	if v.Kind() == reflect.Interface && v.IsNil() {
		return res, nil
	}
	res, ok := v.Interface().(T)
	if !ok {
		return res, &typeMismatchError{expected: TypeOf[T](), actual: v.Type()}
	}
	return res, nil
}
