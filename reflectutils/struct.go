// Package reflectutils contains the struct walking and field injection helpers used by configuration
// loading and by constructor bindings.
package reflectutils

import (
	"fmt"
	"reflect"

	"github.com/a-peyrard/haywire/fn"
)

// FieldVisitor is called for every visited value, with its static type and its field path.
type FieldVisitor = fn.TriConsumer[reflect.Value, reflect.Type, []string]

// WalkStruct applies visitor on element and on all its exported fields, recursively.
func WalkStruct[T any](element T, visitor FieldVisitor) {
	walkStructInternal(reflect.ValueOf(element), []string{}, visitor)
}

func walkStructInternal(val reflect.Value, path []string, visitor FieldVisitor) {
	visitor(val, val.Type(), path)

	val = Deref(val)
	if !val.IsValid() || val.Kind() != reflect.Struct {
		return
	}

	typ := val.Type()
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		if !field.IsExported() {
			continue
		}
		walkStructInternal(val.Field(i), append(path, field.Name), visitor)
	}
}

// Deref dereferences recursively a reflect.Value until it reaches a non-pointer or non-interface value
func Deref(value reflect.Value) reflect.Value {
	if value.Kind() == reflect.Ptr || value.Kind() == reflect.Interface {
		return Deref(value.Elem())
	}
	return value
}

// CreateNilStructs allocates nil struct pointers.
func CreateNilStructs(val reflect.Value, typ reflect.Type, _ []string) {
	if typ.Kind() == reflect.Pointer &&
		val.IsNil() &&
		val.CanSet() &&
		typ.Elem().Kind() == reflect.Struct {

		val.Set(reflect.New(typ.Elem()))
	}
}

// CreateEmptyArrays replaces nil slices by empty ones.
func CreateEmptyArrays(val reflect.Value, typ reflect.Type, _ []string) {
	if typ.Kind() == reflect.Slice && val.IsNil() && val.CanSet() {
		val.Set(reflect.MakeSlice(typ, 0, 0))
	}
}

// ExportedFields returns the top level exported fields of a struct type, in declaration order.
// Embedded fields are returned as a single field.
func ExportedFields(typ reflect.Type) []reflect.StructField {
	if typ.Kind() != reflect.Struct {
		panic(fmt.Sprintf("reflectutils: %s is not a struct", typ))
	}
	fields := make([]reflect.StructField, 0, typ.NumField())
	for i := 0; i < typ.NumField(); i++ {
		if field := typ.Field(i); field.IsExported() {
			fields = append(fields, field)
		}
	}
	return fields
}

// InjectFields assigns values to the fields at the given indexes of target, which must be an
// addressable struct.
func InjectFields(target reflect.Value, indexes []int, values []reflect.Value) {
	if len(indexes) != len(values) {
		panic(fmt.Sprintf("reflectutils: %d fields but %d values", len(indexes), len(values)))
	}
	for i, index := range indexes {
		field := target.Field(index)
		if !values[i].IsValid() {
			field.Set(reflect.Zero(field.Type()))
			continue
		}
		field.Set(values[i])
	}
}
