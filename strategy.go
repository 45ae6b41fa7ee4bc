package haywire

import (
	"context"
	"fmt"
	"reflect"

	"github.com/a-peyrard/haywire/reflectutils"
)

// StrategyKind is the construction mechanism attached to a binding.
type StrategyKind uint8

const (
	InstanceStrategy StrategyKind = iota
	ProviderStrategy
	ConstructorStrategy
	GeneratorStrategy
	AsyncGeneratorStrategy
	AsyncProviderStrategy
)

type strategy struct {
	kind       StrategyKind
	fn         reflect.Value
	instance   reflect.Value
	returnsErr bool

	// field injection, used by constructors when the identifier has no constructor function
	structType reflect.Type
	pointer    bool
	fields     []int
}

func (k StrategyKind) String() string {
	switch k {
	case InstanceStrategy:
		return "instance"
	case ProviderStrategy:
		return "provider"
	case ConstructorStrategy:
		return "constructor"
	case GeneratorStrategy:
		return "generator"
	case AsyncGeneratorStrategy:
		return "async-generator"
	case AsyncProviderStrategy:
		return "async-provider"
	default:
		return fmt.Sprintf("strategy(%d)", uint8(k))
	}
}

func (k StrategyKind) IsAsync() bool {
	return k == AsyncGeneratorStrategy || k == AsyncProviderStrategy
}

func newFuncStrategy(kind StrategyKind, output Key, deps []Key, fn reflect.Value) (*strategy, error) {
	if !fn.IsValid() {
		return nil, invalidBinding(output, "function is nil")
	}
	if fn.Kind() != reflect.Func {
		return nil, invalidBinding(output, "expected a function, got %s", fn.Type())
	}
	if fn.IsNil() {
		return nil, invalidBinding(output, "function is nil")
	}
	t := fn.Type()
	if t.IsVariadic() {
		return nil, invalidBinding(output, "variadic function %s is not supported", t)
	}

	offset := 0
	if kind.IsAsync() {
		offset = 1
		if t.NumIn() == 0 || t.In(0) != ContextType {
			return nil, invalidBinding(output, "asynchronous function %s must take a context.Context as first parameter", t)
		}
	}
	if t.NumIn()-offset != len(deps) {
		return nil, invalidBinding(output, "function %s takes %d parameters but %d dependencies are declared", t, t.NumIn()-offset, len(deps))
	}
	for i, dep := range deps {
		if param := t.In(i + offset); !dep.valueType.AssignableTo(param) {
			return nil, invalidBinding(
				output,
				"dependency %d %s of type %s is not assignable to parameter of type %s",
				i, dep, dep.valueType, param,
			)
		}
	}

	if t.NumOut() != 1 && t.NumOut() != 2 {
		return nil, invalidBinding(output, "function must either return the instance and an error, or just the instance")
	}
	if !t.Out(0).AssignableTo(output.valueType) {
		return nil, invalidBinding(output, "returned type %s is not assignable to %s", t.Out(0), output.valueType)
	}
	if t.NumOut() == 2 && t.Out(1) != ErrorType {
		return nil, invalidBinding(output, "if function returns two elements, it must return an error as the second element")
	}

	return &strategy{
		kind:       kind,
		fn:         fn,
		returnsErr: t.NumOut() == 2,
	}, nil
}

func newFieldInjectionStrategy(output Key, deps []Key) (*strategy, error) {
	typ := output.contract
	s := &strategy{kind: ConstructorStrategy, structType: typ}
	if typ.Kind() == reflect.Pointer && typ.Elem().Kind() == reflect.Struct {
		s.structType = typ.Elem()
		s.pointer = true
	}
	if s.structType.Kind() != reflect.Struct {
		return nil, invalidBinding(output, "no constructor available for %s", typ)
	}

	fields := reflectutils.ExportedFields(s.structType)
	if len(fields) != len(deps) {
		return nil, invalidBinding(output, "%s has %d exported fields but %d dependencies are declared", s.structType, len(fields), len(deps))
	}
	s.fields = make([]int, len(fields))
	for i, field := range fields {
		if !deps[i].valueType.AssignableTo(field.Type) {
			return nil, invalidBinding(
				output,
				"dependency %d %s of type %s is not assignable to field %s of type %s",
				i, deps[i], deps[i].valueType, field.Name, field.Type,
			)
		}
		s.fields[i] = field.Index[0]
	}
	return s, nil
}

func (s *strategy) invoke(ctx context.Context, output reflect.Type, args []reflect.Value) (res reflect.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic calling %s: %v", s.kind, r)
		}
	}()

	switch s.kind {
	case InstanceStrategy:
		return s.instance, nil
	case ProviderStrategy, GeneratorStrategy:
		return s.call(output, args)
	case ConstructorStrategy:
		if s.fn.IsValid() {
			return s.call(output, args)
		}
		return s.inject(output, args), nil
	case AsyncGeneratorStrategy, AsyncProviderStrategy:
		withCtx := make([]reflect.Value, 0, len(args)+1)
		withCtx = append(withCtx, reflect.ValueOf(&ctx).Elem())
		return s.call(output, append(withCtx, args...))
	default:
		return reflect.Value{}, fmt.Errorf("unknown strategy kind %s", s.kind)
	}
}

func (s *strategy) call(output reflect.Type, args []reflect.Value) (reflect.Value, error) {
	results := s.fn.Call(args)
	if s.returnsErr && !results[1].IsNil() {
		return reflect.Value{}, results[1].Interface().(error)
	}
	return assignTo(results[0], output), nil
}

func (s *strategy) inject(output reflect.Type, args []reflect.Value) reflect.Value {
	target := reflect.New(s.structType)
	reflectutils.InjectFields(target.Elem(), s.fields, args)
	if s.pointer {
		return assignTo(target, output)
	}
	return assignTo(target.Elem(), output)
}
