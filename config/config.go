// Package config loads typed configuration structs from the environment and exposes them as
// bindings.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"reflect"
	"strings"

	"github.com/a-peyrard/haywire"
	"github.com/a-peyrard/haywire/fn"
	"github.com/a-peyrard/haywire/option"
	"github.com/a-peyrard/haywire/reflectutils"
	"github.com/a-peyrard/haywire/str"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	Options struct {
		prefix   string
		envFiles []string
		validate bool
	}

	WithDefault interface {
		ApplyDefault()
	}
)

var withDefaultType = haywire.TypeOf[WithDefault]()

func WithEnvPrefix(prefix string) option.Option[Options] {
	return func(opts *Options) {
		opts.prefix = prefix
	}
}

// WithEnvFiles loads the given dotenv files before reading the environment, variables already set
// win over the files and missing files are ignored.
func WithEnvFiles(files ...string) option.Option[Options] {
	return func(opts *Options) {
		opts.envFiles = append(opts.envFiles, files...)
	}
}

// WithoutValidation skips the `validate` struct tags.
func WithoutValidation() option.Option[Options] {
	return func(opts *Options) {
		opts.validate = false
	}
}

// Load reads a T from the environment: every leaf field is bound to PREFIX_PATH_TO_FIELD, nested
// nil structs and nil slices are created and WithDefault implementations are applied before
// validation.
func Load[T any](opts ...option.Option[Options]) (*T, error) {
	options := option.Build(&Options{validate: true}, opts...)

	for _, file := range options.envFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("unable to load env file %s:\n\t%w", file, err)
		}
	}

	v := viper.New()
	v.SetEnvPrefix(options.prefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var vT T
	bindEnvs(v, options.prefix, reflect.TypeOf(vT))

	if err := v.Unmarshal(&vT); err != nil {
		return nil, fmt.Errorf("unable to unmarshal config: %w", err)
	}

	callApplyDefault := func(val reflect.Value, typ reflect.Type, _ []string) {
		if typ.Implements(withDefaultType) && val.IsValid() {
			val.Interface().(WithDefault).ApplyDefault()
		}
	}
	reflectutils.WalkStruct(
		&vT,
		fn.AllTriConsumer(
			reflectutils.CreateNilStructs,
			reflectutils.CreateEmptyArrays,
			callApplyDefault,
		),
	)

	if options.validate {
		if err := validator.New().Struct(&vT); err != nil {
			return nil, fmt.Errorf("invalid config %T:\n\t%w", vT, err)
		}
	}

	return &vT, nil
}

// Bind binds id to a singleton loaded with Load.
func Bind[T any](id haywire.ID[*T], opts ...option.Option[Options]) haywire.Binding {
	return haywire.Bind(id).
		Scoped(haywire.SingletonScope).
		WithGenerator(func() (*T, error) {
			return Load[T](opts...)
		})
}

// Field returns a provider extracting the value at path from a loaded config, path uses dots to
// reach nested fields or map keys: "HTTP.Port".
func Field[C any, T any](path string) func(cfg *C) (T, error) {
	return func(cfg *C) (v T, err error) {
		raw, err := lookup(cfg, path)
		if err != nil {
			return v, fmt.Errorf("unable to get value from config %T:\n\t%w", cfg, err)
		}
		value, ok := raw.(T)
		if !ok {
			return v, fmt.Errorf("config value at %s is %T, expected %T", path, raw, v)
		}
		return value, nil
	}
}

func lookup(origin any, path string) (any, error) {
	if path == "" {
		return nil, errors.New("field path cannot be empty")
	}

	current := reflect.ValueOf(origin)
	for i, token := range strings.Split(path, ".") {
		current = reflectutils.Deref(current)
		if token == "" {
			return nil, fmt.Errorf("empty token at position %d in field path %s", i, path)
		}
		if !current.IsValid() {
			return nil, fmt.Errorf("nil value at token %s in field path %s", token, path)
		}

		switch current.Kind() {
		case reflect.Map:
			current = current.MapIndex(reflect.ValueOf(token))
			if !current.IsValid() {
				return nil, fmt.Errorf("key %s not found in field path %s", token, path)
			}
		case reflect.Struct:
			field, found := current.Type().FieldByName(token)
			if !found || !field.IsExported() {
				return nil, fmt.Errorf("no exported field %s in %s", token, current.Type())
			}
			current = current.FieldByIndex(field.Index)
		default:
			return nil, fmt.Errorf("cannot traverse %s at token %s in field path %s", current.Kind(), token, path)
		}
	}

	return current.Interface(), nil
}

func bindEnvs(v *viper.Viper, envPrefix string, typ reflect.Type, parts ...string) {
	if typ.Kind() != reflect.Struct {
		return
	}
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		if !field.IsExported() {
			continue
		}
		name, ok := field.Tag.Lookup("mapstructure")
		if !ok {
			name = field.Name
		}
		path := append(parts[:len(parts):len(parts)], name)

		fieldType := field.Type
		if fieldType.Kind() == reflect.Pointer {
			fieldType = fieldType.Elem()
		}
		if fieldType.Kind() == reflect.Struct {
			bindEnvs(v, envPrefix, fieldType, path...)
			continue
		}

		envParts := make([]string, len(path))
		for j, part := range path {
			envParts[j] = str.ToScreamingSnakeCase(part)
		}
		_ = v.BindEnv(strings.Join(path, "."), mergeWithEnvPrefix(envPrefix, strings.Join(envParts, "_")))
	}
}

func mergeWithEnvPrefix(envPrefix string, in string) string {
	if envPrefix != "" {
		return strings.ToUpper(envPrefix + "_" + in)
	}

	return strings.ToUpper(in)
}
