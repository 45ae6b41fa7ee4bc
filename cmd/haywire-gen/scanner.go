package main

import (
	"errors"
	"fmt"
	"go/ast"
	"go/token"
	"go/types"
	"strings"

	"github.com/a-peyrard/haywire"
	"github.com/a-peyrard/haywire/slices"
	"github.com/rs/zerolog"
	"golang.org/x/tools/go/packages"
)

const haywirePath = "github.com/a-peyrard/haywire"

type (
	BindingDefinition struct {
		FnName      string
		ImportPath  string
		Description string

		Named string
		Tag   string
		Scope haywire.Scope
		Async bool

		Output       types.Type
		Dependencies []DependencyDefinition
	}

	DependencyDefinition struct {
		Param string
		// Type is the type of the identifier, once the supplier, optional and collection
		// wrappers are removed from the parameter type.
		Type     types.Type
		Named    string
		Tag      string
		Supplier string
		Optional bool
		All      bool
	}
)

func (b BindingDefinition) String() string {
	return fmt.Sprintf(
		`Binding: %s
Description: %s
Import Path: %s
Output: %s
Named: %s
Scope: %s
Async: %t
Dependencies: [%s]`,
		b.FnName,
		b.Description,
		b.ImportPath,
		b.Output,
		b.Named,
		b.Scope,
		b.Async,
		strings.Join(slices.Map(b.Dependencies, DependencyDefinition.String), ", "),
	)
}

func (d DependencyDefinition) String() string {
	var flags []string
	if d.Named != "" {
		flags = append(flags, "named: "+d.Named)
	}
	if d.Supplier != "" {
		flags = append(flags, "supplier: "+d.Supplier)
	}
	if d.Optional {
		flags = append(flags, "optional")
	}
	if d.All {
		flags = append(flags, "all")
	}
	return fmt.Sprintf("%s %s(%s)", d.Param, d.Type, strings.Join(flags, ", "))
}

// scan collects the @binding functions of the packages, the ones of other packages than target
// must be exported.
func scan(logger zerolog.Logger, pkgs []*packages.Package, target string) ([]BindingDefinition, error) {
	var (
		definitions []BindingDefinition
		errs        []error
	)
	for _, pkg := range pkgs {
		logger := logger.With().Str("package", pkg.PkgPath).Logger()
		logger.Debug().Msg("Scanning package")
		for _, err := range pkg.Errors {
			errs = append(errs, err)
		}

		for _, file := range pkg.Syntax {
			for _, decl := range file.Decls {
				fn, ok := decl.(*ast.FuncDecl)
				if !ok || fn.Recv != nil || fn.Doc == nil || !strings.Contains(fn.Doc.Text(), bindingAnnotationTag) {
					continue
				}
				logger := logger.With().Str("binding", fn.Name.Name).Logger()
				if pkg.PkgPath != target && !fn.Name.IsExported() {
					logger.Warn().Msg("Skipping unexported binding outside of the target package")
					continue
				}

				logger.Debug().Msg("=> Found binding")
				definition, err := newBindingDefinition(&logger, pkg, file, fn)
				if err != nil {
					errs = append(errs, err)
					continue
				}
				definitions = append(definitions, definition)
			}
		}
	}

	return definitions, errors.Join(errs...)
}

func newBindingDefinition(
	logger *zerolog.Logger,
	pkg *packages.Package,
	file *ast.File,
	fn *ast.FuncDecl,
) (BindingDefinition, error) {
	obj, ok := pkg.TypesInfo.Defs[fn.Name].(*types.Func)
	if !ok {
		return BindingDefinition{}, fmt.Errorf("%s.%s: no type information", pkg.PkgPath, fn.Name.Name)
	}
	sig := obj.Type().(*types.Signature)
	if sig.TypeParams().Len() > 0 {
		return BindingDefinition{}, fmt.Errorf("%s: generic functions cannot be bound", obj.FullName())
	}
	if sig.Variadic() {
		return BindingDefinition{}, fmt.Errorf("%s: variadic functions cannot be bound", obj.FullName())
	}
	if results := sig.Results(); results.Len() == 0 || results.Len() > 2 {
		return BindingDefinition{}, fmt.Errorf("%s: must return a value, optionally followed by an error", obj.FullName())
	}

	annotation := parseBindingAnnotation(logger, fn.Doc.Text())
	for _, unknown := range annotation.UnknownProperties() {
		logger.Warn().Msgf("Unknown property %s, skipping it", unknown)
	}
	scope, err := annotation.Scope()
	if err != nil {
		return BindingDefinition{}, fmt.Errorf("%s: %w", obj.FullName(), err)
	}

	definition := BindingDefinition{
		FnName:      fn.Name.Name,
		ImportPath:  pkg.PkgPath,
		Description: annotation.description,
		Named:       annotation.Named(),
		Tag:         annotation.Tag(),
		Scope:       scope,
		Output:      sig.Results().At(0).Type(),
	}

	params := sig.Params()
	comments := paramComments(pkg.Fset, file, fn.Type.Params)
	start := 0
	if params.Len() > 0 && isContext(params.At(0).Type()) {
		definition.Async = true
		start = 1
	}
	indexes := make([]int, 0, params.Len())
	for i := start; i < params.Len(); i++ {
		indexes = append(indexes, i)
	}
	definition.Dependencies, err = slices.UnsafeMap(indexes, func(i int) (DependencyDefinition, error) {
		param := params.At(i)
		loggerParam := logger.With().Str("param", param.Name()).Logger()
		return newDependencyDefinition(param, parseInjectAnnotation(&loggerParam, comments[i]))
	})
	if err != nil {
		return BindingDefinition{}, fmt.Errorf("%s: %w", obj.FullName(), err)
	}

	return definition, nil
}

func newDependencyDefinition(param *types.Var, annotation InjectAnnotation) (DependencyDefinition, error) {
	for _, unknown := range annotation.UnknownProperties() {
		annotation.logger.Warn().Msgf("Unknown property %s, skipping it", unknown)
	}
	dependency := DependencyDefinition{
		Param:    param.Name(),
		Named:    annotation.Named(),
		Tag:      annotation.Tag(),
		Supplier: annotation.Supplier(),
		Optional: annotation.Optional(),
		All:      annotation.All(),
	}

	t := param.Type()
	switch dependency.Supplier {
	case "":
	case "sync":
		inner, ok := haywireTypeArg(t, "Supplier")
		if !ok {
			return dependency, fmt.Errorf("parameter %s must be a haywire.Supplier, got %s", param.Name(), t)
		}
		t = inner
	case "async":
		inner, ok := haywireTypeArg(t, "AsyncSupplier")
		if !ok {
			return dependency, fmt.Errorf("parameter %s must be a haywire.AsyncSupplier, got %s", param.Name(), t)
		}
		t = inner
	default:
		return dependency, fmt.Errorf("parameter %s: unknown supplier %q, expected sync or async", param.Name(), dependency.Supplier)
	}

	switch {
	case dependency.Optional && dependency.All:
		return dependency, fmt.Errorf("parameter %s cannot be both optional and all", param.Name())
	case dependency.Optional:
		inner, ok := haywireTypeArg(t, "Optional")
		if !ok {
			return dependency, fmt.Errorf("parameter %s must be a haywire.Optional, got %s", param.Name(), t)
		}
		t = inner
	case dependency.All:
		slice, ok := types.Unalias(t).(*types.Slice)
		if !ok {
			return dependency, fmt.Errorf("parameter %s must be a slice, got %s", param.Name(), t)
		}
		if dependency.Named != "" {
			return dependency, fmt.Errorf("parameter %s cannot be both named and all", param.Name())
		}
		t = slice.Elem()
	}
	dependency.Type = t

	return dependency, nil
}

// haywireTypeArg returns X when t is haywire.<name>[X].
func haywireTypeArg(t types.Type, name string) (types.Type, bool) {
	named, ok := types.Unalias(t).(*types.Named)
	if !ok {
		return nil, false
	}
	obj := named.Obj()
	if obj.Pkg() == nil || obj.Pkg().Path() != haywirePath || obj.Name() != name || named.TypeArgs().Len() != 1 {
		return nil, false
	}
	return named.TypeArgs().At(0), true
}

func isContext(t types.Type) bool {
	named, ok := types.Unalias(t).(*types.Named)
	if !ok {
		return false
	}
	obj := named.Obj()
	return obj.Pkg() != nil && obj.Pkg().Path() == "context" && obj.Name() == "Context"
}

// paramComments returns the comment on the line of each parameter, parameters sharing a type share
// its comment.
func paramComments(fset *token.FileSet, file *ast.File, params *ast.FieldList) []string {
	var comments []string
	if params == nil {
		return comments
	}
	for _, field := range params.List {
		comment := findCommentForParam(fset, file, field)
		for n := max(1, len(field.Names)); n > 0; n-- {
			comments = append(comments, comment)
		}
	}
	return comments
}

func findCommentForParam(fset *token.FileSet, file *ast.File, param *ast.Field) string {
	paramLine := fset.Position(param.Pos()).Line

	for _, commentGroup := range file.Comments {
		for _, comment := range commentGroup.List {
			if fset.Position(comment.Pos()).Line == paramLine {
				return comment.Text
			}
		}
	}
	return ""
}
