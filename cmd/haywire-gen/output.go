package main

import (
	"bytes"
	"fmt"
	"go/types"
	"os"
	"regexp"
	"strconv"
	"strings"
	"text/template"

	"github.com/a-peyrard/haywire"
	"github.com/a-peyrard/haywire/set"
	"golang.org/x/tools/imports"
)

type (
	renderedBinding struct {
		Description  string
		Output       string
		Scope        string
		Async        bool
		Fn           string
		Dependencies []string
	}

	renderedFile struct {
		PackageName string
		Imports     map[string]string
		Bindings    []renderedBinding
	}

	// importSet allocates an alias for every package referenced by the generated file.
	importSet struct {
		target  string
		aliases map[string]string
		used    set.Set[string]
	}
)

var (
	scopeExpressions = map[haywire.Scope]string{
		haywire.SingletonScope:           "haywire.SingletonScope",
		haywire.OptimisticSingletonScope: "haywire.OptimisticSingletonScope",
		haywire.RequestScope:             "haywire.RequestScope",
		haywire.SupplierScope:            "haywire.SupplierScope",
	}

	majorVersionPattern = regexp.MustCompile(`^v[0-9]+$`)

	fileTemplate = template.Must(template.New("module").Parse(`// Code generated by haywire-gen. DO NOT EDIT.

package {{.PackageName}}

import (
{{- range $path, $alias := .Imports}}
	{{$alias}} "{{$path}}"
{{- end}}
)

// GeneratedModule binds every function annotated with @binding.
func GeneratedModule() (*haywire.Module, error) {
	bindings := make([]haywire.Binding, 0, {{len .Bindings}})
{{- range .Bindings}}
	{
{{- if .Description}}
		// {{.Description}}
{{- end}}
		b, err := haywire.Bind({{.Output}}).
{{- if .Scope}}
			Scoped({{.Scope}}).
{{- end}}
			WithDependencies(
{{- range .Dependencies}}
				{{.}},
{{- end}}
			).
			{{if .Async}}WithAsyncProvider{{else}}WithProvider{{end}}({{.Fn}})
		if err != nil {
			return nil, err
		}
		bindings = append(bindings, b)
	}
{{- end}}

	return haywire.NewModule(bindings...)
}
`))
)

func newImportSet(target string) *importSet {
	i := &importSet{
		target:  target,
		aliases: make(map[string]string),
		used:    set.New[string](),
	}
	i.add(haywirePath)
	return i
}

func (i *importSet) add(path string) string {
	if alias, found := i.aliases[path]; found {
		return alias
	}
	alias := findSuitableAlias(path, i.used)
	i.used.Add(alias)
	i.aliases[path] = alias
	return alias
}

func (i *importSet) qualifier(pkg *types.Package) string {
	if pkg.Path() == i.target {
		return ""
	}
	return i.add(pkg.Path())
}

func (i *importSet) identifier(t types.Type, tag, named string) string {
	var opts string
	if tag != "" {
		opts = fmt.Sprintf("haywire.Tagged(%q)", tag)
	}
	expr := fmt.Sprintf("haywire.Identifier[%s](%s)", types.TypeString(t, i.qualifier), opts)
	if named != "" {
		expr += fmt.Sprintf(".Named(%q)", named)
	}
	return expr
}

func (i *importSet) dependency(d DependencyDefinition) string {
	expr := i.identifier(d.Type, d.Tag, d.Named)
	switch {
	case d.All:
		expr = "haywire.AllOf(" + expr + ")"
	case d.Optional:
		expr = "haywire.OptionalOf(" + expr + ")"
	}
	switch d.Supplier {
	case "sync":
		expr = "haywire.SupplierOf(" + expr + ")"
	case "async":
		expr = "haywire.AsyncSupplierOf(" + expr + ")"
	}
	return expr
}

// render writes the unformatted source of the generated file.
func render(packageName, target string, definitions []BindingDefinition) ([]byte, error) {
	imps := newImportSet(target)
	file := renderedFile{
		PackageName: packageName,
		Bindings:    make([]renderedBinding, 0, len(definitions)),
	}
	for _, d := range definitions {
		importPath := ""
		if d.ImportPath != target {
			importPath = d.ImportPath
			imps.add(importPath)
		}
		binding := renderedBinding{
			Description: d.Description,
			Output:      imps.identifier(d.Output, d.Tag, d.Named),
			Scope:       scopeExpressions[d.Scope],
			Async:       d.Async,
			Fn:          generateFQN(importPath, d.FnName, imps.aliases),
		}
		for _, dep := range d.Dependencies {
			binding.Dependencies = append(binding.Dependencies, imps.dependency(dep))
		}
		file.Bindings = append(file.Bindings, binding)
	}
	file.Imports = imps.aliases

	var buf bytes.Buffer
	if err := fileTemplate.Execute(&buf, file); err != nil {
		return nil, fmt.Errorf("failed to render template:\n\t%w", err)
	}
	return buf.Bytes(), nil
}

func generateCode(outputPath, packageName, target string, definitions []BindingDefinition) error {
	src, err := render(packageName, target, definitions)
	if err != nil {
		return err
	}
	formatted, err := imports.Process(outputPath, src, nil)
	if err != nil {
		return fmt.Errorf("failed to format generated code:\n\t%w\n%s", err, src)
	}
	return os.WriteFile(outputPath, formatted, 0o644)
}

// findSuitableAlias returns the last element of pkg, prefixed by the initials of the previous
// elements, then suffixed by a counter, until it does not collide with aliases.
func findSuitableAlias(pkg string, aliases set.Set[string]) string {
	tokens := strings.Split(pkg, "/")
	last := len(tokens) - 1
	if last > 0 && majorVersionPattern.MatchString(tokens[last]) {
		last--
	}

	alias := sanitizeAlias(tokens[last])
	for i := last - 1; i >= 0 && aliases.Contains(alias); i-- {
		if initial := sanitizeAlias(tokens[i]); initial != "" {
			alias = initial[:1] + alias
		}
	}
	if aliases.DoesNotContain(alias) {
		return alias
	}

	for n := 0; ; n++ {
		if candidate := alias + strconv.Itoa(n); aliases.DoesNotContain(candidate) {
			return candidate
		}
	}
}

func sanitizeAlias(token string) string {
	var sb strings.Builder
	for _, r := range strings.ToLower(token) {
		if ('a' <= r && r <= 'z') || (sb.Len() > 0 && '0' <= r && r <= '9') {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// generateFQN qualifies typeName with the alias of importPath, keeping pointer and slice markers
// in front.
func generateFQN(importPath, typeName string, importWithAlias map[string]string) string {
	if importPath == "" {
		return typeName
	}
	name := strings.TrimLeft(typeName, "*[]")
	prefix := typeName[:len(typeName)-len(name)]
	return prefix + importWithAlias[importPath] + "." + name
}
