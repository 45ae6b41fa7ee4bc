package main

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/a-peyrard/haywire"
	"github.com/rs/zerolog"
)

const (
	bindingAnnotationTag = "@binding"
	injectAnnotationTag  = "@inject"
)

var propertiesPattern = regexp.MustCompile(`(\w+)=(?:"([^"]*)"|([\w-]+))`)

type BindingAnnotation struct {
	logger      *zerolog.Logger
	description string
	properties  map[string]string
}

func (b BindingAnnotation) Named() string {
	return b.properties["named"]
}

func (b BindingAnnotation) Tag() string {
	return b.properties["tag"]
}

func (b BindingAnnotation) Scope() (haywire.Scope, error) {
	return haywire.ParseScope(b.properties["scope"])
}

var knownBindingProperties = []string{"named", "tag", "scope"}

func (b BindingAnnotation) UnknownProperties() []string {
	return unknownProperties(b.properties, knownBindingProperties)
}

func parseBindingAnnotation(logger *zerolog.Logger, docText string) BindingAnnotation {
	var (
		descriptionLines []string
		bindingLine      string
	)
	for _, line := range strings.Split(docText, "\n") {
		line = strings.TrimSpace(line)

		if strings.HasPrefix(line, bindingAnnotationTag) {
			bindingLine = line
		} else if line != "" && !strings.HasPrefix(line, "@") {
			descriptionLines = append(descriptionLines, line)
		}
	}

	return BindingAnnotation{
		logger:      logger,
		description: strings.Join(descriptionLines, " "),
		properties:  parseProperties(bindingLine, bindingAnnotationTag),
	}
}

type InjectAnnotation struct {
	logger     *zerolog.Logger
	properties map[string]string
}

func (a InjectAnnotation) String() string {
	return fmt.Sprintf("InjectAnnotation(%q)", a.properties)
}

func (a InjectAnnotation) Named() string {
	return a.properties["named"]
}

func (a InjectAnnotation) Tag() string {
	return a.properties["tag"]
}

// Supplier returns "sync", "async" or an empty string when the dependency is not deferred.
func (a InjectAnnotation) Supplier() string {
	return a.properties["supplier"]
}

func (a InjectAnnotation) Optional() bool {
	return a.boolProperty("optional")
}

func (a InjectAnnotation) All() bool {
	return a.boolProperty("all")
}

var knownInjectProperties = []string{"named", "tag", "supplier", "optional", "all"}

func (a InjectAnnotation) UnknownProperties() []string {
	return unknownProperties(a.properties, knownInjectProperties)
}

func (a InjectAnnotation) boolProperty(name string) bool {
	raw, found := a.properties[name]
	if !found {
		return false
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		a.logger.Warn().Err(err).Msgf("Error parsing %s, not a correct bool", name)
		return false
	}
	return value
}

func parseInjectAnnotation(logger *zerolog.Logger, comment string) InjectAnnotation {
	content := strings.TrimPrefix(comment, "//")
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, injectAnnotationTag) {
		return InjectAnnotation{logger: logger, properties: make(map[string]string)}
	}

	return InjectAnnotation{
		logger:     logger,
		properties: parseProperties(content, injectAnnotationTag),
	}
}

// parseProperties reads the key=value or key="value" pairs following tag.
func parseProperties(line string, tag string) map[string]string {
	properties := make(map[string]string)

	content := strings.TrimSpace(strings.TrimPrefix(line, tag))
	if content == "" {
		return properties
	}

	for _, match := range propertiesPattern.FindAllStringSubmatch(content, -1) {
		value := match[2]
		if value == "" {
			value = match[3]
		}
		properties[match[1]] = value
	}

	return properties
}

func unknownProperties(properties map[string]string, known []string) []string {
	var unknown []string
	for key := range properties {
		if !contains(known, key) {
			unknown = append(unknown, key)
		}
	}
	return unknown
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
