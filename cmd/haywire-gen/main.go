// Command haywire-gen generates a module binding the functions annotated with @binding.
//
// It is meant to be run with go:generate, from the file that will receive the generated
// GeneratedModule function:
//
//	//go:generate go run github.com/a-peyrard/haywire/cmd/haywire-gen
//
// Every package of the enclosing module is scanned. A binding function is documented with
//
//	// @binding named="main" scope=singleton
//
// and its parameters can be annotated with @inject, for example
// `// @inject named="audit" supplier=sync` or `// @inject all=true`. A leading context.Context
// parameter makes the binding asynchronous.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/a-peyrard/haywire/slices"
	"github.com/rs/zerolog"
	"golang.org/x/tools/go/packages"
)

const loadMode = packages.NeedName | packages.NeedFiles | packages.NeedSyntax | packages.NeedTypes | packages.NeedTypesInfo

func findModuleRoot(dir string) string {
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break // reached root
		}
		dir = parent
	}
	return "."
}

// outputPathFor returns foo_gen.go for foo.go.
func outputPathFor(targetFilePath string) string {
	return filepath.Join(
		filepath.Dir(targetFilePath),
		strings.TrimSuffix(filepath.Base(targetFilePath), ".go")+"_gen.go",
	)
}

func findTargetPackage(pkgs []*packages.Package, targetFilePath string) *packages.Package {
	for _, pkg := range pkgs {
		for _, file := range pkg.GoFiles {
			if file == targetFilePath {
				return pkg
			}
		}
	}
	return nil
}

func generate(logger zerolog.Logger, targetFilePath string, dryRun bool) error {
	startScan := time.Now()

	cfg := &packages.Config{
		Mode: loadMode,
		Dir:  findModuleRoot(filepath.Dir(targetFilePath)),
	}
	pkgs, err := packages.Load(cfg, "./...")
	if err != nil {
		return fmt.Errorf("failed to load packages:\n\t%w", err)
	}

	target := findTargetPackage(pkgs, targetFilePath)
	if target == nil {
		return fmt.Errorf("no package found for %s", targetFilePath)
	}

	definitions, err := scan(logger, pkgs, target.PkgPath)
	if err != nil {
		return fmt.Errorf("failed to scan packages:\n\t%w", err)
	}

	logger.Info().Msgf("🎯 %d bindings found in the module", len(definitions))
	logger.Debug().Msgf("Bindings:\n%s", strings.Join(slices.Map(definitions, BindingDefinition.String), "\n----\n"))
	logger.Info().Msgf("🕵️‍♂️ Scanning completed in %s", time.Since(startScan))

	outputPath := outputPathFor(targetFilePath)
	if dryRun {
		outputPath = filepath.Join(os.TempDir(), filepath.Base(outputPath))
	}
	if err = generateCode(outputPath, target.Name, target.PkgPath, definitions); err != nil {
		return fmt.Errorf("failed to generate code in %s:\n\t%w", outputPath, err)
	}
	logger.Info().Msgf("✅ Code generated successfully in %s", outputPath)

	return nil
}

func main() {
	dryRun := os.Getenv("DRY_RUN") == "true"

	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.DateTime}).
		With().
		Timestamp().
		Logger()

	targetFile := os.Getenv("GOFILE")
	if targetFile == "" {
		logger.Error().Msg("GOFILE is not set, haywire-gen must be run with go:generate")
		os.Exit(1)
	}
	currentDir, _ := os.Getwd()

	if err := generate(logger, filepath.Join(currentDir, targetFile), dryRun); err != nil {
		logger.Error().Err(err).Msg("Generation failed")
		os.Exit(1)
	}
}
