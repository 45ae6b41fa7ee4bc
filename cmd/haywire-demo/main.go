// Command haywire-demo is a small HTTP service wired with haywire.
//
// Its components are declared with @binding annotations and bound by the generated module, the
// configuration is read from DEMO_* environment variables and an optional .env file.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/a-peyrard/haywire"
	"github.com/a-peyrard/haywire/config"
	"github.com/a-peyrard/haywire/metrics"
	"github.com/a-peyrard/haywire/option"
	"github.com/a-peyrard/haywire/runner"
	"github.com/a-peyrard/haywire/tracing"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
)

var (
	configID   = haywire.Identifier[*Config]()
	loggerID   = haywire.Identifier[zerolog.Logger]()
	registryID = haywire.Identifier[*prometheus.Registry]()
	httpAddrID = haywire.Identifier[string](haywire.Tagged("http-addr"))
	routeID    = haywire.Identifier[Route]()
	runnableID = haywire.Identifier[runner.Runnable]()
)

func main() {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	if err := run(logger); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal().Err(err).Msg("Error running app")
	}

	logger.Info().Msg("bye.")
}

func run(logger zerolog.Logger) error {
	cfg, err := config.Load[Config](config.WithEnvPrefix(envPrefix), config.WithEnvFiles(".env"))
	if err != nil {
		return err
	}
	logger = logger.Level(cfg.Log.level()).With().Str("env", cfg.Environment).Logger()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	c, err := newContainer(cfg, logger, registry)
	if err != nil {
		return err
	}
	//goland:noinspection GoUnhandledErrorResult
	defer c.Close()

	ctx, cancel := runner.WithSignalContext(context.Background())
	defer cancel()

	if err := c.PreloadAsync(ctx); err != nil {
		return fmt.Errorf("failed to preload components:\n\t%w", err)
	}
	logger.Debug().Msgf("Here is what we have in store before running:\n%s", c.Describe())

	return runner.Run(ctx, c, runnableID)
}

// newContainer merges the generated module with the bindings known only at startup.
func newContainer(cfg *Config, logger zerolog.Logger, registry *prometheus.Registry) (*haywire.Container, error) {
	generated, err := GeneratedModule()
	if err != nil {
		return nil, fmt.Errorf("failed to create generated module:\n\t%w", err)
	}

	var c *haywire.Container
	startup, err := haywire.NewModule(
		haywire.Bind(configID).WithInstance(cfg),
		haywire.Bind(loggerID).WithInstance(logger),
		haywire.Bind(registryID).WithInstance(registry),
		haywire.Must(haywire.Bind(httpAddrID).
			WithDependencies(configID).
			WithProvider(config.Field[Config, string]("HTTP.Addr"))),
		haywire.Bind(routeID.Named("graph")).WithInstance(graphRoute(func() string {
			return c.Describe()
		})),
	)
	if err != nil {
		return nil, err
	}
	m, err := generated.MergeModule(startup)
	if err != nil {
		return nil, fmt.Errorf("failed to merge modules:\n\t%w", err)
	}

	metricsObserver, err := metrics.NewObserver(registry, metrics.WithNamespace("haywire_demo"))
	if err != nil {
		return nil, err
	}
	c, err = m.ToContainer(
		haywire.WithLogger(logger),
		haywire.WithObserver(metricsObserver),
		option.When(cfg.Tracing, haywire.WithObserver(tracing.NewObserver(nil))),
	)
	return c, err
}
