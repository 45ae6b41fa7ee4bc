package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/a-peyrard/haywire/runner"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

type (
	// Route registers handlers on the router, every Route binding is mounted by NewRouter.
	Route interface {
		Mount(r chi.Router)
	}

	RouteFunc func(r chi.Router)

	httpServer struct {
		server          *http.Server
		listener        net.Listener
		shutdownTimeout time.Duration
		logger          zerolog.Logger
	}
)

func (f RouteFunc) Mount(r chi.Router) {
	f(r)
}

// @binding scope=singleton
// NewRouter mounts every route behind the request id, logging and recovery middlewares.
func NewRouter(
	logger zerolog.Logger,
	routes []Route, // @inject all=true
) *chi.Mux {
	router := chi.NewRouter()
	router.Use(requestID)
	router.Use(requestLogger(logger))
	router.Use(middleware.Recoverer)
	for _, route := range routes {
		route.Mount(router)
	}
	return router
}

// @binding named="health"
func newHealthRoute() Route {
	return RouteFunc(func(r chi.Router) {
		r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "text/plain")
			_, _ = w.Write([]byte("ok"))
		})
	})
}

// @binding named="metrics"
func newMetricsRoute(registry *prometheus.Registry) Route {
	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry})
	return RouteFunc(func(r chi.Router) {
		r.Method(http.MethodGet, "/metrics", handler)
	})
}

// @binding named="http" scope=singleton
// NewHTTPServer listens on the configured address, the listener is bound during resolution so
// that address errors fail the startup.
func NewHTTPServer(
	ctx context.Context,
	addr string, // @inject tag="http-addr"
	cfg *Config,
	router *chi.Mux,
	logger zerolog.Logger,
) (runner.Runnable, error) {
	listener, err := new(net.ListenConfig).Listen(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("unable to listen on %s:\n\t%w", addr, err)
	}
	return &httpServer{
		server:          &http.Server{Handler: router, ReadHeaderTimeout: 10 * time.Second},
		listener:        listener,
		shutdownTimeout: cfg.HTTP.ShutdownTimeout,
		logger:          logger.With().Str("component", "http").Logger(),
	}, nil
}

func (s *httpServer) Addr() net.Addr {
	return s.listener.Addr()
}

func (s *httpServer) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Stringer("addr", s.Addr()).Msg("Serving HTTP")
		errCh <- s.server.Serve(s.listener)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info().Msg("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.shutdownTimeout)
	defer cancel()
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown HTTP server:\n\t%w", err)
	}
	return nil
}

// Close releases the listener when the server never ran.
func (s *httpServer) Close() error {
	err := s.server.Close()
	if lErr := s.listener.Close(); lErr != nil && !errors.Is(lErr, net.ErrClosed) {
		err = errors.Join(err, lErr)
	}
	return err
}

// @binding named="heartbeat"
// NewHeartbeat logs periodically while the application runs, it does nothing without an interval.
func NewHeartbeat(cfg *Config, logger zerolog.Logger) runner.Runnable {
	interval := cfg.Heartbeat.Interval
	return runner.RunnableFunc(func(ctx context.Context) error {
		if interval <= 0 {
			<-ctx.Done()
			return nil
		}
		started := time.Now()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				logger.Info().Dur("uptime", time.Since(started)).Msg("Still alive")
			}
		}
	})
}
