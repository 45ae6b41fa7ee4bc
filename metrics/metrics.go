// Package metrics exposes the strategy invocations of a container as prometheus metrics.
package metrics

import (
	"context"
	"fmt"

	"github.com/a-peyrard/haywire"
	"github.com/a-peyrard/haywire/option"
	"github.com/prometheus/client_golang/prometheus"
)

type (
	Options struct {
		namespace string
		buckets   []float64
	}

	// Observer counts strategy invocations, their failures and durations, and the cache hits of
	// scoped bindings.
	Observer struct {
		invocations *prometheus.CounterVec
		duration    *prometheus.HistogramVec
		cacheHits   *prometheus.CounterVec
	}
)

var _ haywire.Observer = (*Observer)(nil)

func WithNamespace(namespace string) option.Option[Options] {
	return func(opts *Options) {
		opts.namespace = namespace
	}
}

func WithBuckets(buckets ...float64) option.Option[Options] {
	return func(opts *Options) {
		opts.buckets = buckets
	}
}

// NewObserver creates the metrics and registers them on registerer.
func NewObserver(registerer prometheus.Registerer, opts ...option.Option[Options]) (*Observer, error) {
	options := option.Build(&Options{namespace: "haywire", buckets: prometheus.DefBuckets}, opts...)

	o := &Observer{
		invocations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: options.namespace,
				Name:      "strategy_invocations_total",
				Help:      "Total number of strategy invocations",
			},
			[]string{"key", "kind", "scope", "status"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: options.namespace,
				Name:      "strategy_duration_seconds",
				Help:      "Strategy invocation duration in seconds",
				Buckets:   options.buckets,
			},
			[]string{"key", "kind"},
		),
		cacheHits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: options.namespace,
				Name:      "cache_hits_total",
				Help:      "Total number of scoped values served from the container cache",
			},
			[]string{"key"},
		),
	}

	for _, collector := range []prometheus.Collector{o.invocations, o.duration, o.cacheHits} {
		if err := registerer.Register(collector); err != nil {
			return nil, fmt.Errorf("failed to register container metrics:\n\t%w", err)
		}
	}

	return o, nil
}

func (o *Observer) BeforeInvoke(ctx context.Context, _ haywire.Key) context.Context {
	return ctx
}

func (o *Observer) AfterInvoke(_ context.Context, event haywire.InvokeEvent) {
	status := "success"
	if event.Err != nil {
		status = "failure"
	}
	key, kind := event.Key.String(), event.Kind.String()
	o.invocations.WithLabelValues(key, kind, event.Scope.String(), status).Inc()
	o.duration.WithLabelValues(key, kind).Observe(event.Duration.Seconds())
}

func (o *Observer) OnCacheHit(key haywire.Key) {
	o.cacheHits.WithLabelValues(key.String()).Inc()
}
