// Package tracing records every strategy invocation of a container as an OpenTelemetry span.
package tracing

import (
	"context"

	"github.com/a-peyrard/haywire"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	instrumentationName = "github.com/a-peyrard/haywire"
	spanName            = "haywire.invoke"

	KeyAttribute   = attribute.Key("haywire.key")
	KindAttribute  = attribute.Key("haywire.kind")
	ScopeAttribute = attribute.Key("haywire.scope")
)

// Observer starts a span before each strategy invocation, the strategy receives the span context
// so that its own spans are nested.
type Observer struct {
	tracer trace.Tracer
}

var _ haywire.Observer = (*Observer)(nil)

// NewObserver uses the global tracer provider when provider is nil.
func NewObserver(provider trace.TracerProvider) *Observer {
	if provider == nil {
		provider = otel.GetTracerProvider()
	}
	return &Observer{tracer: provider.Tracer(instrumentationName)}
}

func (o *Observer) BeforeInvoke(ctx context.Context, key haywire.Key) context.Context {
	ctx, _ = o.tracer.Start(
		ctx,
		spanName,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(KeyAttribute.String(key.String())),
	)
	return ctx
}

func (o *Observer) AfterInvoke(ctx context.Context, event haywire.InvokeEvent) {
	span := trace.SpanFromContext(ctx)
	span.SetAttributes(
		KindAttribute.String(event.Kind.String()),
		ScopeAttribute.String(event.Scope.String()),
	)
	if event.Err != nil {
		span.RecordError(event.Err)
		span.SetStatus(codes.Error, event.Err.Error())
	}
	span.End()
}

func (o *Observer) OnCacheHit(haywire.Key) {}
