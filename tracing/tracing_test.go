package tracing

import (
	"context"
	"errors"
	"testing"

	"github.com/a-peyrard/haywire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

type (
	clock   struct{}
	service struct {
		Clock *clock
	}
)

func TestObserver(t *testing.T) {
	clockID := haywire.Identifier[*clock]()
	serviceID := haywire.Identifier[*service]()

	newProvider := func() (*tracetest.SpanRecorder, *sdktrace.TracerProvider) {
		recorder := tracetest.NewSpanRecorder()
		return recorder, sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	}

	t.Run("it should record one span per invocation under the caller span", func(t *testing.T) {
		// GIVEN
		recorder, provider := newProvider()
		var strategySpan trace.SpanContext
		c, err := haywire.MustModule(
			haywire.Bind(clockID).WithAsyncGenerator(func(ctx context.Context) (*clock, error) {
				strategySpan = trace.SpanContextFromContext(ctx)
				return &clock{}, nil
			}),
			haywire.Must(haywire.Bind(serviceID).WithDependencies(clockID).WithConstructorProvider()),
		).ToContainer(haywire.WithObserver(NewObserver(provider)))
		require.NoError(t, err)
		ctx, parent := provider.Tracer("test").Start(context.Background(), "request")

		// WHEN
		_, err = haywire.GetAsync(ctx, c, serviceID)
		parent.End()

		// THEN
		require.NoError(t, err)
		spans := recorder.Ended()
		require.Len(t, spans, 3)
		invocations := make(map[string]sdktrace.ReadOnlySpan)
		for _, span := range spans[:2] {
			assert.Equal(t, spanName, span.Name())
			assert.Equal(t, parent.SpanContext().SpanID(), span.Parent().SpanID())
			for _, attr := range span.Attributes() {
				if attr.Key == KeyAttribute {
					invocations[attr.Value.AsString()] = span
				}
			}
		}
		require.Contains(t, invocations, clockID.Key().String())
		require.Contains(t, invocations, serviceID.Key().String())
		assert.Contains(t, invocations[clockID.Key().String()].Attributes(), KindAttribute.String("async-generator"))
		assert.Equal(t, invocations[clockID.Key().String()].SpanContext().SpanID(), strategySpan.SpanID())
	})

	t.Run("it should mark failed invocations", func(t *testing.T) {
		// GIVEN
		recorder, provider := newProvider()
		c, err := haywire.MustModule(
			haywire.Bind(clockID).Scoped(haywire.SingletonScope).WithGenerator(func() (*clock, error) {
				return nil, errors.New("boom")
			}),
		).ToContainer(haywire.WithObserver(NewObserver(provider)))
		require.NoError(t, err)

		// WHEN
		_, err = haywire.Get(c, clockID)

		// THEN
		require.Error(t, err)
		spans := recorder.Ended()
		require.Len(t, spans, 1)
		assert.Equal(t, codes.Error, spans[0].Status().Code)
		assert.Contains(t, spans[0].Attributes(), attribute.String("haywire.scope", "singleton"))
		require.Len(t, spans[0].Events(), 1)
		assert.Equal(t, "exception", spans[0].Events()[0].Name)
	})
}
