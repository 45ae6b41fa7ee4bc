package haywire

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

type (
	// Observer is notified of the strategy invocations of a container, it must be safe for
	// concurrent use.
	Observer interface {
		// BeforeInvoke is called before the strategy of key runs, the returned context is the one
		// handed to the strategy and to AfterInvoke.
		BeforeInvoke(ctx context.Context, key Key) context.Context
		AfterInvoke(ctx context.Context, event InvokeEvent)
		// OnCacheHit is called when a scoped value is served from the container cache.
		OnCacheHit(key Key)
	}

	InvokeEvent struct {
		Key      Key
		Kind     StrategyKind
		Scope    Scope
		Duration time.Duration
		Err      error
	}

	observers []Observer

	loggingObserver struct {
		logger zerolog.Logger
	}
)

func (o observers) BeforeInvoke(ctx context.Context, key Key) context.Context {
	for _, obs := range o {
		ctx = obs.BeforeInvoke(ctx, key)
	}
	return ctx
}

func (o observers) AfterInvoke(ctx context.Context, event InvokeEvent) {
	for i := len(o) - 1; i >= 0; i-- {
		o[i].AfterInvoke(ctx, event)
	}
}

func (o observers) OnCacheHit(key Key) {
	for _, obs := range o {
		obs.OnCacheHit(key)
	}
}

func (l loggingObserver) BeforeInvoke(ctx context.Context, _ Key) context.Context {
	return ctx
}

func (l loggingObserver) AfterInvoke(_ context.Context, event InvokeEvent) {
	if event.Err != nil {
		l.logger.Debug().
			Err(event.Err).
			Stringer("key", event.Key).
			Stringer("kind", event.Kind).
			Stringer("scope", event.Scope).
			Dur("duration", event.Duration).
			Msg("strategy failed")
		return
	}
	l.logger.Debug().
		Stringer("key", event.Key).
		Stringer("kind", event.Kind).
		Stringer("scope", event.Scope).
		Dur("duration", event.Duration).
		Msg("strategy invoked")
}

func (l loggingObserver) OnCacheHit(key Key) {
	l.logger.Debug().Stringer("key", key).Msg("cache hit")
}
