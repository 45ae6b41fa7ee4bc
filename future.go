package haywire

import (
	"context"
	"reflect"
)

// future is the result of one strategy invocation, shared by every resolver waiting for it.
type future struct {
	done  chan struct{}
	value reflect.Value
	err   error
}

func newFuture() *future {
	return &future{done: make(chan struct{})}
}

// complete must be called exactly once.
func (f *future) complete(v reflect.Value, err error) {
	f.value = v
	f.err = err
	close(f.done)
}

func (f *future) wait(ctx context.Context) (reflect.Value, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		return reflect.Value{}, ctx.Err()
	}
}

func (f *future) settled() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// succeeded reports whether the future settled without error.
func (f *future) succeeded() bool {
	return f.settled() && f.err == nil
}
