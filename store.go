package haywire

import (
	"errors"
	"fmt"
	"io"
	"reflect"
	"sync"
)

// store caches the values of one scope: a container holds the singleton one, every request its
// own request and supplier ones.
type store struct {
	mu      sync.Mutex
	entries map[Key]*future

	// successfully realized keys, in realization order
	realized []Key
}

type storedComponent struct {
	key   Key
	value reflect.Value
}

func newStore() *store {
	return &store{
		entries: make(map[Key]*future),
	}
}

func (s *store) lookup(k Key) (*future, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, found := s.entries[k]
	return f, found
}

func (s *store) has(k Key) bool {
	_, found := s.lookup(k)
	return found
}

// acquire returns the entry of k, installing a new one if there is none. The caller installing
// the entry is the owner and must settle it.
func (s *store) acquire(k Key) (f *future, owner bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if f, found := s.entries[k]; found {
		return f, false
	}
	f = newFuture()
	s.entries[k] = f
	return f, true
}

// settle completes the entry of k owned by the caller, a failed entry is removed when evict is set.
func (s *store) settle(k Key, f *future, v reflect.Value, err error, evict bool) {
	s.mu.Lock()
	if err != nil && evict {
		if s.entries[k] == f {
			delete(s.entries, k)
		}
	} else if err == nil {
		s.realized = append(s.realized, k)
	}
	s.mu.Unlock()

	f.complete(v, err)
}

func (s *store) components() []storedComponent {
	s.mu.Lock()
	defer s.mu.Unlock()
	res := make([]storedComponent, 0, len(s.realized))
	for _, k := range s.realized {
		if f, found := s.entries[k]; found {
			res = append(res, storedComponent{key: k, value: f.value})
		}
	}
	return res
}

// close closes every realized component implementing io.Closer, in reverse realization order,
// and empties the store.
func (s *store) close() error {
	components := s.components()

	s.mu.Lock()
	s.entries = make(map[Key]*future)
	s.realized = nil
	s.mu.Unlock()

	closeErrors := make([]error, 0)
	for i := len(components) - 1; i >= 0; i-- {
		comp := components[i]
		if !comp.value.IsValid() || !comp.value.CanInterface() {
			continue
		}
		closer, ok := comp.value.Interface().(io.Closer)
		if !ok || closer == nil {
			continue
		}
		if err := closer.Close(); err != nil {
			closeErrors = append(
				closeErrors,
				fmt.Errorf("failed to close component %s:\n\t%w", comp.key, err),
			)
		}
	}

	return errors.Join(closeErrors...)
}
