package haywire

import (
	"github.com/a-peyrard/haywire/set"
)

// tracker keeps the path of a depth-first walk to detect cycles.
type tracker struct {
	visiting set.Set[Key]
	stack    []Key
}

func newTracker() *tracker {
	return &tracker{
		visiting: set.New[Key](),
		stack:    make([]Key, 0),
	}
}

// push adds k to the path, if k is already on it, the cycle closed by k is returned and the path
// is left unchanged.
func (t *tracker) push(k Key) []Key {
	if t.visiting.Contains(k) {
		start := len(t.stack) - 1
		for ; start >= 0; start-- {
			if t.stack[start] == k {
				break
			}
		}
		cycle := make([]Key, 0, len(t.stack)-start+1)
		cycle = append(cycle, t.stack[start:]...)
		return append(cycle, k)
	}
	t.visiting.Add(k)
	t.stack = append(t.stack, k)

	return nil
}

func (t *tracker) pop() Key {
	if len(t.stack) == 0 {
		panic("tracker: pop from empty stack")
	}
	k := t.stack[len(t.stack)-1]
	t.stack = t.stack[:len(t.stack)-1]
	t.visiting.Remove(k)

	return k
}
