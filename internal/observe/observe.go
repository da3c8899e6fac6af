// Package observe provides a single-slot, latest-value-wins broadcast cell.
// It replaces framework-owned observables: writers publish snapshots, readers
// either poll the current value or subscribe for updates. Slow subscribers
// are never blocked on; a subscriber that falls behind sees only the most
// recent value.
package observe

import "sync"

// Value holds the latest published value of type T and broadcasts updates
// to subscribers. The zero value is not usable; construct with New.
type Value[T any] struct {
	mu      sync.Mutex
	current T
	set     bool
	subs    map[int]chan T
	nextID  int
}

func New[T any]() *Value[T] {
	return &Value[T]{subs: make(map[int]chan T)}
}

// Get returns the most recently published value, or the zero value if
// nothing has been published yet.
func (v *Value[T]) Get() T {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.current
}

// Set publishes a new value, replacing the current one and notifying all
// subscribers. A subscriber with an undelivered previous value has it
// replaced rather than queued.
func (v *Value[T]) Set(val T) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.current = val
	v.set = true
	for _, ch := range v.subs {
		// Drop the stale undelivered value, if any, then offer the new one.
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- val:
		default:
		}
	}
}

// Subscribe registers a new subscriber and returns its channel along with a
// cancel function. If a value has already been published, it is delivered
// immediately. The channel is closed on cancel.
func (v *Value[T]) Subscribe() (<-chan T, func()) {
	v.mu.Lock()
	defer v.mu.Unlock()

	id := v.nextID
	v.nextID++
	ch := make(chan T, 1)
	if v.set {
		ch <- v.current
	}
	v.subs[id] = ch

	cancel := func() {
		v.mu.Lock()
		defer v.mu.Unlock()
		if sub, ok := v.subs[id]; ok {
			delete(v.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}
