// Package shared holds the concurrency-safe tables the runtime shares
// between logical threads: locked maps for globals and attribute tables,
// reactive maps that broadcast changes, a weak multicast broadcaster and a
// bounded FIFO cache.
package shared

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/tliron/commonlog"
)

// logger is looked up on every call: the backend is installed later, by
// the host binary.
func logger() commonlog.Logger { return commonlog.GetLogger("garnet.shared") }

// ErrKeyExists is returned by Add when the key is already present.
var ErrKeyExists = errors.New("key already exists")

// LockedMap is a map whose mutations each hold an exclusive lock for the
// duration of that single operation. Reads do not take the lock: Get, Range,
// Keys and Len may observe a state that is torn with respect to a writer
// running concurrently on the same map.
type LockedMap[K comparable, V any] struct {
	mu sync.Mutex // serializes writers
	m  sync.Map   // K -> V
	n  atomic.Int64
}

// NewLockedMap creates an empty map.
func NewLockedMap[K comparable, V any]() *LockedMap[K, V] {
	return &LockedMap[K, V]{}
}

func (lm *LockedMap[K, V]) load(key K) (V, bool) {
	raw, ok := lm.m.Load(key)
	if !ok {
		var zero V
		return zero, false
	}
	v, _ := raw.(V)
	return v, true
}

// Get returns the value stored under key.
func (lm *LockedMap[K, V]) Get(key K) (V, bool) {
	return lm.load(key)
}

// Has reports whether key is present.
func (lm *LockedMap[K, V]) Has(key K) bool {
	_, ok := lm.m.Load(key)
	return ok
}

// Add inserts a new entry and fails with ErrKeyExists if key is present.
func (lm *LockedMap[K, V]) Add(key K, value V) error {
	if !lm.TryAdd(key, value) {
		return ErrKeyExists
	}
	return nil
}

// TryAdd inserts a new entry and reports whether it was inserted.
func (lm *LockedMap[K, V]) TryAdd(key K, value V) bool {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	if _, ok := lm.m.Load(key); ok {
		return false
	}
	lm.m.Store(key, value)
	lm.n.Add(1)
	return true
}

// Set stores value under key, returning the previous value if there was one.
func (lm *LockedMap[K, V]) Set(key K, value V) (old V, existed bool) {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	old, existed = lm.load(key)
	lm.m.Store(key, value)
	if !existed {
		lm.n.Add(1)
	}
	return old, existed
}

// Remove deletes key and reports whether it was actually present.
func (lm *LockedMap[K, V]) Remove(key K) (V, bool) {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	old, ok := lm.load(key)
	if ok {
		lm.m.Delete(key)
		lm.n.Add(-1)
	}
	return old, ok
}

// Update runs fn under the write lock with the current entry for key. If fn
// returns keep, next is stored; otherwise any existing entry is removed.
// fn must not call back into the same map.
func (lm *LockedMap[K, V]) Update(key K, fn func(cur V, ok bool) (next V, keep bool)) (V, bool) {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	cur, ok := lm.load(key)
	next, keep := fn(cur, ok)
	switch {
	case keep:
		lm.m.Store(key, next)
		if !ok {
			lm.n.Add(1)
		}
	case ok:
		lm.m.Delete(key)
		lm.n.Add(-1)
	}
	return next, keep
}

// Clear removes every entry.
func (lm *LockedMap[K, V]) Clear() {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	lm.m.Range(func(k, _ any) bool {
		lm.m.Delete(k)
		return true
	})
	lm.n.Store(0)
}

// Range calls fn for each entry until fn returns false. Iteration order is
// unspecified.
func (lm *LockedMap[K, V]) Range(fn func(key K, value V) bool) {
	lm.m.Range(func(k, raw any) bool {
		v, _ := raw.(V)
		return fn(k.(K), v)
	})
}

// Keys returns a snapshot of the keys.
func (lm *LockedMap[K, V]) Keys() []K {
	keys := make([]K, 0, lm.Len())
	lm.Range(func(k K, _ V) bool {
		keys = append(keys, k)
		return true
	})
	return keys
}

// Len returns the number of entries.
func (lm *LockedMap[K, V]) Len() int {
	return int(lm.n.Load())
}

// Copy returns an independent map holding the same entries.
func (lm *LockedMap[K, V]) Copy() *LockedMap[K, V] {
	out := NewLockedMap[K, V]()
	lm.Range(func(k K, v V) bool {
		out.m.Store(k, v)
		out.n.Add(1)
		return true
	})
	return out
}
