package shared

import "fmt"

// Nameable is implemented by stored values (callables) that take the name
// of the key they are filed under.
type Nameable interface {
	SetDisplayName(name string)
}

// EntrySet is the event fired after a key is inserted or changed.
type EntrySet[K comparable, V any] struct {
	Key   K
	Value V
}

// ReactiveMap is a LockedMap that broadcasts every successful set and
// removal. Setting a key to a value equal to its current one is a no-op and
// fires nothing. Events are fired after the write lock is released.
type ReactiveMap[K comparable, V any] struct {
	entries *LockedMap[K, V]
	equal   func(a, b V) bool

	OnSet    *Broadcaster[EntrySet[K, V]]
	OnRemove *Broadcaster[K]
}

// NewReactiveMap creates an empty reactive map. equal decides whether a set
// is a no-op; a nil equal treats every set as a change.
func NewReactiveMap[K comparable, V any](equal func(a, b V) bool) *ReactiveMap[K, V] {
	return &ReactiveMap[K, V]{
		entries:  NewLockedMap[K, V](),
		equal:    equal,
		OnSet:    NewBroadcaster[EntrySet[K, V]](),
		OnRemove: NewBroadcaster[K](),
	}
}

func keyName[K comparable](key K) string {
	if s, ok := any(key).(string); ok {
		return s
	}
	return fmt.Sprint(key)
}

// Get returns the value stored under key.
func (rm *ReactiveMap[K, V]) Get(key K) (V, bool) { return rm.entries.Get(key) }

// Has reports whether key is present.
func (rm *ReactiveMap[K, V]) Has(key K) bool { return rm.entries.Has(key) }

// Len returns the number of entries.
func (rm *ReactiveMap[K, V]) Len() int { return rm.entries.Len() }

// Keys returns a snapshot of the keys.
func (rm *ReactiveMap[K, V]) Keys() []K { return rm.entries.Keys() }

// Range iterates without locking; see LockedMap.Range.
func (rm *ReactiveMap[K, V]) Range(fn func(key K, value V) bool) { rm.entries.Range(fn) }

// Set stores value under key and reports whether the map changed.
func (rm *ReactiveMap[K, V]) Set(key K, value V) bool {
	changed := false
	rm.entries.Update(key, func(cur V, ok bool) (V, bool) {
		if ok && rm.equal != nil && rm.equal(cur, value) {
			return cur, true
		}
		if n, isNameable := any(value).(Nameable); isNameable {
			n.SetDisplayName(keyName(key))
		}
		changed = true
		return value, true
	})
	if changed {
		rm.OnSet.Fire(EntrySet[K, V]{Key: key, Value: value})
	}
	return changed
}

// Add inserts a new entry and fails with ErrKeyExists if key is present.
func (rm *ReactiveMap[K, V]) Add(key K, value V) error {
	if !rm.TryAdd(key, value) {
		return ErrKeyExists
	}
	return nil
}

// TryAdd inserts a new entry and reports whether it was inserted.
func (rm *ReactiveMap[K, V]) TryAdd(key K, value V) bool {
	added := false
	rm.entries.Update(key, func(cur V, ok bool) (V, bool) {
		if ok {
			return cur, true
		}
		if n, isNameable := any(value).(Nameable); isNameable {
			n.SetDisplayName(keyName(key))
		}
		added = true
		return value, true
	})
	if added {
		rm.OnSet.Fire(EntrySet[K, V]{Key: key, Value: value})
	}
	return added
}

// Remove deletes key and reports whether it was present. Removing an absent
// key fires nothing.
func (rm *ReactiveMap[K, V]) Remove(key K) (V, bool) {
	old, ok := rm.entries.Remove(key)
	if ok {
		rm.OnRemove.Fire(key)
	}
	return old, ok
}

// Copy returns an independent map with the same entries and equality but no
// subscribers.
func (rm *ReactiveMap[K, V]) Copy() *ReactiveMap[K, V] {
	return &ReactiveMap[K, V]{
		entries:  rm.entries.Copy(),
		equal:    rm.equal,
		OnSet:    NewBroadcaster[EntrySet[K, V]](),
		OnRemove: NewBroadcaster[K](),
	}
}
