package vm

import (
	"strings"

	"github.com/emirpasic/gods/maps/linkedhashmap"
)

// Hash is an insertion-ordered map from values to values. Keys are matched
// by Eql through their HashKey. Default is returned by Fetch for absent keys.
// Mutating a Hash is not synchronized.
type Hash struct {
	*Object
	Default Value

	entries *linkedhashmap.Map // HashKey -> hashEntry
}

type hashEntry struct {
	key   Value
	value Value
}

// NewHash creates an empty hash whose default is nil.
func (rt *Runtime) NewHash() *Hash {
	return &Hash{Object: rt.newHeader(KindHash), Default: rt.Nil, entries: linkedhashmap.New()}
}

func (h *Hash) Kind() Kind { return KindHash }

// Len returns the number of entries.
func (h *Hash) Len() int { return h.entries.Size() }

// Get returns the value stored under key.
func (h *Hash) Get(key Value) (Value, bool) {
	raw, ok := h.entries.Get(HashKey(key))
	if !ok {
		return nil, false
	}
	return raw.(hashEntry).value, true
}

// Fetch returns the value stored under key, or the hash's default.
func (h *Hash) Fetch(key Value) Value {
	if v, ok := h.Get(key); ok {
		return v
	}
	return h.Default
}

// Set stores value under key. Replacing an existing key keeps its position
// and its original key object.
func (h *Hash) Set(key, value Value) {
	k := HashKey(key)
	if raw, ok := h.entries.Get(k); ok {
		key = raw.(hashEntry).key
	}
	h.entries.Put(k, hashEntry{key: key, value: value})
}

// Delete removes key and returns its value.
func (h *Hash) Delete(key Value) (Value, bool) {
	k := HashKey(key)
	raw, ok := h.entries.Get(k)
	if !ok {
		return nil, false
	}
	h.entries.Remove(k)
	return raw.(hashEntry).value, true
}

// Each calls fn for every entry in insertion order until fn returns false.
func (h *Hash) Each(fn func(key, value Value) bool) {
	it := h.entries.Iterator()
	for it.Next() {
		e := it.Value().(hashEntry)
		if !fn(e.key, e.value) {
			return
		}
	}
}

// Keys returns the keys in insertion order.
func (h *Hash) Keys() []Value {
	keys := make([]Value, 0, h.Len())
	h.Each(func(k, _ Value) bool {
		keys = append(keys, k)
		return true
	})
	return keys
}

// Values returns the values in insertion order.
func (h *Hash) Values() []Value {
	vals := make([]Value, 0, h.Len())
	h.Each(func(_, v Value) bool {
		vals = append(vals, v)
		return true
	})
	return vals
}

func (h *Hash) copyEntries() *linkedhashmap.Map {
	out := linkedhashmap.New()
	it := h.entries.Iterator()
	for it.Next() {
		out.Put(it.Key(), it.Value())
	}
	return out
}

func (h *Hash) Inspect() string {
	if h.Len() == 0 {
		return "{}"
	}
	var b strings.Builder
	b.WriteByte('{')
	first := true
	h.Each(func(k, v Value) bool {
		if !first {
			b.WriteString(", ")
		}
		first = false
		b.WriteString(k.Inspect())
		b.WriteString(" => ")
		b.WriteString(v.Inspect())
		return true
	})
	b.WriteByte('}')
	return b.String()
}

func (h *Hash) LightInspect() string { return h.Inspect() }
