package shared

import (
	"slices"
	"sync"
	"weak"
)

// Broadcaster is a multicast event source whose subscribers are keyed by an
// owner held weakly. Once an owner is collected its callback is dropped.
//
// Fire runs callbacks synchronously in registration order, and only one
// Fire delivers at a time. An event fired while another delivery is running
// (from a callback, or from another goroutine) is queued and delivered by
// the running Fire once the current event has reached every subscriber, so
// events are seen in the order they were fired. Callbacks run without the
// lock held and may fire, subscribe or unsubscribe on the same broadcaster;
// subscription changes take effect from the next event.
type Broadcaster[E any] struct {
	mu      sync.Mutex
	subs    []*subscriber[E]
	firing  bool
	pending []E
}

type subscriber[E any] struct {
	key     any                // weak.Pointer[O] of the owner
	deliver func(event E) bool // false once the owner is gone
}

// NewBroadcaster creates a broadcaster with no subscribers.
func NewBroadcaster[E any]() *Broadcaster[E] {
	return &Broadcaster[E]{}
}

// Subscribe registers fn for owner. The owner is not kept alive by the
// subscription, so fn must reach it through its first argument rather than
// capturing it. Subscribing an owner again replaces its callback and keeps
// its original position.
func Subscribe[O, E any](b *Broadcaster[E], owner *O, fn func(owner *O, event E)) {
	if owner == nil {
		return
	}
	wp := weak.Make(owner)
	sub := &subscriber[E]{
		key: wp,
		deliver: func(event E) bool {
			o := wp.Value()
			if o == nil {
				return false
			}
			fn(o, event)
			return true
		},
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for i, s := range b.subs {
		if s.key == any(wp) {
			b.subs[i] = sub
			return
		}
	}
	b.subs = append(b.subs, sub)
}

// Unsubscribe removes owner's callback and reports whether one was found.
func Unsubscribe[O, E any](b *Broadcaster[E], owner *O) bool {
	if owner == nil {
		return false
	}
	key := any(weak.Make(owner))

	b.mu.Lock()
	defer b.mu.Unlock()
	for i, s := range b.subs {
		if s.key == key {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			return true
		}
	}
	return false
}

// Fire delivers event to every live subscriber and returns how many
// callbacks ran for it. When another Fire is already delivering, event is
// queued behind it and Fire returns 0 immediately. Subscribers whose owner
// was collected are pruned.
func (b *Broadcaster[E]) Fire(event E) int {
	b.mu.Lock()
	if b.firing {
		b.pending = append(b.pending, event)
		b.mu.Unlock()
		return 0
	}
	b.firing = true
	b.mu.Unlock()

	done := false
	defer func() {
		if !done {
			// A callback panicked; drop the backlog so later Fires still run.
			b.mu.Lock()
			b.firing = false
			b.pending = nil
			b.mu.Unlock()
		}
	}()

	delivered := -1
	for {
		b.mu.Lock()
		subs := slices.Clone(b.subs)
		b.mu.Unlock()

		n := 0
		var dead []*subscriber[E]
		for _, s := range subs {
			if s.deliver(event) {
				n++
			} else {
				dead = append(dead, s)
			}
		}
		if delivered < 0 {
			delivered = n
		}

		b.mu.Lock()
		if len(dead) > 0 {
			b.subs = slices.DeleteFunc(b.subs, func(s *subscriber[E]) bool {
				return slices.Contains(dead, s)
			})
			logger().Debugf("broadcaster pruned %d dead subscribers", len(dead))
		}
		if len(b.pending) == 0 {
			b.firing = false
			b.pending = nil
			b.mu.Unlock()
			done = true
			return delivered
		}
		event = b.pending[0]
		b.pending = b.pending[1:]
		b.mu.Unlock()
	}
}

// Len returns the number of registered subscribers, including any whose
// owner has been collected but not yet pruned by Fire.
func (b *Broadcaster[E]) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
