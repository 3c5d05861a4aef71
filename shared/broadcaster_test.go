package shared

import (
	"fmt"
	"runtime"
	"testing"
)

type listener struct {
	name string
	log  *[]string
}

func TestBroadcasterRegistrationOrder(t *testing.T) {
	b := NewBroadcaster[int]()
	var got []string
	a := &listener{name: "a", log: &got}
	c := &listener{name: "c", log: &got}
	d := &listener{name: "d", log: &got}
	for _, l := range []*listener{a, c, d} {
		Subscribe(b, l, func(o *listener, ev int) { *o.log = append(*o.log, o.name) })
	}

	if n := b.Fire(1); n != 3 {
		t.Errorf("Fire delivered %d, want 3", n)
	}
	want := []string{"a", "c", "d"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
	runtime.KeepAlive(a)
	runtime.KeepAlive(c)
	runtime.KeepAlive(d)
}

func TestBroadcasterResubscribeKeepsPosition(t *testing.T) {
	b := NewBroadcaster[int]()
	var got []string
	first := &listener{name: "first", log: &got}
	second := &listener{name: "second", log: &got}
	Subscribe(b, first, func(o *listener, ev int) { *o.log = append(*o.log, "old") })
	Subscribe(b, second, func(o *listener, ev int) { *o.log = append(*o.log, o.name) })
	Subscribe(b, first, func(o *listener, ev int) { *o.log = append(*o.log, o.name) })

	if b.Len() != 2 {
		t.Fatalf("Len = %d, want 2", b.Len())
	}
	b.Fire(0)
	if len(got) != 2 || got[0] != "first" || got[1] != "second" {
		t.Errorf("got %v, want [first second]", got)
	}
	runtime.KeepAlive(first)
	runtime.KeepAlive(second)
}

func TestBroadcasterUnsubscribe(t *testing.T) {
	b := NewBroadcaster[int]()
	l := &listener{name: "l", log: new([]string)}
	Subscribe(b, l, func(o *listener, ev int) {})
	if !Unsubscribe(b, l) {
		t.Error("Unsubscribe should find the owner")
	}
	if Unsubscribe(b, l) {
		t.Error("second Unsubscribe should report false")
	}
	if b.Fire(0) != 0 {
		t.Error("no callbacks should run after Unsubscribe")
	}
}

func subscribeTransient(b *Broadcaster[int], hits *int) {
	l := &listener{name: "transient", log: new([]string)}
	Subscribe(b, l, func(o *listener, ev int) { *hits++ })
}

func TestBroadcasterDropsCollectedOwners(t *testing.T) {
	b := NewBroadcaster[int]()
	hits := 0
	subscribeTransient(b, &hits)

	keeper := &listener{name: "keeper", log: new([]string)}
	kept := 0
	Subscribe(b, keeper, func(o *listener, ev int) { kept++ })

	delivered := -1
	for i := 0; i < 10 && delivered != 1; i++ {
		runtime.GC()
		delivered = b.Fire(i)
	}
	if delivered != 1 {
		t.Fatalf("Fire delivered %d after collection, want 1", delivered)
	}
	if b.Len() != 1 {
		t.Errorf("Len = %d, want 1 after pruning", b.Len())
	}
	if kept == 0 {
		t.Error("live owner should still receive events")
	}
	runtime.KeepAlive(keeper)
}

func TestBroadcasterFireFromCallbackIsQueued(t *testing.T) {
	b := NewBroadcaster[int]()
	var got []string
	first := &listener{name: "a", log: &got}
	second := &listener{name: "b", log: &got}
	Subscribe(b, first, func(o *listener, ev int) {
		*o.log = append(*o.log, fmt.Sprintf("%s%d", o.name, ev))
		if ev == 1 {
			if n := b.Fire(2); n != 0 {
				t.Errorf("nested Fire delivered %d, want 0 (queued)", n)
			}
			b.Fire(3)
		}
	})
	Subscribe(b, second, func(o *listener, ev int) {
		*o.log = append(*o.log, fmt.Sprintf("%s%d", o.name, ev))
	})

	if n := b.Fire(1); n != 2 {
		t.Errorf("Fire delivered %d, want 2", n)
	}
	want := []string{"a1", "b1", "a2", "b2", "a3", "b3"}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("order = %v, want %v", got, want)
	}
	runtime.KeepAlive(first)
	runtime.KeepAlive(second)
}

func TestBroadcasterSubscribeFromCallback(t *testing.T) {
	b := NewBroadcaster[int]()
	var got []string
	late := &listener{name: "late", log: &got}
	early := &listener{name: "early", log: &got}
	Subscribe(b, early, func(o *listener, ev int) {
		*o.log = append(*o.log, fmt.Sprintf("%s%d", o.name, ev))
		Subscribe(b, late, func(o *listener, ev int) {
			*o.log = append(*o.log, fmt.Sprintf("%s%d", o.name, ev))
		})
	})

	b.Fire(1)
	b.Fire(2)
	want := []string{"early1", "early2", "late2"}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("order = %v, want %v", got, want)
	}
	runtime.KeepAlive(late)
	runtime.KeepAlive(early)
}

func TestBroadcasterRecoversAfterPanic(t *testing.T) {
	b := NewBroadcaster[int]()
	l := &listener{name: "l", log: new([]string)}
	Subscribe(b, l, func(o *listener, ev int) {
		if ev == 0 {
			panic("boom")
		}
	})
	func() {
		defer func() { _ = recover() }()
		b.Fire(0)
	}()
	if n := b.Fire(1); n != 1 {
		t.Errorf("Fire after a panicking callback delivered %d, want 1", n)
	}
	runtime.KeepAlive(l)
}
