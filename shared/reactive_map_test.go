package shared

import (
	"runtime"
	"testing"
	"time"
)

type recorder struct {
	sets    []EntrySet[string, int]
	removes []string
}

func watch(rm *ReactiveMap[string, int], rec *recorder) {
	Subscribe(rm.OnSet, rec, func(r *recorder, ev EntrySet[string, int]) {
		r.sets = append(r.sets, ev)
	})
	Subscribe(rm.OnRemove, rec, func(r *recorder, key string) {
		r.removes = append(r.removes, key)
	})
}

func intEqual(a, b int) bool { return a == b }

func TestReactiveMapEqualSetFiresOnce(t *testing.T) {
	rm := NewReactiveMap[string, int](intEqual)
	rec := &recorder{}
	watch(rm, rec)

	if !rm.Set("k", 1) {
		t.Error("first Set should change the map")
	}
	if rm.Set("k", 1) {
		t.Error("setting an equal value should be a no-op")
	}
	if len(rec.sets) != 1 {
		t.Errorf("entry-set fired %d times, want 1", len(rec.sets))
	}
}

func TestReactiveMapDifferentValuesFireTwice(t *testing.T) {
	rm := NewReactiveMap[string, int](intEqual)
	rec := &recorder{}
	watch(rm, rec)

	rm.Set("k", 1)
	rm.Set("k", 2)
	if len(rec.sets) != 2 {
		t.Fatalf("entry-set fired %d times, want 2", len(rec.sets))
	}
	if rec.sets[1] != (EntrySet[string, int]{Key: "k", Value: 2}) {
		t.Errorf("second event = %+v", rec.sets[1])
	}
}

func TestReactiveMapRemove(t *testing.T) {
	rm := NewReactiveMap[string, int](intEqual)
	rec := &recorder{}
	watch(rm, rec)

	if _, ok := rm.Remove("missing"); ok {
		t.Error("removing an absent key should report false")
	}
	if len(rec.removes) != 0 {
		t.Errorf("removing an absent key fired %d events", len(rec.removes))
	}

	rm.Set("k", 1)
	if v, ok := rm.Remove("k"); !ok || v != 1 {
		t.Errorf("Remove = (%d, %v)", v, ok)
	}
	if len(rec.removes) != 1 || rec.removes[0] != "k" {
		t.Errorf("removes = %v, want [k]", rec.removes)
	}
}

func TestReactiveMapTryAdd(t *testing.T) {
	rm := NewReactiveMap[string, int](intEqual)
	rec := &recorder{}
	watch(rm, rec)

	if !rm.TryAdd("k", 1) {
		t.Error("TryAdd on new key should succeed")
	}
	if rm.TryAdd("k", 2) {
		t.Error("TryAdd on existing key should fail")
	}
	if err := rm.Add("k", 3); err == nil {
		t.Error("Add on existing key should fail")
	}
	if len(rec.sets) != 1 {
		t.Errorf("entry-set fired %d times, want 1", len(rec.sets))
	}
}

type namedThing struct{ name string }

func (n *namedThing) SetDisplayName(name string) { n.name = name }

func TestReactiveMapNamesCallables(t *testing.T) {
	rm := NewReactiveMap[string, *namedThing](nil)
	fn := &namedThing{}
	rm.Set("greet", fn)
	if fn.name != "greet" {
		t.Errorf("display name = %q, want greet", fn.name)
	}
}

func TestReactiveMapCopyDropsSubscribers(t *testing.T) {
	rm := NewReactiveMap[string, int](intEqual)
	rec := &recorder{}
	watch(rm, rec)
	rm.Set("a", 1)

	c := rm.Copy()
	c.Set("a", 2)
	if v, _ := rm.Get("a"); v != 1 {
		t.Errorf("original changed through copy: a = %d", v)
	}
	if len(rec.sets) != 1 {
		t.Errorf("copy fired into original's subscribers")
	}
}

type mirror struct {
	rm   *ReactiveMap[string, int]
	keys []string
}

func TestReactiveMapSetFromOnSet(t *testing.T) {
	m := &mirror{rm: NewReactiveMap[string, int](func(a, b int) bool { return a == b })}
	Subscribe(m.rm.OnSet, m, func(m *mirror, ev EntrySet[string, int]) {
		m.keys = append(m.keys, ev.Key)
		if ev.Key == "a" {
			m.rm.Set("b", ev.Value*10)
		}
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		m.rm.Set("a", 1)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Set from an OnSet callback did not return")
	}

	if v, _ := m.rm.Get("b"); v != 10 {
		t.Errorf("b = %d, want 10", v)
	}
	if len(m.keys) != 2 || m.keys[0] != "a" || m.keys[1] != "b" {
		t.Errorf("events = %v, want [a b]", m.keys)
	}
	runtime.KeepAlive(m)
}
