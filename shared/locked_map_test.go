package shared

import (
	"errors"
	"fmt"
	"sort"
	"testing"

	"golang.org/x/sync/errgroup"
)

func TestLockedMapAddAndTryAdd(t *testing.T) {
	m := NewLockedMap[string, int]()
	if err := m.Add("a", 1); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := m.Add("a", 2); !errors.Is(err, ErrKeyExists) {
		t.Errorf("second Add error = %v, want ErrKeyExists", err)
	}
	if m.TryAdd("a", 3) {
		t.Error("TryAdd on existing key should fail")
	}
	if v, _ := m.Get("a"); v != 1 {
		t.Errorf("Get(a) = %d, want 1", v)
	}
	if m.Len() != 1 {
		t.Errorf("Len = %d, want 1", m.Len())
	}
}

func TestLockedMapSetAndRemove(t *testing.T) {
	m := NewLockedMap[string, int]()
	if _, existed := m.Set("x", 1); existed {
		t.Error("first Set should report no previous value")
	}
	if old, existed := m.Set("x", 2); !existed || old != 1 {
		t.Errorf("Set = (%d, %v), want (1, true)", old, existed)
	}
	if old, ok := m.Remove("x"); !ok || old != 2 {
		t.Errorf("Remove = (%d, %v), want (2, true)", old, ok)
	}
	if _, ok := m.Remove("x"); ok {
		t.Error("Remove of absent key should report false")
	}
	if m.Len() != 0 {
		t.Errorf("Len = %d, want 0", m.Len())
	}
}

func TestLockedMapUpdate(t *testing.T) {
	m := NewLockedMap[string, int]()
	m.Update("n", func(cur int, ok bool) (int, bool) { return cur + 1, true })
	m.Update("n", func(cur int, ok bool) (int, bool) { return cur + 1, true })
	if v, _ := m.Get("n"); v != 2 {
		t.Errorf("n = %d, want 2", v)
	}
	m.Update("n", func(cur int, ok bool) (int, bool) { return 0, false })
	if m.Has("n") || m.Len() != 0 {
		t.Error("Update returning keep=false should delete the entry")
	}
}

func TestLockedMapCopyIsIndependent(t *testing.T) {
	m := NewLockedMap[string, int]()
	m.Set("a", 1)
	c := m.Copy()
	c.Set("b", 2)
	m.Set("a", 10)
	if v, _ := c.Get("a"); v != 1 {
		t.Errorf("copy saw original's write: a = %d", v)
	}
	if m.Has("b") {
		t.Error("original saw copy's insert")
	}
}

func TestLockedMapConcurrentWriters(t *testing.T) {
	m := NewLockedMap[string, int]()
	var g errgroup.Group
	for w := 0; w < 8; w++ {
		g.Go(func() error {
			for i := 0; i < 1000; i++ {
				key := fmt.Sprintf("%d-%d", w, i)
				if err := m.Add(key, i); err != nil {
					return err
				}
				m.Update("shared", func(cur int, ok bool) (int, bool) { return cur + 1, true })
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}
	if m.Len() != 8001 {
		t.Errorf("Len = %d, want 8001", m.Len())
	}
	if v, _ := m.Get("shared"); v != 8000 {
		t.Errorf("shared counter = %d, want 8000", v)
	}
	keys := m.Keys()
	sort.Strings(keys)
	if len(keys) != 8001 {
		t.Errorf("Keys returned %d keys", len(keys))
	}
}

func TestLockedMapClear(t *testing.T) {
	m := NewLockedMap[int, string]()
	for i := 0; i < 10; i++ {
		m.Set(i, "v")
	}
	m.Clear()
	if m.Len() != 0 || m.Has(3) {
		t.Error("Clear should empty the map")
	}
}
