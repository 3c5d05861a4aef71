package shared

import "testing"

func TestCacheEvictsOldestAtCapacity(t *testing.T) {
	const capacity = 50000
	c := NewCache[int, int](capacity)
	for i := 0; i <= capacity; i++ {
		c.Store(i, i*2)
	}
	if c.Len() != capacity {
		t.Errorf("Len = %d, want %d", c.Len(), capacity)
	}
	if c.Contains(0) {
		t.Error("key 0 should have been evicted")
	}
	if v, ok := c.Load(1); !ok || v != 2 {
		t.Errorf("Load(1) = (%d, %v), want (2, true)", v, ok)
	}
	if !c.Contains(capacity) {
		t.Error("newest key should be present")
	}
}

func TestCacheIsFIFONotLRU(t *testing.T) {
	c := NewCache[string, int](2)
	c.Store("a", 1)
	c.Store("b", 2)
	c.Load("a") // reads must not promote
	c.Store("c", 3)
	if c.Contains("a") {
		t.Error("a was inserted first and should be evicted")
	}
	if !c.Contains("b") || !c.Contains("c") {
		t.Error("b and c should remain")
	}
}

func TestCacheReplaceKeepsOrder(t *testing.T) {
	c := NewCache[string, int](2)
	c.Store("a", 1)
	c.Store("b", 2)
	c.Store("a", 10)
	if c.Len() != 2 {
		t.Fatalf("Len = %d, want 2", c.Len())
	}
	c.Store("c", 3)
	if c.Contains("a") {
		t.Error("replacing a must not move it behind b")
	}
	if v, _ := c.Load("b"); v != 2 {
		t.Errorf("b = %d, want 2", v)
	}
}

func TestCacheMinimumCapacity(t *testing.T) {
	c := NewCache[int, int](0)
	if c.Capacity() != 1 {
		t.Errorf("Capacity = %d, want 1", c.Capacity())
	}
	c.Store(1, 1)
	c.Store(2, 2)
	if c.Len() != 1 || !c.Contains(2) {
		t.Error("capacity-1 cache should hold only the newest key")
	}
}
