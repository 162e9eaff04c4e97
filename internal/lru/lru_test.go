package lru

import "testing"

func TestCache_PutGet(t *testing.T) {
	c := New[string, int](2)

	c.Put("a", 1)
	c.Put("b", 2)

	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Errorf("Get(a) = %d, %v; want 1, true", v, ok)
	}
	if v, ok := c.Get("b"); !ok || v != 2 {
		t.Errorf("Get(b) = %d, %v; want 2, true", v, ok)
	}
}

func TestCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c := New[string, int](2)

	c.Put("a", 1)
	c.Put("b", 2)

	// Touch "a" so "b" becomes the eviction candidate.
	c.Get("a")
	c.Put("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Error("expected b to be evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Error("expected a to survive eviction")
	}
	if _, ok := c.Get("c"); !ok {
		t.Error("expected c to be present")
	}
	if got := c.Evictions(); got != 1 {
		t.Errorf("Evictions() = %d, want 1", got)
	}
}

func TestCache_UpdateExistingKey(t *testing.T) {
	c := New[string, int](2)

	c.Put("a", 1)
	c.Put("a", 10)

	if v, _ := c.Get("a"); v != 10 {
		t.Errorf("Get(a) = %d, want 10", v)
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
}

func TestCache_ZeroCapacity(t *testing.T) {
	c := New[string, int](0)

	c.Put("a", 1)

	if _, ok := c.Get("a"); ok {
		t.Error("zero-capacity cache should never store entries")
	}
}

func TestCache_Purge(t *testing.T) {
	c := New[string, int](4)

	c.Put("a", 1)
	c.Put("b", 2)
	c.Purge()

	if c.Len() != 0 {
		t.Errorf("Len() after Purge = %d, want 0", c.Len())
	}
	if _, ok := c.Get("a"); ok {
		t.Error("entry survived Purge")
	}
}
