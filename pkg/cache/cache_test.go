package cache

import (
	"fmt"
	"testing"
	"time"
)

func TestGetMissThenHit(t *testing.T) {
	c := New[string, int](4, time.Minute)
	if _, ok := c.Get("a"); ok {
		t.Fatal("expected miss on empty cache")
	}
	c.Put("a", 1)
	v, ok := c.Get("a")
	if !ok || v != 1 {
		t.Fatalf("Get(a) = %v, %v", v, ok)
	}
}

func TestExpiryEvicts(t *testing.T) {
	c := New[string, int](4, 5*time.Minute)
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	now := base
	c.SetClock(func() time.Time { return now })

	c.Put("a", 1)
	now = base.Add(4 * time.Minute)
	if _, ok := c.Get("a"); !ok {
		t.Fatal("entry should still be fresh at 4m")
	}
	now = base.Add(5 * time.Minute)
	if _, ok := c.Get("a"); ok {
		t.Fatal("entry should be expired at exactly ttl")
	}
	if c.Len() != 0 {
		t.Errorf("expired entry should be evicted, len=%d", c.Len())
	}
}

func TestCapacityEvictsOldestInserted(t *testing.T) {
	const max = 5
	c := New[string, int](max, time.Minute)
	for i := 0; i < max+1; i++ {
		c.Put(fmt.Sprintf("k%d", i), i)
	}
	if _, ok := c.Get("k0"); ok {
		t.Error("first-inserted key should have been evicted")
	}
	for i := 1; i <= max; i++ {
		if _, ok := c.Get(fmt.Sprintf("k%d", i)); !ok {
			t.Errorf("k%d should still be cached", i)
		}
	}
}

func TestReinsertKeepsInsertionOrder(t *testing.T) {
	c := New[string, int](2, time.Minute)
	c.Put("a", 1)
	c.Put("b", 2)
	c.Put("a", 3) // refresh, not reinsert
	c.Put("c", 4) // "a" is still oldest-inserted, so it goes
	if _, ok := c.Get("a"); ok {
		t.Error("refreshed key should keep its insertion slot and be evicted first")
	}
	if v, ok := c.Get("b"); !ok || v != 2 {
		t.Errorf("Get(b) = %v, %v", v, ok)
	}
}

func TestStats(t *testing.T) {
	c := New[string, int](2, time.Minute)
	c.Put("a", 1)
	c.Get("a")
	c.Get("zz")
	hits, misses := c.Stats()
	if hits != 1 || misses != 1 {
		t.Errorf("stats = %d hits, %d misses", hits, misses)
	}
}
