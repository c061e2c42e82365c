package cache

import (
	"testing"
	"time"
)

func TestSetGet(t *testing.T) {
	c := NewLRU[string](4, time.Minute)
	c.Set("2025-03", "march")
	got, ok := c.Get("2025-03")
	if !ok || got != "march" {
		t.Fatalf("Get = %q, %v", got, ok)
	}
	if _, ok := c.Get("2025-04"); ok {
		t.Fatalf("missing key must not hit")
	}
}

func TestEvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLRU[int](2, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Get("a") // refresh a, making b the eviction candidate
	c.Set("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Fatalf("b should have been evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Fatalf("a should survive")
	}
	if _, ok := c.Get("c"); !ok {
		t.Fatalf("c should be present")
	}
}

func TestExpiredEntryReadsAsMissing(t *testing.T) {
	c := NewLRU[int](4, -time.Second)
	c.Set("a", 1)
	if _, ok := c.Get("a"); ok {
		t.Fatalf("expired entry must miss")
	}
	if c.Len() != 0 {
		t.Fatalf("expired entry must be dropped on access, len = %d", c.Len())
	}
}

func TestDeleteAndPurge(t *testing.T) {
	c := NewLRU[int](4, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Delete("a")
	c.Delete("a") // deleting twice is fine
	if _, ok := c.Get("a"); ok {
		t.Fatalf("deleted key must miss")
	}
	c.Purge()
	if c.Len() != 0 {
		t.Fatalf("purge must empty the cache")
	}
}

func TestSweepDropsExpired(t *testing.T) {
	c := NewLRU[int](4, -time.Second)
	c.Set("a", 1)
	c.Set("b", 2)
	if n := c.Sweep(); n != 2 {
		t.Fatalf("Sweep = %d, want 2", n)
	}
	if c.Len() != 0 {
		t.Fatalf("len = %d after sweep", c.Len())
	}
}

func TestSetRefreshesExisting(t *testing.T) {
	c := NewLRU[int](2, time.Minute)
	c.Set("a", 1)
	c.Set("a", 2)
	if c.Len() != 1 {
		t.Fatalf("len = %d, want 1", c.Len())
	}
	got, _ := c.Get("a")
	if got != 2 {
		t.Fatalf("value = %d, want 2", got)
	}
}

func TestJanitorSweeps(t *testing.T) {
	c := NewLRU[int](4, -time.Second)
	c.Set("a", 1)

	j := NewJanitor()
	j.Register(c)
	j.Start(5 * time.Millisecond)

	deadline := time.After(time.Second)
	for c.Len() != 0 {
		select {
		case <-deadline:
			t.Fatalf("janitor never swept")
		case <-time.After(5 * time.Millisecond):
		}
	}
	j.Stop()
}
