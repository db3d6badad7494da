package cache

import (
	"testing"
	"time"

	"github.com/roomstead/roomstead/internal/clock"
)

type stepClock struct {
	at time.Time
}

func (c *stepClock) Now() time.Time { return c.at }

func TestTTLCacheExpiresWithClock(t *testing.T) {
	clk := &stepClock{at: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)}
	c := NewTTLCache[string, int](clk)

	c.Set("a", 1, time.Minute)
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Fatalf("expected hit, got %v %v", v, ok)
	}

	clk.at = clk.at.Add(2 * time.Minute)
	if _, ok := c.Get("a"); ok {
		t.Fatalf("expected expiry after TTL")
	}
}

func TestTTLCacheZeroTTLNeverExpires(t *testing.T) {
	clk := &stepClock{at: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)}
	c := NewTTLCache[string, int](clk)

	c.Set("a", 1, 0)
	clk.at = clk.at.Add(24 * time.Hour)
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Fatalf("expected hit, got %v %v", v, ok)
	}
}

func TestTTLCacheDelete(t *testing.T) {
	c := NewTTLCache[string, int](clock.SystemClock{})
	c.Set("a", 1, time.Minute)
	c.Delete("a")
	if _, ok := c.Get("a"); ok {
		t.Fatalf("expected miss after delete")
	}
}

func TestNoopCacheAlwaysMisses(t *testing.T) {
	var c NoopCache[string, int]
	c.Set("a", 1, time.Minute)
	if _, ok := c.Get("a"); ok {
		t.Fatalf("expected miss")
	}
}
