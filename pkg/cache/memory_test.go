package cache

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/medgate/medgate/core"
)

func record(userID string) *core.SessionRecord {
	return &core.SessionRecord{
		ID:        "s-" + userID,
		UserID:    userID,
		ExpiresAt: time.Now().Add(time.Hour),
	}
}

// Requirement: set then get round-trips; unknown keys miss with
// ErrCacheNotFound.
func TestInMemoryCache_GetSet(t *testing.T) {
	c := NewInMemoryCache(Config{})

	if _, err := c.Get("missing"); !errors.Is(err, core.ErrCacheNotFound) {
		t.Fatalf("Get(missing) error = %v, want ErrCacheNotFound", err)
	}

	if err := c.Set("h1", record("U1")); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	got, err := c.Get("h1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.UserID != "U1" {
		t.Errorf("Get() UserID = %q, want U1", got.UserID)
	}
}

// Requirement: entries expire after the TTL.
func TestInMemoryCache_TTL(t *testing.T) {
	c := NewInMemoryCache(Config{TTL: 20 * time.Millisecond})

	if err := c.Set("h1", record("U1")); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	time.Sleep(40 * time.Millisecond)

	if _, err := c.Get("h1"); !errors.Is(err, core.ErrCacheNotFound) {
		t.Fatalf("Get(expired) error = %v, want ErrCacheNotFound", err)
	}
	if c.Len() != 0 {
		t.Errorf("Len() = %d after expiry, want 0", c.Len())
	}
}

// Requirement: the cache never grows past MaxSize; something is evicted
// to make room.
func TestInMemoryCache_Eviction(t *testing.T) {
	c := NewInMemoryCache(Config{MaxSize: 3})

	for i := 0; i < 5; i++ {
		key := fmt.Sprintf("h%d", i)
		if err := c.Set(key, record(key)); err != nil {
			t.Fatalf("Set(%s) error = %v", key, err)
		}
	}
	if c.Len() > 3 {
		t.Errorf("Len() = %d, want at most 3", c.Len())
	}
	if c.Stats().Evictions == 0 {
		t.Error("no evictions recorded despite overflow")
	}
}

// Requirement: delete and clear remove entries; stats track operations.
func TestInMemoryCache_DeleteClearStats(t *testing.T) {
	c := NewInMemoryCache(Config{})

	_ = c.Set("h1", record("U1"))
	_ = c.Set("h2", record("U2"))
	if _, err := c.Get("h1"); err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	if err := c.Delete("h1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := c.Get("h1"); !errors.Is(err, core.ErrCacheNotFound) {
		t.Error("deleted entry still retrievable")
	}

	if err := c.Clear(); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if c.Len() != 0 {
		t.Errorf("Len() = %d after Clear(), want 0", c.Len())
	}

	stats := c.Stats()
	if stats.Sets != 2 || stats.Hits != 1 || stats.Deletes != 1 {
		t.Errorf("Stats() = %+v, want sets=2 hits=1 deletes=1", stats)
	}
}
