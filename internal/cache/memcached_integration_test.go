//go:build integration
// +build integration

package cache

import (
	"context"
	"testing"
	"time"
)

// TestMemcachedStore_GetSet_Integration needs a memcached on localhost:11211.
func TestMemcachedStore_GetSet_Integration(t *testing.T) {
	c, err := NewMemcachedStore("localhost:11211", 500*time.Millisecond, 2)
	if err != nil {
		t.Fatalf("NewMemcachedStore() error = %v", err)
	}
	defer c.Close()

	ctx := context.Background()
	want := testState("integration")
	if err := c.Set(ctx, want.ID, want, time.Minute); err != nil {
		t.Skipf("Set failed (memcached may not be running): %v", err)
	}

	got, ok, err := c.Get(ctx, want.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !ok {
		t.Fatal("Get() ok = false, want true")
	}
	if got.ID != want.ID || len(got.History) != len(want.History) {
		t.Errorf("Get() = %+v, want %+v", got, want)
	}

	if err := c.Delete(ctx, want.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, ok, _ := c.Get(ctx, want.ID); ok {
		t.Error("Get() after Delete should miss")
	}
}

func TestMemcachedStore_Get_Miss_Integration(t *testing.T) {
	c, err := NewMemcachedStore("localhost:11211", 500*time.Millisecond, 2)
	if err != nil {
		t.Fatalf("NewMemcachedStore() error = %v", err)
	}
	defer c.Close()

	_, ok, err := c.Get(context.Background(), "nonexistent")
	if err != nil {
		t.Skipf("Get failed (memcached may not be running): %v", err)
	}
	if ok {
		t.Error("Get() ok = true, want false for miss")
	}
}
