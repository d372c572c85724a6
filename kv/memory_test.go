package kv

import (
	"context"
	"testing"
	"time"
)

func TestMemoryVerbs(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	if err := m.Set(ctx, "sl:abc", "v1"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if got, ok := m.Get("sl:abc"); !ok || got != "v1" {
		t.Errorf("Get = (%q, %v)", got, ok)
	}
	if ok, _ := m.Exists(ctx, "sl:abc"); !ok {
		t.Error("Exists = false, want true")
	}

	if err := m.Del(ctx, "sl:abc"); err != nil {
		t.Fatalf("Del: %v", err)
	}
	if ok, _ := m.Exists(ctx, "sl:abc"); ok {
		t.Error("Exists = true after Del")
	}
}

func TestMemoryExpiry(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	m := NewMemory()
	m.Now = func() time.Time { return now }
	ctx := context.Background()

	m.Set(ctx, "sl:abc", "v1")
	m.Expire(ctx, "sl:abc", 10*time.Second)

	if ttl, ok := m.TTL("sl:abc"); !ok || ttl != 10*time.Second {
		t.Errorf("TTL = (%v, %v), want 10s", ttl, ok)
	}

	now = now.Add(9 * time.Second)
	if ok, _ := m.Exists(ctx, "sl:abc"); !ok {
		t.Error("entry lapsed early")
	}

	now = now.Add(time.Second)
	if ok, _ := m.Exists(ctx, "sl:abc"); ok {
		t.Error("entry survived its expiry")
	}
	if _, ok := m.Get("sl:abc"); ok {
		t.Error("expired entry still readable")
	}
}

func TestMemoryExpireOnMissingKeyIsANoOp(t *testing.T) {
	m := NewMemory()
	if err := m.Expire(context.Background(), "sl:none", time.Minute); err != nil {
		t.Fatalf("Expire: %v", err)
	}
	if ok, _ := m.Exists(context.Background(), "sl:none"); ok {
		t.Error("Expire created a key")
	}
}

func TestMemoryBatch(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	m.Set(ctx, "sl:old", "stale")

	b := m.Batch()
	b.Del("sl:old")
	b.Set("sl:new", "fresh")
	b.Expire("sl:new", time.Minute)
	b.Exists("sl:new")
	b.Exists("sl:old")

	results, err := b.Exec(ctx)
	if err != nil {
		t.Fatalf("Exec: %v", err)
	}
	if len(results) != 5 {
		t.Fatalf("got %d results, want 5", len(results))
	}
	// Results line up positionally with the queued commands.
	if results[2].Val != 1 {
		t.Errorf("expire result = %+v, want applied", results[2])
	}
	if results[3].Val != 1 {
		t.Errorf("exists(sl:new) = %d, want 1", results[3].Val)
	}
	if results[4].Val != 0 {
		t.Errorf("exists(sl:old) = %d, want 0", results[4].Val)
	}

	if _, ok := m.Get("sl:old"); ok {
		t.Error("sl:old survived the batch delete")
	}
	if got, _ := m.Get("sl:new"); got != "fresh" {
		t.Errorf("sl:new = %q", got)
	}
	if _, ok := m.TTL("sl:new"); !ok {
		t.Error("sl:new has no expiry")
	}
}

func TestMemorySetClearsPriorExpiry(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	m := NewMemory()
	m.Now = func() time.Time { return now }
	ctx := context.Background()

	m.Set(ctx, "sl:abc", "v1")
	m.Expire(ctx, "sl:abc", time.Second)
	m.Set(ctx, "sl:abc", "v2")

	now = now.Add(time.Hour)
	if got, ok := m.Get("sl:abc"); !ok || got != "v2" {
		t.Errorf("Get = (%q, %v), want rewritten entry without expiry", got, ok)
	}
}
