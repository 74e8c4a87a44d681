package app

import (
	"context"
	"fmt"
	"testing"
	"time"
)

func TestRegistryCapsClients(t *testing.T) {
	reg, _ := newRegistry(t, &upstream{})
	reg.MaxClients = 10

	for i := 0; i < 1000; i++ {
		reg.Get(fmt.Sprintf("anon-%d", i))
	}
	if reg.Len() != 10 {
		t.Fatalf("expected 10 clients kept, got %d", reg.Len())
	}
	// the most recent ones survive
	if _, ok := reg.apps["anon-999"]; !ok {
		t.Fatal("newest client was evicted")
	}
	if _, ok := reg.apps["anon-0"]; ok {
		t.Fatal("oldest client should be gone")
	}
}

func TestRegistryGetRefreshesRecency(t *testing.T) {
	reg, _ := newRegistry(t, &upstream{})
	reg.MaxClients = 2

	first := reg.Get("a")
	reg.Get("b")
	if reg.Get("a") != first {
		t.Fatal("Get must return the same App for a known id")
	}
	reg.Get("c")
	if _, ok := reg.apps["b"]; ok {
		t.Fatal("least recently used client should be evicted")
	}
	if _, ok := reg.apps["a"]; !ok {
		t.Fatal("recently used client was evicted")
	}
}

func TestRegistrySweepDropsIdle(t *testing.T) {
	reg, _ := newRegistry(t, &upstream{})
	now := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	reg.now = func() time.Time { return now }
	reg.Idle = 30 * time.Minute

	reg.Get("old")
	now = now.Add(20 * time.Minute)
	reg.Get("fresh")
	now = now.Add(15 * time.Minute)

	if n := reg.Sweep(); n != 1 {
		t.Fatalf("expected one idle client dropped, got %d", n)
	}
	if _, ok := reg.apps["fresh"]; !ok || reg.Len() != 1 {
		t.Fatalf("expected only fresh to remain, got %d", reg.Len())
	}
}

func TestEvictedClientRestoresSession(t *testing.T) {
	reg, a := loggedIn(t, &upstream{})
	reg.MaxClients = 1

	reg.Get("other")
	again := reg.Get("c1")
	if again == a {
		t.Fatal("expected a fresh App after eviction")
	}
	if v := again.Start(context.Background()); !v.LoggedIn {
		t.Fatalf("persisted session should restore after eviction, got %+v", v)
	}
}
