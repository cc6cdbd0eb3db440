package draft

import (
	"context"
	"testing"
)

type sample struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	in := sample{Name: "Opening", Count: 3}

	if err := store.Set(ctx, KeyMainEvent, in); err != nil {
		t.Fatalf("set: %v", err)
	}

	var out sample

	if !store.Get(ctx, KeyMainEvent, &out) {
		t.Fatal("get returned false for a stored key")
	}

	if out != in {
		t.Fatalf("expected %+v, got %+v", in, out)
	}
}

func TestMemoryStoreMissingKeyFallsBack(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	// the caller's fallback value must survive the miss untouched
	out := sample{Name: "fallback", Count: 42}

	if store.Get(ctx, "never-written", &out) {
		t.Fatal("get reported a hit on a missing key")
	}

	if out.Name != "fallback" || out.Count != 42 {
		t.Fatalf("fallback value mutated: %+v", out)
	}
}

func TestMemoryStoreCorruptValueFallsBack(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	store.mu.Lock()
	store.m[KeySubEvents] = []byte("{not valid json")
	store.mu.Unlock()

	var out []sample

	if store.Get(ctx, KeySubEvents, &out) {
		t.Fatal("corrupt value should read as absent")
	}
}

func TestMemoryStoreTypeMismatchFallsBack(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	if err := store.Set(ctx, KeyTasks, "just a string"); err != nil {
		t.Fatal(err)
	}

	// stored shape no longer matches what the reader expects
	var out sample

	if store.Get(ctx, KeyTasks, &out) {
		t.Fatal("mismatched value should read as absent")
	}
}

func TestMemoryStoreRemove(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	if err := store.Set(ctx, KeyDirectors, map[int]string{0: "u-1"}); err != nil {
		t.Fatal(err)
	}

	if err := store.Remove(ctx, KeyDirectors); err != nil {
		t.Fatal(err)
	}

	var out map[int]string

	if store.Get(ctx, KeyDirectors, &out) {
		t.Fatal("removed key still readable")
	}
}

func TestMemoryStoreClearAllCompleteness(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	for _, key := range WellKnownKeys() {
		if err := store.Set(ctx, key, sample{Name: key}); err != nil {
			t.Fatal(err)
		}
	}

	if err := store.ClearAll(ctx); err != nil {
		t.Fatal(err)
	}

	for _, key := range WellKnownKeys() {
		out := sample{Name: "fallback"}

		if store.Get(ctx, key, &out) {
			t.Fatalf("key %q returned stale data after ClearAll", key)
		}

		if out.Name != "fallback" {
			t.Fatalf("fallback for %q mutated: %+v", key, out)
		}
	}
}

func TestMemoryStoreReturnsDetachedCopies(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	if err := store.Set(ctx, KeySubEvents, []sample{{Name: "A"}}); err != nil {
		t.Fatal(err)
	}

	var first []sample
	store.Get(ctx, KeySubEvents, &first)

	first[0].Name = "mutated"

	var second []sample
	store.Get(ctx, KeySubEvents, &second)

	if second[0].Name != "A" {
		t.Fatalf("stored value shares memory with a read result: %+v", second)
	}
}
