package nookie

import "testing"

func TestBadgerStoreSetGet(t *testing.T) {
	dir := t.TempDir()
	store, err := OpenBadgerStore(dir, "http://proc.example.com/p")
	if err != nil {
		t.Fatalf("OpenBadgerStore: %v", err)
	}
	defer store.Close()

	if err := store.Set("session", "xyz", ""); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if got := store.Get("session"); got != "xyz" {
		t.Fatalf("Get = %q, want xyz", got)
	}
}

func TestBadgerStoreNamespacesByProcessor(t *testing.T) {
	dir := t.TempDir()
	storeA, err := OpenBadgerStore(dir, "http://a.example.com/proc")
	if err != nil {
		t.Fatalf("OpenBadgerStore a: %v", err)
	}
	defer storeA.Close()

	if err := storeA.Set("k", "v1", ""); err != nil {
		t.Fatalf("Set: %v", err)
	}

	storeB := &BadgerStore{db: storeA.db, prefix: "http://b.example.com/proc\x00"}
	if got := storeB.Get("k"); got != "" {
		t.Fatalf("storeB.Get(k) = %q, want empty (different processor namespace)", got)
	}
}

func TestBadgerStoreInvalidExpiry(t *testing.T) {
	dir := t.TempDir()
	store, err := OpenBadgerStore(dir, "http://proc.example.com/p")
	if err != nil {
		t.Fatalf("OpenBadgerStore: %v", err)
	}
	defer store.Close()

	if err := store.Set("k", "v", "5x"); err == nil {
		t.Fatalf("expected error for invalid expiry suffix")
	}
}
