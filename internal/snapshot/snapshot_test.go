package snapshot

import (
	"path/filepath"
	"testing"

	"picgc/internal/heap"
)

func TestDumpLoadRoundTrip(t *testing.T) {
	h := heap.Open(heap.Options{PageUnits: 64})
	defer h.Close()

	v := h.NewPair(heap.Int(1), heap.Null())
	h.Roots.Stack = []heap.Value{v}
	h.Collect()

	path := filepath.Join(t.TempDir(), "snap.msgpack")
	if err := Dump(path, h); err != nil {
		t.Fatal(err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	want := Capture(h)
	if got.Objects != want.Objects || got.ByKind["pair"] != want.ByKind["pair"] {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, want)
	}
}

func TestLoadRejectsWrongSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "old.msgpack")
	old := &HeapSnapshot{Schema: schemaVersion + 1}
	if err := dumpRaw(path, old); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected a schema mismatch error")
	}
}
