// Package snapshot captures a point-in-time summary of a heap.Heap's
// occupancy and serializes it with msgpack, the same wire format the
// teacher codebase uses for its module cache.
package snapshot

import (
	"fmt"
	"os"

	"github.com/vmihailenco/msgpack/v5"

	"picgc/internal/heap"
)

// schemaVersion is bumped whenever HeapSnapshot's shape changes.
const schemaVersion uint16 = 1

// HeapSnapshot is a serializable summary of heap.Stats, suitable for
// diffing occupancy across separate `picgc inspect --dump` runs.
type HeapSnapshot struct {
	Schema      uint16
	Objects     int
	ArenaSize   int
	Pages       int
	InuseUnits  int
	TotalUnits  int
	WeakEntries int
	ByKind      map[string]int
}

// Capture builds a HeapSnapshot from h's current Stats().
func Capture(h *heap.Heap) *HeapSnapshot {
	stats := h.Stats()
	byKind := make(map[string]int, len(stats.ByKind))
	for kind, n := range stats.ByKind {
		byKind[kind.String()] = n
	}
	return &HeapSnapshot{
		Schema:      schemaVersion,
		Objects:     stats.Objects,
		ArenaSize:   stats.ArenaSize,
		Pages:       stats.Pages,
		InuseUnits:  stats.InuseUnits,
		TotalUnits:  stats.TotalUnits,
		WeakEntries: stats.WeakEntries,
		ByKind:      byKind,
	}
}

// Dump captures h and writes it to path, replacing any existing file
// atomically via a temp-file rename.
func Dump(path string, h *heap.Heap) error {
	return dumpRaw(path, Capture(h))
}

func dumpRaw(path string, snap *HeapSnapshot) error {
	f, err := os.CreateTemp(dirOf(path), "picgc-snapshot-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmp := f.Name()
	defer os.Remove(tmp)

	enc := msgpack.NewEncoder(f)
	if err := enc.Encode(snap); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// Load reads a HeapSnapshot previously written by Dump.
func Load(path string) (*HeapSnapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var snap HeapSnapshot
	dec := msgpack.NewDecoder(f)
	if err := dec.Decode(&snap); err != nil {
		return nil, fmt.Errorf("%s: failed to decode snapshot: %w", path, err)
	}
	if snap.Schema != schemaVersion {
		return nil, fmt.Errorf("%s: snapshot schema %d, want %d", path, snap.Schema, schemaVersion)
	}
	return &snap, nil
}

func dirOf(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if os.IsPathSeparator(path[i]) {
			return path[:i]
		}
	}
	return "."
}
