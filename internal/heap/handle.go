// Package heap implements the tracing garbage-collected object heap:
// object model, page-based allocation, mark/sweep collection with
// ephemeron-style weak maps, and the embedder root API (protect/enter/leave).
package heap

// Handle is a stable reference to a heap object. Handle(0) is always invalid
// and never returned by an allocation.
type Handle uint32
