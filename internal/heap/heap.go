package heap

import (
	"picgc/internal/trace"
)

// CallInfo is one call frame's contribution to the mark roots: its
// lexical register frame, if any.
type CallInfo struct {
	Cxt Handle
}

// Library is one entry of the library table root source.
type Library struct {
	Name    Value
	Env     Handle
	Exports Value
}

// Roots holds every mutable root source the mark phase scans each
// cycle, mirroring spec.md §4.5 items 1-7. The embedder (evaluator)
// mutates these fields directly between allocations; there is no other
// API for exposing roots.
type Roots struct {
	Stack      []Value     // operand stack
	CallInfo   []CallInfo  // call-info stack, most recent last
	Checkpoint Handle      // current dynamic-wind checkpoint, 0 = none
	Globals    Value
	Macros     Value
	Err        Value
	Features   Value
	Libraries  []Library
	Ireps      []*Irep // every registered compiled procedure's literal pool
}

// Backend selects which page allocator a Heap uses.
type Backend uint8

const (
	// BackendFreeList is the classical Knuth-style free-list allocator.
	BackendFreeList Backend = iota
	// BackendBitmap keeps mark/used bits in a side array per page.
	BackendBitmap
)

// Options configures a new Heap. The zero Options is valid and picks
// sane defaults (free-list backend, 7/8 growth threshold).
type Options struct {
	Backend           Backend
	PageUnits         int // capacity of one page, in allocation units
	GrowthNumerator   int // request another page when inuse*Denom >= total*Numer
	GrowthDenominator int
	Stress            bool // run collect() at the top of every allocation
	Tracer            trace.Tracer
	AllocFunc         AllocFunc // byte allocator shim for Malloc/Realloc/Calloc/Free; defaults to defaultAllocFunc
	UserData          any       // opaque value passed through to AllocFunc unchanged
}

func (o Options) normalized() Options {
	if o.PageUnits <= 0 {
		o.PageUnits = 1024
	}
	if o.GrowthNumerator <= 0 || o.GrowthDenominator <= 0 {
		o.GrowthNumerator, o.GrowthDenominator = 7, 8
	}
	if o.Tracer == nil {
		o.Tracer = trace.Nop
	}
	if o.AllocFunc == nil {
		o.AllocFunc = defaultAllocFunc
	}
	return o
}

// Heap is the embedder-facing GC state: one heap per interpreter
// instance, with no process-wide singleton and no locking (spec.md §5).
type Heap struct {
	opts    Options
	backend backend
	arena   arena
	oblist  map[string]Handle // interned symbol name -> SYMBOL object handle
	objects map[Handle]*Object
	nextH   Handle

	weaksHead Handle // transient chain of WEAK objects seen this mark cycle

	traceParent uint64 // span ID of the enclosing phase, for ScopeObject spans

	enabled bool

	Roots Roots

	allocCount uint64
	freeCount  uint64
}

// Open initializes a new heap. There is no process-wide singleton;
// every operation takes the *Heap explicitly.
func Open(opts Options) *Heap {
	opts = opts.normalized()

	h := &Heap{
		opts:    opts,
		oblist:  make(map[string]Handle),
		objects: make(map[Handle]*Object),
		enabled: true,
	}

	switch opts.Backend {
	case BackendBitmap:
		h.backend = newBitmapBackend(opts.PageUnits)
	default:
		h.backend = newFreeListBackend(opts.PageUnits)
	}
	h.backend.morecore()

	return h
}

// Close frees every page and the heap's own bookkeeping. Finalizers are
// not run — embedders are expected to have already terminated all live
// state before calling Close.
func (h *Heap) Close() {
	h.backend.close()
	h.objects = nil
	h.oblist = nil
	h.arena.handles = nil
}

// SetTracer replaces the heap's observability hook.
func (h *Heap) SetTracer(t trace.Tracer) {
	if t == nil {
		t = trace.Nop
	}
	h.opts.Tracer = t
}

// SetEnabled toggles whether Collect performs a collection at all.
func (h *Heap) SetEnabled(v bool) { h.enabled = v }

// Protect pushes h's handle onto the arena, protecting it until the
// matching Leave. Value kinds that carry no handle pass through
// unchanged.
func (h *Heap) Protect(v Value) Value {
	if v.Kind != VObject {
		return v
	}
	h.arena.protect(v.H)
	return v
}

// Enter returns a mark to later Leave to.
func (h *Heap) Enter() int { return h.arena.enter() }

// Leave truncates the arena back to mark, popping every handle
// protected since the matching Enter.
func (h *Heap) Leave(mark int) error { return h.arena.leave(mark) }

// Get resolves a handle to its object, or a *GCError if the handle is
// invalid, unknown, or refers to an already-swept object.
func (h *Heap) Get(hnd Handle) (*Object, error) {
	if hnd == 0 || hnd > h.nextH {
		return nil, newErr(PanicInvalidHandle, "invalid handle %d", hnd)
	}
	obj, ok := h.objects[hnd]
	if !ok {
		return nil, newErr(PanicUseAfterFree, "handle %d refers to a swept object", hnd)
	}
	return obj, nil
}

// MustGet is Get with a panic on error, for call sites that already know
// the handle is protected and therefore live.
func (h *Heap) MustGet(hnd Handle) *Object {
	obj, err := h.Get(hnd)
	if err != nil {
		panic(err)
	}
	return obj
}

// Stats is a read-only snapshot of heap occupancy, used by the CLI
// dashboard and by internal/snapshot.
type Stats struct {
	Objects     int
	ArenaSize   int
	ByKind      map[ObjectKind]int
	Allocs      uint64
	Frees       uint64
	Pages       int
	InuseUnits  int
	TotalUnits  int
	WeakEntries int
}

// AllocUnsafe reserves units for a new object of the given kind, running
// collect() and then morecore() as fallbacks before giving up, mirroring
// heap_alloc's escalation in the original allocator. It registers the
// returned object under a fresh handle, but leaves it unprotected: a
// subsequent allocation may collect and reclaim it before the caller
// stores it under a root. Only Alloc, or a caller about to link the
// object under an existing root before any further allocation can run,
// should use this directly.
func (h *Heap) AllocUnsafe(units int, kind ObjectKind) *Object {
	if h.opts.Stress {
		h.Collect()
	}

	obj := h.backend.alloc(units)
	if obj == nil {
		h.Collect()
		obj = h.backend.alloc(units)
	}
	if obj == nil {
		h.backend.morecore()
		obj = h.backend.alloc(units)
	}
	if obj == nil {
		oomPanic()
	}

	h.nextH++
	obj.handle = h.nextH
	obj.Kind = kind
	h.objects[obj.handle] = obj
	h.allocCount++
	return obj
}

// Alloc is AllocUnsafe plus an automatic arena push: the returned
// object survives any allocation that happens before the caller's next
// Leave, without the caller having to Protect it by hand. This is the
// default embedder-facing allocation entry point; every New* constructor
// in this package goes through it too.
func (h *Heap) Alloc(units int, kind ObjectKind) *Object {
	obj := h.AllocUnsafe(units, kind)
	h.arena.protect(obj.handle)
	return obj
}

// unitsFor computes the nominal accounting cost of an object with the
// given amount of variable-length payload (vector/dict length, blob or
// string byte length). Fixed-shape variants pass extra=0.
func unitsFor(extra int) int {
	if extra < 0 {
		extra = 0
	}
	return 1 + extra
}

// Stats reports current heap occupancy.
func (h *Heap) Stats() Stats {
	pages, inuse, total := h.backend.occupancy()
	s := Stats{
		Objects:    len(h.objects),
		ArenaSize:  h.arena.depth(),
		ByKind:     make(map[ObjectKind]int),
		Allocs:     h.allocCount,
		Frees:      h.freeCount,
		Pages:      pages,
		InuseUnits: inuse,
		TotalUnits: total,
	}
	for _, obj := range h.objects {
		s.ByKind[obj.Kind]++
		if obj.Kind == OWeak {
			s.WeakEntries += len(obj.Weak)
		}
	}
	return s
}
