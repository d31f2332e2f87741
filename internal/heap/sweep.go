package heap

import (
	"fmt"

	"picgc/internal/trace"
)

// Collect runs one full mark-and-sweep cycle: mark every root, resolve
// the ephemeron fixed point, purge dead weak-map entries and dead
// interned symbols, sweep every page, and grow the heap if occupancy
// crossed the configured threshold. It is a no-op if the heap was
// disabled via SetEnabled(false).
func (h *Heap) Collect() {
	if !h.enabled {
		return
	}

	t := h.opts.Tracer
	collectSpan := trace.Begin(t, trace.ScopeCollector, "collect", 0)
	defer collectSpan.End("")

	markSpan := trace.Begin(t, trace.ScopePhase, "mark", collectSpan.ID())
	h.traceParent = markSpan.ID()
	h.weaksHead = 0
	h.markRoots()
	h.markEphemerons()
	markSpan.End("")

	sweepSpan := trace.Begin(t, trace.ScopePhase, "sweep", collectSpan.ID())
	h.traceParent = sweepSpan.ID()
	h.purgeWeaks()
	h.purgeOblist()
	inuse, total := h.backend.sweep(h.finalizeObject)
	sweepSpan.End(fmt.Sprintf("inuse=%d total=%d", inuse, total))

	if h.shouldGrow(inuse, total) {
		growSpan := trace.Begin(t, trace.ScopePage, "morecore", collectSpan.ID())
		h.backend.morecore()
		growSpan.End("")
	}
}

// shouldGrow reports whether occupancy has crossed the configured
// numerator/denominator threshold (default 7/8): grow once
// inuse/total >= numerator/denominator, checked without floating point
// as inuse*denominator >= total*numerator.
func (h *Heap) shouldGrow(inuse, total int) bool {
	if total == 0 {
		return true
	}
	return inuse*h.opts.GrowthDenominator >= total*h.opts.GrowthNumerator
}

// purgeWeaks drops every WEAK entry whose key did not survive marking,
// then unlinks the transient chain built during this cycle's mark phase.
func (h *Heap) purgeWeaks() {
	for wh := h.weaksHead; wh != 0; {
		wobj, ok := h.objects[wh]
		if !ok {
			break
		}
		next := wobj.WeakPrev
		for key := range wobj.Weak {
			kobj, ok := h.objects[key]
			if !ok || !h.backend.isMarked(kobj) {
				delete(wobj.Weak, key)
			}
		}
		wobj.WeakPrev = 0
		wh = next
	}
	h.weaksHead = 0
}

// purgeOblist drops every interned name whose SYMBOL object did not
// survive marking. This is the lazy purge: names are only ever removed
// here, once per collection, rather than eagerly when a symbol's last
// reference disappears.
func (h *Heap) purgeOblist() {
	for name, hnd := range h.oblist {
		obj, ok := h.objects[hnd]
		if !ok || !h.backend.isMarked(obj) {
			delete(h.oblist, name)
		}
	}
}
