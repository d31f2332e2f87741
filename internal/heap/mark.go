package heap

import "picgc/internal/trace"

// handleOf extracts the object handle carried by v, or 0 if v is not a
// VObject value.
func handleOf(v Value) Handle {
	if v.Kind != VObject {
		return 0
	}
	return v.H
}

// markValue marks the object v points at, if any. Immediates are no-ops.
func (h *Heap) markValue(v Value) {
	if hnd := handleOf(v); hnd != 0 {
		h.markObject(hnd)
	}
}

// markObject grays hnd and walks its outgoing edges. Several variants
// tail-chain through a single dominant link field (PAIR/cdr, ENV/up,
// CONTEXT/up, ID/env, SYMBOL/name, IREP/cxt, CHECKPOINT/out,
// RECORD/datum) instead of recursing, so a long list or deep
// dynamic-wind chain doesn't grow the Go call stack with it.
func (h *Heap) markObject(hnd Handle) {
	for hnd != 0 {
		obj, ok := h.objects[hnd]
		if !ok {
			return
		}
		if h.backend.isMarked(obj) {
			return
		}
		h.backend.mark(obj)

		objSpan := trace.Begin(h.opts.Tracer, trace.ScopeObject, "mark:"+obj.Kind.String(), h.traceParent)

		next := Handle(0)
		switch obj.Kind {
		case OPair:
			h.markValue(obj.Car)
			next = handleOf(obj.Cdr)

		case OVector:
			for _, v := range obj.Vec {
				h.markValue(v)
			}

		case OBlob, OString, OPort:
			// leaf: no outgoing edges

		case ODict:
			for k, v := range obj.Dict {
				h.markValue(k)
				h.markValue(v)
			}

		case OWeak:
			// Deferred: key/value edges are only followed by the
			// ephemeron fixed point once a key is independently live.
			// Chaining here (rather than a separate slice) means a
			// WEAK object visited twice never gets pushed twice,
			// since the second visit hits the isMarked guard above.
			obj.WeakPrev = h.weaksHead
			h.weaksHead = hnd

		case OEnv:
			for id, val := range obj.EnvMap {
				h.markObject(id)
				h.markObject(val)
			}
			next = obj.EnvUp

		case OId:
			h.markObject(obj.IDInner)
			next = obj.IDEnv

		case OSymbol:
			next = obj.SymName

		case ORecord:
			h.markValue(obj.RecType)
			next = handleOf(obj.RecDatum)

		case OData:
			if obj.DataType != nil && obj.DataType.Mark != nil {
				obj.DataType.Mark(obj.DataPtr, h.markValue)
			}

		case OContext:
			for _, v := range obj.Regs {
				h.markValue(v)
			}
			next = obj.Up

		case OFunc:
			for _, v := range obj.Locals {
				h.markValue(v)
			}

		case OIrep:
			next = obj.IrepCxt

		case OError:
			h.markValue(obj.ErrType)
			h.markValue(obj.ErrMsg)
			h.markValue(obj.ErrIrrs)
			next = handleOf(obj.ErrStack)

		case OCheckpoint:
			if obj.CPPrev != 0 {
				h.markObject(obj.CPPrev)
			}
			h.markValue(obj.CPIn)
			next = handleOf(obj.CPOut)
		}
		objSpan.End("")
		hnd = next
	}
}

// markRoots walks every root source documented for this collector: the
// operand stack, the call-info stack's register frames, the current
// checkpoint, the four global slots, the library table, every registered
// Irep's literal pool, and the embedder's protect() arena. The oblist is
// deliberately excluded — interned symbols are reachable only through
// live references, letting dead ones fall out of the table on sweep.
func (h *Heap) markRoots() {
	for _, v := range h.Roots.Stack {
		h.markValue(v)
	}
	for _, ci := range h.Roots.CallInfo {
		if ci.Cxt != 0 {
			h.markObject(ci.Cxt)
		}
	}
	if h.Roots.Checkpoint != 0 {
		h.markObject(h.Roots.Checkpoint)
	}
	h.markValue(h.Roots.Globals)
	h.markValue(h.Roots.Macros)
	h.markValue(h.Roots.Err)
	h.markValue(h.Roots.Features)
	for _, lib := range h.Roots.Libraries {
		h.markValue(lib.Name)
		if lib.Env != 0 {
			h.markObject(lib.Env)
		}
		h.markValue(lib.Exports)
	}
	for _, ir := range h.Roots.Ireps {
		for _, v := range ir.Pool {
			h.markValue(v)
		}
	}
	for _, hnd := range h.arena.handles {
		h.markObject(hnd)
	}
}

// markEphemerons runs the WEAK fixed point: a value survives through its
// ephemeron only once its key is independently reachable, and making a
// value reachable can in turn make some other WEAK's key reachable, so
// this repeats until a full pass finds nothing new to gray.
func (h *Heap) markEphemerons() {
	for {
		changed := false
		for wh := h.weaksHead; wh != 0; {
			wobj := h.objects[wh]
			next := wobj.WeakPrev
			for key, val := range wobj.Weak {
				kobj, ok := h.objects[key]
				if !ok || !h.backend.isMarked(kobj) {
					continue
				}
				vh := handleOf(val)
				if vh == 0 {
					continue
				}
				vobj, ok := h.objects[vh]
				if !ok || h.backend.isMarked(vobj) {
					continue
				}
				h.markObject(vh)
				changed = true
			}
			wh = next
		}
		if !changed {
			return
		}
	}
}
