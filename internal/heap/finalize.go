package heap

import "picgc/internal/trace"

// finalizeObject releases whatever non-GC-visible resources obj's
// variant owns and drops it from the handle table. It is invoked by
// backend.sweep exactly once per swept object, satisfying the collector's
// exactly-once finalization guarantee.
func (h *Heap) finalizeObject(obj *Object) {
	span := trace.Begin(h.opts.Tracer, trace.ScopeObject, "finalize:"+obj.Kind.String(), h.traceParent)
	defer span.End("")

	switch obj.Kind {
	case OString:
		if obj.Rope != nil && obj.Rope.release() {
			obj.Rope = nil
		}
	case OIrep:
		if obj.IrepBody != nil && obj.IrepBody.release() {
			obj.IrepBody = nil
		}
	case OData:
		if obj.DataType != nil && obj.DataType.Dtor != nil {
			obj.DataType.Dtor(obj.DataPtr)
		}
		obj.DataPtr = nil
	case OVector:
		obj.Vec = nil
	case OBlob:
		obj.Blob = nil
	case ODict:
		obj.Dict = nil
	case OWeak:
		obj.Weak = nil
	case OEnv:
		obj.EnvMap = nil
	}

	delete(h.objects, obj.handle)
	h.freeCount++
}
