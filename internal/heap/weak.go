package heap

// NewWeak allocates an empty ephemeron-style weak map. Entries survive a
// collection only while their key is reachable through some other path;
// see markEphemerons.
func (h *Heap) NewWeak() Value {
	obj := h.Alloc(unitsFor(0), OWeak)
	obj.Weak = make(map[Handle]Value)
	return Obj(obj.handle)
}

// WeakSet inserts or overwrites the entry for key in the weak map wh.
// key must itself be a heap object; immediates cannot be ephemeron keys
// since liveness is determined by mark-bit reachability.
func (h *Heap) WeakSet(wh Handle, key Handle, val Value) error {
	obj, err := h.Get(wh)
	if err != nil {
		return err
	}
	if obj.Kind != OWeak {
		return newErr(PanicWrongKind, "WeakSet: handle %d is a %s, not weak", wh, obj.Kind)
	}
	if key == 0 {
		return newErr(PanicInvalidHandle, "WeakSet: key must be a heap object")
	}
	obj.Weak[key] = val
	return nil
}

// WeakGet looks up key in the weak map wh. The zero Value and false are
// returned if the entry is absent (including once purged by a
// collection because its key died).
func (h *Heap) WeakGet(wh Handle, key Handle) (Value, bool, error) {
	obj, err := h.Get(wh)
	if err != nil {
		return Value{}, false, err
	}
	if obj.Kind != OWeak {
		return Value{}, false, newErr(PanicWrongKind, "WeakGet: handle %d is a %s, not weak", wh, obj.Kind)
	}
	v, ok := obj.Weak[key]
	return v, ok, nil
}

// WeakDelete removes key from the weak map wh, if present.
func (h *Heap) WeakDelete(wh Handle, key Handle) error {
	obj, err := h.Get(wh)
	if err != nil {
		return err
	}
	if obj.Kind != OWeak {
		return newErr(PanicWrongKind, "WeakDelete: handle %d is a %s, not weak", wh, obj.Kind)
	}
	delete(obj.Weak, key)
	return nil
}

// WeakLen reports the number of live entries currently stored in wh,
// which may still include entries whose key will be purged at the next
// collection.
func (h *Heap) WeakLen(wh Handle) (int, error) {
	obj, err := h.Get(wh)
	if err != nil {
		return 0, err
	}
	if obj.Kind != OWeak {
		return 0, newErr(PanicWrongKind, "WeakLen: handle %d is a %s, not weak", wh, obj.Kind)
	}
	return len(obj.Weak), nil
}
