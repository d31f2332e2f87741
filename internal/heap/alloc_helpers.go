package heap

// The New* constructors below all assume the caller has already
// protected any Value arguments that aren't reachable some other way —
// same discipline as everywhere else in this API: allocation can trigger
// a collection, and only the arena (or an existing root) keeps a bare
// local variable alive across one.

// NewPair allocates a fresh cons cell.
func (h *Heap) NewPair(car, cdr Value) Value {
	obj := h.Alloc(unitsFor(0), OPair)
	obj.Car, obj.Cdr = car, cdr
	return Obj(obj.handle)
}

// NewVector allocates a vector holding a copy of elems.
func (h *Heap) NewVector(elems []Value) Value {
	obj := h.Alloc(unitsFor(len(elems)), OVector)
	obj.Vec = append([]Value(nil), elems...)
	return Obj(obj.handle)
}

// NewBlob allocates a byte blob holding a copy of data.
func (h *Heap) NewBlob(data []byte) Value {
	obj := h.Alloc(unitsFor(len(data)/8), OBlob)
	obj.Blob = append([]byte(nil), data...)
	return Obj(obj.handle)
}

// NewString allocates a STRING object over a fresh, singly-owned Rope.
func (h *Heap) NewString(s string) Value {
	obj := h.Alloc(unitsFor(len(s)/8), OString)
	obj.Rope = NewRope(s)
	return Obj(obj.handle)
}

// NewStringFromRope allocates a STRING object sharing an existing rope,
// retaining it. Used when slicing/copying a string without duplicating
// its backing bytes.
func (h *Heap) NewStringFromRope(r *Rope) Value {
	r.retain()
	obj := h.Alloc(unitsFor(len(r.Data)/8), OString)
	obj.Rope = r
	return Obj(obj.handle)
}

// NewDict allocates an empty association dictionary.
func (h *Heap) NewDict() Value {
	obj := h.Alloc(unitsFor(0), ODict)
	obj.Dict = make(map[Value]Value)
	return Obj(obj.handle)
}

// DictSet, DictGet, and DictDelete are the DICT accessors; Dict itself
// carries no ephemeron semantics (see WeakSet/WeakGet for that).
func (h *Heap) DictSet(dh Handle, key, val Value) error {
	obj, err := h.Get(dh)
	if err != nil {
		return err
	}
	if obj.Kind != ODict {
		return newErr(PanicWrongKind, "DictSet: handle %d is a %s, not dict", dh, obj.Kind)
	}
	obj.Dict[key] = val
	return nil
}

func (h *Heap) DictGet(dh Handle, key Value) (Value, bool, error) {
	obj, err := h.Get(dh)
	if err != nil {
		return Value{}, false, err
	}
	if obj.Kind != ODict {
		return Value{}, false, newErr(PanicWrongKind, "DictGet: handle %d is a %s, not dict", dh, obj.Kind)
	}
	v, ok := obj.Dict[key]
	return v, ok, nil
}

func (h *Heap) DictDelete(dh Handle, key Value) error {
	obj, err := h.Get(dh)
	if err != nil {
		return err
	}
	if obj.Kind != ODict {
		return newErr(PanicWrongKind, "DictDelete: handle %d is a %s, not dict", dh, obj.Kind)
	}
	delete(obj.Dict, key)
	return nil
}

// NewEnv allocates an empty lexical environment frame chained to up
// (Handle(0) for the global/root frame).
func (h *Heap) NewEnv(up Handle) Value {
	obj := h.Alloc(unitsFor(0), OEnv)
	obj.EnvMap = make(map[Handle]Handle)
	obj.EnvUp = up
	return Obj(obj.handle)
}

// NewIdentifier allocates an ID object. If symRef is true, inner must
// name a SYMBOL object; otherwise it must name a STRING object.
func (h *Heap) NewIdentifier(symRef bool, inner, env Handle) Value {
	obj := h.Alloc(unitsFor(0), OId)
	obj.IDSymRef = symRef
	obj.IDInner = inner
	obj.IDEnv = env
	return Obj(obj.handle)
}

// NewRecord allocates a record instance of the given record type.
func (h *Heap) NewRecord(recType, datum Value) Value {
	obj := h.Alloc(unitsFor(0), ORecord)
	obj.RecType, obj.RecDatum = recType, datum
	return Obj(obj.handle)
}

// NewData wraps an embedder-owned opaque payload under dt's vtable.
func (h *Heap) NewData(dt *DataType, payload any) Value {
	obj := h.Alloc(unitsFor(0), OData)
	obj.DataType = dt
	obj.DataPtr = payload
	return Obj(obj.handle)
}

// NewContext allocates a register frame of nregs slots chained to up.
func (h *Heap) NewContext(up Handle, nregs int) Value {
	obj := h.Alloc(unitsFor(nregs), OContext)
	obj.Regs = make([]Value, nregs)
	obj.Up = up
	return Obj(obj.handle)
}

// NewFunc allocates a native-code closure capturing locals.
func (h *Heap) NewFunc(fn func(args []Value) (Value, error), locals []Value) Value {
	obj := h.Alloc(unitsFor(len(locals)), OFunc)
	obj.NativeFn = fn
	obj.Locals = append([]Value(nil), locals...)
	return Obj(obj.handle)
}

// NewIrepClosure allocates a bytecode closure over body, retaining it,
// captured against cxt.
func (h *Heap) NewIrepClosure(body *Irep, cxt Handle) Value {
	body.retain()
	obj := h.Alloc(unitsFor(0), OIrep)
	obj.IrepBody = body
	obj.IrepCxt = cxt
	return Obj(obj.handle)
}

// NewPort wraps embedder-owned port state (a file, buffer, etc). The GC
// never inspects or walks state; it is opaque and has no outgoing edges.
func (h *Heap) NewPort(state any) Value {
	obj := h.Alloc(unitsFor(0), OPort)
	obj.PortState = state
	return Obj(obj.handle)
}

// NewError allocates a condition object.
func (h *Heap) NewError(errType, msg, irrs, stack Value) Value {
	obj := h.Alloc(unitsFor(0), OError)
	obj.ErrType, obj.ErrMsg, obj.ErrIrrs, obj.ErrStack = errType, msg, irrs, stack
	return Obj(obj.handle)
}

// NewCheckpoint pushes a new dynamic-wind checkpoint chained to prev.
func (h *Heap) NewCheckpoint(prev Handle, in, out Value) Value {
	obj := h.Alloc(unitsFor(0), OCheckpoint)
	obj.CPPrev = prev
	obj.CPIn, obj.CPOut = in, out
	return Obj(obj.handle)
}

// Alloca allocates n bytes of GC-managed scratch memory through the
// allocf shim (see Malloc), wrapped as a DATA object with no mark hook
// — the GC-visible analogue of a stack allocation that outlives the
// current native call. The buffer is released through Free once the
// DATA object is finalized.
func (h *Heap) Alloca(n int) Handle {
	buf := h.Malloc(n)
	obj := h.Alloc(unitsFor(n/8), OData)
	obj.DataType = &DataType{
		Name: "alloca",
		Dtor: func(payload any) { h.Free(payload.([]byte)) },
		Size: n,
	}
	obj.DataPtr = buf
	return obj.handle
}
