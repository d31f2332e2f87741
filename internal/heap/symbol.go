package heap

import "golang.org/x/text/unicode/norm"

// Intern returns the unique SYMBOL object for name, allocating and
// registering it in the oblist on first use. name is normalized to NFC
// first so that two Unicode symbol spellings that render identically
// always intern to the same object. The oblist itself is not a mark
// root (see markRoots), so an interned symbol with no other reference is
// reclaimed the next time it is swept and its name silently drops out of
// the table (purgeOblist).
//
// NewString and the SYMBOL allocation below both go through Alloc, which
// protects its result on the arena, so the freshly built string survives
// the second allocation without any hand-rolled Enter/Protect/Leave here.
func (h *Heap) Intern(rawName string) Value {
	name := norm.NFC.String(rawName)
	if hnd, ok := h.oblist[name]; ok {
		if _, live := h.objects[hnd]; live {
			return Obj(hnd)
		}
		delete(h.oblist, name)
	}

	strVal := h.NewString(name)

	obj := h.Alloc(unitsFor(0), OSymbol)
	obj.SymName = strVal.H

	h.oblist[name] = obj.handle
	return Obj(obj.handle)
}

// LookupSymbol reports whether name is currently interned, without
// interning it.
func (h *Heap) LookupSymbol(rawName string) (Value, bool) {
	name := norm.NFC.String(rawName)
	hnd, ok := h.oblist[name]
	if !ok {
		return Value{}, false
	}
	if _, live := h.objects[hnd]; !live {
		return Value{}, false
	}
	return Obj(hnd), true
}

// OblistSize reports the number of currently interned symbols, for
// diagnostics and tests.
func (h *Heap) OblistSize() int {
	return len(h.oblist)
}
