package heap

// arena is the embedder's explicit shadow stack of protected object
// pointers. It substitutes for precise host-stack scanning: the host
// pushes a handle before it can be observed only from a local variable,
// and pops it (via leave) once it is reachable some other way or no
// longer needed.
type arena struct {
	handles []Handle
}

// protect pushes h onto the arena. Handle(0) (an immediate carries no
// handle at all in this API) is a caller bug and is ignored defensively.
func (a *arena) protect(h Handle) Handle {
	if h == 0 {
		return h
	}
	a.handles = append(a.handles, h)
	return h
}

// enter returns a mark that leave can later restore to.
func (a *arena) enter() int {
	return len(a.handles)
}

// leave truncates the arena back to mark, popping everything protected
// since the matching enter. leave(enter()) is always a no-op.
func (a *arena) leave(mark int) error {
	if mark < 0 || mark > len(a.handles) {
		return newErr(PanicArenaUnderflow, "leave(%d) past arena top %d", mark, len(a.handles))
	}
	a.handles = a.handles[:mark]
	return nil
}

// depth reports the current arena length, for Stats().
func (a *arena) depth() int {
	return len(a.handles)
}
