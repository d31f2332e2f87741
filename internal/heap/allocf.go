package heap

// AllocFunc is the embedder-supplied byte allocator hook, the Go
// analogue of the original's allocf(userdata, ptr, size): size == 0
// frees ptr and returns nil; ptr == nil allocates a fresh block of
// size bytes; both non-nil/non-zero reallocs, copying existing
// content into the new block. A non-zero-size request that cannot be
// satisfied returns nil, which Malloc/Realloc/Calloc turn into an
// OOM panic — Go slices stand in for the raw pointer since this
// package never does unsafe pointer arithmetic.
type AllocFunc func(userdata any, ptr []byte, size int) []byte

// defaultAllocFunc backs Options.AllocFunc when the embedder supplies
// none, mirroring pic_default_allocf's realloc(ptr, size)/free(ptr)
// dispatch on a Go slice instead of a raw pointer.
func defaultAllocFunc(_ any, ptr []byte, size int) []byte {
	if size == 0 {
		return nil
	}
	buf := make([]byte, size)
	copy(buf, ptr)
	return buf
}

// Malloc requests size bytes through the heap's allocf hook, panicking
// with an OOMError if a non-zero-size request comes back nil.
func (h *Heap) Malloc(size int) []byte {
	buf := h.opts.AllocFunc(h.opts.UserData, nil, size)
	if buf == nil && size > 0 {
		oomPanic()
	}
	return buf
}

// Realloc resizes ptr to size bytes through the allocf hook.
func (h *Heap) Realloc(ptr []byte, size int) []byte {
	buf := h.opts.AllocFunc(h.opts.UserData, ptr, size)
	if buf == nil && size > 0 {
		oomPanic()
	}
	return buf
}

// Calloc allocates count*size bytes and zero-fills them.
func (h *Heap) Calloc(count, size int) []byte {
	buf := h.Malloc(count * size)
	for i := range buf {
		buf[i] = 0
	}
	return buf
}

// Free releases ptr through the allocf hook.
func (h *Heap) Free(ptr []byte) {
	h.opts.AllocFunc(h.opts.UserData, ptr, 0)
}
