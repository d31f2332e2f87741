package heap

// backend abstracts the two page back-ends described by the design: a
// classical free-list mark-and-sweep allocator and a mark-bitmap
// allocator. Both share the same mark/sweep orchestration in mark.go and
// sweep.go; only object placement and mark-bit storage differ.
type backend interface {
	// alloc reserves units contiguous units for a new object and returns
	// it with Kind unset (the caller fills in the payload), or nil if no
	// page currently has room.
	alloc(units int) *Object

	// morecore requests one additional page from the allocator.
	morecore()

	// sweep walks every page, finalizing unmarked objects via finalize,
	// reclaiming their units, and resetting survivors back to white.
	// It returns total in-use and total capacity across all pages, in
	// units.
	sweep(finalize func(*Object)) (inuse, total int)

	// isMarked / mark implement the collector's black/white protocol for
	// this backend's mark-bit storage.
	isMarked(obj *Object) bool
	mark(obj *Object)

	// close releases every page. Finalizers are not invoked.
	close()

	// occupancy reports page count, in-use units and total capacity
	// units without mutating anything, for Stats().
	occupancy() (pages, inuse, total int)
}

// bitset is a simple fixed-size bit vector used by the bitmap backend for
// its used/start/mark side arrays.
type bitset struct {
	bits []uint64
	n    int
}

func newBitset(n int) *bitset {
	return &bitset{bits: make([]uint64, (n+63)/64), n: n}
}

func (b *bitset) get(i int) bool {
	return b.bits[i/64]&(1<<uint(i%64)) != 0
}

func (b *bitset) set(i int) {
	b.bits[i/64] |= 1 << uint(i%64)
}

func (b *bitset) clear(i int) {
	b.bits[i/64] &^= 1 << uint(i%64)
}

func (b *bitset) clearRange(start, count int) {
	for i := start; i < start+count; i++ {
		b.clear(i)
	}
}

func (b *bitset) setRange(start, count int) {
	for i := start; i < start+count; i++ {
		b.set(i)
	}
}

// runFree reports whether [start, start+count) are all clear.
func (b *bitset) runFree(start, count int) bool {
	if start+count > b.n {
		return false
	}
	for i := start; i < start+count; i++ {
		if b.get(i) {
			return false
		}
	}
	return true
}

// count returns the number of set bits.
func (b *bitset) count() int {
	n := 0
	for _, word := range b.bits {
		for word != 0 {
			word &= word - 1
			n++
		}
	}
	return n
}
