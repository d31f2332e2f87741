package heap

// bmPage holds one mark bit and one "used" bit per fixed-size unit in a
// side array, plus a start-bit array discriminating object heads —
// exactly the layout described for the bitmap back-end.
type bmPage struct {
	capacity int
	used     *bitset
	start    *bitset
	marks    *bitset
	objects  map[int]*Object // offset -> object, keyed by start bit position
}

func newBmPage(capacity int) *bmPage {
	return &bmPage{
		capacity: capacity,
		used:     newBitset(capacity),
		start:    newBitset(capacity),
		marks:    newBitset(capacity),
		objects:  make(map[int]*Object),
	}
}

// firstRun performs the linear scan for `units` contiguous free units
// that the bitmap back-end uses in place of a free list.
func (p *bmPage) firstRun(units int) (int, bool) {
	for offset := 0; offset+units <= p.capacity; offset++ {
		if p.used.runFree(offset, units) {
			return offset, true
		}
	}
	return 0, false
}

type bitmapBackend struct {
	pageUnits int
	pages     []*bmPage
}

func newBitmapBackend(pageUnits int) *bitmapBackend {
	return &bitmapBackend{pageUnits: pageUnits}
}

func (b *bitmapBackend) alloc(units int) *Object {
	for _, p := range b.pages {
		if offset, ok := p.firstRun(units); ok {
			p.used.setRange(offset, units)
			p.start.set(offset)
			obj := &Object{pageRef: p, offset: offset, units: units}
			p.objects[offset] = obj
			return obj
		}
	}
	return nil
}

func (b *bitmapBackend) morecore() {
	b.pages = append(b.pages, newBmPage(b.pageUnits))
}

func (b *bitmapBackend) isMarked(obj *Object) bool {
	p := obj.pageRef.(*bmPage)
	return p.marks.get(obj.offset)
}

func (b *bitmapBackend) mark(obj *Object) {
	p := obj.pageRef.(*bmPage)
	p.marks.set(obj.offset)
}

func (b *bitmapBackend) sweep(finalize func(*Object)) (inuse, total int) {
	for _, p := range b.pages {
		total += p.capacity
		inuse += sweepBmPage(p, finalize)
	}
	return inuse, total
}

func sweepBmPage(p *bmPage, finalize func(*Object)) int {
	inuse := 0
	for offset, obj := range p.objects {
		if !p.marks.get(offset) {
			finalize(obj)
			p.used.clearRange(offset, obj.units)
			p.start.clear(offset)
			delete(p.objects, offset)
			continue
		}
		p.marks.clearRange(offset, obj.units) // black -> white
		inuse += obj.units
	}
	return inuse
}

func (b *bitmapBackend) close() {
	b.pages = nil
}

func (b *bitmapBackend) occupancy() (pages, inuse, total int) {
	for _, p := range b.pages {
		pages++
		total += p.capacity
		inuse += p.used.count()
	}
	return pages, inuse, total
}
