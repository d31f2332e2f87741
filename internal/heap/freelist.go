package heap

import "sort"

// flRun is a free region of a flPage, addressed by unit offset — the Go
// translation of the classical Knuth-style `union header {ptr, size}`
// free-list node. Object storage itself lives in ordinary Go-managed
// *Object values reached by handle; offsets here exist purely to track
// occupancy and support coalescing on sweep, since Go gives us no safe
// way to do the original's raw pointer arithmetic over a byte arena.
type flRun struct {
	offset, size int
}

type flPage struct {
	capacity int
	free     []flRun          // sorted by offset, no two entries touching
	objects  map[int]*Object  // offset -> live/not-yet-swept object
	next     *flPage
}

func newFlPage(capacity int) *flPage {
	return &flPage{
		capacity: capacity,
		free:     []flRun{{offset: 0, size: capacity}},
		objects:  make(map[int]*Object),
	}
}

// firstFit finds and removes/splits a run of at least `units`, returning
// its starting offset and true, or (0, false) if this page has no room.
func (p *flPage) firstFit(units int) (int, bool) {
	for i, r := range p.free {
		if r.size < units {
			continue
		}
		offset := r.offset
		if r.size == units {
			p.free = append(p.free[:i], p.free[i+1:]...)
		} else {
			p.free[i] = flRun{offset: r.offset + units, size: r.size - units}
		}
		return offset, true
	}
	return 0, false
}

type freeListBackend struct {
	pageUnits int
	pages     []*flPage
}

func newFreeListBackend(pageUnits int) *freeListBackend {
	return &freeListBackend{pageUnits: pageUnits}
}

func (b *freeListBackend) alloc(units int) *Object {
	for _, p := range b.pages {
		if offset, ok := p.firstFit(units); ok {
			obj := &Object{pageRef: p, offset: offset, units: units}
			p.objects[offset] = obj
			return obj
		}
	}
	return nil
}

func (b *freeListBackend) morecore() {
	b.pages = append(b.pages, newFlPage(b.pageUnits))
}

func (b *freeListBackend) isMarked(obj *Object) bool { return obj.marked }

func (b *freeListBackend) mark(obj *Object) { obj.marked = true }

func (b *freeListBackend) sweep(finalize func(*Object)) (inuse, total int) {
	for _, p := range b.pages {
		total += p.capacity
		inuse += sweepFlPage(p, finalize)
	}
	return inuse, total
}

// sweepFlPage finalizes unmarked objects, then rebuilds the page's free
// list from the surviving objects' offsets, coalescing every gap between
// (and around) them into a single run each — the same effect as the
// original's neighbor-merging free on a byte arena.
func sweepFlPage(p *flPage, finalize func(*Object)) int {
	live := make([]*Object, 0, len(p.objects))
	for offset, obj := range p.objects {
		if !obj.marked {
			finalize(obj)
			delete(p.objects, offset)
			continue
		}
		obj.marked = false // black -> white; it survived this cycle
		live = append(live, obj)
	}

	sort.Slice(live, func(i, j int) bool { return live[i].offset < live[j].offset })

	inuse := 0
	free := make([]flRun, 0, len(live)+1)
	cursor := 0
	for _, obj := range live {
		if obj.offset > cursor {
			free = append(free, flRun{offset: cursor, size: obj.offset - cursor})
		}
		cursor = obj.offset + obj.units
		inuse += obj.units
	}
	if cursor < p.capacity {
		free = append(free, flRun{offset: cursor, size: p.capacity - cursor})
	}
	p.free = free
	return inuse
}

func (b *freeListBackend) close() {
	b.pages = nil
}

func (b *freeListBackend) occupancy() (pages, inuse, total int) {
	for _, p := range b.pages {
		pages++
		total += p.capacity
		free := 0
		for _, r := range p.free {
			free += r.size
		}
		inuse += p.capacity - free
	}
	return pages, inuse, total
}
