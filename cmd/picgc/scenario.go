package main

import (
	"fmt"

	"fortio.org/safecast"

	"picgc/internal/heap"
)

// scenario exercises one documented collector behavior end to end
// against a fresh *heap.Heap and reports whether the outcome matches
// what the collector's invariants promise.
type scenario struct {
	name string
	run  func(h *heap.Heap) error
}

// scenarioCount is the size of the pairs/growth scenarios, settable via
// stress --count. It arrives as an int64 from the CLI flag parser and is
// narrowed to an int with an explicit checked conversion rather than a
// bare cast, since a hostile --count value should fail loudly instead of
// silently wrapping.
var scenarioCount = int64(1000)

func scenarioCountInt() (int, error) {
	n, err := safecast.Conv[int](scenarioCount)
	if err != nil {
		return 0, fmt.Errorf("--count: %w", err)
	}
	return n, nil
}

var scenarios = []scenario{
	{"pairs", runPairsScenario},
	{"cycle", runCycleScenario},
	{"weakmap", runWeakmapScenario},
	{"symbols", runSymbolsScenario},
	{"data", runDataScenario},
	{"growth", runGrowthScenario},
}

func lookupScenario(name string) (scenario, error) {
	for _, s := range scenarios {
		if s.name == name {
			return s, nil
		}
	}
	return scenario{}, fmt.Errorf("unknown scenario %q (want one of pairs, cycle, weakmap, symbols, data, growth)", name)
}

func runPairsScenario(h *heap.Heap) error {
	count, err := scenarioCountInt()
	if err != nil {
		return err
	}

	head := heap.Null()
	for i := 0; i < count; i++ {
		head = h.NewPair(heap.Int(int64(i)), head)
		h.Roots.Stack = []heap.Value{head}
	}
	h.Collect()

	n := 0
	for cur := head; cur.Kind == heap.VObject; {
		obj, err := h.Get(cur.H)
		if err != nil {
			return fmt.Errorf("chain broke at length %d: %w", n, err)
		}
		n++
		cur = obj.Cdr
	}
	if n != count {
		return fmt.Errorf("expected %d live pairs, found %d", count, n)
	}
	return nil
}

func runCycleScenario(h *heap.Heap) error {
	a := h.NewPair(heap.Int(1), heap.Null())
	mark := h.Enter()
	h.Protect(a)
	b := h.NewPair(heap.Int(2), a)
	h.MustGet(a.H).Cdr = b
	h.Leave(mark)

	h.Roots.Stack = nil
	h.Collect()

	if _, err := h.Get(a.H); err == nil {
		return fmt.Errorf("cyclic garbage survived collection")
	}
	return nil
}

func runWeakmapScenario(h *heap.Heap) error {
	wv := h.NewWeak()
	key := h.NewPair(heap.Int(1), heap.Null())
	val := h.NewPair(heap.Int(2), heap.Null())
	if err := h.WeakSet(wv.H, key.H, val); err != nil {
		return err
	}

	h.Roots.Stack = []heap.Value{wv, key}
	h.Collect()
	if _, ok, _ := h.WeakGet(wv.H, key.H); !ok {
		return fmt.Errorf("entry dropped while key was still live")
	}

	h.Roots.Stack = []heap.Value{wv}
	h.Collect()
	if _, ok, _ := h.WeakGet(wv.H, key.H); ok {
		return fmt.Errorf("entry survived after its key died")
	}
	return chainWeakmapScenario(h)
}

// chainWeakmapScenario exercises the multi-hop ephemeron case: a single
// map with W[k1]=k2, W[k2]=k3, W[k3]=v, where only k1 is rooted directly.
// Marking k1 must make k2 reachable through its ephemeron, which in turn
// makes k3 reachable, which in turn keeps v alive — a case markEphemerons'
// fixed-point loop exists for, not its single-pass first iteration.
func chainWeakmapScenario(h *heap.Heap) error {
	wv := h.NewWeak()
	k1 := h.NewPair(heap.Int(1), heap.Null())
	k2 := h.NewPair(heap.Int(2), heap.Null())
	k3 := h.NewPair(heap.Int(3), heap.Null())
	v := h.NewPair(heap.Int(4), heap.Null())

	if err := h.WeakSet(wv.H, k1.H, k2); err != nil {
		return err
	}
	if err := h.WeakSet(wv.H, k2.H, k3); err != nil {
		return err
	}
	if err := h.WeakSet(wv.H, k3.H, v); err != nil {
		return err
	}

	h.Roots.Stack = []heap.Value{wv, k1}
	h.Collect()

	if _, ok, _ := h.WeakGet(wv.H, k1.H); !ok {
		return fmt.Errorf("chain: k1 -> k2 entry dropped while k1 was live")
	}
	if _, ok, _ := h.WeakGet(wv.H, k2.H); !ok {
		return fmt.Errorf("chain: k2 -> k3 entry dropped though k2 is reachable via k1's ephemeron")
	}
	if _, ok, _ := h.WeakGet(wv.H, k3.H); !ok {
		return fmt.Errorf("chain: k3 -> v entry dropped though k3 is reachable via k2's ephemeron")
	}
	if _, err := h.Get(v.H); err != nil {
		return fmt.Errorf("chain: v should still be alive via k3's ephemeron: %w", err)
	}
	return nil
}

func runSymbolsScenario(h *heap.Heap) error {
	kept := h.Intern("kept")
	h.Intern("dropped")
	h.Roots.Stack = []heap.Value{kept}
	h.Collect()

	if _, ok := h.LookupSymbol("kept"); !ok {
		return fmt.Errorf("kept symbol was purged")
	}
	if _, ok := h.LookupSymbol("dropped"); ok {
		return fmt.Errorf("dropped symbol survived")
	}
	return nil
}

func runDataScenario(h *heap.Heap) error {
	fired := 0
	dt := &heap.DataType{Name: "resource", Dtor: func(any) { fired++ }}
	h.NewData(dt, "payload")
	h.Roots.Stack = nil

	h.Collect()
	h.Collect()
	if fired != 1 {
		return fmt.Errorf("expected exactly one Dtor call, got %d", fired)
	}
	return nil
}

func runGrowthScenario(h *heap.Heap) error {
	count, err := scenarioCountInt()
	if err != nil {
		return err
	}

	var stack []heap.Value
	for i := 0; i < count; i++ {
		v := h.NewPair(heap.Int(int64(i)), heap.Null())
		stack = append(stack, v)
		h.Roots.Stack = stack
	}
	h.Collect()
	if h.Stats().Objects != count {
		return fmt.Errorf("expected %d live objects, got %d", count, h.Stats().Objects)
	}
	return nil
}
