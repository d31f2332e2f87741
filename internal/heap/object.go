package heap

// ObjectKind is the immutable variant tag ("tt" in the original) of a
// heap object. It never changes after allocation.
type ObjectKind uint8

const (
	OPair ObjectKind = iota + 1
	OVector
	OBlob // also used for BLOB/BYTES, which share BLOB's layout and finalizer
	OString
	ODict
	OWeak
	OEnv
	OId
	OSymbol
	ORecord
	OData
	OContext
	OFunc
	OIrep
	OPort
	OError
	OCheckpoint
)

// String names the variant for logging and panics.
func (k ObjectKind) String() string {
	switch k {
	case OPair:
		return "pair"
	case OVector:
		return "vector"
	case OBlob:
		return "blob"
	case OString:
		return "string"
	case ODict:
		return "dict"
	case OWeak:
		return "weak"
	case OEnv:
		return "env"
	case OId:
		return "id"
	case OSymbol:
		return "symbol"
	case ORecord:
		return "record"
	case OData:
		return "data"
	case OContext:
		return "context"
	case OFunc:
		return "func"
	case OIrep:
		return "irep"
	case OPort:
		return "port"
	case OError:
		return "error"
	case OCheckpoint:
		return "checkpoint"
	default:
		return "unknown"
	}
}

// Rope is the ref-counted string representation shared across STRING
// objects. Two STRING objects created via NewStringFromRope point at the
// same Rope and its backing bytes are freed only once the last reference
// drops.
type Rope struct {
	refs int
	Data string
}

// NewRope allocates a fresh rope with one reference.
func NewRope(s string) *Rope { return &Rope{refs: 1, Data: s} }

func (r *Rope) retain() { r.refs++ }

// release decrements the ref count, returning true if this was the last
// reference (the rope's backing bytes are now logically dead).
func (r *Rope) release() bool {
	r.refs--
	return r.refs <= 0
}

// Irep is a ref-counted compiled procedure body, owned by the evaluator
// and merely referenced (not traced into) by IREP objects. The GC only
// decrements its ref count on finalize; the pool itself is a mark root
// for every *Irep registered with the heap (see Roots.Ireps).
type Irep struct {
	refs int
	Pool []Value // literal pool, scanned as a mark root while registered
}

// NewIrep allocates a compiled-procedure record with one reference.
func NewIrep(pool []Value) *Irep { return &Irep{refs: 1, Pool: pool} }

func (ir *Irep) retain() { ir.refs++ }

func (ir *Irep) release() bool {
	ir.refs--
	return ir.refs <= 0
}

// DataType is the embedder-supplied hook contract for DATA objects.
// Mark must invoke markCB for each Value the opaque payload owns and
// nothing else; Dtor releases the opaque payload. Either may be nil.
// Size is the payload's size in bytes, for diagnostics and external
// memory accounting; it plays no role in mark/sweep itself.
type DataType struct {
	Name string
	Mark func(payload any, markCB func(Value))
	Dtor func(payload any)
	Size int
}

// Object is a tagged-sum heap object. All variant payloads are inline
// fields selected by Kind, matching the flat-struct style used
// throughout this codebase's object models; Kind never changes once set.
type Object struct {
	Kind ObjectKind

	handle Handle
	marked bool // free-list backend's in-header mark bit; unused by bitmap backend
	pageRef any // *flPage or *bmPage, backend-specific
	offset  int // starting unit within pageRef
	units   int // occupied run length in units

	// PAIR
	Car, Cdr Value

	// VECTOR
	Vec []Value

	// BLOB / BLOB-BYTES
	Blob []byte

	// STRING
	Rope *Rope

	// DICT
	Dict map[Value]Value

	// WEAK: ephemeron map keyed by object handle, plus a transient chain
	// link used only while marking (see Heap.weaksHead).
	Weak     map[Handle]Value
	WeakPrev Handle

	// ENV: identifier -> identifier map, plus optional parent scope.
	EnvMap map[Handle]Handle
	EnvUp  Handle

	// ID: either a symbol-ref (IDSymRef true, IDInner names a SYMBOL) or
	// a wrapped string (IDSymRef false, IDInner names a STRING), plus the
	// lexical environment it resolves against.
	IDSymRef bool
	IDInner  Handle
	IDEnv    Handle

	// SYMBOL: name is itself a STRING object, interned in the oblist.
	SymName Handle

	// RECORD
	RecType  Value
	RecDatum Value

	// DATA
	DataType *DataType
	DataPtr  any

	// CONTEXT (CXT): inline register frame plus parent frame chain.
	Regs []Value
	Up   Handle

	// FUNC (native closure): inline captured locals.
	Locals   []Value
	NativeFn func(args []Value) (Value, error)

	// IREP (bytecode closure): ref-counted compiled body plus captured frame.
	IrepBody *Irep
	IrepCxt  Handle

	// PORT: opaque, embedder-owned; no outgoing edges the tracer walks.
	PortState any

	// ERROR
	ErrType  Value
	ErrMsg   Value
	ErrIrrs  Value
	ErrStack Value

	// CHECKPOINT (CP): dynamic-wind record.
	CPPrev Handle
	CPIn   Value
	CPOut  Value
}

// Handle returns the object's own handle.
func (o *Object) Handle() Handle { return o.handle }
