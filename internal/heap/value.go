package heap

import "fmt"

// ValueKind identifies the runtime type of a Value.
type ValueKind uint8

const (
	// VInvalid is the zero value; never produced by the constructors below.
	VInvalid ValueKind = iota
	VInt               // signed integer immediate
	VBool              // boolean immediate
	VChar              // character immediate
	VNull              // the empty list / nil immediate
	VUnbound           // unbound-variable marker
	VUndef             // undefined-value marker (e.g. result of set!)
	VFloat             // externally-tagged float immediate
	VObject            // pointer to a heap object, carried in Value.H
)

// String returns a human-readable name for the value kind.
func (k ValueKind) String() string {
	switch k {
	case VInvalid:
		return "invalid"
	case VInt:
		return "int"
	case VBool:
		return "bool"
	case VChar:
		return "char"
	case VNull:
		return "null"
	case VUnbound:
		return "unbound"
	case VUndef:
		return "undef"
	case VFloat:
		return "float"
	case VObject:
		return "object"
	default:
		return fmt.Sprintf("ValueKind(%d)", k)
	}
}

// Value is the polymorphic tagged union the collector traces: either an
// immediate (no outgoing edges) or a pointer to a heap Object via H.
// Value is intentionally comparable so it can be used as a map key
// directly for DICT payloads.
type Value struct {
	Kind ValueKind
	I    int64   // VInt, VChar, VBool (0/1)
	F    float64 // VFloat
	H    Handle  // VObject
}

// IsObject reports whether v points at a heap object.
func (v Value) IsObject() bool {
	return v.Kind == VObject
}

// IsZero reports whether v is the zero Value.
func (v Value) IsZero() bool {
	return v.Kind == VInvalid
}

func (v Value) String() string {
	switch v.Kind {
	case VInt:
		return fmt.Sprintf("%d", v.I)
	case VBool:
		if v.I != 0 {
			return "#t"
		}
		return "#f"
	case VChar:
		return fmt.Sprintf("#\\%c", rune(v.I))
	case VNull:
		return "()"
	case VUnbound:
		return "#<unbound>"
	case VUndef:
		return "#<undef>"
	case VFloat:
		return fmt.Sprintf("%g", v.F)
	case VObject:
		return fmt.Sprintf("#<object %d>", v.H)
	default:
		return "#<invalid>"
	}
}

// Int makes an integer immediate.
func Int(n int64) Value { return Value{Kind: VInt, I: n} }

// Bool makes a boolean immediate.
func Bool(b bool) Value {
	if b {
		return Value{Kind: VBool, I: 1}
	}
	return Value{Kind: VBool, I: 0}
}

// Char makes a character immediate.
func Char(r rune) Value { return Value{Kind: VChar, I: int64(r)} }

// Null is the empty-list immediate.
func Null() Value { return Value{Kind: VNull} }

// Unbound is the unbound-variable immediate.
func Unbound() Value { return Value{Kind: VUnbound} }

// Undef is the undefined-value immediate.
func Undef() Value { return Value{Kind: VUndef} }

// Float makes a float immediate.
func Float(f float64) Value { return Value{Kind: VFloat, F: f} }

// Obj wraps a handle as a Value. Handle(0) with this constructor is a bug
// in the caller; the heap never hands out Handle(0) from an allocation.
func Obj(h Handle) Value { return Value{Kind: VObject, H: h} }
