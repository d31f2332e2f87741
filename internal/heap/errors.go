package heap

import "fmt"

// PanicCode identifies the class of a GCError. Stable across versions —
// do not renumber.
type PanicCode int

const (
	PanicMemoryExhausted PanicCode = 1 // GC1: allocator returned nil after collect + morecore
	PanicInvalidHandle   PanicCode = 2 // GC2: handle is zero or unknown to this heap
	PanicUseAfterFree    PanicCode = 3 // GC3: handle refers to an already-swept object
	PanicWrongKind       PanicCode = 4 // GC4: object exists but has an unexpected ObjectKind
	PanicArenaUnderflow  PanicCode = 5 // GC5: leave() called with a mark past the current arena top
)

// String returns the code as "GC1" style.
func (c PanicCode) String() string { return fmt.Sprintf("GC%d", int(c)) }

// GCError is the error type returned (or panicked with, for memory
// exhaustion) by heap operations.
type GCError struct {
	Code    PanicCode
	Message string
}

func (e *GCError) Error() string {
	if e.Code == PanicMemoryExhausted {
		return "(GC) " + e.Message
	}
	return fmt.Sprintf("(GC) %s: %s", e.Code, e.Message)
}

func newErr(code PanicCode, format string, args ...any) *GCError {
	return &GCError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// OOMError is the value panicked with when an allocation cannot be
// satisfied after both collect() and morecore() have been tried. It is
// the one fatal condition a heap raises rather than returning as an
// error; embedders are expected to recover it at a call boundary (the
// CLI does this in cmd/picgc) and terminate the interpreter instance.
type OOMError struct {
	*GCError
}

// oomPanic terminates the interpreter instance, matching spec.md's single
// fatal condition: memory exhaustion after collect() + morecore() both fail.
func oomPanic() {
	panic(&OOMError{GCError: &GCError{Code: PanicMemoryExhausted, Message: "memory exhausted"}})
}
