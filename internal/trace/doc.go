// Package trace provides a tracing subsystem for the picgc heap.
//
// The trace package enables tracking of collection cycles, page sweeps
// and object-level mark/finalize events to help diagnose GC pauses and
// misbehaving finalizers.
//
// # Usage
//
// Enable tracing via the CLI:
//
//	picgc stress --trace-level=phase
//
// Events go to the trace_output path of picgc.toml ("-", the default,
// is stderr).
//
// # Architecture
//
// The package provides several tracer implementations:
//
//   - nopTracer: zero-overhead no-op tracer when disabled
//   - StreamTracer: immediate write to output (file/stderr)
//   - RingTracer: circular buffer for crash dumps
//   - MultiTracer: combines multiple tracers
//
// # Levels
//
// Tracing verbosity is controlled by levels:
//
//   - LevelOff: no tracing
//   - LevelError: no span events, only heartbeats
//   - LevelPhase: collect() and mark/sweep boundaries
//   - LevelDetail: adds page-growth (morecore) events
//   - LevelDebug: everything including per-object mark/finalize events
//
// # Scopes
//
// Events are categorized by scope:
//
//   - ScopeCollector: one full collect() cycle
//   - ScopePhase: mark or sweep as a unit
//   - ScopePage: one heap page being added (morecore)
//   - ScopeObject: a single object being marked or finalized
//
// # Context Propagation
//
// A heap takes its tracer from heap.Options.Tracer or Heap.SetTracer,
// not from a context. WithTracer and FromContext carry a Tracer through
// a context.Context for embedder code:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	t := trace.FromContext(ctx)
//
//	span := trace.Begin(t, trace.ScopePhase, "mark", parentID)
//	defer span.End("")
package trace
