// Package trace records what the analyser is doing, pass by pass.
//
// Tracing is off unless the CLI asks for it:
//
//	sable check --trace=- --trace-level=detail prog.json
//
// Tracers:
//
//   - Nop: used when tracing is disabled
//   - StreamTracer: writes each event as it happens (text or NDJSON)
//   - RingTracer: keeps the last N events for a dump after a crash
//   - MultiTracer: fans out to several tracers
//
// Scopes, coarsest first:
//
//   - ScopeDriver: one CLI command or one program of a multi-program run
//   - ScopePass: resolve, typecheck, modifiers
//   - ScopeModule: one unit inside a pass
//   - ScopeNode: one class or interactive submission
//
// LevelPhase shows driver and pass spans, LevelDetail adds units and
// LevelDebug shows everything.
//
// Tracers travel through context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	span, ctx := trace.Start(ctx, trace.ScopePass, "resolve")
//	defer span.End("")
package trace
