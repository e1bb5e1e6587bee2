// Package trace is the structured log of a wgslln run.
//
// Spans mark the stages of a build (lex, register, compose, validate, emit)
// and the work done per file and per shader.
//
// # Usage
//
//	wgslln build --trace=- --trace-level=detail
//
// # Levels
//
//   - LevelOff: No tracing
//   - LevelError: Failures only
//   - LevelPhase: Driver and stage boundaries
//   - LevelDetail: Per-file and per-shader events
//   - LevelDebug: Everything, including fixed-point iterations
//
// # Context Propagation
//
//	ctx = trace.WithTracer(ctx, tracer)
//	t := trace.FromContext(ctx)
//
//	span := trace.Begin(t, trace.ScopePass, "compose", parentID)
//	defer span.End("")
package trace
