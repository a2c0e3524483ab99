// Package trace records what the configurator did and how long each step
// took.
//
// Tracing is off unless requested on the command line:
//
//	nativecfg build --trace=- --trace-level=detail
//
// Events are grouped by scope:
//
//   - ScopeRun: one whole configure-and-build pass
//   - ScopeStage: probe, plan, compile and archive steps
//   - ScopeTarget: one build target
//   - ScopeUnit: one translation unit or trial compile
//
// The tracer travels through context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	ctx, span := trace.Start(ctx, trace.ScopeStage, "probe")
//	defer span.End("")
package trace
