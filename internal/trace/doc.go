// Package trace records what the rill front end is doing while it runs.
//
// Events are spans (begin/end pairs) and instant points, grouped by scope:
//
//   - ScopeDriver: one CLI command
//   - ScopePass: parse and check of one source
//   - ScopeModule: one file of a directory run
//   - ScopeNode: speculative commits and variable bindings
//
// Levels select how deep the output goes (off, error, phase, detail, debug).
// Tracers travel through the pipeline in a context.Context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	span := trace.Begin(trace.FromContext(ctx), trace.ScopePass, "parse", 0)
//	defer span.End("")
package trace
