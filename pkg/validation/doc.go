/*
Package validation implements the diagram validation engine.

The engine is a pure function over a domain.Project snapshot: it runs an ordered,
fixed set of independent rules and returns the issues they produce, in rule
declaration order. Validation problems are data, not control flow, so Validate never
fails; a degenerate project simply yields more or fewer issues.

	issues := validation.Validate(project)
	if validation.HasBlockingErrors(issues) {
		// refuse to save
	}

Adding a rule means appending one Rule to the set. Rules never observe each other's
output. Graph-oriented rules share a per-topic view (state index, adjacency and entry
points) that is built once per call.

The engine holds no state between calls and performs no I/O, so it is safe to call
concurrently and on every edit. Callers own debouncing.
*/
package validation
