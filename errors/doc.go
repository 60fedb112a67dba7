// Package errors provides the structured error taxonomy shared by the planner
// packages. Every error carries a code and a category so callers at the edge
// (a list view, a sync job) can decide whether to surface, retry, or drop it.
//
// # Error Categories
//
//   - Transient: the backing store was unreachable or timed out; retry may succeed
//   - Permanent: the request itself is wrong (invalid rule, unknown task, ...)
//   - Internal: corrupted rows or broken invariants
//
// # Usage
//
// Create a new error:
//
//	err := errors.New(errors.ErrCodeInvalidRule, "weekly rule has no anchor")
//
// Wrap a store error with context:
//
//	wrapped := errors.Wrap(err, "loading task", errors.WithTaskID(id))
//
// Check the code anywhere in a chain:
//
//	if errors.Is(err, errors.ErrCodeNotFound) {
//	    // render an empty state
//	}
//
// The recurrence predicate never returns errors. Malformed rows evaluate to
// "not due" and only the write paths (tasks.Manager) report them.
package errors
