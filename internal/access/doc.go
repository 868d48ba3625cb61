// Package access decides which models a caller may use.
//
// It combines three inputs into a single locked/unlocked decision per model:
//   - the caller's access tier, derived from the session by Classify
//   - the process-wide demo mode state
//   - the guest, demo and free-tier allow-lists held by a Registry snapshot
//
// Everything in this package is pure: the Registry is passed in explicitly
// and never mutated, so a decision is fully reproducible from its inputs.
package access
