package repositories

import "context"

// BindingRepository answers which stored paths are referenced by external
// systems. A referenced path blocks deletion of the item behind it.
//
// This is an opaque pass-through dependency: absence of a path in the
// returned map means zero references.
type BindingRepository interface {
	// GetFileBinds returns reference counts per path. With a nil or empty
	// paths argument it returns all known bindings (used to annotate
	// listings); with a specific set it answers delete-eligibility checks.
	GetFileBinds(ctx context.Context, paths []string) (map[string]int, error)
}
