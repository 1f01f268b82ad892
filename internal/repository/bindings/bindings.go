// Package bindings provides implementations of the binding collaborator,
// the external service answering which stored paths are referenced
// elsewhere. A referenced path blocks deletion of the item behind it.
package bindings

import (
	"context"
	"log/slog"

	"filecrate/internal/domain/repositories"
)

// Unbound is the pass-through used when no binding service is configured:
// it reports zero references for everything, so nothing ever blocks.
type Unbound struct {
	logger *slog.Logger
}

// NewUnbound creates a binding repository that reports no references.
func NewUnbound(logger *slog.Logger) repositories.BindingRepository {
	return &Unbound{logger: logger}
}

// GetFileBinds implements the BindingRepository interface
func (u *Unbound) GetFileBinds(ctx context.Context, paths []string) (map[string]int, error) {
	u.logger.Debug("binding lookup with no binding service configured", "paths", len(paths))
	return map[string]int{}, nil
}
