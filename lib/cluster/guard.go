package cluster

import (
	"context"
	"fmt"
)

// IsManager reports whether the node is an active swarm member with control
// plane access, i.e. allowed to update services.
func IsManager(info Info) bool {
	return info.LocalNodeActive && info.ControlAvailable
}

// EnsureManager fails with ErrNotManager unless the client is attached to a swarm manager.
func EnsureManager(ctx context.Context, c Client) error {
	info, err := c.Info(ctx)
	if err != nil {
		return fmt.Errorf("get swarm info: %w", err)
	}
	if !IsManager(info) {
		return fmt.Errorf("%w (local node active: %t, control available: %t)",
			ErrNotManager, info.LocalNodeActive, info.ControlAvailable)
	}
	return nil
}
