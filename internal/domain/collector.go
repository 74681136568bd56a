package domain

import "context"

// Collector produces host snapshots. Implementations may block for the
// CPU sampling window.
type Collector interface {
	Collect(ctx context.Context) (Snapshot, error)
}
