// Package store defines the unified storage interface for the Recur
// subscription registry.
package store

import (
	"context"

	"github.com/xraph/recur/subscription"
)

// Store is the storage interface engines are built on. It combines
// the subscription registry semantics with backend lifecycle
// management. Any backend that preserves the registry invariants —
// unique ids, monotonic schedule cursors, terminal cancellation —
// suffices.
type Store interface {
	subscription.Registry

	// Migrate prepares backend schemas or indexes.
	Migrate(ctx context.Context) error

	// Ping checks backend connectivity.
	Ping(ctx context.Context) error

	// Close releases backend resources.
	Close() error
}
