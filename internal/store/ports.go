// Package store declares the ports the budget client uses to reach its
// datastore: the app_pin lookup table and the append-only monthly_money
// snapshot table.
package store

import (
	"context"
	"errors"

	"gagyebu/internal/core"
)

var ErrNotFound = errors.New("snapshot not found")

// Ports for outbound adapters.
type (
	// PinLookup answers whether any app_pin row carries the given hash.
	PinLookup interface {
		HasPinHash(ctx context.Context, hash string) (bool, error)
	}

	// PinWriter registers a PIN hash. Only the provisioning tool uses it.
	PinWriter interface {
		AddPinHash(ctx context.Context, hash string) error
	}

	// SnapshotWriter appends a snapshot row. The store assigns ID and CreatedAt.
	SnapshotWriter interface {
		InsertSnapshot(ctx context.Context, s core.Snapshot) (core.Snapshot, error)
	}

	SnapshotReader interface {
		// LatestSnapshot returns the highest-id snapshot for month, if any.
		LatestSnapshot(ctx context.Context, month string) (core.Snapshot, bool, error)
		// ListSnapshots returns every snapshot for month, highest id first.
		ListSnapshots(ctx context.Context, month string) ([]core.Snapshot, error)
		// GetSnapshot returns one snapshot by id or ErrNotFound.
		GetSnapshot(ctx context.Context, id int64) (core.Snapshot, error)
	}

	// SnapshotRanger lists snapshots above an id across all months, oldest
	// first. The mirror worker uses it to catch up after missed events.
	SnapshotRanger interface {
		SnapshotsAfter(ctx context.Context, afterID int64, limit int) ([]core.Snapshot, error)
	}
)
