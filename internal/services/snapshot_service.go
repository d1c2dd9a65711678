package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"gagyebu/internal/core"
	"gagyebu/internal/store"
)

// Publisher announces saved snapshots to the mirror worker.
type Publisher interface {
	PublishSnapshotSaved(ctx context.Context, id int64, month string) error
	Close() error
}

var _ store.SnapshotWriter = (*SnapshotService)(nil)

// SnapshotService saves snapshots locally and then publishes a notification.
type SnapshotService struct {
	storage   store.SnapshotWriter
	publisher Publisher
}

// NewSnapshotService wraps storage. publisher may be nil.
func NewSnapshotService(storage store.SnapshotWriter, publisher Publisher) *SnapshotService {
	return &SnapshotService{
		storage:   storage,
		publisher: publisher,
	}
}

// InsertSnapshot implements store.SnapshotWriter. A failed publish is logged
// and does not fail the save.
func (s *SnapshotService) InsertSnapshot(ctx context.Context, snap core.Snapshot) (core.Snapshot, error) {
	saved, err := s.storage.InsertSnapshot(ctx, snap)
	if err != nil {
		return core.Snapshot{}, fmt.Errorf("save snapshot: %w", err)
	}

	if s.publisher == nil {
		slog.DebugContext(ctx, "AMQP publisher not configured, skipping snapshot saved message")
		return saved, nil
	}
	if err := s.publisher.PublishSnapshotSaved(ctx, saved.ID, saved.Month); err != nil {
		slog.ErrorContext(ctx, "Failed to publish snapshot saved message",
			"id", saved.ID, "error", err)
	}
	return saved, nil
}

// Close closes the publisher and, when it is closable, the storage.
func (s *SnapshotService) Close() error {
	var errs []error

	if c, ok := s.storage.(interface{ Close() error }); ok && c != nil {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}
	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}
	return errors.Join(errs...)
}
