package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"gagyebu/internal/amqp"
	"gagyebu/internal/sheets"
	"gagyebu/internal/store"
)

// MirrorWorker copies saved snapshots into the spreadsheet mirror in id order.
// Every trigger (a message or a periodic tick) appends all rows past the
// mirror's high-water mark, so duplicate or lost messages are harmless.
type MirrorWorker struct {
	storage   store.SnapshotRanger
	mirror    sheets.Mirror
	batchSize int

	mu     sync.Mutex
	primed bool
	lastID int64
}

func NewMirrorWorker(storage store.SnapshotRanger, mirror sheets.Mirror, batchSize int) *MirrorWorker {
	if batchSize <= 0 {
		batchSize = 50
	}
	return &MirrorWorker{
		storage:   storage,
		mirror:    mirror,
		batchSize: batchSize,
	}
}

// HandleSnapshotSaved processes one snapshot saved message from AMQP.
func (w *MirrorWorker) HandleSnapshotSaved(ctx context.Context, msg *amqp.SnapshotSavedMessage) error {
	slog.InfoContext(ctx, "Processing snapshot saved message",
		"id", msg.ID,
		"month", msg.Month)

	if _, err := w.CatchUp(ctx); err != nil {
		return fmt.Errorf("mirror snapshot %d: %w", msg.ID, err)
	}
	return nil
}

// CatchUp appends every snapshot newer than the mirror's last id and returns
// how many rows were written.
func (w *MirrorWorker) CatchUp(ctx context.Context) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.primed {
		last, err := w.mirror.LastMirroredID(ctx)
		if err != nil {
			return 0, fmt.Errorf("read mirror cursor: %w", err)
		}
		w.lastID = last
		w.primed = true
		slog.InfoContext(ctx, "Mirror cursor loaded", "last_id", last)
	}

	written := 0
	for {
		batch, err := w.storage.SnapshotsAfter(ctx, w.lastID, w.batchSize)
		if err != nil {
			return written, fmt.Errorf("list snapshots after %d: %w", w.lastID, err)
		}
		for _, s := range batch {
			ref, err := w.mirror.AppendSnapshot(ctx, s)
			if err != nil {
				return written, fmt.Errorf("append snapshot %d: %w", s.ID, err)
			}
			w.lastID = s.ID
			written++
			slog.InfoContext(ctx, "Mirrored snapshot",
				"id", s.ID,
				"month", s.Month,
				"sheets_ref", ref)
		}
		if len(batch) < w.batchSize {
			break
		}
	}

	if written > 0 {
		slog.InfoContext(ctx, "Mirror catch-up completed", "rows", written, "last_id", w.lastID)
	}
	return written, nil
}

// LastID returns the high-water mark, or 0 before the first catch-up.
func (w *MirrorWorker) LastID() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastID
}
