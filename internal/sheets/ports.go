package sheets

import (
	"context"

	"gagyebu/internal/core"
)

// Ports for the spreadsheet mirror.
type (
	// SnapshotAppender writes one snapshot as a new row.
	SnapshotAppender interface {
		AppendSnapshot(ctx context.Context, s core.Snapshot) (rowRef string, err error)
	}

	// MirrorCursor reports the highest snapshot id already present in the mirror.
	MirrorCursor interface {
		LastMirroredID(ctx context.Context) (int64, error)
	}

	Mirror interface {
		SnapshotAppender
		MirrorCursor
	}
)
