package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"gagyebu/internal/core"
	"gagyebu/internal/store"

	_ "modernc.org/sqlite"
)

const timeLayout = time.RFC3339Nano

var (
	_ store.PinLookup      = (*SQLiteRepository)(nil)
	_ store.PinWriter      = (*SQLiteRepository)(nil)
	_ store.SnapshotWriter = (*SQLiteRepository)(nil)
	_ store.SnapshotReader = (*SQLiteRepository)(nil)
	_ store.SnapshotRanger = (*SQLiteRepository)(nil)
)

type SQLiteRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// Single writer; SQLite serializes writes anyway
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db, now: time.Now}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// HasPinHash implements store.PinLookup
func (r *SQLiteRepository) HasPinHash(ctx context.Context, hash string) (bool, error) {
	var exists bool
	if err := r.db.QueryRowContext(ctx, qHasPinHash, hash).Scan(&exists); err != nil {
		return false, fmt.Errorf("lookup pin hash: %w", err)
	}
	return exists, nil
}

// AddPinHash implements store.PinWriter
func (r *SQLiteRepository) AddPinHash(ctx context.Context, hash string) error {
	if _, err := r.db.ExecContext(ctx, qAddPinHash, hash, r.now().UTC().Format(timeLayout)); err != nil {
		return fmt.Errorf("insert pin hash: %w", err)
	}
	slog.InfoContext(ctx, "PIN hash registered")
	return nil
}

// InsertSnapshot implements store.SnapshotWriter
func (r *SQLiteRepository) InsertSnapshot(ctx context.Context, s core.Snapshot) (core.Snapshot, error) {
	if err := s.Validate(); err != nil {
		return core.Snapshot{}, err
	}
	s.CreatedAt = r.now().UTC()
	res, err := r.db.ExecContext(ctx, qInsertSnapshot,
		s.Month, s.Salary,
		s.Card1, s.Card2, s.Card3, s.Card4,
		s.Extra1, s.Extra2, s.Extra3, s.Extra4,
		s.Memo, s.CreatedAt.Format(timeLayout))
	if err != nil {
		return core.Snapshot{}, fmt.Errorf("insert snapshot: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Snapshot{}, fmt.Errorf("snapshot id: %w", err)
	}
	s.ID = id

	slog.InfoContext(ctx, "Snapshot saved to SQLite",
		"id", s.ID,
		"month", s.Month,
		"salary", s.Salary)

	return s, nil
}

// LatestSnapshot implements store.SnapshotReader
func (r *SQLiteRepository) LatestSnapshot(ctx context.Context, month string) (core.Snapshot, bool, error) {
	s, err := scanSnapshot(r.db.QueryRowContext(ctx, qLatestSnapshot, month))
	if errors.Is(err, sql.ErrNoRows) {
		return core.Snapshot{}, false, nil
	}
	if err != nil {
		return core.Snapshot{}, false, fmt.Errorf("latest snapshot for %s: %w", month, err)
	}
	return s, true, nil
}

// ListSnapshots implements store.SnapshotReader
func (r *SQLiteRepository) ListSnapshots(ctx context.Context, month string) ([]core.Snapshot, error) {
	rows, err := r.db.QueryContext(ctx, qListSnapshots, month)
	if err != nil {
		return nil, fmt.Errorf("list snapshots for %s: %w", month, err)
	}
	return collect(rows)
}

// GetSnapshot implements store.SnapshotReader
func (r *SQLiteRepository) GetSnapshot(ctx context.Context, id int64) (core.Snapshot, error) {
	s, err := scanSnapshot(r.db.QueryRowContext(ctx, qGetSnapshot, id))
	if errors.Is(err, sql.ErrNoRows) {
		return core.Snapshot{}, store.ErrNotFound
	}
	if err != nil {
		return core.Snapshot{}, fmt.Errorf("get snapshot %d: %w", id, err)
	}
	return s, nil
}

// SnapshotsAfter implements store.SnapshotRanger
func (r *SQLiteRepository) SnapshotsAfter(ctx context.Context, afterID int64, limit int) ([]core.Snapshot, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}
	rows, err := r.db.QueryContext(ctx, qSnapshotsAfter, afterID, limit)
	if err != nil {
		return nil, fmt.Errorf("snapshots after %d: %w", afterID, err)
	}
	return collect(rows)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(row scanner) (core.Snapshot, error) {
	var (
		s       core.Snapshot
		created string
	)
	err := row.Scan(&s.ID, &s.Month, &s.Salary,
		&s.Card1, &s.Card2, &s.Card3, &s.Card4,
		&s.Extra1, &s.Extra2, &s.Extra3, &s.Extra4,
		&s.Memo, &created)
	if err != nil {
		return core.Snapshot{}, err
	}
	t, err := time.Parse(timeLayout, created)
	if err != nil {
		return core.Snapshot{}, fmt.Errorf("parse created_at %q: %w", created, err)
	}
	s.CreatedAt = t
	return s, nil
}

func collect(rows *sql.Rows) ([]core.Snapshot, error) {
	defer rows.Close()
	out := make([]core.Snapshot, 0)
	for rows.Next() {
		s, err := scanSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshots: %w", err)
	}
	return out, nil
}
