// Package postgres stores PIN hashes and monthly snapshots in PostgreSQL.
package postgres

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"gagyebu/internal/core"
	"gagyebu/internal/store"
)

//go:embed schema.sql
var schemaSQL string

const snapshotColumns = `id, month, salary, card1, card2, card3, card4, extra1, extra2, extra3, extra4, memo, created_at`

var (
	_ store.PinLookup      = (*Store)(nil)
	_ store.PinWriter      = (*Store)(nil)
	_ store.SnapshotWriter = (*Store)(nil)
	_ store.SnapshotReader = (*Store)(nil)
	_ store.SnapshotRanger = (*Store)(nil)
)

// Config holds the PostgreSQL connection settings.
type Config struct {
	URL string
	// MaxConns is the maximum number of connections in the pool.
	MaxConns int
}

// Store is a pgx-backed implementation of the store ports.
type Store struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// New connects, pings and applies the schema.
func New(ctx context.Context, cfg Config, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxConns == 0 {
		cfg.MaxConns = 10
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parsing connection string: %w", err)
	}
	poolConfig.MaxConns = int32(cfg.MaxConns)
	poolConfig.MaxConnLifetime = 1 * time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	logger.Info("connected to PostgreSQL",
		"host", poolConfig.ConnConfig.Host,
		"database", poolConfig.ConnConfig.Database,
	)

	s := &Store{pool: pool, logger: logger}
	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		pool.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// Ping reports whether the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *Store) HasPinHash(ctx context.Context, hash string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM app_pin WHERE pin_hash = $1)`, hash).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("lookup pin hash: %w", err)
	}
	return exists, nil
}

func (s *Store) AddPinHash(ctx context.Context, hash string) error {
	_, err := s.pool.Exec(ctx, `INSERT INTO app_pin (pin_hash) VALUES ($1) ON CONFLICT (pin_hash) DO NOTHING`, hash)
	if err != nil {
		return fmt.Errorf("insert pin hash: %w", err)
	}
	s.logger.Info("PIN hash registered")
	return nil
}

func (s *Store) InsertSnapshot(ctx context.Context, snap core.Snapshot) (core.Snapshot, error) {
	if err := snap.Validate(); err != nil {
		return core.Snapshot{}, err
	}
	err := s.pool.QueryRow(ctx, `INSERT INTO monthly_money
(month, salary, card1, card2, card3, card4, extra1, extra2, extra3, extra4, memo)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
RETURNING id, created_at`,
		snap.Month, snap.Salary,
		snap.Card1, snap.Card2, snap.Card3, snap.Card4,
		snap.Extra1, snap.Extra2, snap.Extra3, snap.Extra4,
		snap.Memo,
	).Scan(&snap.ID, &snap.CreatedAt)
	if err != nil {
		return core.Snapshot{}, fmt.Errorf("insert snapshot: %w", err)
	}
	s.logger.Info("snapshot saved to PostgreSQL", "id", snap.ID, "month", snap.Month)
	return snap, nil
}

func (s *Store) LatestSnapshot(ctx context.Context, month string) (core.Snapshot, bool, error) {
	snap, err := scanSnapshot(s.pool.QueryRow(ctx,
		`SELECT `+snapshotColumns+` FROM monthly_money WHERE month = $1 ORDER BY id DESC LIMIT 1`, month))
	if errors.Is(err, pgx.ErrNoRows) {
		return core.Snapshot{}, false, nil
	}
	if err != nil {
		return core.Snapshot{}, false, fmt.Errorf("latest snapshot for %s: %w", month, err)
	}
	return snap, true, nil
}

func (s *Store) ListSnapshots(ctx context.Context, month string) ([]core.Snapshot, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+snapshotColumns+` FROM monthly_money WHERE month = $1 ORDER BY id DESC`, month)
	if err != nil {
		return nil, fmt.Errorf("list snapshots for %s: %w", month, err)
	}
	return collect(rows)
}

func (s *Store) GetSnapshot(ctx context.Context, id int64) (core.Snapshot, error) {
	snap, err := scanSnapshot(s.pool.QueryRow(ctx,
		`SELECT `+snapshotColumns+` FROM monthly_money WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return core.Snapshot{}, store.ErrNotFound
	}
	if err != nil {
		return core.Snapshot{}, fmt.Errorf("get snapshot %d: %w", id, err)
	}
	return snap, nil
}

func (s *Store) SnapshotsAfter(ctx context.Context, afterID int64, limit int) ([]core.Snapshot, error) {
	var limitArg any // NULL means no limit
	if limit > 0 {
		limitArg = limit
	}
	rows, err := s.pool.Query(ctx,
		`SELECT `+snapshotColumns+` FROM monthly_money WHERE id > $1 ORDER BY id ASC LIMIT $2`,
		afterID, limitArg)
	if err != nil {
		return nil, fmt.Errorf("snapshots after %d: %w", afterID, err)
	}
	return collect(rows)
}

func scanSnapshot(row pgx.Row) (core.Snapshot, error) {
	var s core.Snapshot
	err := row.Scan(&s.ID, &s.Month, &s.Salary,
		&s.Card1, &s.Card2, &s.Card3, &s.Card4,
		&s.Extra1, &s.Extra2, &s.Extra3, &s.Extra4,
		&s.Memo, &s.CreatedAt)
	return s, err
}

func collect(rows pgx.Rows) ([]core.Snapshot, error) {
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
