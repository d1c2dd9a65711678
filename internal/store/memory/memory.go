package memory

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"gagyebu/internal/core"
	"gagyebu/internal/digest"
	"gagyebu/internal/store"
)

// Ensure interface conformance
var (
	_ store.PinLookup      = (*Store)(nil)
	_ store.PinWriter      = (*Store)(nil)
	_ store.SnapshotWriter = (*Store)(nil)
	_ store.SnapshotReader = (*Store)(nil)
	_ store.SnapshotRanger = (*Store)(nil)
)

type Store struct {
	mu        sync.Mutex
	pins      map[string]struct{}
	snapshots []core.Snapshot
	nextID    int64
	now       func() time.Time
}

func New(pinHashes ...string) *Store {
	s := &Store{pins: map[string]struct{}{}, nextID: 1, now: time.Now}
	for _, h := range dedupe(pinHashes) {
		s.pins[h] = struct{}{}
	}
	return s
}

// NewFromFiles seeds the store from base/seed_pin_hashes.txt (one hex digest
// per line) and base/seed_pins.txt (plain PINs, hashed on load; for local
// development only).
func NewFromFiles(base string) *Store {
	hashes := readLines(filepath.Join(base, "seed_pin_hashes.txt"))
	for _, pin := range readLines(filepath.Join(base, "seed_pins.txt")) {
		hashes = append(hashes, digest.SHA256Hex(pin))
	}
	return New(hashes...)
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error {
	return nil
}

// HasPinHash reports whether hash was seeded or added.
func (s *Store) HasPinHash(_ context.Context, hash string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.pins[hash]
	return ok, nil
}

// AddPinHash registers a hash.
func (s *Store) AddPinHash(_ context.Context, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pins[strings.TrimSpace(hash)] = struct{}{}
	return nil
}

// InsertSnapshot appends the snapshot with the next id.
func (s *Store) InsertSnapshot(_ context.Context, snap core.Snapshot) (core.Snapshot, error) {
	if err := snap.Validate(); err != nil {
		return core.Snapshot{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	snap.ID = s.nextID
	snap.CreatedAt = s.now()
	s.nextID++
	s.snapshots = append(s.snapshots, snap)
	return snap, nil
}

// LatestSnapshot returns the highest-id snapshot for month.
func (s *Store) LatestSnapshot(_ context.Context, month string) (core.Snapshot, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.snapshots) - 1; i >= 0; i-- {
		if s.snapshots[i].Month == month {
			return s.snapshots[i], true, nil
		}
	}
	return core.Snapshot{}, false, nil
}

// ListSnapshots returns the month's snapshots, highest id first.
func (s *Store) ListSnapshots(_ context.Context, month string) ([]core.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Snapshot, 0)
	for i := len(s.snapshots) - 1; i >= 0; i-- {
		if s.snapshots[i].Month == month {
			out = append(out, s.snapshots[i])
		}
	}
	return out, nil
}

// GetSnapshot looks a snapshot up by id.
func (s *Store) GetSnapshot(_ context.Context, id int64) (core.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, snap := range s.snapshots {
		if snap.ID == id {
			return snap, nil
		}
	}
	return core.Snapshot{}, store.ErrNotFound
}

// SnapshotsAfter returns up to limit snapshots with id > afterID, oldest first.
func (s *Store) SnapshotsAfter(_ context.Context, afterID int64, limit int) ([]core.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Snapshot, 0)
	for _, snap := range s.snapshots {
		if snap.ID > afterID {
			out = append(out, snap)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func readLines(path string) []string {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()
	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return dedupe(out)
}

func dedupe(in []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
