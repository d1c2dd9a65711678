package adapters

import (
	"context"

	"gagyebu/internal/core"
	"gagyebu/internal/services"
	"gagyebu/internal/store"
)

// Repository is a storage backend as the adapter needs it. Its own
// InsertSnapshot is only reached through the service.
type Repository interface {
	store.PinLookup
	store.PinWriter
	store.SnapshotWriter
	store.SnapshotReader
	store.SnapshotRanger
	Ping(ctx context.Context) error
}

// ServiceAdapter reads straight from a repository and routes writes
// through the SnapshotService, so every save is also announced.
type ServiceAdapter struct {
	repo    Repository
	service *services.SnapshotService
}

func NewServiceAdapter(repo Repository, service *services.SnapshotService) *ServiceAdapter {
	return &ServiceAdapter{
		repo:    repo,
		service: service,
	}
}

func (a *ServiceAdapter) InsertSnapshot(ctx context.Context, s core.Snapshot) (core.Snapshot, error) {
	return a.service.InsertSnapshot(ctx, s)
}

func (a *ServiceAdapter) HasPinHash(ctx context.Context, hash string) (bool, error) {
	return a.repo.HasPinHash(ctx, hash)
}

func (a *ServiceAdapter) AddPinHash(ctx context.Context, hash string) error {
	return a.repo.AddPinHash(ctx, hash)
}

func (a *ServiceAdapter) LatestSnapshot(ctx context.Context, month string) (core.Snapshot, bool, error) {
	return a.repo.LatestSnapshot(ctx, month)
}

func (a *ServiceAdapter) ListSnapshots(ctx context.Context, month string) ([]core.Snapshot, error) {
	return a.repo.ListSnapshots(ctx, month)
}

func (a *ServiceAdapter) GetSnapshot(ctx context.Context, id int64) (core.Snapshot, error) {
	return a.repo.GetSnapshot(ctx, id)
}

func (a *ServiceAdapter) SnapshotsAfter(ctx context.Context, afterID int64, limit int) ([]core.Snapshot, error) {
	return a.repo.SnapshotsAfter(ctx, afterID, limit)
}

func (a *ServiceAdapter) Ping(ctx context.Context) error {
	return a.repo.Ping(ctx)
}
