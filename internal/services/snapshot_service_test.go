package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gagyebu/internal/core"
	"gagyebu/internal/store/memory"
)

type fakePublisher struct {
	published []int64
	err       error
	closed    bool
}

func (p *fakePublisher) PublishSnapshotSaved(_ context.Context, id int64, _ string) error {
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, id)
	return nil
}

func (p *fakePublisher) Close() error {
	p.closed = true
	return nil
}

func TestSnapshotServicePublishesAfterSave(t *testing.T) {
	pub := &fakePublisher{}
	svc := NewSnapshotService(memory.New(), pub)

	saved, err := svc.InsertSnapshot(context.Background(), core.Snapshot{Month: "2024-03", Salary: 10})
	require.NoError(t, err)
	assert.Equal(t, []int64{saved.ID}, pub.published)

	require.NoError(t, svc.Close())
	assert.True(t, pub.closed)
}

func TestSnapshotServicePublishFailureDoesNotFailSave(t *testing.T) {
	st := memory.New()
	svc := NewSnapshotService(st, &fakePublisher{err: errors.New("broker down")})

	saved, err := svc.InsertSnapshot(context.Background(), core.Snapshot{Month: "2024-03"})
	require.NoError(t, err)

	got, err := st.GetSnapshot(context.Background(), saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "2024-03", got.Month)
}

func TestSnapshotServiceStorageFailure(t *testing.T) {
	pub := &fakePublisher{}
	svc := NewSnapshotService(memory.New(), pub)

	_, err := svc.InsertSnapshot(context.Background(), core.Snapshot{Month: "bad"})
	assert.ErrorIs(t, err, core.ErrInvalidMonth)
	assert.Empty(t, pub.published)
}

func TestSnapshotServiceWithoutPublisher(t *testing.T) {
	svc := NewSnapshotService(memory.New(), nil)
	_, err := svc.InsertSnapshot(context.Background(), core.Snapshot{Month: "2024-03"})
	require.NoError(t, err)
	assert.NoError(t, svc.Close())
}
