package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gagyebu/internal/amqp"
	"gagyebu/internal/core"
	"gagyebu/internal/store/memory"
)

type fakeMirror struct {
	mu       sync.Mutex
	rows     []core.Snapshot
	initial  int64
	failOnID int64
}

func (m *fakeMirror) AppendSnapshot(_ context.Context, s core.Snapshot) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s.ID == m.failOnID {
		return "", errors.New("quota exceeded")
	}
	m.rows = append(m.rows, s)
	return fmt.Sprintf("Snapshots!A%d", len(m.rows)+1), nil
}

func (m *fakeMirror) LastMirroredID(context.Context) (int64, error) {
	return m.initial, nil
}

func (m *fakeMirror) ids() []int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]int64, len(m.rows))
	for i, r := range m.rows {
		out[i] = r.ID
	}
	return out
}

func seed(t *testing.T, n int) *memory.Store {
	t.Helper()
	st := memory.New()
	for i := 0; i < n; i++ {
		_, err := st.InsertSnapshot(context.Background(), core.Snapshot{Month: "2024-03", Salary: int64(i)})
		require.NoError(t, err)
	}
	return st
}

func TestCatchUpAppendsInOrderAcrossBatches(t *testing.T) {
	st := seed(t, 5)
	mirror := &fakeMirror{}
	w := NewMirrorWorker(st, mirror, 2)

	n, err := w.CatchUp(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, []int64{1, 2, 3, 4, 5}, mirror.ids())
	assert.Equal(t, int64(5), w.LastID())

	n, err = w.CatchUp(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n, "nothing new")
}

func TestCatchUpResumesFromMirrorCursor(t *testing.T) {
	st := seed(t, 4)
	mirror := &fakeMirror{initial: 2}
	w := NewMirrorWorker(st, mirror, 10)

	_, err := w.CatchUp(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 4}, mirror.ids())
}

func TestHandleSnapshotSavedIsIdempotent(t *testing.T) {
	st := seed(t, 2)
	mirror := &fakeMirror{}
	w := NewMirrorWorker(st, mirror, 10)
	ctx := context.Background()

	msg := amqp.NewSnapshotSavedMessage(2, "2024-03")
	require.NoError(t, w.HandleSnapshotSaved(ctx, msg))
	require.NoError(t, w.HandleSnapshotSaved(ctx, msg))
	assert.Equal(t, []int64{1, 2}, mirror.ids())
}

func TestCatchUpStopsAtFailure(t *testing.T) {
	st := seed(t, 3)
	mirror := &fakeMirror{failOnID: 2}
	w := NewMirrorWorker(st, mirror, 10)

	n, err := w.CatchUp(context.Background())
	require.Error(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, int64(1), w.LastID())

	mirror.failOnID = 0
	n, err = w.CatchUp(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []int64{1, 2, 3}, mirror.ids())
}
