package budget

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gagyebu/internal/core"
	"gagyebu/internal/digest"
	"gagyebu/internal/session"
	"gagyebu/internal/store/memory"
)

var (
	testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))
	march2024  = time.Date(2024, time.March, 15, 9, 0, 0, 0, time.Local)
)

func authedSession(t *testing.T) *session.Session {
	t.Helper()
	pins := memory.New(digest.SHA256Hex("1234"))
	sess := session.New()
	form := &session.PinForm{}
	form.SetCandidate("1234")
	require.True(t, session.NewGate(pins, testLogger).Verify(context.Background(), sess, form))
	return sess
}

func newTestController(t *testing.T, st *memory.Store, opts Options) *Controller {
	t.Helper()
	if opts.Now == nil {
		opts.Now = func() time.Time { return march2024 }
	}
	opts.Logger = testLogger
	c := NewController(authedSession(t), st, st, opts)
	t.Cleanup(c.Close)
	return c
}

func TestNewControllerDefaults(t *testing.T) {
	c := newTestController(t, memory.New(), Options{})
	v := c.View()

	assert.Equal(t, "2024-03", v.MonthKey)
	assert.Equal(t, "2024년 3월", v.MonthLabel)
	assert.Equal(t, "2024년 3월 15일 (금)", v.TodayLabel)
	assert.Len(t, v.Entries, core.SlotCount)
	assert.Equal(t, StatusIdle, v.Status)
	assert.Zero(t, v.Total)
	assert.False(t, v.HistoryOpen)
}

func TestEditing(t *testing.T) {
	c := newTestController(t, memory.New(), Options{})

	c.SetBaseAmount("3,000,000")
	c.SetEntryAmount("card1", "500,000")
	c.SetEntryAmount("extra1", "200000")
	c.ToggleOperator("extra1")
	c.SetEntryAmount("unknown", "1000")
	c.ToggleOperator("unknown")

	assert.Equal(t, int64(2700000), c.Total())

	c.SetEntryAmount("card1", "abc")
	assert.Equal(t, int64(3200000), c.Total())
}

func TestFetchCurrentAppliesLatestAndResetsOnMiss(t *testing.T) {
	st := memory.New()
	ctx := context.Background()

	entries := core.DefaultEntries()
	entries[0].Amount = 1000
	_, err := st.InsertSnapshot(ctx, core.NewSnapshot(core.NewMonth(2024, time.March), 50000, entries, "first"))
	require.NoError(t, err)
	entries[0].Amount = 2000
	_, err = st.InsertSnapshot(ctx, core.NewSnapshot(core.NewMonth(2024, time.March), 60000, entries, "second"))
	require.NoError(t, err)

	c := newTestController(t, st, Options{})
	c.ToggleOperator("card1")
	c.FetchCurrent(ctx)

	v := c.View()
	assert.Equal(t, int64(60000), v.Base)
	assert.Equal(t, int64(2000), v.Entries[0].Amount)
	assert.Equal(t, core.Decrease, v.Entries[0].Operator)
	assert.False(t, v.Loading)

	c.Navigate(ctx, 1)
	v = c.View()
	assert.Equal(t, "2024-04", v.MonthKey)
	assert.Zero(t, v.Base)
	assert.Zero(t, v.Entries[0].Amount)
}

func TestFetchCurrentRequiresAuthentication(t *testing.T) {
	st := memory.New()
	_, err := st.InsertSnapshot(context.Background(), core.NewSnapshot(core.NewMonth(2024, time.March), 50000, core.DefaultEntries(), ""))
	require.NoError(t, err)

	c := NewController(session.New(), st, st, Options{Now: func() time.Time { return march2024 }, Logger: testLogger})
	defer c.Close()
	c.FetchCurrent(context.Background())
	assert.Zero(t, c.View().Base)

	assert.ErrorIs(t, c.Save(context.Background()), ErrNotAuthenticated)
	list, _ := st.ListSnapshots(context.Background(), "2024-03")
	assert.Len(t, list, 1)
}

// gatedReader blocks LatestSnapshot for one month until released.
type gatedReader struct {
	*memory.Store
	month   string
	started chan struct{}
	release chan struct{}
}

func (g *gatedReader) LatestSnapshot(ctx context.Context, month string) (core.Snapshot, bool, error) {
	if month == g.month {
		close(g.started)
		<-g.release
	}
	return g.Store.LatestSnapshot(ctx, month)
}

func TestFetchCurrentDiscardsStaleMonth(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	_, err := st.InsertSnapshot(ctx, core.NewSnapshot(core.NewMonth(2024, time.March), 111, core.DefaultEntries(), ""))
	require.NoError(t, err)
	_, err = st.InsertSnapshot(ctx, core.NewSnapshot(core.NewMonth(2024, time.April), 222, core.DefaultEntries(), ""))
	require.NoError(t, err)

	reader := &gatedReader{Store: st, month: "2024-03", started: make(chan struct{}), release: make(chan struct{})}
	c := NewController(authedSession(t), reader, st, Options{Now: func() time.Time { return march2024 }, Logger: testLogger})
	defer c.Close()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		c.FetchCurrent(ctx)
	}()
	<-reader.started

	c.Navigate(ctx, 1)
	v := c.View()
	assert.Equal(t, int64(222), v.Base)
	assert.False(t, v.Loading)

	close(reader.release)
	wg.Wait()

	v = c.View()
	assert.Equal(t, "2024-04", v.MonthKey)
	assert.Equal(t, int64(222), v.Base)
	assert.False(t, v.Loading)
}

func TestSaveRecordsSnapshotAndRevertsStatus(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	c := newTestController(t, st, Options{SavedResetDelay: 20 * time.Millisecond})

	c.SetBaseAmount("3000000")
	c.SetEntryAmount("card1", "500000")
	require.NoError(t, c.Save(ctx))
	assert.Equal(t, StatusSaved, c.View().Status)

	snap, found, err := st.LatestSnapshot(ctx, "2024-03")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, int64(3000000), snap.Salary)
	assert.Equal(t, int64(500000), snap.Card1)
	assert.Equal(t, c.Summary(), snap.Memo)

	assert.Eventually(t, func() bool { return c.View().Status == StatusIdle }, time.Second, 5*time.Millisecond)
	assert.Equal(t, int64(3000000), c.View().Base, "edits survive the save")
}

type failingWriter struct{ err error }

func (f failingWriter) InsertSnapshot(context.Context, core.Snapshot) (core.Snapshot, error) {
	return core.Snapshot{}, f.err
}

func TestSaveFailureShowsMessageThenClears(t *testing.T) {
	c := NewController(authedSession(t), memory.New(), failingWriter{err: errors.New("db down")}, Options{
		Now:             func() time.Time { return march2024 },
		Logger:          testLogger,
		ErrorClearDelay: 20 * time.Millisecond,
	})
	defer c.Close()

	c.SetBaseAmount("1000")
	err := c.Save(context.Background())
	require.Error(t, err)

	v := c.View()
	assert.Equal(t, StatusError, v.Status)
	assert.Equal(t, "db down", v.ErrorMessage)
	assert.Equal(t, int64(1000), v.Base)

	assert.Eventually(t, func() bool {
		v := c.View()
		return v.Status == StatusIdle && v.ErrorMessage == ""
	}, time.Second, 5*time.Millisecond)
}

func TestSaveFailureWithoutMessageUsesFallback(t *testing.T) {
	c := NewController(authedSession(t), memory.New(), failingWriter{err: errors.New("")}, Options{
		Now:    func() time.Time { return march2024 },
		Logger: testLogger,
	})
	defer c.Close()

	require.Error(t, c.Save(context.Background()))
	assert.Equal(t, fallbackSaveError, c.View().ErrorMessage)
}

func TestNewerSaveSupersedesPendingRevert(t *testing.T) {
	st := memory.New()
	c := newTestController(t, st, Options{SavedResetDelay: 100 * time.Millisecond})
	ctx := context.Background()

	require.NoError(t, c.Save(ctx))
	time.Sleep(60 * time.Millisecond)
	require.NoError(t, c.Save(ctx))
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, StatusSaved, c.View().Status, "first revert was superseded")

	assert.Eventually(t, func() bool { return c.View().Status == StatusIdle }, time.Second, 5*time.Millisecond)
}

// blockingWriter holds InsertSnapshot until released.
type blockingWriter struct {
	*memory.Store
	started chan struct{}
	release chan struct{}
}

func (b *blockingWriter) InsertSnapshot(ctx context.Context, s core.Snapshot) (core.Snapshot, error) {
	close(b.started)
	<-b.release
	return b.Store.InsertSnapshot(ctx, s)
}

func TestSaveRejectsConcurrentSave(t *testing.T) {
	st := memory.New()
	w := &blockingWriter{Store: st, started: make(chan struct{}), release: make(chan struct{})}
	c := NewController(authedSession(t), st, w, Options{Now: func() time.Time { return march2024 }, Logger: testLogger})
	defer c.Close()

	done := make(chan error, 1)
	go func() { done <- c.Save(context.Background()) }()
	<-w.started

	assert.Equal(t, StatusSaving, c.View().Status)
	assert.ErrorIs(t, c.Save(context.Background()), ErrSaveInProgress)

	close(w.release)
	require.NoError(t, <-done)
}

func TestHistory(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	c := newTestController(t, st, Options{})

	c.SetBaseAmount("1000")
	require.NoError(t, c.Save(ctx))

	c.OpenHistory(ctx)
	v := c.View()
	assert.True(t, v.HistoryOpen)
	require.Len(t, v.History, 1)

	c.SetBaseAmount("2000")
	require.NoError(t, c.Save(ctx))
	v = c.View()
	require.Len(t, v.History, 2, "open history refreshes after save")
	assert.Equal(t, int64(2000), v.History[0].Salary)

	snap, ok := c.HistoryEntry(v.History[1].ID)
	require.True(t, ok)
	assert.Equal(t, int64(1000), snap.Salary)
	_, ok = c.HistoryEntry(999)
	assert.False(t, ok)

	c.CloseHistory()
	c.SetBaseAmount("3000")
	require.NoError(t, c.Save(ctx))
	assert.Len(t, c.View().History, 2, "closed history is not refreshed")

	c.SetMonth(-1)
	assert.Empty(t, c.View().History)
}

func TestShareTitleAndSummary(t *testing.T) {
	c := newTestController(t, memory.New(), Options{})
	c.SetBaseAmount("1500")
	assert.Equal(t, "2024년 3월 가계부 내역", c.ShareTitle())
	assert.Equal(t, "[2024년 3월 가계부 내역]\n기준금액: 1,500원\n------------------------\n최종잔액: 1,500원", c.Summary())
}
