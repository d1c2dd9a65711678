// Package budget holds the editable state of one month and orchestrates
// fetch, save and history against the snapshot store.
package budget

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"gagyebu/internal/core"
	"gagyebu/internal/session"
	"gagyebu/internal/store"
)

// Status is the save indicator.
type Status string

const (
	StatusIdle   Status = "idle"
	StatusSaving Status = "saving"
	StatusSaved  Status = "saved"
	StatusError  Status = "error"
)

const (
	DefaultSavedResetDelay = 2 * time.Second
	DefaultErrorClearDelay = 3 * time.Second

	fallbackSaveError = "저장 중 오류가 발생했습니다."
)

var (
	ErrNotAuthenticated = errors.New("session is not authenticated")
	ErrSaveInProgress   = errors.New("save already in progress")
)

type Options struct {
	Logger *slog.Logger
	// Now supplies the starting month and today's label.
	Now             func() time.Time
	SavedResetDelay time.Duration
	ErrorClearDelay time.Duration
}

// Controller is the in-memory state of one client. It is safe for
// concurrent use; store calls run without holding the lock.
type Controller struct {
	sess   *session.Session
	reader store.SnapshotReader
	writer store.SnapshotWriter
	logger *slog.Logger
	now    func() time.Time

	savedResetDelay time.Duration
	errorClearDelay time.Duration

	mu          sync.Mutex
	month       core.Month
	base        int64
	entries     []core.Entry
	loading     bool
	fetchSeq    uint64
	status      Status
	errMsg      string
	statusGen   uint64
	history     []core.Snapshot
	historyOpen bool

	revert delayed
}

// View is a copy of the controller state for rendering.
type View struct {
	Month        core.Month
	MonthKey     string
	MonthLabel   string
	TodayLabel   string
	Base         int64
	Entries      []core.Entry
	Total        int64
	Loading      bool
	Status       Status
	ErrorMessage string
	History      []core.Snapshot
	HistoryOpen  bool
}

func NewController(sess *session.Session, reader store.SnapshotReader, writer store.SnapshotWriter, opts Options) *Controller {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.SavedResetDelay <= 0 {
		opts.SavedResetDelay = DefaultSavedResetDelay
	}
	if opts.ErrorClearDelay <= 0 {
		opts.ErrorClearDelay = DefaultErrorClearDelay
	}
	return &Controller{
		sess:            sess,
		reader:          reader,
		writer:          writer,
		logger:          opts.Logger,
		now:             opts.Now,
		savedResetDelay: opts.SavedResetDelay,
		errorClearDelay: opts.ErrorClearDelay,
		month:           core.MonthOf(opts.Now()),
		entries:         core.DefaultEntries(),
		status:          StatusIdle,
	}
}

// Session returns the session this controller acts for.
func (c *Controller) Session() *session.Session {
	return c.sess
}

// SetMonth shifts the selected month by offset calendar months. The
// history list belongs to the previous month and is dropped.
func (c *Controller) SetMonth(offset int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.month = c.month.AddMonths(offset)
	c.history = nil
}

// Navigate shifts the month and refreshes what depends on it.
func (c *Controller) Navigate(ctx context.Context, offset int) {
	c.SetMonth(offset)
	c.FetchCurrent(ctx)

	c.mu.Lock()
	open := c.historyOpen
	c.mu.Unlock()
	if open {
		c.FetchHistory(ctx)
	}
}

// FetchCurrent loads the latest snapshot of the selected month. A miss
// resets the base and entries to defaults. Operators always come back as
// Decrease. Errors are logged and leave the state as it was. A result is
// applied only if the month it was fetched for is still selected.
func (c *Controller) FetchCurrent(ctx context.Context) {
	if !c.sess.Authenticated() {
		return
	}

	c.mu.Lock()
	c.fetchSeq++
	seq := c.fetchSeq
	month := c.month
	c.loading = true
	c.mu.Unlock()

	snap, found, err := c.reader.LatestSnapshot(ctx, month.String())

	c.mu.Lock()
	defer c.mu.Unlock()
	if seq == c.fetchSeq {
		c.loading = false
	}
	if err != nil {
		c.logger.ErrorContext(ctx, "fetch current snapshot failed", "month", month.String(), "error", err)
		return
	}
	if !c.month.Equal(month) {
		c.logger.DebugContext(ctx, "discarding stale fetch", "fetched", month.String(), "selected", c.month.String())
		return
	}
	if found {
		c.base = snap.Salary
		c.entries = snap.Entries()
		return
	}
	c.base = 0
	c.entries = core.DefaultEntries()
}

// SetBaseAmount keeps only the digits of input; anything else becomes 0.
func (c *Controller) SetBaseAmount(input string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.base = core.ParseAmount(input)
}

// SetEntryAmount normalizes input like SetBaseAmount. Unknown ids are ignored.
func (c *Controller) SetEntryAmount(id, input string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := c.indexOf(id); i >= 0 {
		c.entries[i].Amount = core.ParseAmount(input)
	}
}

// ToggleOperator flips one entry between Increase and Decrease.
func (c *Controller) ToggleOperator(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := c.indexOf(id); i >= 0 {
		c.entries[i].Operator = c.entries[i].Operator.Toggle()
	}
}

func (c *Controller) indexOf(id string) int {
	for i := range c.entries {
		if c.entries[i].ID == id {
			return i
		}
	}
	return -1
}

// Total is the base plus the signed entry amounts.
func (c *Controller) Total() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return core.Total(c.base, c.entries)
}

// Summary renders the text used for the memo, the clipboard and sharing.
func (c *Controller) Summary() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.summaryLocked()
}

func (c *Controller) summaryLocked() string {
	return core.RenderSummary(c.month.Label(), c.base, c.entries, core.Total(c.base, c.entries))
}

// ShareTitle is the title passed to a share target.
func (c *Controller) ShareTitle() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return core.ShareTitle(c.month.Label())
}

// Save inserts a snapshot of the current state. Local edits are kept
// whatever the outcome, so retrying is calling Save again.
func (c *Controller) Save(ctx context.Context) error {
	if !c.sess.Authenticated() {
		return ErrNotAuthenticated
	}

	c.mu.Lock()
	if c.status == StatusSaving {
		c.mu.Unlock()
		return ErrSaveInProgress
	}
	snap := core.NewSnapshot(c.month, c.base, c.entries, c.summaryLocked())
	c.setStatusLocked(StatusSaving, "")
	c.mu.Unlock()

	saved, err := c.writer.InsertSnapshot(ctx, snap)

	c.mu.Lock()
	if err != nil {
		msg := err.Error()
		if msg == "" {
			msg = fallbackSaveError
		}
		gen := c.setStatusLocked(StatusError, msg)
		c.revert.schedule(c.errorClearDelay, func() { c.resetStatus(gen) })
		c.mu.Unlock()
		c.logger.ErrorContext(ctx, "save snapshot failed", "month", snap.Month, "error", err)
		return fmt.Errorf("save snapshot: %w", err)
	}

	gen := c.setStatusLocked(StatusSaved, "")
	c.revert.schedule(c.savedResetDelay, func() { c.resetStatus(gen) })
	refresh := c.historyOpen
	c.mu.Unlock()

	c.logger.InfoContext(ctx, "snapshot saved", "snapshot_id", saved.ID, "month", saved.Month)

	if refresh {
		c.FetchHistory(ctx)
	}
	return nil
}

// setStatusLocked records a status transition and supersedes any pending
// revert. It returns the transition's generation.
func (c *Controller) setStatusLocked(status Status, msg string) uint64 {
	c.revert.cancel()
	c.statusGen++
	c.status = status
	c.errMsg = msg
	return c.statusGen
}

func (c *Controller) resetStatus(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.statusGen != gen {
		return
	}
	c.status = StatusIdle
	c.errMsg = ""
}

// FetchHistory loads every snapshot of the selected month, newest first.
// On error the previous list is kept.
func (c *Controller) FetchHistory(ctx context.Context) {
	c.mu.Lock()
	month := c.month
	c.mu.Unlock()

	list, err := c.reader.ListSnapshots(ctx, month.String())
	if err != nil {
		c.logger.ErrorContext(ctx, "fetch history failed", "month", month.String(), "error", err)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.month.Equal(month) {
		return
	}
	c.history = list
}

// OpenHistory shows the history panel and refreshes it.
func (c *Controller) OpenHistory(ctx context.Context) {
	c.mu.Lock()
	c.historyOpen = true
	c.mu.Unlock()
	c.FetchHistory(ctx)
}

func (c *Controller) CloseHistory() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.historyOpen = false
}

// HistoryEntry returns a snapshot from the loaded history list.
func (c *Controller) HistoryEntry(id int64) (core.Snapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, s := range c.history {
		if s.ID == id {
			return s, true
		}
	}
	return core.Snapshot{}, false
}

// View returns a copy of the state.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()

	entries := make([]core.Entry, len(c.entries))
	copy(entries, c.entries)
	history := make([]core.Snapshot, len(c.history))
	copy(history, c.history)

	labels := core.FormatDate(c.now())
	return View{
		Month:        c.month,
		MonthKey:     c.month.String(),
		MonthLabel:   c.month.Label(),
		TodayLabel:   labels.Today,
		Base:         c.base,
		Entries:      entries,
		Total:        core.Total(c.base, c.entries),
		Loading:      c.loading,
		Status:       c.status,
		ErrorMessage: c.errMsg,
		History:      history,
		HistoryOpen:  c.historyOpen,
	}
}

// Close stops pending timers.
func (c *Controller) Close() {
	c.revert.cancel()
}
