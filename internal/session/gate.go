package session

import (
	"context"
	"log/slog"
	"sync"

	"gagyebu/internal/digest"
	"gagyebu/internal/store"
)

// PinForm is the state of the PIN entry form.
type PinForm struct {
	mu        sync.Mutex
	Candidate string
	Invalid   bool
	Verifying bool
}

// Snapshot returns a copy of the form fields.
func (f *PinForm) Snapshot() (candidate string, invalid, verifying bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Candidate, f.Invalid, f.Verifying
}

// SetCandidate replaces the typed PIN.
func (f *PinForm) SetCandidate(pin string) {
	f.mu.Lock()
	f.Candidate = pin
	f.mu.Unlock()
}

// Gate checks PIN candidates against the stored hashes.
type Gate struct {
	pins   store.PinLookup
	logger *slog.Logger
}

func NewGate(pins store.PinLookup, logger *slog.Logger) *Gate {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gate{pins: pins, logger: logger}
}

// Verify hashes form.Candidate and looks it up. On success sess becomes
// authenticated. On failure the candidate is cleared and the form is
// marked invalid; a lookup error counts as a failure. An empty candidate
// returns false without touching the store or the form.
func (g *Gate) Verify(ctx context.Context, sess *Session, form *PinForm) bool {
	form.mu.Lock()
	candidate := form.Candidate
	if candidate == "" {
		form.mu.Unlock()
		return false
	}
	form.Verifying = true
	form.mu.Unlock()

	ok, err := g.pins.HasPinHash(ctx, digest.SHA256Hex(candidate))
	if err != nil {
		// Shown to the user as a wrong PIN
		g.logger.ErrorContext(ctx, "PIN lookup failed", "session_id", sess.ID(), "error", err)
		ok = false
	}

	form.mu.Lock()
	defer form.mu.Unlock()
	form.Verifying = false
	if !ok {
		if err == nil {
			g.logger.WarnContext(ctx, "PIN rejected", "session_id", sess.ID())
		}
		form.Candidate = ""
		form.Invalid = true
		return false
	}

	sess.authenticate()
	form.Invalid = false
	g.logger.InfoContext(ctx, "session authenticated", "session_id", sess.ID())
	return true
}
