package session

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gagyebu/internal/digest"
	"gagyebu/internal/store/memory"
)

type countingLookup struct {
	calls int
	match bool
	err   error
}

func (c *countingLookup) HasPinHash(context.Context, string) (bool, error) {
	c.calls++
	return c.match, c.err
}

func TestNewSessionIsUnauthenticated(t *testing.T) {
	a, b := New(), New()
	assert.False(t, a.Authenticated())
	assert.NotEmpty(t, a.ID())
	assert.NotEqual(t, a.ID(), b.ID())
}

func TestVerifyEmptyCandidateSkipsStore(t *testing.T) {
	lookup := &countingLookup{match: true}
	gate := NewGate(lookup, nil)
	sess := New()
	form := &PinForm{}

	assert.False(t, gate.Verify(context.Background(), sess, form))
	assert.Zero(t, lookup.calls)
	assert.False(t, form.Invalid)
	assert.False(t, sess.Authenticated())
}

func TestVerifyMatchingPin(t *testing.T) {
	st := memory.New(digest.SHA256Hex("1234"))
	gate := NewGate(st, nil)
	sess := New()
	form := &PinForm{Candidate: "1234", Invalid: true}

	require.True(t, gate.Verify(context.Background(), sess, form))
	assert.True(t, sess.Authenticated())
	assert.False(t, form.Invalid)
	assert.False(t, form.Verifying)
	assert.Equal(t, "1234", form.Candidate)
}

func TestVerifyWrongPinClearsCandidate(t *testing.T) {
	st := memory.New(digest.SHA256Hex("1234"))
	gate := NewGate(st, nil)
	sess := New()
	form := &PinForm{Candidate: "0000"}

	assert.False(t, gate.Verify(context.Background(), sess, form))
	candidate, invalid, verifying := form.Snapshot()
	assert.Empty(t, candidate)
	assert.True(t, invalid)
	assert.False(t, verifying)
	assert.False(t, sess.Authenticated())
}

func TestVerifyStoreErrorLooksLikeWrongPin(t *testing.T) {
	gate := NewGate(&countingLookup{err: errors.New("connection refused")}, nil)
	sess := New()
	form := &PinForm{Candidate: "1234"}

	assert.False(t, gate.Verify(context.Background(), sess, form))
	assert.Empty(t, form.Candidate)
	assert.True(t, form.Invalid)
	assert.False(t, sess.Authenticated())
}

func TestVerifySucceedsWithDuplicateHashes(t *testing.T) {
	st := memory.New()
	hash := digest.SHA256Hex("4321")
	require.NoError(t, st.AddPinHash(context.Background(), hash))
	require.NoError(t, st.AddPinHash(context.Background(), hash))

	gate := NewGate(st, nil)
	sess := New()
	form := &PinForm{}
	form.SetCandidate("4321")
	assert.True(t, gate.Verify(context.Background(), sess, form))
	assert.True(t, sess.Authenticated())
}
