package main

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gagyebu/internal/core"
	"gagyebu/internal/digest"
	"gagyebu/internal/log"
	"gagyebu/internal/store/memory"
)

func quietLogger() *log.Logger {
	return log.New(log.Config{Output: io.Discard})
}

func TestRunSavesEditedMonth(t *testing.T) {
	t.Setenv("GAGYEBU_PIN", "1234")
	st := memory.New(digest.SHA256Hex("1234"))

	opts := options{
		sets:    multiFlag{"base=3,000,000", "card1=500000", "extra1=200000"},
		toggles: multiFlag{"extra1"},
		save:    true,
	}
	require.Equal(t, 0, run(context.Background(), quietLogger(), st, opts))

	month := core.MonthOf(time.Now()).String()
	snap, found, err := st.LatestSnapshot(context.Background(), month)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, int64(3000000), snap.Salary)
	assert.Equal(t, int64(500000), snap.Card1)
	assert.Equal(t, int64(200000), snap.Extra1)
	assert.Contains(t, snap.Memo, "+ 200,000원 [용돈]")
	assert.Contains(t, snap.Memo, "최종잔액: 2,700,000원")
}

func TestRunRejectsWrongPIN(t *testing.T) {
	t.Setenv("GAGYEBU_PIN", "0000")
	st := memory.New(digest.SHA256Hex("1234"))

	assert.Equal(t, 1, run(context.Background(), quietLogger(), st, options{save: true}))

	list, err := st.ListSnapshots(context.Background(), core.MonthOf(time.Now()).String())
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestRunRejectsBadEdits(t *testing.T) {
	t.Setenv("GAGYEBU_PIN", "1234")
	st := memory.New(digest.SHA256Hex("1234"))

	assert.Equal(t, 2, run(context.Background(), quietLogger(), st, options{sets: multiFlag{"card9=100"}}))
	assert.Equal(t, 2, run(context.Background(), quietLogger(), st, options{sets: multiFlag{"card1"}}))
	assert.Equal(t, 2, run(context.Background(), quietLogger(), st, options{toggles: multiFlag{"nope"}}))
}

func TestMultiFlag(t *testing.T) {
	var m multiFlag
	require.NoError(t, m.Set("a=1"))
	require.NoError(t, m.Set("b=2"))
	assert.Equal(t, "a=1,b=2", m.String())
}
