package directory

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDebouncer_RunsLastCallOnce(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)
	var calls, last atomic.Int32

	assert.False(t, d.Debounce(func() { calls.Add(1); last.Store(1) }))
	assert.True(t, d.Debounce(func() { calls.Add(1); last.Store(2) }))
	assert.True(t, d.Debounce(func() { calls.Add(1); last.Store(3) }))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, d.Wait(ctx))

	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, int32(3), last.Load())
}

func TestDebouncer_Cancel(t *testing.T) {
	d := NewDebouncer(time.Hour)
	var called atomic.Bool

	assert.False(t, d.Cancel(), "nothing pending")
	d.Debounce(func() { called.Store(true) })
	assert.True(t, d.Cancel())
	assert.False(t, d.Cancel())

	require.NoError(t, d.Wait(context.Background()))
	assert.False(t, called.Load())
}

func TestDebouncer_WaitHonorsContext(t *testing.T) {
	d := NewDebouncer(time.Hour)
	d.Debounce(func() {})
	defer d.Cancel()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, d.Wait(ctx), context.DeadlineExceeded)
}
