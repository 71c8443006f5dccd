package task

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestDo(t *testing.T) {
	var s Slot[string]
	res, err := s.Do(context.Background(), func(context.Context) string { return "done" })
	require.NoError(t, err)
	assert.Equal(t, "done", res)
	assert.False(t, s.Busy())

	last, ok := s.Last()
	assert.True(t, ok)
	assert.Equal(t, "done", last)
}

func TestStart_BusyWhileInFlight(t *testing.T) {
	var s Slot[int]
	release := make(chan struct{})

	ch, err := s.Start(context.Background(), func(context.Context) int {
		<-release
		return 1
	})
	require.NoError(t, err)
	assert.True(t, s.Busy())

	_, err = s.Start(context.Background(), func(context.Context) int { return 2 })
	assert.True(t, errors.Is(err, ErrBusy))

	close(release)
	assert.Equal(t, 1, <-ch)
	assert.False(t, s.Busy())

	// Idle again: a new job is accepted.
	v, err := s.Do(context.Background(), func(context.Context) int { return 3 })
	require.NoError(t, err)
	assert.Equal(t, 3, v)
}

func TestIndependentSlots(t *testing.T) {
	var one, all Slot[string]
	release := make(chan struct{})
	ch, err := one.Start(context.Background(), func(context.Context) string {
		<-release
		return "one"
	})
	require.NoError(t, err)

	v, err := all.Do(context.Background(), func(context.Context) string { return "all" })
	require.NoError(t, err)
	assert.Equal(t, "all", v)
	assert.True(t, one.Busy())
	assert.False(t, all.Busy())

	close(release)
	assert.Equal(t, "one", <-ch)
}

func TestInvalidateDropsStaleResult(t *testing.T) {
	var s Slot[string]
	release := make(chan struct{})
	ch, err := s.Start(context.Background(), func(context.Context) string {
		<-release
		return "stale"
	})
	require.NoError(t, err)

	s.Invalidate()
	close(release)
	assert.Equal(t, "stale", <-ch)

	_, ok := s.Last()
	assert.False(t, ok)
}
