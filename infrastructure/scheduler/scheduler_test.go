package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduler_RejectsInvalidSpec(t *testing.T) {
	s := New()
	err := s.Add("evict", "not a spec", func(context.Context) {})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "evict")

	assert.NoError(t, s.Add("evict", "0 */3 * * *", func(context.Context) {}))
}

func TestScheduler_RunsJobsUntilCancelled(t *testing.T) {
	s := New()
	var runs atomic.Int32
	require.NoError(t, s.Add("tick", "@every 1s", func(ctx context.Context) {
		assert.NotNil(t, ctx)
		runs.Add(1)
	}))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	assert.Eventually(t, func() bool { return runs.Load() >= 1 }, 3*time.Second, 50*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop")
	}
}

func TestScheduler_RecoversPanickingJob(t *testing.T) {
	s := New()
	var after atomic.Bool
	require.NoError(t, s.Add("boom", "@every 1s", func(context.Context) {
		if !after.Swap(true) {
			panic(errors.New("first run fails"))
		}
	}))

	ctx, cancel := context.WithTimeout(context.Background(), 2500*time.Millisecond)
	defer cancel()
	assert.NoError(t, s.Run(ctx))
	assert.True(t, after.Load())
}

func TestFields(t *testing.T) {
	f := fields([]interface{}{"entry", 1, "dangling"})
	assert.Equal(t, 1, f["entry"])
	assert.Len(t, f, 1)
}
