package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/mediavault/internal/logging"
)

type fixedUsage struct {
	bytes int64
	err   error
}

func (f fixedUsage) DiskUsage(context.Context) (int64, error) { return f.bytes, f.err }

type gauge struct{ v atomic.Int64 }

func (g *gauge) SetDiskUsage(bytes int64) { g.v.Store(bytes) }

func TestRefreshDiskUsage(t *testing.T) {
	g := &gauge{}
	require.NoError(t, RefreshDiskUsage(context.Background(), fixedUsage{bytes: 42}, g))
	assert.Equal(t, int64(42), g.v.Load())

	g.v.Store(7)
	err := RefreshDiskUsage(context.Background(), fixedUsage{err: errors.New("walk failed")}, g)
	assert.EqualError(t, err, "walk failed")
	assert.Equal(t, int64(7), g.v.Load(), "gauge keeps last good value")
}

func TestAddDiskUsageRefreshRejectsBadSpec(t *testing.T) {
	s := NewScheduler(logging.Nop{})
	err := s.AddDiskUsageRefresh("not a schedule", fixedUsage{}, &gauge{})
	assert.Error(t, err)
}

func TestSchedulerRunsUntilCancelled(t *testing.T) {
	s := NewScheduler(logging.Nop{})
	g := &gauge{}
	require.NoError(t, s.AddDiskUsageRefresh("@every 1s", fixedUsage{bytes: 9}, g))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	assert.Eventually(t, func() bool { return g.v.Load() == 9 }, 5*time.Second, 50*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler did not stop")
	}
}
