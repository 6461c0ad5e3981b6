package cron

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePinger struct {
	down atomic.Bool
}

func (p *fakePinger) Ping(ctx context.Context) error {
	if p.down.Load() {
		return errors.New("connection refused")
	}
	return nil
}

func TestStorageHealth_TracksState(t *testing.T) {
	p := &fakePinger{}
	h := NewStorageHealth(p)
	ctx := context.Background()

	require.NoError(t, h.Check(ctx))
	assert.True(t, h.Healthy())

	p.down.Store(true)
	assert.Error(t, h.Check(ctx))
	assert.False(t, h.Healthy())

	p.down.Store(false)
	require.NoError(t, h.Check(ctx))
	assert.True(t, h.Healthy())
}

func TestScheduler_RunsJobsUntilStopped(t *testing.T) {
	var runs atomic.Int32
	s := NewScheduler()
	s.AddJob(Job{
		Name:     "count",
		Interval: 5 * time.Millisecond,
		Fn: func(ctx context.Context) error {
			runs.Add(1)
			return nil
		},
	})

	s.Start(context.Background())
	assert.Eventually(t, func() bool { return runs.Load() >= 3 }, time.Second, time.Millisecond)
	s.Stop()

	after := runs.Load()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, after, runs.Load(), "no runs after Stop")
}

func TestScheduler_RunOnceReturnsFirstError(t *testing.T) {
	boom := errors.New("boom")
	s := NewScheduler()
	s.AddJob(Job{Name: "ok", Interval: time.Minute, Fn: func(ctx context.Context) error { return nil }})
	s.AddJob(Job{Name: "fail", Interval: time.Minute, Fn: func(ctx context.Context) error { return boom }})

	assert.ErrorIs(t, s.RunOnce(context.Background()), boom)
}

func TestScheduler_JobTimeout(t *testing.T) {
	s := NewScheduler()
	s.AddJob(Job{
		Name:     "slow",
		Interval: time.Minute,
		Timeout:  10 * time.Millisecond,
		Fn: func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		},
	})

	assert.ErrorIs(t, s.RunOnce(context.Background()), context.DeadlineExceeded)
}
