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

type fakeIllness struct{ calls int }

func (f *fakeIllness) SendReminders(ctx context.Context) (int, error) {
	f.calls++
	return 2, nil
}

type fakeInvoices struct{ err error }

func (f *fakeInvoices) MarkOverdue(ctx context.Context) (int64, error) {
	return 0, f.err
}

type fakeTokens struct{ days int }

func (f *fakeTokens) DeleteExpiredRefreshTokens(ctx context.Context, olderThanDays int) (int64, error) {
	f.days = olderThanDays
	return 3, nil
}

func TestScheduler_RunJobByName(t *testing.T) {
	s := NewScheduler()
	illness := &fakeIllness{}
	tokens := &fakeTokens{}
	NewMaintenanceJobs(illness, &fakeInvoices{}, tokens).RegisterJobs(s, time.Hour)

	assert.Equal(t, []string{JobIllnessReminders, JobInvoiceOverdue, JobRefreshTokenCleanup}, s.JobNames())

	require.NoError(t, s.RunJob(context.Background(), JobIllnessReminders))
	assert.Equal(t, 1, illness.calls)

	require.NoError(t, s.RunJob(context.Background(), JobRefreshTokenCleanup))
	assert.Equal(t, refreshTokenRetentionDays, tokens.days)

	err := s.RunJob(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrJobNotFound)
}

func TestScheduler_RunOnceReturnsFirstError(t *testing.T) {
	s := NewScheduler()
	boom := errors.New("db down")
	illness := &fakeIllness{}
	NewMaintenanceJobs(illness, &fakeInvoices{err: boom}, &fakeTokens{}).RegisterJobs(s, time.Hour)

	err := s.RunOnce(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, illness.calls, "later jobs still run")
}

func TestScheduler_RecoversFromPanic(t *testing.T) {
	s := NewScheduler()
	s.AddJob("panics", time.Hour, func(ctx context.Context) error {
		panic("bad")
	})

	err := s.RunJob(context.Background(), "panics")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "panicked")
}

func TestScheduler_StartRunsImmediatelyAndStops(t *testing.T) {
	s := NewScheduler()
	var runs atomic.Int32
	done := make(chan struct{}, 1)
	s.AddJob("tick", time.Hour, func(ctx context.Context) error {
		runs.Add(1)
		select {
		case done <- struct{}{}:
		default:
		}
		return nil
	})

	s.Start()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("job did not run on start")
	}
	s.Stop()
	assert.Equal(t, int32(1), runs.Load())
}
