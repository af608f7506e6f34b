package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"nflcache/ingestion/internal/ingest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRebuilder struct {
	calls   int32
	release chan struct{}
	err     error
}

func (r *fakeRebuilder) Run(ctx context.Context) (*ingest.Report, error) {
	atomic.AddInt32(&r.calls, 1)
	if r.release != nil {
		<-r.release
	}
	if r.err != nil {
		return nil, r.err
	}
	return &ingest.Report{Processed: 5, NewlyCached: 4, TotalInStore: 9}, nil
}

func TestRunNow(t *testing.T) {
	rebuilder := &fakeRebuilder{}
	s := NewScheduler("0 3 * * *", rebuilder)

	report, err := s.RunNow(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, report.NewlyCached)
	assert.Equal(t, int32(1), atomic.LoadInt32(&rebuilder.calls))
}

func TestRunNow_PropagatesError(t *testing.T) {
	rebuilder := &fakeRebuilder{err: errors.New("teams unavailable")}
	s := NewScheduler("0 3 * * *", rebuilder)

	_, err := s.RunNow(context.Background())
	assert.EqualError(t, err, "teams unavailable")

	// the lock is released after a failure
	_, err = s.RunNow(context.Background())
	assert.NotErrorIs(t, err, ErrAlreadyRunning)
}

func TestRunNow_RejectsOverlap(t *testing.T) {
	rebuilder := &fakeRebuilder{release: make(chan struct{})}
	s := NewScheduler("0 3 * * *", rebuilder)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = s.RunNow(context.Background())
	}()

	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&rebuilder.calls) == 1
	}, time.Second, 5*time.Millisecond)

	_, err := s.RunNow(context.Background())
	assert.ErrorIs(t, err, ErrAlreadyRunning)

	close(rebuilder.release)
	<-done
}

func TestStart_InvalidSpec(t *testing.T) {
	s := NewScheduler("not a cron spec", &fakeRebuilder{})
	assert.Error(t, s.Start(context.Background()))
}

func TestStart_RunsScheduledRebuild(t *testing.T) {
	rebuilder := &fakeRebuilder{}
	s := NewScheduler("@every 1s", rebuilder)

	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	assert.Eventually(t, func() bool {
		return atomic.LoadInt32(&rebuilder.calls) >= 1
	}, 3*time.Second, 20*time.Millisecond)
}

func TestCronLogger(t *testing.T) {
	logger := cronLogger{}
	assert.NotPanics(t, func() {
		logger.Info("schedule", "entry", 1, "next", time.Now())
		logger.Error(errors.New("panic"), "job failed", "entry", 1)
	})
}
