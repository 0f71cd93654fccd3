package schedule

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRegisterAndList(t *testing.T) {
	s := New(quietLogger())
	s.Every(15 * time.Minute).Name("catalog.image_refresh").WithoutOverlapping().Run(func() {})
	s.Every(time.Hour).Run(func() {})

	lines := s.List()
	require.Len(t, lines, 2)
	assert.Equal(t, "catalog.image_refresh  [15m0s]", lines[0])
	assert.Equal(t, "task-2  [1h0m0s]", lines[1], "unnamed entries get a positional id")
}

func TestDue(t *testing.T) {
	e := &entry{interval: time.Minute}
	now := time.Now()

	assert.True(t, e.due(now), "a fresh entry is due on the first tick")

	e.lastRun = now.Add(-30 * time.Second)
	assert.False(t, e.due(now))

	e.lastRun = now.Add(-time.Minute)
	assert.True(t, e.due(now))
}

func TestDispatchRunsTask(t *testing.T) {
	s := New(quietLogger())
	done := make(chan struct{})
	s.Every(time.Minute).Name("ping").Run(func() { close(done) })

	s.dispatch(s.entries[0])

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("task did not run")
	}
	assert.False(t, s.entries[0].lastRun.IsZero())
}

func TestDispatchWithoutOverlapping(t *testing.T) {
	s := New(quietLogger())
	var runs atomic.Int64
	release := make(chan struct{})
	started := make(chan struct{})
	s.Every(time.Minute).Name("slow").WithoutOverlapping().Run(func() {
		runs.Add(1)
		close(started)
		<-release
	})

	e := s.entries[0]
	s.dispatch(e)
	<-started
	s.dispatch(e) // previous run still holds the slot

	close(release)
	assert.Eventually(t, func() bool {
		e.mu.Lock()
		defer e.mu.Unlock()
		return !e.running
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, int64(1), runs.Load())
}

func TestDispatchRecoversPanic(t *testing.T) {
	s := New(quietLogger())
	s.Every(time.Minute).Name("boom").Run(func() { panic("kaboom") })

	e := s.entries[0]
	s.dispatch(e)

	assert.Eventually(t, func() bool {
		e.mu.Lock()
		defer e.mu.Unlock()
		return !e.running
	}, time.Second, 10*time.Millisecond)

	// The entry stays usable after a panic.
	done := make(chan struct{})
	e.task = func() { close(done) }
	e.lastRun = time.Time{}
	s.dispatch(e)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("task did not run again after panic")
	}
}

func TestStartRunsDueTasks(t *testing.T) {
	s := New(quietLogger())
	done := make(chan struct{})
	var once atomic.Bool
	s.Every(time.Hour).Name("first-tick").Run(func() {
		if once.CompareAndSwap(false, true) {
			close(done)
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Start(ctx)

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("task did not fire on the first tick")
	}
}
