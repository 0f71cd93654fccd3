package workerpool_test

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/rangershop/pkg/workerpool"
)

func TestSubmitWaitRunsEverything(t *testing.T) {
	pool := workerpool.New(4)
	defer pool.Shutdown()

	const n = 100
	var ran atomic.Int64

	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		require.NoError(t, pool.SubmitWait(func() {
			defer wg.Done()
			ran.Add(1)
		}))
	}
	wg.Wait()

	assert.Equal(t, int64(n), ran.Load())
}

func TestSubmitShedsWhenFull(t *testing.T) {
	pool := workerpool.New(1)
	defer pool.Shutdown()

	hold := make(chan struct{})
	working := make(chan struct{})

	require.NoError(t, pool.SubmitWait(func() {
		close(working)
		<-hold
	}))
	<-working

	// The single worker is held; the queue takes workers*2 = 2 tasks.
	require.NoError(t, pool.Submit(func() {}))
	require.NoError(t, pool.Submit(func() {}))

	assert.ErrorIs(t, pool.Submit(func() {}), workerpool.ErrPoolFull)

	close(hold)
}

func TestSubmitAfterShutdown(t *testing.T) {
	pool := workerpool.New(2)
	pool.Shutdown()

	assert.ErrorIs(t, pool.Submit(func() {}), workerpool.ErrPoolClosed)
	assert.ErrorIs(t, pool.SubmitWait(func() {}), workerpool.ErrPoolClosed)
}

func TestWorkerSurvivesPanic(t *testing.T) {
	pool := workerpool.New(2)
	defer pool.Shutdown()

	var wg sync.WaitGroup
	wg.Add(1)
	require.NoError(t, pool.SubmitWait(func() {
		defer wg.Done()
		panic("bad task")
	}))
	wg.Wait()

	next := make(chan struct{})
	require.NoError(t, pool.SubmitWait(func() { close(next) }))

	select {
	case <-next:
	case <-time.After(2 * time.Second):
		t.Fatal("worker died with the panicking task")
	}
}

func TestShutdownDrainsQueue(t *testing.T) {
	pool := workerpool.New(10)

	var ran atomic.Int64
	for i := 0; i < 50; i++ {
		require.NoError(t, pool.SubmitWait(func() {
			time.Sleep(time.Millisecond)
			ran.Add(1)
		}))
	}

	pool.Shutdown()
	assert.Equal(t, int64(50), ran.Load(), "Shutdown waits for queued tasks")
}
