// Package workerpool bounds concurrent goroutines with backpressure.
//
// The shop uses a Pool wherever fan-out must not scale with input size, such
// as the catalogue image refresh, which walks every placeholder product but
// holds only a handful of upstream lookups in flight.
//
//	pool := workerpool.New(4)
//	defer pool.Shutdown()
//
//	for _, p := range products {
//	    pool.SubmitWait(func() { refresh(p) })
//	}
package workerpool

import (
	"errors"
	"sync"
)

var (
	// ErrPoolFull is returned by Submit when the queue is at capacity.
	ErrPoolFull = errors.New("workerpool: pool is full")

	// ErrPoolClosed is returned by Submit and SubmitWait after Shutdown.
	ErrPoolClosed = errors.New("workerpool: pool is closed")
)

// Pool runs submitted tasks on a fixed set of worker goroutines. The queue
// holds twice the worker count, so short bursts absorb without blocking.
type Pool struct {
	queue chan func()
	done  chan struct{}

	wg       sync.WaitGroup
	shutdown sync.Once
}

// New starts a pool of workers goroutines. Sizes below one are clamped to
// one.
func New(workers int) *Pool {
	if workers < 1 {
		workers = 1
	}

	p := &Pool{
		queue: make(chan func(), workers*2),
		done:  make(chan struct{}),
	}

	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.drain()
	}

	return p
}

// Submit enqueues task without blocking. A full queue yields ErrPoolFull, so
// the caller decides whether to retry, shed or block via SubmitWait.
func (p *Pool) Submit(task func()) error {
	select {
	case <-p.done:
		return ErrPoolClosed
	default:
	}

	select {
	case p.queue <- task:
		return nil
	default:
		return ErrPoolFull
	}
}

// SubmitWait enqueues task, blocking until a queue slot frees up or the pool
// shuts down.
func (p *Pool) SubmitWait(task func()) error {
	select {
	case <-p.done:
		return ErrPoolClosed
	case p.queue <- task:
		return nil
	}
}

// Shutdown rejects further submissions and waits for queued tasks to finish.
// Safe to call more than once.
func (p *Pool) Shutdown() {
	p.shutdown.Do(func() {
		close(p.done)
		close(p.queue)
		p.wg.Wait()
	})
}

func (p *Pool) drain() {
	defer p.wg.Done()
	for task := range p.queue {
		run(task)
	}
}

// run isolates a panicking task from its worker goroutine.
func run(task func()) {
	defer func() { recover() }() //nolint:errcheck
	task()
}
