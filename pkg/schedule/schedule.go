// Package schedule provides a small interval-based task scheduler.
//
// Usage:
//
//	sched := schedule.New(log)
//	sched.Every(15 * time.Minute).Name("catalog.image_refresh").WithoutOverlapping().Run(refresh)
//	sched.Start(ctx)
package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Task is the function signature for a scheduled task.
type Task func()

// entry represents a single scheduled job.
type entry struct {
	id        string
	interval  time.Duration
	task      Task
	lastRun   time.Time
	running   bool // overlap guard
	noOverlap bool
	mu        sync.Mutex
}

// Scheduler owns a set of entries and a dispatch loop. Construct one at boot
// and register tasks before calling Start.
type Scheduler struct {
	log     *slog.Logger
	mu      sync.Mutex
	entries []*entry
}

// New returns an empty Scheduler logging through log.
func New(log *slog.Logger) *Scheduler {
	if log == nil {
		log = slog.Default()
	}
	return &Scheduler{log: log}
}

// Schedule is a fluent builder for a single entry before it is registered.
type Schedule struct {
	s *Scheduler
	e *entry
}

// Every starts a builder for a task that runs once per interval. The first
// run fires on the first tick after Start.
func (s *Scheduler) Every(interval time.Duration) *Schedule {
	return &Schedule{s: s, e: &entry{interval: interval}}
}

// WithoutOverlapping prevents a new run if the previous one is still executing.
func (sc *Schedule) WithoutOverlapping() *Schedule {
	sc.e.noOverlap = true
	return sc
}

// Name gives the entry a human-readable identifier for logging.
func (sc *Schedule) Name(id string) *Schedule {
	sc.e.id = id
	return sc
}

// Run registers the task with the scheduler.
func (sc *Schedule) Run(fn Task) {
	sc.e.task = fn
	sc.s.mu.Lock()
	defer sc.s.mu.Unlock()
	if sc.e.id == "" {
		sc.e.id = fmt.Sprintf("task-%d", len(sc.s.entries)+1)
	}
	sc.s.entries = append(sc.s.entries, sc.e)
}

// List returns a line per registered entry, for CLI display.
func (s *Scheduler) List() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, fmt.Sprintf("%s  [%s]", e.id, e.interval))
	}
	return out
}

// Start begins the dispatch loop in the background. The loop ticks every
// second and runs due tasks until ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	go s.run(ctx)
	s.log.Info("schedule: scheduler started")
}

func (s *Scheduler) run(ctx context.Context) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("schedule: scheduler stopped")
			return
		case now := <-ticker.C:
			s.mu.Lock()
			current := make([]*entry, len(s.entries))
			copy(current, s.entries)
			s.mu.Unlock()

			for _, e := range current {
				if e.due(now) {
					s.dispatch(e)
				}
			}
		}
	}
}

func (e *entry) due(now time.Time) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.lastRun.IsZero() {
		return true // first run
	}
	return now.Sub(e.lastRun) >= e.interval
}

func (s *Scheduler) dispatch(e *entry) {
	e.mu.Lock()
	if e.noOverlap && e.running {
		e.mu.Unlock()
		s.log.Warn("schedule: skipping overlapping task", "id", e.id)
		return
	}
	e.running = true
	e.lastRun = time.Now()
	e.mu.Unlock()

	go func() {
		defer func() {
			e.mu.Lock()
			e.running = false
			e.mu.Unlock()
			if r := recover(); r != nil {
				s.log.Error("schedule: task panicked", "id", e.id, "panic", r)
			}
		}()

		s.log.Info("schedule: running task", "id", e.id)
		e.task()
	}()
}
