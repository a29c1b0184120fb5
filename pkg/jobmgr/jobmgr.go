// Package jobmgr runs named background jobs with cancellation and in-memory
// tracking. Commands use it for deferred work such as reminders.
//
//	jm := jobmgr.NewManager(func(ev jobmgr.Event) {
//	    log.Printf("%s %s", ev.State, ev.Name)
//	})
//	_ = jm.After("remind:42", 10*time.Minute, func(ctx context.Context) error {
//	    return send(ctx, "stretch")
//	})
//	defer jm.Shutdown(context.Background())
package jobmgr

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"
)

var (
	ErrExists  = errors.New("jobmgr: job already scheduled")
	ErrUnknown = errors.New("jobmgr: no such job")
	ErrClosed  = errors.New("jobmgr: manager is shut down")
)

// State is a job lifecycle stage reported to the Reporter.
type State string

const (
	Scheduled State = "scheduled"
	Running   State = "running"
	Done      State = "done"
	Failed    State = "failed"
	Canceled  State = "canceled"
)

// Event describes a lifecycle change. Err is set for Failed.
type Event struct {
	Name  string
	State State
	Err   error
}

// Reporter receives lifecycle events. It must not block.
type Reporter func(Event)

// Job is a scheduled or running unit of work.
type Job struct {
	Name   string
	Due    time.Time
	cancel context.CancelFunc
}

// Manager starts, stops and tracks jobs. It is safe for concurrent use.
type Manager struct {
	mu       sync.Mutex
	jobs     map[string]*Job
	wg       sync.WaitGroup
	closed   bool
	reporter Reporter
	now      func() time.Time
}

// NewManager creates a Manager. reporter may be nil.
func NewManager(reporter Reporter) *Manager {
	return &Manager{
		jobs:     make(map[string]*Job),
		reporter: reporter,
		now:      time.Now,
	}
}

// StartAsync runs runner in its own goroutine right away.
func (m *Manager) StartAsync(name string, runner func(ctx context.Context) error) error {
	return m.After(name, 0, runner)
}

// After runs runner once delay has passed. The job keeps its name until it
// finishes or is stopped; scheduling the same name twice fails with ErrExists.
func (m *Manager) After(name string, delay time.Duration, runner func(ctx context.Context) error) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}
	if _, exists := m.jobs[name]; exists {
		m.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrExists, name)
	}
	ctx, cancel := context.WithCancel(context.Background())
	job := &Job{Name: name, Due: m.now().Add(delay), cancel: cancel}
	m.jobs[name] = job
	m.wg.Add(1)
	m.mu.Unlock()

	m.report(Event{Name: name, State: Scheduled})
	go m.run(ctx, job, delay, runner)
	return nil
}

func (m *Manager) run(ctx context.Context, job *Job, delay time.Duration, runner func(ctx context.Context) error) {
	defer m.wg.Done()
	defer m.remove(job)
	defer job.cancel()

	if delay > 0 {
		t := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			t.Stop()
			m.report(Event{Name: job.Name, State: Canceled})
			return
		case <-t.C:
		}
	}

	m.report(Event{Name: job.Name, State: Running})
	if err := runner(ctx); err != nil {
		if ctx.Err() != nil {
			m.report(Event{Name: job.Name, State: Canceled})
			return
		}
		m.report(Event{Name: job.Name, State: Failed, Err: err})
		return
	}
	m.report(Event{Name: job.Name, State: Done})
}

// remove drops job from the table unless a newer job took its name.
func (m *Manager) remove(job *Job) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.jobs[job.Name] == job {
		delete(m.jobs, job.Name)
	}
}

// Stop cancels a job by name.
func (m *Manager) Stop(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, ok := m.jobs[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknown, name)
	}
	job.cancel()
	delete(m.jobs, name)
	return nil
}

// List returns pending and running jobs ordered by due time, then name.
func (m *Manager) List() []Job {
	m.mu.Lock()
	out := make([]Job, 0, len(m.jobs))
	for _, j := range m.jobs {
		out = append(out, Job{Name: j.Name, Due: j.Due})
	}
	m.mu.Unlock()

	slices.SortFunc(out, func(a, b Job) int {
		if c := a.Due.Compare(b.Due); c != 0 {
			return c
		}
		return strings.Compare(a.Name, b.Name)
	})
	return out
}

// Shutdown cancels every job and waits for them to return or for ctx to end.
// The manager accepts no new jobs afterwards.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	m.closed = true
	for name, j := range m.jobs {
		j.cancel()
		delete(m.jobs, name)
	}
	m.mu.Unlock()

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *Manager) report(ev Event) {
	if m.reporter != nil {
		m.reporter(ev)
	}
}
