package jobmgr

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) report(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) states(name string) []State {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []State
	for _, ev := range r.events {
		if ev.Name == name {
			out = append(out, ev.State)
		}
	}
	return out
}

func TestAfterRunsJob(t *testing.T) {
	rec := &recorder{}
	m := NewManager(rec.report)

	ran := make(chan struct{})
	require.NoError(t, m.After("remind:1", time.Millisecond, func(context.Context) error {
		close(ran)
		return nil
	}))
	<-ran
	require.NoError(t, m.Shutdown(context.Background()))
	require.Equal(t, []State{Scheduled, Running, Done}, rec.states("remind:1"))
	require.Empty(t, m.List())
}

func TestDuplicateName(t *testing.T) {
	m := NewManager(nil)
	block := func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}
	require.NoError(t, m.StartAsync("sync", block))
	require.ErrorIs(t, m.StartAsync("sync", block), ErrExists)
	require.NoError(t, m.Shutdown(context.Background()))
}

func TestStopPending(t *testing.T) {
	rec := &recorder{}
	m := NewManager(rec.report)
	require.NoError(t, m.After("later", time.Hour, func(context.Context) error {
		t.Error("stopped job ran")
		return nil
	}))
	require.Len(t, m.List(), 1)

	require.NoError(t, m.Stop("later"))
	require.ErrorIs(t, m.Stop("later"), ErrUnknown)
	require.NoError(t, m.Shutdown(context.Background()))
	require.Equal(t, []State{Scheduled, Canceled}, rec.states("later"))
}

func TestFailedJob(t *testing.T) {
	rec := &recorder{}
	m := NewManager(rec.report)
	boom := errors.New("boom")
	require.NoError(t, m.StartAsync("x", func(context.Context) error { return boom }))
	require.Eventually(t, func() bool { return len(m.List()) == 0 }, time.Second, time.Millisecond)
	require.NoError(t, m.Shutdown(context.Background()))

	rec.mu.Lock()
	defer rec.mu.Unlock()
	last := rec.events[len(rec.events)-1]
	require.Equal(t, Failed, last.State)
	require.ErrorIs(t, last.Err, boom)
}

func TestListOrder(t *testing.T) {
	m := NewManager(nil)
	now := time.Unix(1000, 0)
	m.now = func() time.Time { return now }
	noop := func(context.Context) error { return nil }

	require.NoError(t, m.After("b", 2*time.Hour, noop))
	require.NoError(t, m.After("a", 2*time.Hour, noop))
	require.NoError(t, m.After("c", time.Hour, noop))

	var names []string
	for _, j := range m.List() {
		names = append(names, j.Name)
	}
	require.Equal(t, []string{"c", "a", "b"}, names)

	require.NoError(t, m.Shutdown(context.Background()))
	require.ErrorIs(t, m.After("d", 0, noop), ErrClosed)
}
