package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type funcJob struct {
	name string
	fn   func(context.Context) error
}

func (j *funcJob) Name() string                  { return j.name }
func (j *funcJob) Run(ctx context.Context) error { return j.fn(ctx) }

func TestPool_RunsSubmittedJobs(t *testing.T) {
	p := NewPool(3, 10)
	p.Start(context.Background())

	var ran atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		err := p.Submit(&funcJob{name: "count", fn: func(context.Context) error {
			defer wg.Done()
			ran.Add(1)
			return nil
		}})
		require.NoError(t, err)
	}
	wg.Wait()
	p.Stop()

	assert.Equal(t, int32(5), ran.Load())
}

func TestPool_SurvivesFailingAndPanickingJobs(t *testing.T) {
	p := NewPool(1, 10)
	p.Start(context.Background())

	done := make(chan struct{})
	require.NoError(t, p.Submit(&funcJob{name: "fail", fn: func(context.Context) error {
		return errors.New("boom")
	}}))
	require.NoError(t, p.Submit(&funcJob{name: "panic", fn: func(context.Context) error {
		panic("boom")
	}}))
	require.NoError(t, p.Submit(&funcJob{name: "ok", fn: func(context.Context) error {
		close(done)
		return nil
	}}))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not recover after failing jobs")
	}
	p.Stop()
}

func TestPool_SubmitWhenFull(t *testing.T) {
	// not started, so nothing drains the queue
	p := NewPool(1, 1)
	noop := &funcJob{name: "noop", fn: func(context.Context) error { return nil }}

	require.NoError(t, p.Submit(noop))
	assert.Equal(t, 1, p.QueueSize())
	assert.ErrorIs(t, p.Submit(noop), ErrQueueFull)
}

func TestPool_SubmitAfterStop(t *testing.T) {
	p := NewPool(1, 1)
	p.Start(context.Background())
	p.Stop()
	p.Stop()

	err := p.Submit(&funcJob{name: "late", fn: func(context.Context) error { return nil }})
	assert.ErrorIs(t, err, ErrPoolStopped)
}

func TestPool_StopDrainsQueue(t *testing.T) {
	p := NewPool(1, 5)
	var ran atomic.Int32
	for i := 0; i < 3; i++ {
		require.NoError(t, p.Submit(&funcJob{name: "drain", fn: func(context.Context) error {
			ran.Add(1)
			return nil
		}}))
	}
	p.Start(context.Background())
	p.Stop()

	assert.Equal(t, int32(3), ran.Load())
}
