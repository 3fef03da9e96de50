package worker_test

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/betterank/internal/logger"
	"github.com/vytor/betterank/internal/worker"
)

type recordJob struct {
	id  int
	mu  *sync.Mutex
	out *[]int
	err error
}

func (j recordJob) Name() string { return "record" }

func (j recordJob) Run(ctx context.Context) error {
	j.mu.Lock()
	*j.out = append(*j.out, j.id)
	j.mu.Unlock()
	return j.err
}

type blockingJob struct {
	started chan struct{}
	release chan struct{}
}

func (j blockingJob) Name() string { return "blocking" }

func (j blockingJob) Run(ctx context.Context) error {
	close(j.started)
	select {
	case <-j.release:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func TestPool_SingleWorkerPreservesOrderAndDrainsOnStop(t *testing.T) {
	p := worker.NewPool("test", 1, 16)
	p.Start(context.Background())

	var (
		mu  sync.Mutex
		got []int
	)
	for i := 1; i <= 10; i++ {
		var err error
		if i%3 == 0 {
			err = errors.New("boom")
		}
		require.NoError(t, p.Submit(context.Background(), recordJob{id: i, mu: &mu, out: &got, err: err}))
	}
	p.Stop()

	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, got)
}

func TestPool_SubmitAfterStop(t *testing.T) {
	p := worker.NewPool("test", 1, 1)
	p.Start(context.Background())
	p.Stop()
	p.Stop()

	var mu sync.Mutex
	var got []int
	assert.ErrorIs(t, p.Submit(context.Background(), recordJob{mu: &mu, out: &got}), worker.ErrPoolStopped)
	assert.ErrorIs(t, p.TrySubmit(recordJob{mu: &mu, out: &got}), worker.ErrPoolStopped)
}

func TestPool_TrySubmitReportsFullQueue(t *testing.T) {
	p := worker.NewPool("test", 1, 1)
	p.Start(context.Background())

	block := blockingJob{started: make(chan struct{}), release: make(chan struct{})}
	require.NoError(t, p.TrySubmit(block))
	<-block.started

	var mu sync.Mutex
	var got []int
	require.NoError(t, p.TrySubmit(recordJob{id: 1, mu: &mu, out: &got}))
	assert.ErrorIs(t, p.TrySubmit(recordJob{id: 2, mu: &mu, out: &got}), worker.ErrQueueFull)
	assert.Equal(t, 1, p.QueueSize())

	close(block.release)
	p.Stop()
	assert.Equal(t, []int{1}, got)
}

func TestPool_AbortCancelsInFlight(t *testing.T) {
	p := worker.NewPool("test", 1, 4)
	p.Start(context.Background())

	block := blockingJob{started: make(chan struct{}), release: make(chan struct{})}
	require.NoError(t, p.Submit(context.Background(), block))
	<-block.started

	p.Abort()
	assert.ErrorIs(t, p.TrySubmit(block), worker.ErrPoolStopped)
}

func TestPool_LogsThroughConfiguredLogger(t *testing.T) {
	var buf bytes.Buffer
	p := worker.NewPool("ratings", 1, 1, worker.WithLogger(logger.New(logger.WithOutput(&buf), logger.WithLevel(logger.WARN))))
	p.Start(context.Background())

	var mu sync.Mutex
	var got []int
	require.NoError(t, p.Submit(context.Background(), recordJob{id: 1, mu: &mu, out: &got, err: errors.New("boom")}))
	p.Stop()

	assert.Contains(t, buf.String(), "job failed")
	assert.Contains(t, buf.String(), "boom")
}
