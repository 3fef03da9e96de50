package worker

import (
	"context"
	stderrors "errors"
	"sync"
	"time"

	"github.com/vytor/betterank/internal/logger"
)

var (
	ErrPoolStopped = stderrors.New("worker pool stopped")
	ErrQueueFull   = stderrors.New("worker pool queue full")
)

type Job interface {
	Run(context.Context) error
	Name() string
}

// Pool runs submitted jobs on a fixed number of goroutines. With a single
// worker, jobs run strictly in submission order.
type Pool struct {
	jobs    chan Job
	wg      sync.WaitGroup
	workers int
	cancel  context.CancelFunc
	log     *logger.Logger

	mu      sync.RWMutex
	stopped bool
}

// Option configures a Pool.
type Option func(*Pool)

// WithLogger sets the logger the pool and its jobs log through.
func WithLogger(l *logger.Logger) Option {
	return func(p *Pool) {
		p.log = l
	}
}

func NewPool(name string, workers, queueSize int, opts ...Option) *Pool {
	if workers <= 0 {
		workers = 1
	}
	if queueSize <= 0 {
		queueSize = 32
	}
	p := &Pool{
		jobs:    make(chan Job, queueSize),
		workers: workers,
		log:     logger.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.log = p.log.WithPrefix(name)
	p.log.Debug("creating worker pool with %d workers and queue size %d", workers, queueSize)
	return p
}

func (p *Pool) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.log.Debug("starting worker pool with %d workers", p.workers)

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go func(id int) {
			defer p.wg.Done()
			workerLog := p.log.WithField("worker_id", id)

			for {
				select {
				case <-ctx.Done():
					workerLog.Debug("worker shutting down (context cancelled)")
					return
				case job, ok := <-p.jobs:
					if !ok {
						workerLog.Debug("worker shutting down (queue drained)")
						return
					}
					p.run(logger.NewContext(ctx, workerLog.WithField("job", job.Name())), job)
				}
			}
		}(i + 1)
	}
}

func (p *Pool) run(ctx context.Context, job Job) {
	log := logger.FromContext(ctx)
	start := time.Now()
	if err := job.Run(ctx); err != nil {
		log.Warn("job failed after %v: %v", time.Since(start), err)
		return
	}
	log.Debug("job completed in %v", time.Since(start))
}

// Stop refuses new jobs, lets the workers finish everything already queued,
// and waits for them.
func (p *Pool) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	close(p.jobs)
	p.mu.Unlock()

	p.wg.Wait()
	if p.cancel != nil {
		p.cancel()
	}
	p.log.Debug("worker pool stopped")
}

// Abort cancels in-flight jobs and discards the queue.
func (p *Pool) Abort() {
	if p.cancel != nil {
		p.cancel()
	}
	p.Stop()
}

// Submit queues job, blocking while the queue is full.
func (p *Pool) Submit(ctx context.Context, job Job) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.stopped {
		return ErrPoolStopped
	}
	select {
	case p.jobs <- job:
		p.log.Debug("submitted job: %s", job.Name())
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TrySubmit queues job without blocking.
func (p *Pool) TrySubmit(job Job) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.stopped {
		return ErrPoolStopped
	}
	select {
	case p.jobs <- job:
		p.log.Debug("submitted job: %s", job.Name())
		return nil
	default:
		return ErrQueueFull
	}
}

// QueueSize returns the current number of pending jobs.
func (p *Pool) QueueSize() int {
	return len(p.jobs)
}
