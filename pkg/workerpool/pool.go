// Package workerpool provides a bounded goroutine pool with backpressure.
// Submit never blocks: when every worker is busy and the queue is full it
// returns ErrPoolFull and the caller decides what to drop.
package workerpool

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/shashiranjanraj/brewhouse/pkg/logger"
)

var (
	ErrPoolFull   = errors.New("workerpool: pool is full")
	ErrPoolClosed = errors.New("workerpool: pool is closed")
)

// Task is a unit of work. The context is the pool's own and is cancelled
// only after Shutdown has drained the queue.
type Task func(ctx context.Context) error

// Pool is a bounded goroutine pool.
type Pool struct {
	name    string
	tasks   chan Task
	wg      sync.WaitGroup
	mu      sync.RWMutex
	once    sync.Once
	closeCh chan struct{}
	ctx     context.Context
	cancel  context.CancelFunc
}

// New creates a Pool with size workers and a queue twice that deep.
func New(name string, size int) *Pool {
	if size <= 0 {
		size = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	p := &Pool{
		name:    name,
		tasks:   make(chan Task, size*2),
		closeCh: make(chan struct{}),
		ctx:     ctx,
		cancel:  cancel,
	}
	for i := 0; i < size; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	return p
}

// Submit enqueues task without blocking.
func (p *Pool) Submit(task Task) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	select {
	case <-p.closeCh:
		return ErrPoolClosed
	default:
	}

	select {
	case p.tasks <- task:
		return nil
	default:
		return ErrPoolFull
	}
}

// SubmitWait blocks until the task is queued, ctx is done or the pool closes.
func (p *Pool) SubmitWait(ctx context.Context, task Task) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	select {
	case <-p.closeCh:
		return ErrPoolClosed
	default:
	}

	select {
	case <-p.closeCh:
		return ErrPoolClosed
	case <-ctx.Done():
		return ctx.Err()
	case p.tasks <- task:
		return nil
	}
}

// Shutdown stops accepting tasks, runs what is already queued and waits for
// the workers to exit. Safe to call more than once.
func (p *Pool) Shutdown() {
	p.once.Do(func() {
		close(p.closeCh)
		p.mu.Lock()
		close(p.tasks)
		p.mu.Unlock()
		p.wg.Wait()
		p.cancel()
	})
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for task := range p.tasks {
		if err := p.run(task); err != nil {
			logger.Warn("workerpool: task failed", "pool", p.name, "error", err)
		}
	}
}

// run executes task, turning a panic into an error so the worker survives.
func (p *Pool) run(task Task) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v", rec)
		}
	}()
	return task(p.ctx)
}
