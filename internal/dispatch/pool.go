package dispatch

import (
	"context"
	"sync"

	"github.com/agentx-labs/platformview/internal/log"
	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"
)

// DefaultWorkers is the pool size used when a non-positive size is requested.
const DefaultWorkers = 1

// Pool runs posted tasks on background goroutines with at most a fixed
// number executing at once. Ordering between tasks is not guaranteed when the
// pool has more than one worker.
type Pool struct {
	logger zerolog.Logger
	sem    *semaphore.Weighted
	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	idle    *sync.Cond
	pending int
	closed  bool
}

// NewPool creates a pool allowing workers concurrent tasks.
func NewPool(name string, workers int) *Pool {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	ctx, cancel := context.WithCancel(context.Background())
	p := &Pool{
		logger: log.WithComponent("dispatch").With().Str("pool", name).Int("workers", workers).Logger(),
		sem:    semaphore.NewWeighted(int64(workers)),
		ctx:    ctx,
		cancel: cancel,
	}
	p.idle = sync.NewCond(&p.mu)
	return p
}

// Post schedules task. Tasks posted after Close are dropped.
func (p *Pool) Post(task func()) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		p.logger.Debug().Msg("task posted to closed pool dropped")
		return
	}
	p.pending++
	p.mu.Unlock()

	go func() {
		defer p.done()
		if err := p.sem.Acquire(p.ctx, 1); err != nil {
			return
		}
		defer p.sem.Release(1)
		runTask(p.logger, task)
	}()
}

func (p *Pool) done() {
	p.mu.Lock()
	p.pending--
	if p.pending == 0 {
		p.idle.Broadcast()
	}
	p.mu.Unlock()
}

// Pending returns the number of tasks posted but not yet finished.
func (p *Pool) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pending
}

// Wait blocks until every posted task, including tasks posted by running
// tasks, has finished. It may be called from several goroutines while other
// goroutines keep posting.
func (p *Pool) Wait() {
	p.mu.Lock()
	for p.pending > 0 {
		p.idle.Wait()
	}
	p.mu.Unlock()
}

// Close waits for posted tasks and rejects new ones.
func (p *Pool) Close() {
	p.mu.Lock()
	p.closed = true
	for p.pending > 0 {
		p.idle.Wait()
	}
	p.mu.Unlock()
	p.cancel()
}

// Settle waits until neither q nor p has pending work. Tasks on one side may
// post to the other, so both are drained repeatedly until a pass finds
// nothing left.
func Settle(ctx context.Context, q *Queue, p *Pool) error {
	for {
		p.Wait()
		if err := q.Flush(ctx); err != nil {
			return err
		}
		if p.Pending() == 0 && q.Pending() == 0 {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
	}
}
