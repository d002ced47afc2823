package dispatch

import (
	"context"
	"sync"

	"github.com/agentx-labs/platformview/internal/log"
	"github.com/rs/zerolog"
)

// Executor runs tasks asynchronously.
type Executor interface {
	Post(task func())
}

// Queue runs posted tasks one at a time, in posting order, on a dedicated
// goroutine. The backlog is unbounded.
type Queue struct {
	name   string
	logger zerolog.Logger

	mu      sync.Mutex
	cond    *sync.Cond
	tasks   []queued
	running bool
	closed  bool
	done    chan struct{}
}

// NewQueue starts a queue. Call Close to stop its goroutine.
func NewQueue(name string) *Queue {
	q := &Queue{
		name:   name,
		logger: log.WithComponent("dispatch").With().Str("queue", name).Logger(),
		done:   make(chan struct{}),
	}
	q.cond = sync.NewCond(&q.mu)
	go q.run()
	return q
}

// Post appends task to the queue. Tasks posted after Close are dropped.
func (q *Queue) Post(task func()) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		q.logger.Debug().Msg("task posted to closed queue dropped")
		return
	}
	q.tasks = append(q.tasks, queued{fn: task})
	q.cond.Signal()
}

// Flush waits until every task posted before the call has run.
func (q *Queue) Flush(ctx context.Context) error {
	reached := make(chan struct{})
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		<-q.done
		return nil
	}
	q.tasks = append(q.tasks, queued{fn: func() { close(reached) }, marker: true})
	q.cond.Signal()
	q.mu.Unlock()

	select {
	case <-reached:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Pending returns the number of queued tasks, counting one that is running.
// Flush markers are not counted.
func (q *Queue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := 0
	for _, t := range q.tasks {
		if !t.marker {
			n++
		}
	}
	if q.running {
		n++
	}
	return n
}

// Close runs the remaining backlog, then stops the queue goroutine.
func (q *Queue) Close() {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		q.cond.Signal()
	}
	q.mu.Unlock()
	<-q.done
}

type queued struct {
	fn     func()
	marker bool
}

func (q *Queue) run() {
	defer close(q.done)
	for {
		q.mu.Lock()
		for len(q.tasks) == 0 && !q.closed {
			q.cond.Wait()
		}
		if len(q.tasks) == 0 {
			q.mu.Unlock()
			return
		}
		task := q.tasks[0]
		q.tasks[0] = queued{}
		q.tasks = q.tasks[1:]
		q.running = !task.marker
		q.mu.Unlock()

		runTask(q.logger, task.fn)

		q.mu.Lock()
		q.running = false
		q.mu.Unlock()
	}
}

// runTask recovers a panicking task so one bad listener cannot stop an
// executor.
func runTask(logger zerolog.Logger, task func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error().Interface("panic", r).Msg("task panicked")
		}
	}()
	task()
}
