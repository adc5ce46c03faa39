// Package inmemory provides a channel-based import queue suitable for
// single-instance deployments and testing.
package inmemory

import (
	"context"
	"fmt"
	"sync"

	"github.com/marcinh992/bank-transactions-api/internal/jobs"
)

// Queue is an in-memory implementation of the import task publisher
// and consumer. It uses Go channels for task distribution and is safe
// for concurrent use. Tasks in flight when the process dies are lost;
// their jobs stay in whatever state the processor last persisted.
type Queue struct {
	taskChan  chan *jobs.ImportTask
	closeChan chan struct{}
	wg        sync.WaitGroup
	mu        sync.RWMutex
	workers   int
	closed    bool
}

// NewQueue creates an in-memory import queue. bufferSize determines
// how many tasks can be queued before PublishImport blocks; workers is
// the number of concurrent consumers.
func NewQueue(bufferSize, workers int) *Queue {
	if workers < 1 {
		workers = 1
	}
	return &Queue{
		taskChan:  make(chan *jobs.ImportTask, bufferSize),
		closeChan: make(chan struct{}),
		workers:   workers,
	}
}

// PublishImport implements the Publisher interface. It enqueues an
// import task for asynchronous processing.
func (q *Queue) PublishImport(ctx context.Context, task *jobs.ImportTask) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return fmt.Errorf("queue is closed")
	}
	if task.JobID == "" {
		return fmt.Errorf("task job ID is required")
	}

	select {
	case q.taskChan <- task:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-q.closeChan:
		return fmt.Errorf("queue is closed")
	}
}

// Start implements the Consumer interface. It launches the worker
// goroutines; each task is handed to the handler exactly once, with no
// retry on failure.
func (q *Queue) Start(ctx context.Context, handler jobs.TaskHandler) error {
	q.mu.RLock()
	if q.closed {
		q.mu.RUnlock()
		return fmt.Errorf("queue is closed")
	}
	q.mu.RUnlock()

	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker(ctx, handler)
	}

	return nil
}

// worker consumes tasks until the context or queue is closed.
func (q *Queue) worker(ctx context.Context, handler jobs.TaskHandler) {
	defer q.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-q.closeChan:
			return
		case task := <-q.taskChan:
			if task == nil {
				return
			}
			// The handler owns job state; its error is already
			// reflected in the job record.
			_ = handler(ctx, task)
		}
	}
}

// Stop implements the Consumer interface. It stops the queue and waits
// for tasks already handed to a handler. Buffered tasks no worker has
// picked up are dropped; their jobs keep their last persisted status.
func (q *Queue) Stop(ctx context.Context) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	close(q.closeChan)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close implements the Publisher interface.
func (q *Queue) Close() error {
	return q.Stop(context.Background())
}

// Ensure Queue implements both Publisher and Consumer interfaces.
var _ jobs.Publisher = (*Queue)(nil)
var _ jobs.Consumer = (*Queue)(nil)
