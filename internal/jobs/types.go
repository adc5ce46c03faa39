// Package jobs defines the asynchronous import task and the
// publisher/consumer contracts the queue implementations satisfy.
package jobs

import "context"

// ImportTask is one queued import: the job to drive and the raw bytes
// of its uploaded file. The job record is already durably created when
// a task is published.
type ImportTask struct {
	JobID     string
	FileBytes []byte
}

// TaskHandler processes one import task. The handler owns all job
// state transitions; a returned error is logged by the worker, never
// retried.
type TaskHandler func(ctx context.Context, task *ImportTask) error

// Publisher enqueues import tasks.
// This abstraction allows for different queue implementations
// (in-memory, Cloud Tasks, Pub/Sub).
type Publisher interface {
	// PublishImport enqueues an import task.
	PublishImport(ctx context.Context, task *ImportTask) error

	// Close closes the publisher and releases resources.
	Close() error
}

// Consumer runs import tasks.
type Consumer interface {
	// Start begins consuming tasks from the queue.
	// The handler function is called for each task received.
	Start(ctx context.Context, handler TaskHandler) error

	// Stop stops consuming tasks and waits for in-flight tasks to
	// complete.
	Stop(ctx context.Context) error
}
