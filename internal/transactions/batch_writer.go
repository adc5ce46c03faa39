package transactions

import "context"

// BatchWriter flushes accumulated records to storage in single bulk
// calls. It does not deduplicate and does not retry; storage failures
// propagate unchanged.
type BatchWriter struct {
	repo Repository
}

// NewBatchWriter creates a BatchWriter over the given repository.
func NewBatchWriter(repo Repository) *BatchWriter {
	return &BatchWriter{repo: repo}
}

// SaveBatch writes the batch in one bulk insert. A nil or empty batch
// is a no-op.
func (w *BatchWriter) SaveBatch(ctx context.Context, batch []*Record) error {
	if len(batch) == 0 {
		return nil
	}
	return w.repo.InsertBatch(ctx, batch)
}
