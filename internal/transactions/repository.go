package transactions

import "context"

// Repository is the storage contract for transaction records.
type Repository interface {
	// InsertBatch bulk-inserts records in one call. The storage layer
	// assigns row identities.
	InsertBatch(ctx context.Context, records []*Record) error

	// ListByMonth returns every record tagged with the given canonical
	// year-month, in no particular order.
	ListByMonth(ctx context.Context, yearMonth string) ([]*Record, error)
}
