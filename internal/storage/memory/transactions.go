package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/marcinh992/bank-transactions-api/internal/transactions"
)

// TransactionStore is an in-memory transactions.Repository. Records
// are append-only, matching the storage contract.
type TransactionStore struct {
	mu      sync.RWMutex
	records []*transactions.Record
}

// NewTransactionStore creates an empty TransactionStore.
func NewTransactionStore() *TransactionStore {
	return &TransactionStore{}
}

// InsertBatch implements transactions.Repository. Row identities are
// assigned here, at write time.
func (s *TransactionStore) InsertBatch(ctx context.Context, records []*transactions.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range records {
		stored := *r
		stored.ID = uuid.NewString()
		s.records = append(s.records, &stored)
	}
	return nil
}

// ListByMonth implements transactions.Repository.
func (s *TransactionStore) ListByMonth(ctx context.Context, yearMonth string) ([]*transactions.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*transactions.Record
	for _, r := range s.records {
		if r.YearMonth == yearMonth {
			recordCopy := *r
			result = append(result, &recordCopy)
		}
	}
	return result, nil
}

// Ensure TransactionStore implements the repository contract.
var _ transactions.Repository = (*TransactionStore)(nil)
