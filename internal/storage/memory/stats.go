package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/marcinh992/bank-transactions-api/internal/stats"
)

// StatsStore is an in-memory stats.Repository.
type StatsStore struct {
	mu   sync.RWMutex
	rows []*stats.GroupedStat
}

// NewStatsStore creates an empty StatsStore.
func NewStatsStore() *StatsStore {
	return &StatsStore{}
}

// DeleteByMonth implements stats.Repository.
func (s *StatsStore) DeleteByMonth(ctx context.Context, yearMonth string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.rows[:0]
	for _, row := range s.rows {
		if row.YearMonth != yearMonth {
			kept = append(kept, row)
		}
	}
	s.rows = kept
	return nil
}

// InsertBatch implements stats.Repository.
func (s *StatsStore) InsertBatch(ctx context.Context, rows []*stats.GroupedStat) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, row := range rows {
		rowCopy := *row
		s.rows = append(s.rows, &rowCopy)
	}
	return nil
}

// FindByMonthAndGroup implements stats.Repository.
func (s *StatsStore) FindByMonthAndGroup(ctx context.Context, yearMonth string, groupBy stats.GroupBy, sortBy stats.Sort, limit int) ([]*stats.GroupedStat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*stats.GroupedStat
	for _, row := range s.rows {
		if row.YearMonth == yearMonth && row.GroupBy == groupBy {
			rowCopy := *row
			result = append(result, &rowCopy)
		}
	}

	sort.SliceStable(result, func(i, j int) bool {
		cmp := result[i].TotalAmount.Cmp(result[j].TotalAmount)
		if sortBy == stats.SortTotalAsc {
			return cmp < 0
		}
		return cmp > 0
	})

	if limit > 0 && limit < len(result) {
		result = result[:limit]
	}
	return result, nil
}

// FindMonthlyTotals implements stats.Repository.
func (s *StatsStore) FindMonthlyTotals(ctx context.Context, from, to string) ([]*stats.GroupedStat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*stats.GroupedStat
	for _, row := range s.rows {
		if row.GroupBy == stats.GroupByMonth && row.YearMonth >= from && row.YearMonth <= to {
			rowCopy := *row
			result = append(result, &rowCopy)
		}
	}

	sort.SliceStable(result, func(i, j int) bool {
		if result[i].YearMonth != result[j].YearMonth {
			return result[i].YearMonth < result[j].YearMonth
		}
		return result[i].Currency < result[j].Currency
	})

	return result, nil
}

// Ensure StatsStore implements the repository contract.
var _ stats.Repository = (*StatsStore)(nil)
