package stats

import "context"

// Repository is the storage contract for materialized aggregates.
type Repository interface {
	// DeleteByMonth removes every aggregate row for the month.
	// Deleting a month with no rows is not an error.
	DeleteByMonth(ctx context.Context, yearMonth string) error

	// InsertBatch bulk-inserts aggregate rows.
	InsertBatch(ctx context.Context, rows []*GroupedStat) error

	// FindByMonthAndGroup returns the rows for (month, groupBy)
	// ordered by total amount and capped at limit.
	FindByMonthAndGroup(ctx context.Context, yearMonth string, groupBy GroupBy, sort Sort, limit int) ([]*GroupedStat, error)

	// FindMonthlyTotals returns MONTH rows with from <= yearMonth <= to,
	// ordered by yearMonth ascending.
	FindMonthlyTotals(ctx context.Context, from, to string) ([]*GroupedStat, error)
}
