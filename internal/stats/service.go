package stats

import "context"

// Service serves read queries over materialized aggregates. Parameter
// validation (month format, limit range, sort token) happens at the
// HTTP boundary before the service is reached.
type Service struct {
	repo Repository
}

// NewService creates a stats query Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Get returns the aggregate rows for one month and grouping dimension,
// ordered by total amount. Ascending places the most negative total
// first; descending the largest positive total first.
func (s *Service) Get(ctx context.Context, yearMonth string, groupBy GroupBy, limit int, sort Sort) ([]*GroupedStat, error) {
	return s.repo.FindByMonthAndGroup(ctx, yearMonth, groupBy, sort, limit)
}

// Monthly returns the per-currency month totals for every month in
// [from, to], ordered by month ascending.
func (s *Service) Monthly(ctx context.Context, from, to string) ([]*GroupedStat, error) {
	return s.repo.FindMonthlyTotals(ctx, from, to)
}
