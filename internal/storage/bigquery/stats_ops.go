package bigquery

import (
	"context"
	"fmt"

	bq "cloud.google.com/go/bigquery"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"

	"github.com/marcinh992/bank-transactions-api/internal/stats"
)

// StatsRepository persists materialized aggregates in the
// transaction_stats table.
type StatsRepository struct {
	client  *bq.Client
	dataset string
}

var _ stats.Repository = (*StatsRepository)(nil)

// DeleteByMonth removes every aggregate row for the given month.
func (r *StatsRepository) DeleteByMonth(ctx context.Context, yearMonth string) error {
	q := r.client.Query(fmt.Sprintf(`
		DELETE FROM %s.%s
		WHERE year_month = @year_month
	`, r.dataset, statsTable))

	q.Parameters = []bq.QueryParameter{
		{Name: "year_month", Value: yearMonth},
	}

	if err := runDML(ctx, q); err != nil {
		return fmt.Errorf("DeleteByMonth: %w", err)
	}
	return nil
}

// InsertBatch writes a batch of aggregate rows, assigning each a
// generated stat_id.
func (r *StatsRepository) InsertBatch(ctx context.Context, groups []*stats.GroupedStat) error {
	if len(groups) == 0 {
		return nil
	}

	rows := make([]*statRow, 0, len(groups))
	for _, g := range groups {
		rows = append(rows, statToRow(g, uuid.NewString()))
	}

	inserter := r.client.Dataset(r.dataset).Table(statsTable).Inserter()
	if err := inserter.Put(ctx, rows); err != nil {
		return fmt.Errorf("InsertBatch: inserting rows: %w", err)
	}

	return nil
}

// FindByMonthAndGroup returns aggregates for one month and grouping,
// sorted by total amount and capped at limit.
func (r *StatsRepository) FindByMonthAndGroup(ctx context.Context, yearMonth string, groupBy stats.GroupBy, sort stats.Sort, limit int) ([]*stats.GroupedStat, error) {
	order := "DESC"
	if sort == stats.SortTotalAsc {
		order = "ASC"
	}

	q := r.client.Query(fmt.Sprintf(`
		SELECT
			stat_id,
			year_month,
			group_by,
			group_key,
			currency,
			record_count,
			total_amount
		FROM %s.%s
		WHERE year_month = @year_month
		  AND group_by = @group_by
		ORDER BY total_amount %s
		LIMIT %d
	`, r.dataset, statsTable, order, limit))

	q.Parameters = []bq.QueryParameter{
		{Name: "year_month", Value: yearMonth},
		{Name: "group_by", Value: string(groupBy)},
	}

	return r.readStats(ctx, q, "FindByMonthAndGroup")
}

// FindMonthlyTotals returns the per-month TOTAL aggregates for an
// inclusive month range.
func (r *StatsRepository) FindMonthlyTotals(ctx context.Context, from, to string) ([]*stats.GroupedStat, error) {
	q := r.client.Query(fmt.Sprintf(`
		SELECT
			stat_id,
			year_month,
			group_by,
			group_key,
			currency,
			record_count,
			total_amount
		FROM %s.%s
		WHERE group_by = @group_by
		  AND year_month >= @from_month
		  AND year_month <= @to_month
		ORDER BY year_month, currency
	`, r.dataset, statsTable))

	q.Parameters = []bq.QueryParameter{
		{Name: "group_by", Value: string(stats.GroupByMonth)},
		{Name: "from_month", Value: from},
		{Name: "to_month", Value: to},
	}

	return r.readStats(ctx, q, "FindMonthlyTotals")
}

func (r *StatsRepository) readStats(ctx context.Context, q *bq.Query, op string) ([]*stats.GroupedStat, error) {
	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: query read: %w", op, err)
	}

	var groups []*stats.GroupedStat
	for {
		var row statRow
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: iterating rows: %w", op, err)
		}
		groups = append(groups, statFromRow(&row))
	}

	return groups, nil
}
