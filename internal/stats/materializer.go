package stats

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/marcinh992/bank-transactions-api/internal/transactions"
)

// insertChunkSize bounds a single bulk write of aggregate rows.
const insertChunkSize = 1000

// Materializer recomputes a month's grouped aggregates from the full
// transaction set and replaces the previous aggregates wholesale.
// There is no compensating transaction: a write failure between the
// delete and the insert leaves the month's stats partially rebuilt.
type Materializer struct {
	txRepo    transactions.Repository
	statsRepo Repository
}

// NewMaterializer creates a Materializer.
func NewMaterializer(txRepo transactions.Repository, statsRepo Repository) *Materializer {
	return &Materializer{txRepo: txRepo, statsRepo: statsRepo}
}

// MaterializeForMonth deletes the month's aggregate rows and rebuilds
// them: per (category, currency), per (iban, currency) and one TOTAL
// row per currency. A month with zero records produces zero rows.
func (m *Materializer) MaterializeForMonth(ctx context.Context, yearMonth string) error {
	if err := m.statsRepo.DeleteByMonth(ctx, yearMonth); err != nil {
		return fmt.Errorf("deleting stats for %s: %w", yearMonth, err)
	}

	records, err := m.txRepo.ListByMonth(ctx, yearMonth)
	if err != nil {
		return fmt.Errorf("listing transactions for %s: %w", yearMonth, err)
	}

	rows := buildGroups(yearMonth, records)

	for start := 0; start < len(rows); start += insertChunkSize {
		end := start + insertChunkSize
		if end > len(rows) {
			end = len(rows)
		}
		if err := m.statsRepo.InsertBatch(ctx, rows[start:end]); err != nil {
			return fmt.Errorf("inserting stats for %s: %w", yearMonth, err)
		}
	}

	return nil
}

// buildGroups computes all three aggregate families for the month.
func buildGroups(yearMonth string, records []*transactions.Record) []*GroupedStat {
	rows := groupRecords(yearMonth, GroupByCategory, records, func(r *transactions.Record) string { return r.Category })
	rows = append(rows, groupRecords(yearMonth, GroupByIBAN, records, func(r *transactions.Record) string { return r.IBAN })...)
	rows = append(rows, groupRecords(yearMonth, GroupByMonth, records, func(r *transactions.Record) string { return TotalKey })...)
	return rows
}

type groupKey struct {
	key      string
	currency string
}

// groupRecords counts and sums records per (key, currency). Output
// order is deterministic so a rebuild with unchanged records writes
// identical rows in identical order.
func groupRecords(yearMonth string, dim GroupBy, records []*transactions.Record, keyOf func(*transactions.Record) string) []*GroupedStat {
	groups := make(map[groupKey]*GroupedStat)

	for _, r := range records {
		k := groupKey{key: keyOf(r), currency: r.Currency}
		g, ok := groups[k]
		if !ok {
			g = &GroupedStat{
				YearMonth:   yearMonth,
				GroupBy:     dim,
				Key:         k.key,
				Currency:    k.currency,
				TotalAmount: decimal.Zero,
			}
			groups[k] = g
		}
		g.Count++
		g.TotalAmount = g.TotalAmount.Add(r.Amount)
	}

	rows := make([]*GroupedStat, 0, len(groups))
	for _, g := range groups {
		rows = append(rows, g)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Key != rows[j].Key {
			return rows[i].Key < rows[j].Key
		}
		return rows[i].Currency < rows[j].Currency
	})

	return rows
}
