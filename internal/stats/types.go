// Package stats materializes and serves grouped month aggregates over
// the persisted transaction set.
package stats

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// GroupBy is the grouping axis of a materialized aggregate.
type GroupBy string

const (
	GroupByCategory GroupBy = "CATEGORY"
	GroupByIBAN     GroupBy = "IBAN"
	GroupByMonth    GroupBy = "MONTH"
)

// ParseGroupBy converts the wire token into a GroupBy.
func ParseGroupBy(s string) (GroupBy, error) {
	switch GroupBy(s) {
	case GroupByCategory, GroupByIBAN, GroupByMonth:
		return GroupBy(s), nil
	}
	return "", fmt.Errorf("unknown groupBy %q", s)
}

// Sort orders stats query results by total amount.
type Sort string

const (
	SortTotalDesc Sort = "TOTAL_DESC"
	SortTotalAsc  Sort = "TOTAL_ASC"
)

// ParseSort converts the wire token into a Sort.
func ParseSort(s string) (Sort, error) {
	switch Sort(s) {
	case SortTotalDesc, SortTotalAsc:
		return Sort(s), nil
	}
	return "", fmt.Errorf("unknown sort %q", s)
}

// TotalKey is the group key of the per-currency month total row.
const TotalKey = "TOTAL"

// GroupedStat is one materialized aggregate row, uniquely identified
// by (YearMonth, GroupBy, Key, Currency).
type GroupedStat struct {
	YearMonth   string          `json:"yearMonth"`
	GroupBy     GroupBy         `json:"groupBy"`
	Key         string          `json:"key"`
	Currency    string          `json:"currency"`
	Count       int64           `json:"count"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
}
