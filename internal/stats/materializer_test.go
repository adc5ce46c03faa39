package stats

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcinh992/bank-transactions-api/internal/transactions"
)

type fakeTxRepo struct {
	records []*transactions.Record
	listErr error
}

func (f *fakeTxRepo) InsertBatch(ctx context.Context, records []*transactions.Record) error {
	f.records = append(f.records, records...)
	return nil
}

func (f *fakeTxRepo) ListByMonth(ctx context.Context, yearMonth string) ([]*transactions.Record, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []*transactions.Record
	for _, r := range f.records {
		if r.YearMonth == yearMonth {
			out = append(out, r)
		}
	}
	return out, nil
}

type fakeStatsRepo struct {
	rows      []*GroupedStat
	deleted   []string
	deleteErr error
	insertErr error
}

func (f *fakeStatsRepo) DeleteByMonth(ctx context.Context, yearMonth string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, yearMonth)
	kept := f.rows[:0]
	for _, row := range f.rows {
		if row.YearMonth != yearMonth {
			kept = append(kept, row)
		}
	}
	f.rows = kept
	return nil
}

func (f *fakeStatsRepo) InsertBatch(ctx context.Context, rows []*GroupedStat) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.rows = append(f.rows, rows...)
	return nil
}

func (f *fakeStatsRepo) FindByMonthAndGroup(ctx context.Context, yearMonth string, groupBy GroupBy, sort Sort, limit int) ([]*GroupedStat, error) {
	return nil, nil
}

func (f *fakeStatsRepo) FindMonthlyTotals(ctx context.Context, from, to string) ([]*GroupedStat, error) {
	return nil, nil
}

func record(iban, date, currency, category, amount string) *transactions.Record {
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		panic(err)
	}
	return &transactions.Record{
		IBAN:      iban,
		Date:      d,
		Currency:  currency,
		Category:  category,
		Amount:    decimal.RequireFromString(amount),
		YearMonth: d.Format("2006-01"),
	}
}

func findRow(rows []*GroupedStat, groupBy GroupBy, key, currency string) *GroupedStat {
	for _, r := range rows {
		if r.GroupBy == groupBy && r.Key == key && r.Currency == currency {
			return r
		}
	}
	return nil
}

func TestMaterializeForMonth(t *testing.T) {
	txRepo := &fakeTxRepo{records: []*transactions.Record{
		record("DE89370400440532013000", "2024-01-05", "EUR", "Groceries", "-12.50"),
		record("DE89370400440532013000", "2024-01-06", "EUR", "Groceries", "-7.50"),
		record("DE89370400440532013000", "2024-01-07", "EUR", "Salary", "2500.00"),
		record("GB29NWBK60161331926819", "2024-01-08", "GBP", "Groceries", "-3.00"),
	}}
	statsRepo := &fakeStatsRepo{}

	err := NewMaterializer(txRepo, statsRepo).MaterializeForMonth(context.Background(), "2024-01")
	require.NoError(t, err)

	// Three category rows, two IBAN rows, two TOTAL rows.
	require.Len(t, statsRepo.rows, 7)

	groceriesEUR := findRow(statsRepo.rows, GroupByCategory, "Groceries", "EUR")
	require.NotNil(t, groceriesEUR)
	assert.Equal(t, int64(2), groceriesEUR.Count)
	assert.True(t, groceriesEUR.TotalAmount.Equal(decimal.RequireFromString("-20.00")))

	groceriesGBP := findRow(statsRepo.rows, GroupByCategory, "Groceries", "GBP")
	require.NotNil(t, groceriesGBP)
	assert.Equal(t, int64(1), groceriesGBP.Count)

	iban := findRow(statsRepo.rows, GroupByIBAN, "DE89370400440532013000", "EUR")
	require.NotNil(t, iban)
	assert.Equal(t, int64(3), iban.Count)
	assert.True(t, iban.TotalAmount.Equal(decimal.RequireFromString("2480.00")))

	totalEUR := findRow(statsRepo.rows, GroupByMonth, TotalKey, "EUR")
	require.NotNil(t, totalEUR)
	assert.Equal(t, int64(3), totalEUR.Count)
	assert.True(t, totalEUR.TotalAmount.Equal(decimal.RequireFromString("2480.00")))

	totalGBP := findRow(statsRepo.rows, GroupByMonth, TotalKey, "GBP")
	require.NotNil(t, totalGBP)
	assert.True(t, totalGBP.TotalAmount.Equal(decimal.RequireFromString("-3.00")))
}

func TestMaterializeForMonth_ReplacesPreviousRows(t *testing.T) {
	txRepo := &fakeTxRepo{records: []*transactions.Record{
		record("DE89370400440532013000", "2024-01-05", "EUR", "Groceries", "-12.50"),
	}}
	statsRepo := &fakeStatsRepo{}
	m := NewMaterializer(txRepo, statsRepo)

	require.NoError(t, m.MaterializeForMonth(context.Background(), "2024-01"))
	first := len(statsRepo.rows)

	// A rebuild with unchanged records writes the same rows, not more.
	require.NoError(t, m.MaterializeForMonth(context.Background(), "2024-01"))
	assert.Equal(t, first, len(statsRepo.rows))
	assert.Equal(t, []string{"2024-01", "2024-01"}, statsRepo.deleted)
}

func TestMaterializeForMonth_EmptyMonth(t *testing.T) {
	statsRepo := &fakeStatsRepo{rows: []*GroupedStat{
		{YearMonth: "2024-01", GroupBy: GroupByMonth, Key: TotalKey, Currency: "EUR"},
	}}

	err := NewMaterializer(&fakeTxRepo{}, statsRepo).MaterializeForMonth(context.Background(), "2024-01")
	require.NoError(t, err)
	assert.Empty(t, statsRepo.rows)
}

func TestMaterializeForMonth_LeavesOtherMonthsAlone(t *testing.T) {
	txRepo := &fakeTxRepo{records: []*transactions.Record{
		record("DE89370400440532013000", "2024-01-05", "EUR", "Groceries", "-12.50"),
		record("DE89370400440532013000", "2024-02-05", "EUR", "Groceries", "-9.00"),
	}}
	statsRepo := &fakeStatsRepo{}
	m := NewMaterializer(txRepo, statsRepo)

	require.NoError(t, m.MaterializeForMonth(context.Background(), "2024-01"))
	require.NoError(t, m.MaterializeForMonth(context.Background(), "2024-02"))
	require.NoError(t, m.MaterializeForMonth(context.Background(), "2024-01"))

	assert.NotNil(t, findRow(statsRepo.rows, GroupByMonth, TotalKey, "EUR"))
	var jan, feb int
	for _, r := range statsRepo.rows {
		switch r.YearMonth {
		case "2024-01":
			jan++
		case "2024-02":
			feb++
		}
	}
	assert.Equal(t, 3, jan)
	assert.Equal(t, 3, feb)
}

func TestMaterializeForMonth_DeleteFails(t *testing.T) {
	statsRepo := &fakeStatsRepo{deleteErr: errors.New("boom")}

	err := NewMaterializer(&fakeTxRepo{}, statsRepo).MaterializeForMonth(context.Background(), "2024-01")
	assert.Error(t, err)
}

func TestMaterializeForMonth_ListFails(t *testing.T) {
	txRepo := &fakeTxRepo{listErr: errors.New("boom")}

	err := NewMaterializer(txRepo, &fakeStatsRepo{}).MaterializeForMonth(context.Background(), "2024-01")
	assert.Error(t, err)
}

func TestBuildGroups_DeterministicOrder(t *testing.T) {
	records := []*transactions.Record{
		record("GB29NWBK60161331926819", "2024-01-08", "GBP", "Travel", "-3.00"),
		record("DE89370400440532013000", "2024-01-05", "EUR", "Groceries", "-12.50"),
	}

	first := buildGroups("2024-01", records)
	second := buildGroups("2024-01", records)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, *first[i], *second[i])
	}
}
