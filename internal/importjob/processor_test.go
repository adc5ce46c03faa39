package importjob_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcinh992/bank-transactions-api/internal/csv"
	"github.com/marcinh992/bank-transactions-api/internal/importjob"
	"github.com/marcinh992/bank-transactions-api/internal/stats"
	"github.com/marcinh992/bank-transactions-api/internal/storage/memory"
	"github.com/marcinh992/bank-transactions-api/internal/transactions"
)

type processorEnv struct {
	jobs      *memory.JobStore
	txs       *memory.TransactionStore
	stats     *memory.StatsStore
	processor *importjob.Processor
}

func newProcessorEnv(t *testing.T) *processorEnv {
	t.Helper()

	jobStore := memory.NewJobStore()
	txStore := memory.NewTransactionStore()
	statsStore := memory.NewStatsStore()

	processor := importjob.NewProcessor(
		csv.NewTransactionReader(),
		jobStore,
		transactions.NewBatchWriter(txStore),
		stats.NewMaterializer(txStore, statsStore),
		zerolog.Nop(),
	)

	return &processorEnv{
		jobs:      jobStore,
		txs:       txStore,
		stats:     statsStore,
		processor: processor,
	}
}

func (env *processorEnv) createJob(t *testing.T, id, yearMonth string) {
	t.Helper()
	err := env.jobs.Create(context.Background(), &importjob.ImportJob{
		ID:        id,
		YearMonth: yearMonth,
		FileName:  "transactions.csv",
		Status:    importjob.StatusReceived,
	})
	require.NoError(t, err)
}

func TestProcess_AllRowsValid(t *testing.T) {
	env := newProcessorEnv(t)
	env.createJob(t, "job-1", "2026-01")

	file := []byte("IBAN,date,currency,category,amount\n" +
		"DE89370400440532013000,2026-01-05,EUR,Groceries,-186.47\n" +
		"DE89370400440532013000,2026-01-06,EUR,Groceries,-92.13\n" +
		"DE89370400440532013000,2026-01-07,EUR,Rent,-950.00\n" +
		"DE89370400440532013000,2026-01-08,EUR,Salary,2500.00\n")

	err := env.processor.Process(context.Background(), "job-1", file)
	require.NoError(t, err)

	job, err := env.jobs.FindByID(context.Background(), "job-1")
	require.NoError(t, err)
	assert.Equal(t, importjob.StatusCompleted, job.Status)
	assert.Equal(t, 4, job.TotalRows)
	assert.Equal(t, 4, job.ImportedRows)
	assert.Equal(t, 0, job.InvalidRows)
	assert.NotNil(t, job.StartedAt)
	assert.NotNil(t, job.FinishedAt)
	assert.Empty(t, job.ErrorMessage)

	records, err := env.txs.ListByMonth(context.Background(), "2026-01")
	require.NoError(t, err)
	require.Len(t, records, 4)
	for _, r := range records {
		assert.Equal(t, "job-1", r.ImportJobID)
		assert.NotEmpty(t, r.ID)
	}

	rows, err := env.stats.FindByMonthAndGroup(context.Background(), "2026-01", stats.GroupByCategory, stats.SortTotalDesc, 50)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	var groceries *stats.GroupedStat
	for _, row := range rows {
		if row.Key == "Groceries" {
			groceries = row
		}
	}
	require.NotNil(t, groceries)
	assert.Equal(t, int64(2), groceries.Count)
	assert.True(t, groceries.TotalAmount.Equal(decimal.RequireFromString("-278.60")))
}

func TestProcess_InvalidRowsAreCountedNotFatal(t *testing.T) {
	env := newProcessorEnv(t)
	env.createJob(t, "job-1", "2024-01")

	// Row 2 has a malformed IBAN, row 3 is dated outside the target
	// month. Both are counted invalid; the rest import.
	file := []byte("IBAN,date,currency,category,amount\n" +
		"DE89370400440532013000,2024-01-05,EUR,Groceries,-12.50\n" +
		"not-an-iban,2024-01-06,EUR,Groceries,-5.00\n" +
		"DE89370400440532013000,2024-02-06,EUR,Groceries,-5.00\n" +
		"DE89370400440532013000,2024-01-08,EUR,Salary,2500.00\n")

	err := env.processor.Process(context.Background(), "job-1", file)
	require.NoError(t, err)

	job, err := env.jobs.FindByID(context.Background(), "job-1")
	require.NoError(t, err)
	assert.Equal(t, importjob.StatusCompleted, job.Status)
	assert.Equal(t, 4, job.TotalRows)
	assert.Equal(t, 2, job.ImportedRows)
	assert.Equal(t, 2, job.InvalidRows)

	records, err := env.txs.ListByMonth(context.Background(), "2024-01")
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestProcess_UnparseableRowsAreCounted(t *testing.T) {
	env := newProcessorEnv(t)
	env.createJob(t, "job-1", "2024-01")

	file := []byte("IBAN,date,currency,category,amount\n" +
		"DE89370400440532013000,05.01.2024,EUR,Groceries,-12.50\n" +
		"DE89370400440532013000,2024-01-06,EUR,Groceries,twelve\n" +
		"DE89370400440532013000,2024-01-07,EUR,Groceries,-1.00\n")

	err := env.processor.Process(context.Background(), "job-1", file)
	require.NoError(t, err)

	job, err := env.jobs.FindByID(context.Background(), "job-1")
	require.NoError(t, err)
	assert.Equal(t, importjob.StatusCompleted, job.Status)
	assert.Equal(t, 3, job.TotalRows)
	assert.Equal(t, 1, job.ImportedRows)
	assert.Equal(t, 2, job.InvalidRows)
}

func TestProcess_EmptyFileCompletesWithZeroCounters(t *testing.T) {
	env := newProcessorEnv(t)
	env.createJob(t, "job-1", "2024-01")

	err := env.processor.Process(context.Background(), "job-1", []byte{})
	require.NoError(t, err)

	job, err := env.jobs.FindByID(context.Background(), "job-1")
	require.NoError(t, err)
	assert.Equal(t, importjob.StatusCompleted, job.Status)
	assert.Equal(t, 0, job.TotalRows)
	assert.Equal(t, 0, job.ImportedRows)
	assert.Equal(t, 0, job.InvalidRows)

	rows, err := env.stats.FindByMonthAndGroup(context.Background(), "2024-01", stats.GroupByCategory, stats.SortTotalDesc, 50)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestProcess_MissingColumnFailsJob(t *testing.T) {
	env := newProcessorEnv(t)
	env.createJob(t, "job-1", "2024-01")

	file := []byte("IBAN,date,currency,amount\n" +
		"DE89370400440532013000,2024-01-05,EUR,-12.50\n")

	err := env.processor.Process(context.Background(), "job-1", file)
	require.Error(t, err)

	job, findErr := env.jobs.FindByID(context.Background(), "job-1")
	require.NoError(t, findErr)
	assert.Equal(t, importjob.StatusFailed, job.Status)
	assert.Contains(t, job.ErrorMessage, "missing column: category")
	assert.NotNil(t, job.FinishedAt)
}

func TestProcess_WriteFailureFailsJobWithTruncatedMessage(t *testing.T) {
	jobStore := memory.NewJobStore()
	statsStore := memory.NewStatsStore()
	failing := &failingTxRepo{err: errors.New(strings.Repeat("x", 500))}

	processor := importjob.NewProcessor(
		csv.NewTransactionReader(),
		jobStore,
		transactions.NewBatchWriter(failing),
		stats.NewMaterializer(failing, statsStore),
		zerolog.Nop(),
	)

	require.NoError(t, jobStore.Create(context.Background(), &importjob.ImportJob{
		ID:        "job-1",
		YearMonth: "2024-01",
		Status:    importjob.StatusReceived,
	}))

	file := []byte("IBAN,date,currency,category,amount\n" +
		"DE89370400440532013000,2024-01-05,EUR,Groceries,-12.50\n")

	err := processor.Process(context.Background(), "job-1", file)
	require.Error(t, err)

	job, findErr := jobStore.FindByID(context.Background(), "job-1")
	require.NoError(t, findErr)
	assert.Equal(t, importjob.StatusFailed, job.Status)
	assert.Len(t, job.ErrorMessage, 300)
}

func TestProcess_FlushesBatchesAtThreshold(t *testing.T) {
	jobStore := memory.NewJobStore()
	statsStore := memory.NewStatsStore()
	txRepo := &flushCountingTxRepo{}

	processor := importjob.NewProcessor(
		csv.NewTransactionReader(),
		jobStore,
		transactions.NewBatchWriter(txRepo),
		stats.NewMaterializer(txRepo, statsStore),
		zerolog.Nop(),
	)

	require.NoError(t, jobStore.Create(context.Background(), &importjob.ImportJob{
		ID:        "job-1",
		YearMonth: "2024-01",
		Status:    importjob.StatusReceived,
	}))

	const rowCount = 2500
	var file strings.Builder
	file.WriteString("IBAN,date,currency,category,amount\n")
	for i := 0; i < rowCount; i++ {
		file.WriteString("DE89370400440532013000,2024-01-05,EUR,Groceries,-1.00\n")
	}

	err := processor.Process(context.Background(), "job-1", []byte(file.String()))
	require.NoError(t, err)

	job, err := jobStore.FindByID(context.Background(), "job-1")
	require.NoError(t, err)
	assert.Equal(t, importjob.StatusCompleted, job.Status)
	assert.Equal(t, rowCount, job.TotalRows)
	assert.Equal(t, rowCount, job.ImportedRows)
	assert.Equal(t, 0, job.InvalidRows)

	// Two full flushes at the threshold plus the remainder.
	assert.Equal(t, []int{1000, 1000, 500}, txRepo.flushSizes)

	rows, err := statsStore.FindByMonthAndGroup(context.Background(), "2024-01", stats.GroupByCategory, stats.SortTotalDesc, 50)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(rowCount), rows[0].Count)
	assert.True(t, rows[0].TotalAmount.Equal(decimal.RequireFromString("-2500.00")))
}

// flushCountingTxRepo records the size of every bulk insert.
type flushCountingTxRepo struct {
	flushSizes []int
	records    []*transactions.Record
}

func (f *flushCountingTxRepo) InsertBatch(ctx context.Context, records []*transactions.Record) error {
	f.flushSizes = append(f.flushSizes, len(records))
	f.records = append(f.records, records...)
	return nil
}

func (f *flushCountingTxRepo) ListByMonth(ctx context.Context, yearMonth string) ([]*transactions.Record, error) {
	var out []*transactions.Record
	for _, r := range f.records {
		if r.YearMonth == yearMonth {
			out = append(out, r)
		}
	}
	return out, nil
}

func TestProcess_FailureMessageNeverSplitsRune(t *testing.T) {
	jobStore := memory.NewJobStore()
	// "x" then 3-byte runes: byte offset 300 lands inside a rune.
	failing := &failingTxRepo{err: errors.New("x" + strings.Repeat("€", 150))}

	processor := importjob.NewProcessor(
		csv.NewTransactionReader(),
		jobStore,
		transactions.NewBatchWriter(failing),
		stats.NewMaterializer(failing, memory.NewStatsStore()),
		zerolog.Nop(),
	)

	require.NoError(t, jobStore.Create(context.Background(), &importjob.ImportJob{
		ID:        "job-1",
		YearMonth: "2024-01",
		Status:    importjob.StatusReceived,
	}))

	file := []byte("IBAN,date,currency,category,amount\n" +
		"DE89370400440532013000,2024-01-05,EUR,Groceries,-12.50\n")

	require.Error(t, processor.Process(context.Background(), "job-1", file))

	job, err := jobStore.FindByID(context.Background(), "job-1")
	require.NoError(t, err)
	assert.Equal(t, importjob.StatusFailed, job.Status)
	assert.True(t, utf8.ValidString(job.ErrorMessage))
	assert.LessOrEqual(t, len(job.ErrorMessage), 300)
}

func TestProcess_UnknownJob(t *testing.T) {
	env := newProcessorEnv(t)

	err := env.processor.Process(context.Background(), "ghost", []byte{})
	require.Error(t, err)
}

type failingTxRepo struct {
	err error
}

func (f *failingTxRepo) InsertBatch(ctx context.Context, records []*transactions.Record) error {
	return f.err
}

func (f *failingTxRepo) ListByMonth(ctx context.Context, yearMonth string) ([]*transactions.Record, error) {
	return nil, f.err
}
