package bigquery

import (
	"math/big"
	"time"

	bq "cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/marcinh992/bank-transactions-api/internal/importjob"
	"github.com/marcinh992/bank-transactions-api/internal/stats"
	"github.com/marcinh992/bank-transactions-api/internal/transactions"
)

// numericScale is the fractional digit count of BigQuery NUMERIC.
const numericScale = 9

type jobRow struct {
	JobID        string           `bigquery:"job_id"`
	YearMonth    string           `bigquery:"year_month"`
	FileName     string           `bigquery:"file_name"`
	Status       string           `bigquery:"status"`
	TotalRows    int64            `bigquery:"total_rows"`
	ImportedRows int64            `bigquery:"imported_rows"`
	InvalidRows  int64            `bigquery:"invalid_rows"`
	CreatedAt    time.Time        `bigquery:"created_at"`
	StartedAt    bq.NullTimestamp `bigquery:"started_at"`
	FinishedAt   bq.NullTimestamp `bigquery:"finished_at"`
	ErrorMessage string           `bigquery:"error_message"`
}

type transactionRow struct {
	TransactionID string     `bigquery:"transaction_id"`
	ImportJobID   string     `bigquery:"import_job_id"`
	IBAN          string     `bigquery:"iban"`
	Date          civil.Date `bigquery:"transaction_date"`
	Currency      string     `bigquery:"currency"`
	Category      string     `bigquery:"category"`
	Amount        *big.Rat   `bigquery:"amount"`
	YearMonth     string     `bigquery:"year_month"`
}

type statRow struct {
	StatID      string   `bigquery:"stat_id"`
	YearMonth   string   `bigquery:"year_month"`
	GroupBy     string   `bigquery:"group_by"`
	GroupKey    string   `bigquery:"group_key"`
	Currency    string   `bigquery:"currency"`
	RecordCount int64    `bigquery:"record_count"`
	TotalAmount *big.Rat `bigquery:"total_amount"`
}

func nullTimestamp(t *time.Time) bq.NullTimestamp {
	if t == nil {
		return bq.NullTimestamp{}
	}
	return bq.NullTimestamp{Timestamp: *t, Valid: true}
}

func timestampPtr(nt bq.NullTimestamp) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Timestamp
	return &t
}

func ratFromDecimal(d decimal.Decimal) *big.Rat {
	return d.Rat()
}

func decimalFromRat(r *big.Rat) decimal.Decimal {
	if r == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigRat(r, numericScale)
}

func jobToRow(j *importjob.ImportJob) *jobRow {
	return &jobRow{
		JobID:        j.ID,
		YearMonth:    j.YearMonth,
		FileName:     j.FileName,
		Status:       string(j.Status),
		TotalRows:    int64(j.TotalRows),
		ImportedRows: int64(j.ImportedRows),
		InvalidRows:  int64(j.InvalidRows),
		CreatedAt:    j.CreatedAt,
		StartedAt:    nullTimestamp(j.StartedAt),
		FinishedAt:   nullTimestamp(j.FinishedAt),
		ErrorMessage: j.ErrorMessage,
	}
}

func jobFromRow(r *jobRow) *importjob.ImportJob {
	return &importjob.ImportJob{
		ID:           r.JobID,
		YearMonth:    r.YearMonth,
		FileName:     r.FileName,
		Status:       importjob.Status(r.Status),
		TotalRows:    int(r.TotalRows),
		ImportedRows: int(r.ImportedRows),
		InvalidRows:  int(r.InvalidRows),
		CreatedAt:    r.CreatedAt,
		StartedAt:    timestampPtr(r.StartedAt),
		FinishedAt:   timestampPtr(r.FinishedAt),
		ErrorMessage: r.ErrorMessage,
	}
}

func transactionToRow(t *transactions.Record, id string) *transactionRow {
	return &transactionRow{
		TransactionID: id,
		ImportJobID:   t.ImportJobID,
		IBAN:          t.IBAN,
		Date:          civil.DateOf(t.Date),
		Currency:      t.Currency,
		Category:      t.Category,
		Amount:        ratFromDecimal(t.Amount),
		YearMonth:     t.YearMonth,
	}
}

func transactionFromRow(r *transactionRow) *transactions.Record {
	return &transactions.Record{
		ID:          r.TransactionID,
		ImportJobID: r.ImportJobID,
		IBAN:        r.IBAN,
		Date:        r.Date.In(time.UTC),
		Currency:    r.Currency,
		Category:    r.Category,
		Amount:      decimalFromRat(r.Amount),
		YearMonth:   r.YearMonth,
	}
}

func statToRow(s *stats.GroupedStat, id string) *statRow {
	return &statRow{
		StatID:      id,
		YearMonth:   s.YearMonth,
		GroupBy:     string(s.GroupBy),
		GroupKey:    s.Key,
		Currency:    s.Currency,
		RecordCount: s.Count,
		TotalAmount: ratFromDecimal(s.TotalAmount),
	}
}

func statFromRow(r *statRow) *stats.GroupedStat {
	return &stats.GroupedStat{
		YearMonth:   r.YearMonth,
		GroupBy:     stats.GroupBy(r.GroupBy),
		Key:         r.GroupKey,
		Currency:    r.Currency,
		Count:       r.RecordCount,
		TotalAmount: decimalFromRat(r.TotalAmount),
	}
}
