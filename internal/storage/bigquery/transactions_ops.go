package bigquery

import (
	"context"
	"fmt"

	bq "cloud.google.com/go/bigquery"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"

	"github.com/marcinh992/bank-transactions-api/internal/transactions"
)

// TransactionRepository persists imported rows in the transactions
// table via the streaming inserter.
type TransactionRepository struct {
	client  *bq.Client
	dataset string
}

var _ transactions.Repository = (*TransactionRepository)(nil)

// InsertBatch writes a batch of records, assigning each a generated
// transaction_id.
func (r *TransactionRepository) InsertBatch(ctx context.Context, records []*transactions.Record) error {
	if len(records) == 0 {
		return nil
	}

	rows := make([]*transactionRow, 0, len(records))
	for _, rec := range records {
		rows = append(rows, transactionToRow(rec, uuid.NewString()))
	}

	inserter := r.client.Dataset(r.dataset).Table(transactionsTable).Inserter()
	if err := inserter.Put(ctx, rows); err != nil {
		return fmt.Errorf("InsertBatch: inserting rows: %w", err)
	}

	return nil
}

// ListByMonth returns every record imported for the given month.
func (r *TransactionRepository) ListByMonth(ctx context.Context, yearMonth string) ([]*transactions.Record, error) {
	q := r.client.Query(fmt.Sprintf(`
		SELECT
			transaction_id,
			import_job_id,
			iban,
			transaction_date,
			currency,
			category,
			amount,
			year_month
		FROM %s.%s
		WHERE year_month = @year_month
		ORDER BY transaction_date, transaction_id
	`, r.dataset, transactionsTable))

	q.Parameters = []bq.QueryParameter{
		{Name: "year_month", Value: yearMonth},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListByMonth: query read: %w", err)
	}

	var records []*transactions.Record
	for {
		var row transactionRow
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListByMonth: iterating rows: %w", err)
		}
		records = append(records, transactionFromRow(&row))
	}

	return records, nil
}
