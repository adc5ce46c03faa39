// Package bigquery implements the storage contracts on BigQuery:
// streaming inserter bulk writes, parameterized DML for job updates
// and stats deletes, and query+iterator reads. Domain structs are
// converted to row structs with explicit functions at this boundary;
// the core never depends on reflection-based serialization.
package bigquery

import (
	"context"
	"fmt"

	bq "cloud.google.com/go/bigquery"
)

const (
	jobsTable         = "import_jobs"
	transactionsTable = "transactions"
	statsTable        = "transaction_stats"
)

// Store bundles the BigQuery-backed repositories over one shared
// client.
type Store struct {
	client *bq.Client

	Jobs         *JobRepository
	Transactions *TransactionRepository
	Stats        *StatsRepository
}

// NewStore creates the repositories for the given project and dataset.
func NewStore(ctx context.Context, projectID, dataset string) (*Store, error) {
	client, err := bq.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("NewStore: creating client: %w", err)
	}

	return &Store{
		client:       client,
		Jobs:         &JobRepository{client: client, dataset: dataset},
		Transactions: &TransactionRepository{client: client, dataset: dataset},
		Stats:        &StatsRepository{client: client, dataset: dataset},
	}, nil
}

// Close closes the shared BigQuery client.
func (s *Store) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}

// runDML executes a parameterized DML statement and waits for it.
func runDML(ctx context.Context, q *bq.Query) error {
	job, err := q.Run(ctx)
	if err != nil {
		return fmt.Errorf("running query: %w", err)
	}
	status, err := job.Wait(ctx)
	if err != nil {
		return fmt.Errorf("waiting for job: %w", err)
	}
	if err := status.Err(); err != nil {
		return fmt.Errorf("job error: %w", err)
	}
	return nil
}
