package bigquery

import (
	"context"
	"fmt"

	bq "cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"

	"github.com/marcinh992/bank-transactions-api/internal/apperr"
	"github.com/marcinh992/bank-transactions-api/internal/importjob"
)

// JobRepository persists import jobs in the import_jobs table.
type JobRepository struct {
	client  *bq.Client
	dataset string
}

var _ importjob.Repository = (*JobRepository)(nil)

// Create inserts a new job row.
func (r *JobRepository) Create(ctx context.Context, job *importjob.ImportJob) error {
	q := r.client.Query(fmt.Sprintf(`
		INSERT %s.%s (
			job_id,
			year_month,
			file_name,
			status,
			total_rows,
			imported_rows,
			invalid_rows,
			created_at,
			error_message
		)
		VALUES (
			@job_id,
			@year_month,
			@file_name,
			@status,
			@total_rows,
			@imported_rows,
			@invalid_rows,
			@created_at,
			@error_message
		)
	`, r.dataset, jobsTable))

	q.Parameters = []bq.QueryParameter{
		{Name: "job_id", Value: job.ID},
		{Name: "year_month", Value: job.YearMonth},
		{Name: "file_name", Value: job.FileName},
		{Name: "status", Value: string(job.Status)},
		{Name: "total_rows", Value: job.TotalRows},
		{Name: "imported_rows", Value: job.ImportedRows},
		{Name: "invalid_rows", Value: job.InvalidRows},
		{Name: "created_at", Value: job.CreatedAt},
		{Name: "error_message", Value: job.ErrorMessage},
	}

	if err := runDML(ctx, q); err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

// FindByID loads a job by its identifier.
func (r *JobRepository) FindByID(ctx context.Context, id string) (*importjob.ImportJob, error) {
	q := r.client.Query(fmt.Sprintf(`
		SELECT
			job_id,
			year_month,
			file_name,
			status,
			total_rows,
			imported_rows,
			invalid_rows,
			created_at,
			started_at,
			finished_at,
			error_message
		FROM %s.%s
		WHERE job_id = @job_id
		LIMIT 1
	`, r.dataset, jobsTable))

	q.Parameters = []bq.QueryParameter{
		{Name: "job_id", Value: id},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("FindByID: query read: %w", err)
	}

	var row jobRow
	if err := it.Next(&row); err != nil {
		if err == iterator.Done {
			return nil, apperr.NotFound("import job not found: %s", id)
		}
		return nil, fmt.Errorf("FindByID: iterating rows: %w", err)
	}

	return jobFromRow(&row), nil
}

// ExistsForMonth reports whether any job was already created for the
// given month.
func (r *JobRepository) ExistsForMonth(ctx context.Context, yearMonth string) (bool, error) {
	q := r.client.Query(fmt.Sprintf(`
		SELECT COUNT(*) AS cnt
		FROM %s.%s
		WHERE year_month = @year_month
	`, r.dataset, jobsTable))

	q.Parameters = []bq.QueryParameter{
		{Name: "year_month", Value: yearMonth},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return false, fmt.Errorf("ExistsForMonth: query read: %w", err)
	}

	var row struct {
		Cnt int64 `bigquery:"cnt"`
	}
	if err := it.Next(&row); err != nil {
		return false, fmt.Errorf("ExistsForMonth: iterating rows: %w", err)
	}

	return row.Cnt > 0, nil
}

// Save updates the mutable fields of an existing job row.
func (r *JobRepository) Save(ctx context.Context, job *importjob.ImportJob) error {
	q := r.client.Query(fmt.Sprintf(`
		UPDATE %s.%s
		SET status = @status,
		    total_rows = @total_rows,
		    imported_rows = @imported_rows,
		    invalid_rows = @invalid_rows,
		    started_at = @started_at,
		    finished_at = @finished_at,
		    error_message = @error_message
		WHERE job_id = @job_id
	`, r.dataset, jobsTable))

	q.Parameters = []bq.QueryParameter{
		{Name: "status", Value: string(job.Status)},
		{Name: "total_rows", Value: job.TotalRows},
		{Name: "imported_rows", Value: job.ImportedRows},
		{Name: "invalid_rows", Value: job.InvalidRows},
		{Name: "started_at", Value: nullTimestamp(job.StartedAt)},
		{Name: "finished_at", Value: nullTimestamp(job.FinishedAt)},
		{Name: "error_message", Value: job.ErrorMessage},
		{Name: "job_id", Value: job.ID},
	}

	if err := runDML(ctx, q); err != nil {
		return fmt.Errorf("Save: %w", err)
	}
	return nil
}
